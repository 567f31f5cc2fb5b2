package domain

import "time"

// Department represents an organizational unit, optionally led by a manager.
type Department struct {
	ID           int64
	Name         string
	Description  string
	ManagerEmail string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

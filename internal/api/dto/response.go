package dto

// APIResponse is the success envelope used by both services.
type APIResponse[T any] struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// Success wraps data in an APIResponse.
func Success[T any](message string, data T) APIResponse[T] {
	return APIResponse[T]{Status: "success", Message: message, Data: data}
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
	Path      string `json:"path"`
}

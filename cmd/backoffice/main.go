package main

import "github.com/spec-kit/backoffice/cmd/backoffice/cmd"

func main() {
	cmd.Execute()
}

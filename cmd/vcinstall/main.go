// Package main is the entry point for the vcinstall CLI.
package main

import (
	"fmt"
	"os"

	"github.com/rvctools/vcinstall/cmd/vcinstall/commands"
	"github.com/rvctools/vcinstall/internal/errors"
)

func main() {
	err := commands.Execute()
	if err == nil {
		return
	}

	var exit *errors.ExitError
	if errors.As(err, &exit) {
		if exit.Err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", exit.Error())
		}
		if exit.Suggestion != "" {
			fmt.Fprintf(os.Stderr, "hint: %s\n", exit.Suggestion)
		}
		os.Exit(exit.Code)
	}

	fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	os.Exit(errors.ExitUser)
}

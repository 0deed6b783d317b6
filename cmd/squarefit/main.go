package main

import (
	"errors"
	"fmt"
	"os"

	"squarefit/internal/ui"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, ui.FormatError(err.Error()))
		}
		os.Exit(1)
	}
}

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// prompt writes label (with the default in brackets, if any) and reads one
// line. An empty answer or EOF yields def.
func prompt(r *bufio.Reader, w io.Writer, label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(w, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(w, "%s: ", label)
	}

	line, err := r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def, nil
	}
	return line, nil
}

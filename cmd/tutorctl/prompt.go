package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// terminal asks confirmations on in and prints alerts to out.
type terminal struct {
	in  *bufio.Reader
	out io.Writer
	// yes answers every confirmation without reading in.
	yes bool
}

func (t *terminal) Confirm(ctx context.Context, message string) bool {
	if t.yes {
		return true
	}
	fmt.Fprintf(t.out, "%s [o/N] ", message)
	answer := make(chan string, 1)
	go func() {
		line, _ := t.in.ReadString('\n')
		answer <- line
	}()
	select {
	case <-ctx.Done():
		fmt.Fprintln(t.out)
		return false
	case line := <-answer:
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "o", "oui", "y", "yes":
			return true
		}
		return false
	}
}

func (t *terminal) Alert(message string) {
	fmt.Fprintln(t.out, "!", message)
}

// readLine prints label and returns the trimmed answer.
func (t *terminal) readLine(label string) (string, error) {
	fmt.Fprint(t.out, label)
	line, err := t.in.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

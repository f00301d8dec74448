package ui

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Prompter collects interactive input for operations that need a value or an
// explicit confirmation before any request is issued.
type Prompter interface {
	// Prompt asks for a single line of input. initial is shown as the
	// current value where one exists (rename). ok is false when the user
	// aborted the prompt.
	Prompt(label, initial string) (value string, ok bool)
	// Confirm asks a yes/no question and reports the answer.
	Confirm(message string) bool
}

// StdinPrompter reads prompt answers from standard input.
type StdinPrompter struct {
	scanner *bufio.Scanner
}

// NewStdinPrompter returns a Prompter backed by os.Stdin.
func NewStdinPrompter() *StdinPrompter {
	return &StdinPrompter{scanner: bufio.NewScanner(os.Stdin)}
}

func (p *StdinPrompter) Prompt(label, initial string) (string, bool) {
	if initial != "" {
		fmt.Printf("%s [%s]: ", label, initial)
	} else {
		fmt.Printf("%s: ", label)
	}
	if !p.scanner.Scan() {
		return "", false
	}
	text := strings.TrimSpace(p.scanner.Text())
	if text == "" && initial != "" {
		// Empty input keeps the current value.
		return initial, true
	}
	return text, text != ""
}

func (p *StdinPrompter) Confirm(message string) bool {
	fmt.Printf("%s [y/N]: ", message)
	if !p.scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(p.scanner.Text()))
	return answer == "y" || answer == "yes"
}

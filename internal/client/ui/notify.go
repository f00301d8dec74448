// Package ui provides the shell's interaction plumbing: transient
// notifications and input prompts. Controllers depend on the interfaces so
// tests can script input and capture output.
package ui

import "fmt"

// Notifier surfaces transient, non-blocking notices to the user. It is the
// client-side equivalent of the toast stack: every failure is recovered
// locally by showing a notice, never by terminating the process.
type Notifier interface {
	Success(msg string)
	Error(msg string)
	Info(msg string)
}

// Console is a Notifier that prints to stdout.
type Console struct{}

func (Console) Success(msg string) { fmt.Println("OK:", msg) }
func (Console) Error(msg string)   { fmt.Println("ERROR:", msg) }
func (Console) Info(msg string)    { fmt.Println("INFO:", msg) }

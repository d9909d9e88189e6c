// Package ui provides terminal components for pulse's line-oriented CLI
// output: a spinner for blocking calls, plain tables, and the shared color
// palette.
//
// The full-screen dashboard lives in the monitor package. Everything here
// is meant for commands whose stdout may be piped, so animated output goes
// to stderr.
//
//	s := ui.NewSpinner("Logging in")
//	s.Start()
//	// ... do work ...
//	s.Success() // or s.Fail() or s.Skip()
//
// Use DisableColors() to switch to monochrome output (for --no-color).
package ui

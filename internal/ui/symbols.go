package ui

// Unicode symbols for status indicators.
const (
	SymbolSuccess = "✓" // Operation completed successfully
	SymbolFail    = "✗" // Operation failed
	SymbolWarning = "⚠" // Needs attention
)

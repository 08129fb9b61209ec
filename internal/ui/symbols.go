package ui

// Unicode symbols for status indicators.
const (
	SymbolSuccess = "✓" // Round-trip completed
	SymbolFail    = "✗" // No response
	SymbolDenied  = "!" // Host answered but refused
)

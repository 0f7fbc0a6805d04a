package ir

// Version constants for the header format and engine.
const (
	// HeaderVersion is the binary DataHeader layout version.
	HeaderVersion = 1

	// EngineVersion is the mergers engine version.
	EngineVersion = "0.1.0"
)

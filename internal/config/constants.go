package config

// Tree file extensions recognized by the CLI.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// TreeFileExtensions maps a file extension to its tree format.
var TreeFileExtensions = map[string]string{
	".json": FormatJSON,
	".yaml": FormatYAML,
	".yml":  FormatYAML,
}

// Export container pre-declared in every root scope:
// const module = { exports: {} }
const (
	ExportContainer = "module"
	ExportField     = "exports"
)

// Guest-visible error names
const (
	ErrorName          = "Error"
	TypeErrorName      = "TypeError"
	RangeErrorName     = "RangeError"
	ReferenceErrorName = "ReferenceError"
	SyntaxErrorName    = "SyntaxError"
)

// Host global names
const (
	ConsoleName        = "console"
	SetTimeoutName     = "setTimeout"
	QueueMicrotaskName = "queueMicrotask"
	PromiseName        = "Promise"
)

// DefaultMaxCallDepth is used when a Config leaves max_call_depth unset.
const DefaultMaxCallDepth = 10000

// Array limits. MaxArrayLength is the largest length ECMAScript allows;
// indices run up to MaxArrayLength-1.
const (
	MaxArrayLength        = 1<<32 - 1
	MaxArrayIndex         = MaxArrayLength - 1
	DefaultMaxArrayLength = 1 << 24
)

// DefaultServeMaxSteps bounds each remote evaluation when neither
// max_steps nor serve.max_steps is configured.
const DefaultServeMaxSteps = 1_000_000

package config

// ScriptFileExtensions are the recognized scope script extensions.
var ScriptFileExtensions = []string{".yaml", ".yml"}

// Config file names searched in the working directory, in order.
var ConfigFileNames = []string{"scopewalk.yaml", "scopewalk.yml"}

// EnvPrefix prefixes environment variables that override settings,
// e.g. SCOPEWALK_LOG_LEVEL=debug.
const EnvPrefix = "SCOPEWALK_"

// Setting defaults
const (
	DefaultLogLevel = "warn"
	DefaultColor    = ColorAuto
	DefaultParallel = 4
)

// Color modes
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Built-in type names declared in the root scope when the prelude is enabled.
const (
	IntTypeName    = "int"
	FloatTypeName  = "float"
	StringTypeName = "string"
	BoolTypeName   = "bool"
)

// BuiltinTypeNames lists the prelude types in declaration order.
var BuiltinTypeNames = []string{IntTypeName, FloatTypeName, StringTypeName, BoolTypeName}

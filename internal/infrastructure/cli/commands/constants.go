package commands

// Annotation keys understood by the root command.
const (
	// AnnotationNoContainer skips container construction for a command.
	AnnotationNoContainer = "kgq/no-container"
)

// Error messages
const (
	ErrNoQueryGiven     = "no query given: pass it as an argument, with --file, or on stdin"
	ErrCredentialsStore = "credential store unavailable on this system"
	ErrIndexArgument    = "argument must be a positive number"
)

// Success messages
const (
	MsgConfigurationValid = "Configuration valid"
	MsgHistoryCleared     = "History cleared."
	MsgCredentialSaved    = "Password saved for %s"
	MsgCredentialCleared  = "Password removed for %s"
)

// Defaults
const (
	DefaultHistoryLimit = 20
)

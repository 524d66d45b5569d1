package utils

const (
	// ApplicationName is the command name used in help output and configuration paths.
	ApplicationName = "uptree"
	// ConfigFileName is the configuration file looked up in the working and global directories.
	ConfigFileName = "config.yaml"
	// GlobalConfigDirectoryName is the directory under the user's home holding the global configuration.
	GlobalConfigDirectoryName = ".uptree"
	// EnvironmentFileName is the dotenv file loaded from the working directory.
	EnvironmentFileName = ".env"
	// UnknownMimeType is reported when content cannot be sniffed.
	UnknownMimeType = ""

	// LoggerInitializationFailedMessageFormat reports a failure to build the logger.
	LoggerInitializationFailedMessageFormat = "failed to initialize logger: %w"
	// ApplicationExecutionFailedMessage prefixes fatal CLI errors.
	ApplicationExecutionFailedMessage = "application execution failed"
)

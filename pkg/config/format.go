package config

import "fmt"

// ParseOutputFormat validates an output format name.
func ParseOutputFormat(name string) (OutputFormat, error) {
	switch format := OutputFormat(name); format {
	case FormatText, FormatJSON:
		return format, nil
	default:
		return "", fmt.Errorf("invalid format %q; must be one of: text, json", name)
	}
}

// ParseLogLevel validates a log level name.
func ParseLogLevel(name string) (LogLevel, error) {
	switch level := LogLevel(name); level {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return level, nil
	default:
		return "", fmt.Errorf("invalid log level %q; must be one of: debug, info, warn, error", name)
	}
}

package model

//
// Logging
//

// DebugLogger emits debug messages only.
type DebugLogger interface {
	Debug(msg string)
	Debugf(format string, v ...interface{})
}

// Logger is the logger used by every package in this module. The
// `log.Log` singleton of `apex/log` satisfies it out of the box.
type Logger interface {
	DebugLogger

	Info(msg string)
	Infof(format string, v ...interface{})

	Warn(msg string)
	Warnf(format string, v ...interface{})
}

// DiscardLogger is a [Logger] without any output.
var DiscardLogger Logger = discardLogger{}

type discardLogger struct{}

func (discardLogger) Debug(msg string)                       {}
func (discardLogger) Debugf(format string, v ...interface{}) {}
func (discardLogger) Info(msg string)                        {}
func (discardLogger) Infof(format string, v ...interface{})  {}
func (discardLogger) Warn(msg string)                        {}
func (discardLogger) Warnf(format string, v ...interface{})  {}

// ValidLoggerOrDefault returns logger when not nil and [DiscardLogger] otherwise.
func ValidLoggerOrDefault(logger Logger) Logger {
	if logger != nil {
		return logger
	}
	return DiscardLogger
}

// ErrorToStringOrOK returns "ok" for a nil error and the error string otherwise,
// which keeps "operation... result" log lines compact.
func ErrorToStringOrOK(err error) string {
	if err != nil {
		return err.Error()
	}
	return "ok"
}

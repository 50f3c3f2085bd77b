// Package logging decouples the pipeline from the concrete logging library.
// Components receive a Logger through their constructors; production code uses the
// logrus adapter and tests use MockLogger.
package logging

// Logger is the structured logger used across the module.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// WithError returns a child logger carrying err.
	WithError(err error) Logger
	// WithField returns a child logger carrying one field.
	WithField(key string, value interface{}) Logger
	// WithFields returns a child logger carrying fields.
	WithFields(fields ...Field) Logger

	// Fatal logs and exits the process. Only the CLI layer calls it.
	Fatal(msg string, fields ...Field)
	Fatalf(msg string, args ...interface{})
}

// Field is a key-value pair attached to a log record.
type Field struct {
	Key   string
	Value interface{}
}

// F is shorthand for building a Field.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// OrDefault returns l, or an info-level text logger when l is nil.
func OrDefault(l Logger) Logger {
	if l != nil {
		return l
	}
	return NewLogrusAdapter("info", "text")
}

package logs

import "go.uber.org/zap"

// Field keys shared by every package.
const (
	FieldFile      = "file"
	FieldName      = "name"
	FieldOffset    = "offset"
	FieldObject    = "object"
	FieldComponent = "component"
	FieldCount     = "count"
	FieldVersion   = "version"
	FieldSegment   = "segment"
)

// Named returns a child logger tagged with the component name.
// Resolved on every call so it follows Init.
func Named(component string) *zap.Logger {
	return Logger.With(zap.String(FieldComponent, component))
}

func Debug(msg string, fields ...zap.Field) {
	Logger.WithOptions(zap.AddCallerSkip(1)).Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	Logger.WithOptions(zap.AddCallerSkip(1)).Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	Logger.WithOptions(zap.AddCallerSkip(1)).Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	Logger.WithOptions(zap.AddCallerSkip(1)).Error(msg, fields...)
}

func Fatal(msg string, fields ...zap.Field) {
	Logger.WithOptions(zap.AddCallerSkip(1)).Fatal(msg, fields...)
}

// Sync flushes buffered entries, errors from syncing a terminal are ignored.
func Sync() {
	_ = Logger.Sync()
}

package logger

import (
	"go.uber.org/zap"
)

// Standard field names for consistent structured logging across resgen.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Components
	FieldComponent = "component"
	FieldOperation = "operation"

	// Symbol table
	FieldPackage   = "package"
	FieldType      = "type"
	FieldName      = "name"
	FieldValue     = "value"
	FieldStyleable = "styleable"
	FieldAttr      = "attr"

	// Counts and sizes
	FieldCount  = "count"
	FieldFields = "fields"
	FieldTypes  = "types"
	FieldSize   = "size"

	// Files and paths
	FieldPath   = "path"
	FieldFile   = "file"
	FieldFormat = "format"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError = "error"
)

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
// Example:
//
//	type Writer struct {
//	    logger *zap.SugaredLogger
//	}
//
//	func NewWriter() *Writer {
//	    return &Writer{
//	        logger: logger.ComponentLogger("rclass"),
//	    }
//	}
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

// ChildLogger creates a child logger with additional context.
//
// Example:
//
//	pkgLogger := logger.ChildLogger(baseLogger, logger.FieldPackage, "com.example")
func ChildLogger(parent *zap.SugaredLogger, keysAndValues ...interface{}) *zap.SugaredLogger {
	return parent.With(keysAndValues...)
}

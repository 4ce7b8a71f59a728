// Package log provides structured logging helpers for world introspection.
package log

import (
	"github.com/rs/zerolog"
)

// Loggable is the view of a world the helpers below can describe.
type Loggable interface {
	RegisteredComponents() []string
	RegisteredIndexes() []string
	EntityCount() int
}

type Logger struct {
	*zerolog.Logger
}

func (l *Logger) loadComponentsToEvent(zeroLoggerEvent *zerolog.Event, target Loggable) *zerolog.Event {
	components := target.RegisteredComponents()
	zeroLoggerEvent.Int("total_components", len(components))
	arrayLogger := zerolog.Arr()
	for _, name := range components {
		arrayLogger = arrayLogger.Str(name)
	}
	return zeroLoggerEvent.Array("components", arrayLogger)
}

func (l *Logger) loadIndexesToEvent(zeroLoggerEvent *zerolog.Event, target Loggable) *zerolog.Event {
	indexes := target.RegisteredIndexes()
	zeroLoggerEvent.Int("total_indexes", len(indexes))
	arrayLogger := zerolog.Arr()
	for _, name := range indexes {
		arrayLogger = arrayLogger.Str(name)
	}
	return zeroLoggerEvent.Array("indexes", arrayLogger)
}

// LogComponents logs every registered component type.
func (l *Logger) LogComponents(target Loggable, level zerolog.Level) {
	zeroLoggerEvent := l.WithLevel(level)
	zeroLoggerEvent = l.loadComponentsToEvent(zeroLoggerEvent, target)
	zeroLoggerEvent.Send()
}

// LogIndexes logs every registered secondary index.
func (l *Logger) LogIndexes(target Loggable, level zerolog.Level) {
	zeroLoggerEvent := l.WithLevel(level)
	zeroLoggerEvent = l.loadIndexesToEvent(zeroLoggerEvent, target)
	zeroLoggerEvent.Send()
}

// LogWorld logs everything about the world (components, indexes, entity count).
func (l *Logger) LogWorld(target Loggable, level zerolog.Level) {
	zeroLoggerEvent := l.WithLevel(level)
	zeroLoggerEvent = l.loadComponentsToEvent(zeroLoggerEvent, target)
	zeroLoggerEvent = l.loadIndexesToEvent(zeroLoggerEvent, target)
	zeroLoggerEvent.Int("entity_count", target.EntityCount())
	zeroLoggerEvent.Send()
}

// CreateIndexLogger creates a sub logger with the entry {"index": indexName}.
func (l *Logger) CreateIndexLogger(indexName string) Logger {
	zeroLogger := l.Logger.With().
		Str("index", indexName).Logger()
	return Logger{
		&zeroLogger,
	}
}

// CreateTraceLogger creates a trace logger. Using a single id you can use this
// logger to follow and log a data path.
func (l *Logger) CreateTraceLogger(traceID string) zerolog.Logger {
	return l.Logger.With().
		Str("trace_id", traceID).
		Logger()
}

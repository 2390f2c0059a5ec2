package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// Logger is a deliberately small, framework-agnostic logging interface.
// Components receive a Logger in their constructor and derive children
// with persistent fields via With.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// With returns a child logger with persistent fields.
	With(fields ...Field) Logger
}

// Field is a simple key/value pair for structured logging fields.
type Field struct {
	Key   string
	Value interface{}
}

// JSONLogger writes one JSON object per line. It implements Logger and is
// the default implementation used by the server and CLI.
type JSONLogger struct {
	out       io.Writer
	component string
	fields    []Field
}

// NewJSONLogger creates a JSONLogger writing to stdout. component is optional
// and is included on every entry.
func NewJSONLogger(component string) *JSONLogger {
	return &JSONLogger{out: os.Stdout, component: component}
}

// NewJSONLoggerTo creates a JSONLogger writing to w. Useful in tests.
func NewJSONLoggerTo(w io.Writer, component string) *JSONLogger {
	return &JSONLogger{out: w, component: component}
}

func (l *JSONLogger) log(level, msg string, fields []Field) {
	type entry struct {
		Level     string         `json:"level"`
		Msg       string         `json:"msg"`
		Component string         `json:"component,omitempty"`
		Time      string         `json:"time"`
		Fields    map[string]any `json:"fields,omitempty"`
	}
	m := make(map[string]any, len(l.fields)+len(fields))
	for _, f := range l.fields {
		m[f.Key] = f.Value
	}
	for _, f := range fields {
		m[f.Key] = f.Value
	}
	e := entry{
		Level:     level,
		Msg:       msg,
		Component: l.component,
		Time:      time.Now().UTC().Format(time.RFC3339),
		Fields:    m,
	}
	enc, err := json.Marshal(e)
	if err != nil {
		// Fallback plain formatting if marshal fails
		fmt.Fprintf(l.out, "%s %s %v\n", level, msg, m)
		return
	}
	fmt.Fprintln(l.out, string(enc))
}

func (l *JSONLogger) Debug(msg string, fields ...Field) { l.log("debug", msg, fields) }
func (l *JSONLogger) Info(msg string, fields ...Field)  { l.log("info", msg, fields) }
func (l *JSONLogger) Warn(msg string, fields ...Field)  { l.log("warn", msg, fields) }
func (l *JSONLogger) Error(msg string, fields ...Field) { l.log("error", msg, fields) }

func (l *JSONLogger) With(fields ...Field) Logger {
	child := &JSONLogger{out: l.out, component: l.component}
	child.fields = append(append([]Field{}, l.fields...), fields...)
	for _, f := range fields {
		if f.Key == "component" {
			if s, ok := f.Value.(string); ok {
				child.component = s
			}
		}
	}
	return child
}

// Nop is a Logger that discards everything. Handy default for tests and
// optional dependencies.
type Nop struct{}

func (Nop) Debug(string, ...Field) {}
func (Nop) Info(string, ...Field)  {}
func (Nop) Warn(string, ...Field)  {}
func (Nop) Error(string, ...Field) {}
func (n Nop) With(...Field) Logger { return n }

// Copyright 2025 TimeWtr
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package log provides the minimal structured logger contract used across
// hookit: a small interface plus field constructors so callers never
// import zap or logrus types directly.
package log

import (
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

type Field struct {
	key   string
	value any
}

func StringField(key, value string) Field { return Field{key: key, value: value} }
func ErrorField(err error) Field          { return Field{key: "error", value: err} }
func IntField(key string, value int) Field { return Field{key: key, value: value} }
func AnyField(key string, value any) Field { return Field{key: key, value: value} }

// Logger is the structured logging surface used throughout the manager,
// caller, and entrypoint packages.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

type zapAdapter struct {
	l *zap.Logger
}

// NewZapAdapter wraps a *zap.Logger as a Logger.
func NewZapAdapter(l *zap.Logger) Logger {
	return &zapAdapter{l: l}
}

func toZapFields(fields []Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, zap.Any(f.key, f.value))
	}
	return out
}

func (z *zapAdapter) Debug(msg string, fields ...Field) { z.l.Debug(msg, toZapFields(fields)...) }
func (z *zapAdapter) Info(msg string, fields ...Field)  { z.l.Info(msg, toZapFields(fields)...) }
func (z *zapAdapter) Warn(msg string, fields ...Field)  { z.l.Warn(msg, toZapFields(fields)...) }
func (z *zapAdapter) Error(msg string, fields ...Field) { z.l.Error(msg, toZapFields(fields)...) }

type logrusAdapter struct {
	l *logrus.Logger
}

// NewLogrusAdapter wraps a *logrus.Logger as a Logger. Kept alongside the
// zap adapter so both of the teacher's logging dependencies stay exercised.
func NewLogrusAdapter(l *logrus.Logger) Logger {
	return &logrusAdapter{l: l}
}

func toLogrusFields(fields []Field) logrus.Fields {
	out := make(logrus.Fields, len(fields))
	for _, f := range fields {
		out[f.key] = f.value
	}
	return out
}

func (r *logrusAdapter) Debug(msg string, fields ...Field) {
	r.l.WithFields(toLogrusFields(fields)).Debug(msg)
}
func (r *logrusAdapter) Info(msg string, fields ...Field) {
	r.l.WithFields(toLogrusFields(fields)).Info(msg)
}
func (r *logrusAdapter) Warn(msg string, fields ...Field) {
	r.l.WithFields(toLogrusFields(fields)).Warn(msg)
}
func (r *logrusAdapter) Error(msg string, fields ...Field) {
	r.l.WithFields(toLogrusFields(fields)).Error(msg)
}

// NewNop returns a Logger that discards everything, useful as a default
// when a caller does not care about diagnostics.
func NewNop() Logger { return nopLogger{} }

type nopLogger struct{}

func (nopLogger) Debug(string, ...Field) {}
func (nopLogger) Info(string, ...Field)  {}
func (nopLogger) Warn(string, ...Field)  {}
func (nopLogger) Error(string, ...Field) {}

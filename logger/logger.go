// Copyright 2017 Pilosa Corp.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logger provides the shared logging interface used across the
// bufferpool module and its command-line tools.
package logger

import (
	"io"
	"log"
)

// Ensure nopLogger implements the interface.
var _ Logger = &nopLogger{}

// Logger represents an interface for a shared logger.
type Logger interface {
	Printf(format string, v ...interface{})
	Debugf(format string, v ...interface{})
}

func init() {
	NopLogger = &nopLogger{}
}

// NopLogger is a Logger that discards everything. Useful as a default for
// callers that don't care about buffer pool diagnostics.
var NopLogger Logger

type nopLogger struct{}

func (n *nopLogger) Printf(format string, v ...interface{}) {}
func (n *nopLogger) Debugf(format string, v ...interface{}) {}

// StandardLogger logs Printf calls and discards Debugf calls.
type StandardLogger struct {
	logger *log.Logger
}

func NewStandardLogger(w io.Writer) *StandardLogger {
	return &StandardLogger{
		logger: log.New(w, "", log.LstdFlags),
	}
}

func (s *StandardLogger) Printf(format string, v ...interface{}) {
	s.logger.Printf(format, v...)
}

func (s *StandardLogger) Debugf(format string, v ...interface{}) {}

func (s *StandardLogger) Logger() *log.Logger {
	return s.logger
}

// VerboseLogger logs both Printf and Debugf calls. Used by the bpctl demo
// command, where seeing each buffer pool operation is the point.
type VerboseLogger struct {
	logger *log.Logger
}

func NewVerboseLogger(w io.Writer) *VerboseLogger {
	return &VerboseLogger{
		logger: log.New(w, "", log.LstdFlags),
	}
}

func (vb *VerboseLogger) Printf(format string, v ...interface{}) {
	vb.logger.Printf(format, v...)
}

func (vb *VerboseLogger) Debugf(format string, v ...interface{}) {
	vb.logger.Printf(format, v...)
}

func (vb *VerboseLogger) Logger() *log.Logger {
	return vb.logger
}

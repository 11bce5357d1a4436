// Copyright (c) 2023 Remlabs
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
// the Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
// FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
// COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
// IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

package gorem

import (
	"log"

	"github.com/rs/zerolog"
)

type Logger interface {
	Debug(s string)
	Debugf(s string, vals ...interface{})

	Info(s string)
	Infof(s string, vals ...interface{})

	Warn(s string)
	Warnf(s string, vals ...interface{})

	Error(s string)
	Errorf(s string, vals ...interface{})

	Fatal(s string)
	Fatalf(s string, vals ...interface{})
}

type defaultLogger struct {
}

func (d defaultLogger) Debug(s string) {
	log.Println("[DEBUG] " + s)
}

func (d defaultLogger) Debugf(s string, vals ...interface{}) {
	log.Printf("[DEBUG] "+s+"\n", vals...)
}

func (d defaultLogger) Info(s string) {
	log.Println("[INFO] " + s)
}

func (d defaultLogger) Infof(s string, vals ...interface{}) {
	log.Printf("[INFO] "+s+"\n", vals...)
}

func (d defaultLogger) Warn(s string) {
	log.Println("[WARN] " + s)
}

func (d defaultLogger) Warnf(s string, vals ...interface{}) {
	log.Printf("[WARN] "+s+"\n", vals...)
}

func (d defaultLogger) Error(s string) {
	log.Println("[ERROR] " + s)
}

func (d defaultLogger) Errorf(s string, vals ...interface{}) {
	log.Printf("[ERROR] "+s+"\n", vals...)
}

func (d defaultLogger) Fatal(s string) {
	log.Fatalln("[FATAL] " + s)
}

func (d defaultLogger) Fatalf(s string, vals ...interface{}) {
	log.Fatalf("[FATAL] "+s+"\n", vals...)
}

func GetDefaultLogger() Logger {
	return &defaultLogger{}
}

type zerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger adapts a zerolog logger to the gorem Logger interface so
// services already carrying a structured logger can plug it in directly
func NewZerologLogger(l zerolog.Logger) Logger {
	return &zerologLogger{log: l}
}

func (z *zerologLogger) Debug(s string) {
	z.log.Debug().Msg(s)
}

func (z *zerologLogger) Debugf(s string, vals ...interface{}) {
	z.log.Debug().Msgf(s, vals...)
}

func (z *zerologLogger) Info(s string) {
	z.log.Info().Msg(s)
}

func (z *zerologLogger) Infof(s string, vals ...interface{}) {
	z.log.Info().Msgf(s, vals...)
}

func (z *zerologLogger) Warn(s string) {
	z.log.Warn().Msg(s)
}

func (z *zerologLogger) Warnf(s string, vals ...interface{}) {
	z.log.Warn().Msgf(s, vals...)
}

func (z *zerologLogger) Error(s string) {
	z.log.Error().Msg(s)
}

func (z *zerologLogger) Errorf(s string, vals ...interface{}) {
	z.log.Error().Msgf(s, vals...)
}

func (z *zerologLogger) Fatal(s string) {
	z.log.Fatal().Msg(s)
}

func (z *zerologLogger) Fatalf(s string, vals ...interface{}) {
	z.log.Fatal().Msgf(s, vals...)
}

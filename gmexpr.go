// Package gmexpr is the expression front-end of a statistical modeling language.
//
// It reads single expressions of the language, resolves variables against
// a symbol table and functions against a table of overloaded signatures, and
// produces a typed abstract syntax tree together with diagnostics.
// Operators on vectors and matrices are desugared into calls of
// the underlying library functions, with types inferred along the way.
//
// Package gmexpr itself holds the type model shared by all sub-packages and a
// couple of application-global settings for the gmexpr command.
//
// License
//
// Governed by a 3-Clause BSD license. License file may be found in the root
// folder of this module.
//
// Copyright © 2021 Norbert Pillmayer <norbert@pillmayer.com>
//
package gmexpr

import (
	"context"
	"io"
	"os"

	"github.com/knadh/koanf"
)

// Configuration holds global configuration values. We use koanf.
var Configuration *koanf.Koanf

// Tracefile is the file we write our log output, if not nil.
var Tracefile io.WriteCloser

// SignalContext is a global context for terminating the application by an interrupt
// signal.
var SignalContext context.Context

// Exit exits the application. It gracefully shuts down all resources.
func Exit(errcode int) {
	if Tracefile != nil {
		Tracefile.Close()
	}
	os.Exit(errcode)
}

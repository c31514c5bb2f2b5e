/*
Package sframe implements scope frames holding variable declarations.

Declarations are made by the surrounding program before any expression is
read. Frames are organized as a stack: the outermost frame holds global
declarations, blocks push inner frames. Looking up a name searches from the
innermost frame outwards, so inner declarations shadow outer ones.

While an expression is parsed, the frame stack is only read.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package sframe

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'gmexpr.sframe'
func tracer() tracing.Trace {
	return tracing.Select("gmexpr.sframe")
}

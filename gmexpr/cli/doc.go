package cli

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'gmexpr.cli'
func tracer() tracing.Trace {
	return tracing.Select("gmexpr.cli")
}

// Package termui provides objects and methods for interactive UI in terminal windows.
//
// License
//
// Governed by a 3-Clause BSD license. License file may be found in the root
// folder of this module.
//
// Copyright © 2021 Norbert Pillmayer <norbert@pillmayer.com>
//
//
package termui

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/list"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/npillmayer/schuko/tracing"
)

// trace traces with key 'gmexpr.cli'.
func trace() tracing.Trace {
	return tracing.Select("gmexpr.cli")
}

// Formatter writes an item to an output. It returns false if it does not know
// how to render the item.
type Formatter interface {
	Format(interface{}, io.Writer) (bool, error)
}

// DefaultFormatter renders strings, errors, tables and lists.
type DefaultFormatter struct{}

// Format implements Formatter.
func (df DefaultFormatter) Format(item interface{}, w io.Writer) (bool, error) {
	var err error
	switch t := item.(type) {
	case string:
		_, err = fmt.Fprintf(w, "▶ %s\n", t)
	case error:
		_, err = fmt.Fprintf(w, "error: %s\n", t.Error())
	case table.Writer:
		if t == nil {
			_, err = io.WriteString(w, "▶ (empty table)\n")
		} else {
			_, err = fmt.Fprintln(w, t.Render())
		}
	case list.Writer:
		_, err = fmt.Fprintln(w, t.Render())
	default:
		_, err = fmt.Fprintf(w, "▶ object of type %T\n", t)
	}
	return err == nil, err
}

// Command gmexpr checks expressions of a statistical modeling language.
//
// Expressions given as arguments are parsed, type checked and printed in
// desugared form, together with any diagnostics. Without arguments, or with
// flag -i, gmexpr enters an interactive session.
//
// License
//
// Governed by a 3-Clause BSD license. License file may be found in the root
// folder of this module.
//
// Copyright © 2021 Norbert Pillmayer <norbert@pillmayer.com>
//
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/npillmayer/gmexpr"
	"github.com/npillmayer/gmexpr/gmexpr/cli"
)

func main() {
	var stop context.CancelFunc
	gmexpr.SignalContext, stop = signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	cli.Execute()
}

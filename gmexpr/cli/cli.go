// Package cli implements the gmexpr command line interface.
//
// License
//
// Governed by a 3-Clause BSD license. License file may be found in the root
// folder of this module.
//
// Copyright © 2021 Norbert Pillmayer <norbert@pillmayer.com>
//
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/gmexpr"
	"github.com/npillmayer/gmexpr/gmexpr/ui/termui"
	"github.com/npillmayer/gmexpr/sframe"
	"github.com/npillmayer/schuko/tracing"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gmexpr [flags] [expr ...]",
	Short: "Type checks expressions of a statistical modeling language",
	Long: `Welcome to gmexpr V0.1 (experimental)

gmexpr parses expressions, resolves variables and overloaded functions,
infers types and prints the desugared expression together with diagnostics.

Expressions are given as arguments ("-" reads them from stdin, one per line).
Without arguments, gmexpr prompts for expressions in a terminal REPL.

`,
	Run: runCheckCmd,
}

var sigsCmd = &cobra.Command{
	Use:   "sigs [name ...]",
	Short: "List function signatures",
	Run:   runSigsCmd,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called exactly once by gmexpr.main().
func Execute() {
	rootCmd.AddCommand(sigsCmd)
	if rootCmd.Execute() != nil {
		gmexpr.Exit(2)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	// persistent flags which will be global for the application
	flags := rootCmd.PersistentFlags()
	flags.BoolP("interactive", "i", false, "Force run in interactive mode")
	flags.String("logfile", "stderr", "URL of log output location")
	flags.StringArray("var", nil, "Declare a variable as name=type (repeatable)")
	flags.String("prelude", "", "Lua script declaring variables and function signatures")
	flags.String("format", "canonical", "Output format: canonical, infix or tree")
	flags.Bool("comparisons", true, "Allow comparison and logical operators at top level")
	flags.Bool("right-grouping", false, "Group chains of binary operators to the right")
	flags.Bool("keep-abandoned", false, "Keep diagnostics of abandoned parse alternatives")
}

func newSession(cmd *cobra.Command) *Session {
	settings := settingsFrom(gmexpr.Configuration)
	// types like real[,] contain commas, so --var is not a koanf string slice
	settings.VarDecls, _ = cmd.Flags().GetStringArray("var")
	session, err := NewSession(settings)
	if err != nil {
		tracing.Errorf(err.Error())
		fmt.Fprintf(os.Stderr, "gmexpr: %v\n", err)
		gmexpr.Exit(1)
	}
	return session
}

func runCheckCmd(cmd *cobra.Command, args []string) {
	session := newSession(cmd)
	if len(args) > 0 {
		failures, err := session.CheckAll(args, os.Stdin, os.Stdout)
		if err != nil {
			tracing.Errorf(err.Error())
			gmexpr.Exit(2)
		}
		if !gmexpr.Configuration.Bool("interactive") {
			if failures > 0 {
				gmexpr.Exit(1)
			}
			gmexpr.Exit(0)
		}
	}
	runREPL(session)
}

func runSigsCmd(cmd *cobra.Command, args []string) {
	session := newSession(cmd)
	sigs, err := session.Signatures(args...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gmexpr: %v\n", err)
		gmexpr.Exit(1)
	}
	if _, err = (Formatter{}).Format(sigs, os.Stdout); err != nil {
		tracing.Errorf(err.Error())
		gmexpr.Exit(2)
	}
}

func runREPL(session *Session) {
	tracing.Infof("gmexpr REPL called")
	intp := &checkInterpreter{session: session}
	intp.BaseREPL = termui.NewBaseREPL("gmexpr", "0.1 experimental",
		readline.PcItem("declare"),
		readline.PcItem("vars"),
		readline.PcItem("sigs"),
		readline.PcItem("format",
			readline.PcItem("canonical"),
			readline.PcItem("infix"),
			readline.PcItem("tree"),
		),
	)
	intp.Interpreter = intp
	intp.Helper = func(w io.Writer) {
		io.WriteString(w, `
gmexpr will check any expression entered, and interpret the following statements:

  declare <name> <type>   : declare a variable, e.g. declare sigma real[,]
  vars                    : list visible variables
  sigs [name ...]         : list function signatures
  format [mode]           : display or set output format (canonical, infix, tree)

`)
	}
	intp.Prompt(true)
}

type checkInterpreter struct {
	*termui.BaseREPL
	session *Session
}

// InterpretCommand executes a statement or checks an expression.
func (intp *checkInterpreter) InterpretCommand(line string) {
	line = strings.Trim(line, "\x00")
	stdout, stderr := intp.Outputs()
	item := intp.Statement(line)
	f := Formatter{Mode: intp.session.Format}
	if _, err := f.Format(item, stdout); err != nil {
		fmt.Fprintf(stderr, "interpreter error: %s\n", err.Error())
	}
}

// Statement executes a REPL statement and returns an item to display. Lines
// which are not statements are checked as expressions.
func (intp *checkInterpreter) Statement(line string) interface{} {
	session := intp.session
	words := strings.Fields(line)
	if len(words) == 0 {
		return Checked{Source: line}
	}
	switch {
	case words[0] == "declare" && len(words) >= 3:
		typename := strings.Join(words[2:], " ")
		if err := session.Declare(words[1], typename); err != nil {
			return err
		}
		decl, _ := session.Vars.Resolve(words[1])
		return "declared " + decl.String()
	case words[0] == "vars" && len(words) == 1:
		return session.Vars.Visible()
	case words[0] == "sigs" && isNameList(words[1:]):
		sigs, err := session.Signatures(words[1:]...)
		if err != nil {
			return err
		}
		return sigs
	case words[0] == "format" && len(words) <= 2:
		if len(words) == 2 {
			switch words[1] {
			case "canonical", "infix", "tree":
				session.Format = words[1]
			default:
				return fmt.Errorf("unknown output format %q", words[1])
			}
		}
		return "output format is " + session.Format
	}
	return session.Check(line)
}

func isNameList(words []string) bool {
	for _, w := range words {
		if !sframe.IsIdentifier(w) {
			return false
		}
	}
	return true
}

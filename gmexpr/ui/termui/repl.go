package termui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	prtxt "github.com/jedib0t/go-pretty/v6/text"
	"github.com/npillmayer/gmexpr"
)

// BaseREPL is a line-oriented terminal session. It handles a few commands of
// its own (help, bye, mode, setprompt) and hands every other line to its
// Interpreter.
type BaseREPL struct {
	Interpreter REPLCommandInterpreter // receives all lines which are not REPL commands
	Helper      func(io.Writer)        // prints interpreter specific help, may be nil
	rl          *readline.Instance
	toolname    string
	version     string
	editmode    string
	errout      io.Writer // messages of the REPL itself; stderr of rl if nil
}

// REPLCommandInterpreter interprets input lines for a REPL.
type REPLCommandInterpreter interface {
	InterpretCommand(string)
}

// NewBaseREPL creates a REPL for a tool. Completions for the interpreter's own
// statements may be given as readline completer items; they are offered
// together with the REPL commands.
func NewBaseREPL(toolname, version string, completions ...readline.PrefixCompleterInterface) *BaseREPL {
	repl := &BaseREPL{toolname: toolname, version: version, editmode: "emacs"}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:              repl.defaultPrompt(),
		HistoryFile:         filepath.Join(os.TempDir(), toolname+"-repl-history.tmp"),
		AutoComplete:        completer(completions),
		InterruptPrompt:     "^C",
		EOFPrompt:           "exit",
		HistorySearchFold:   true,
		FuncFilterInputRune: blockCtrlZ,
	})
	if err != nil {
		panic(err)
	}
	repl.rl = rl
	return repl
}

func (repl *BaseREPL) defaultPrompt() string {
	return prtxt.FgGreen.Sprintf("%s> ", repl.toolname)
}

func (repl *BaseREPL) welcome() string {
	return fmt.Sprintf("Welcome to %s [V%s]\n", repl.toolname, repl.version)
}

func completer(interpreterItems []readline.PrefixCompleterInterface) *readline.PrefixCompleter {
	items := []readline.PrefixCompleterInterface{
		readline.PcItem("help"),
		readline.PcItem("bye"),
		readline.PcItem("mode", readline.PcItem("vi"), readline.PcItem("emacs")),
		readline.PcItem("setprompt"),
	}
	return readline.NewPrefixCompleter(append(items, interpreterItems...)...)
}

// Outputs returns stdout and stderr of this REPL.
func (repl *BaseREPL) Outputs() (io.Writer, io.Writer) {
	if repl.rl == nil {
		return os.Stdout, repl.stderr()
	}
	return repl.rl.Stdout(), repl.stderr()
}

func (repl *BaseREPL) stderr() io.Writer {
	if repl.errout != nil {
		return repl.errout
	}
	if repl.rl != nil {
		return repl.rl.Stderr()
	}
	return os.Stderr
}

// Prompt reads and executes lines until the user quits. If exitOnBye is set,
// the application exits afterwards.
func (repl *BaseREPL) Prompt(exitOnBye bool) {
	defer repl.rl.Close()
	io.WriteString(repl.stderr(), repl.welcome())
	for {
		line, err := repl.rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			}
			continue
		} else if err == io.EOF {
			break
		}
		if repl.execute(line) {
			break
		}
	}
	if exitOnBye {
		gmexpr.Exit(0)
	}
}

// replCommands are handled by the REPL itself. A handler returns true to end
// the session.
var replCommands = map[string]func(repl *BaseREPL, args []string, line string) bool{
	"help": func(repl *BaseREPL, _ []string, _ string) bool {
		repl.help(repl.stderr())
		return false
	},
	"bye": func(repl *BaseREPL, _ []string, _ string) bool {
		io.WriteString(repl.stderr(), "> goodbye!\n")
		return true
	},
	"mode": func(repl *BaseREPL, args []string, _ string) bool {
		if len(args) > 0 && (args[0] == "vi" || args[0] == "emacs") {
			repl.editmode = args[0]
			if repl.rl != nil {
				repl.rl.SetVimMode(args[0] == "vi")
			}
			return false
		}
		fmt.Fprintf(repl.stderr(), "> current input mode: %s\n", repl.editmode)
		return false
	},
	"setprompt": func(repl *BaseREPL, _ []string, line string) bool {
		prompt := repl.defaultPrompt()
		if p := strings.TrimSpace(strings.TrimPrefix(line, "setprompt")); p != "" {
			prompt = p + " "
		}
		if repl.rl != nil {
			repl.rl.SetPrompt(prompt)
		}
		return false
	},
}

// execute runs a REPL command or passes the line on to the interpreter.
// It returns true if the session should end.
func (repl *BaseREPL) execute(line string) bool {
	line = strings.TrimSpace(line)
	words := strings.Fields(line)
	if len(words) == 0 {
		return false
	}
	if cmd, ok := replCommands[words[0]]; ok {
		return cmd(repl, words[1:], line)
	}
	trace().Debugf("call interpreter on: '%s'", line)
	if repl.Interpreter != nil {
		repl.Interpreter.InterpretCommand(line)
	}
	return false
}

func (repl *BaseREPL) help(w io.Writer) {
	io.WriteString(w, repl.welcome())
	io.WriteString(w, `
The following commands are available:

  help               : print this message
  bye                : quit application
  mode [mode]        : display or set current editing mode (vi, emacs)
  setprompt [prompt] : set current prompt [to default]
`)
	if repl.Helper != nil {
		repl.Helper(w)
	}
}

func blockCtrlZ(r rune) (rune, bool) {
	if r == readline.CharCtrlZ {
		return r, false
	}
	return r, true
}

// Package repl implements the interactive interpreter. Every entry is
// parsed as its own source unit and evaluated against one persistent
// vm.Context, so variables, functions and modules survive between entries.
package repl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/zurustar/wwbasic/pkg/syntax"
	"github.com/zurustar/wwbasic/pkg/syntax/ast"
	"github.com/zurustar/wwbasic/pkg/syntax/lexer"
	"github.com/zurustar/wwbasic/pkg/syntax/token"
	"github.com/zurustar/wwbasic/pkg/vm"
)

const (
	promptMain = "basic> "
	promptCont = "  ...> "

	// HistoryFile is created in the user's home directory.
	HistoryFile = ".wwbasic_history"
)

const banner = "wwbasic interactive mode. Type :help for commands, :quit to exit."

// LineReader is the part of *liner.State a Session needs.
type LineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// Session evaluates entries against one Context.
type Session struct {
	ctx    *vm.Context
	out    io.Writer
	errOut io.Writer
	count  int
}

// NewSession creates a Session. Results and command output go to out,
// syntax errors and runtime diagnostics to errOut.
func NewSession(ctx *vm.Context, out, errOut io.Writer) *Session {
	return &Session{ctx: ctx, out: out, errOut: errOut}
}

// Context returns the session's Context.
func (s *Session) Context() *vm.Context {
	return s.ctx
}

// Start runs the session on the terminal with a persistent history file.
// An empty historyPath disables history.
func (s *Session) Start(historyPath string) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(historyPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	fmt.Fprintln(s.out, banner)
	return s.Run(ln)
}

// DefaultHistoryPath returns the history file in the user's home
// directory, or "" if there is none.
func DefaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, HistoryFile)
}

// Run reads entries from r until EOF, Ctrl-C or :quit.
func (s *Session) Run(r LineReader) error {
	for {
		src, err := readEntry(r)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Fprintln(s.out)
			return nil
		}
		if err != nil {
			return err
		}

		trimmed := strings.TrimSpace(src)
		if trimmed == "" {
			continue
		}
		r.AppendHistory(strings.ReplaceAll(src, "\n", " : "))

		if strings.HasPrefix(trimmed, ":") {
			if quit := s.command(trimmed); quit {
				return nil
			}
			continue
		}
		s.Eval(src)
	}
}

// readEntry reads lines until every block opened in them is closed.
func readEntry(r LineReader) (string, error) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := r.Prompt(prompt)
		if err != nil {
			if b.Len() > 0 && errors.Is(err, io.EOF) {
				return b.String(), nil
			}
			return "", err
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		if strings.HasPrefix(strings.TrimSpace(b.String()), ":") || OpenBlocks(b.String()) <= 0 {
			return b.String(), nil
		}
	}
}

// OpenBlocks returns the number of IF, FOR, DEF and MODULE blocks in src
// that have not been closed.
func OpenBlocks(src string) int {
	depth := 0
	l := lexer.New(src)
	for tok := l.NextToken(); tok.Type != token.EOF; tok = l.NextToken() {
		switch tok.Type {
		case token.IF, token.FOR, token.DEF, token.MODULE:
			depth++
		case token.ENDIF, token.NEXT, token.ENDDEF, token.ENDMODULE:
			depth--
		}
	}
	return depth
}

// Eval parses, binds and runs one entry. The value of a trailing
// expression statement is echoed unless it is a call to a native
// function. It reports whether the entry ran without errors.
func (s *Session) Eval(src string) bool {
	s.count++
	name := fmt.Sprintf("<repl:%d>", s.count)

	program, err := syntax.ParseString(name, src)
	if err != nil {
		fmt.Fprintln(s.errOut, err)
		return false
	}

	unit := s.ctx.AddSource(name, src, program)
	result := s.ctx.Exec(unit)

	ok := s.flushDiagnostics()
	if s.echo(program) {
		fmt.Fprintf(s.out, "= %s\n", result.Value.ToString())
	}
	return ok
}

func (s *Session) echo(program *ast.Program) bool {
	n := len(program.Statements)
	if n == 0 {
		return false
	}
	stmt, ok := program.Statements[n-1].(*ast.ExpressionStatement)
	if !ok {
		return false
	}
	if call, ok := stmt.Expression.(*ast.CallExpression); ok {
		if fn, found := s.ctx.Function(call.Function.Value); found && fn.Kind == vm.FunctionNative {
			return false
		}
	}
	return true
}

func (s *Session) flushDiagnostics() bool {
	diags := s.ctx.Diagnostics()
	for _, d := range diags {
		fmt.Fprintln(s.errOut, d)
	}
	s.ctx.ClearDiagnostics()
	return len(diags) == 0
}

// command runs a :command and reports whether the session should end.
func (s *Session) command(line string) bool {
	fields := strings.Fields(strings.ToLower(line))
	switch fields[0] {
	case ":quit", ":exit", ":q":
		return true
	case ":vars":
		m := s.ctx.Root()
		if len(fields) > 1 {
			var ok bool
			if m, ok = s.ctx.Module(fields[1]); !ok {
				fmt.Fprintf(s.errOut, "no module %s\n", fields[1])
				return false
			}
		}
		DumpVars(s.out, m)
	case ":funcs":
		for _, m := range s.ctx.Modules() {
			for _, fn := range m.Functions() {
				name := fn.Name
				if m.Name() != "" {
					name = m.Name() + "." + name
				}
				fmt.Fprintf(s.out, "%s(%s) [%s]\n", name, strings.Join(fn.Params, ", "), fn.Kind)
			}
		}
	case ":modules":
		for _, m := range s.ctx.Modules() {
			if m.Name() != "" {
				fmt.Fprintln(s.out, m.Name())
			}
		}
	case ":help":
		fmt.Fprint(s.out, `:vars [module]  list global variables
:funcs          list functions
:modules        list modules
:quit           leave
`)
	default:
		fmt.Fprintf(s.errOut, "unknown command %s. Type :help for commands.\n", fields[0])
	}
	return false
}

// DumpVars writes the global variables of m in definition order.
func DumpVars(w io.Writer, m *vm.Module) {
	for _, v := range m.Globals() {
		fmt.Fprintf(w, "%s = %s (%s)\n", v.Name, v.Value.ToString(), v.Value.KindName())
	}
}

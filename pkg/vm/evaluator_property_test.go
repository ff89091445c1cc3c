package vm_test

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/zurustar/wwbasic/pkg/syntax"
	"github.com/zurustar/wwbasic/pkg/value"
	"github.com/zurustar/wwbasic/pkg/vm"
)

// quietRun is exec without *testing.T, for use inside properties.
func quietRun(src string) (*vm.Context, bool) {
	program, err := syntax.ParseString("prop.bas", src)
	if err != nil {
		return nil, false
	}
	c := newContext(io.Discard)
	c.Exec(c.AddSource("prop.bas", src, program))
	return c, len(c.Diagnostics()) == 0
}

func TestProperty_Evaluator(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("add(a, b) returns a + b", prop.ForAll(
		func(a, b int32) bool {
			c, ok := quietRun(fmt.Sprintf("DEF add(x, y)\nRETURN x + y\nENDDEF\nr = add(%d, %d)\n", a, b))
			if !ok {
				return false
			}
			v, _ := c.Var("r")
			return v.ToInt() == int64(a)+int64(b)
		},
		gen.Int32(),
		gen.Int32(),
	))

	properties.Property("FOR a TO b runs b-a+1 times", prop.ForAll(
		func(a, span int) bool {
			b := a + span
			c, ok := quietRun(fmt.Sprintf("n = 0\nFOR i = %d TO %d\nn = n + 1\nNEXT\n", a, b))
			if !ok {
				return false
			}
			v, _ := c.Var("n")
			return v.ToInt() == int64(span+1)
		},
		gen.IntRange(-50, 50),
		gen.IntRange(0, 40),
	))

	properties.Property("a parameter never changes the global of the same name", prop.ForAll(
		func(name string, global, arg int32) bool {
			src := fmt.Sprintf("%[1]s = %[2]d\nDEF f(%[1]s)\n%[1]s = %[1]s + 1\nRETURN %[1]s\nENDDEF\nr = f(%[3]d)\n", name, global, arg)
			c, ok := quietRun(src)
			if !ok {
				return false
			}
			g, _ := c.Var(name)
			r, _ := c.Var("r")
			return g.ToInt() == int64(global) && r.ToInt() == int64(arg)+1
		},
		gen.Identifier().SuchThat(notKeyword),
		gen.Int32Range(0, 1<<20),
		gen.Int32Range(0, 1<<20),
	))

	properties.Property("any STRING operand concatenates", prop.ForAll(
		func(s string, n int64, op string) bool {
			c, ok := quietRun(fmt.Sprintf("r = %q %s %d\n", s, op, n))
			if !ok {
				return false
			}
			v, _ := c.Var("r")
			return v.Kind() == value.String && v.ToString() == s+fmt.Sprint(n)
		},
		gen.AlphaString(),
		gen.Int64Range(0, 1<<40),
		gen.OneConstOf("+", "-", "*", "/", "%", "&&", "||"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

var keywords = map[string]bool{
	"true": true, "false": true, "if": true, "then": true, "elseif": true,
	"else": true, "endif": true, "for": true, "to": true, "step": true,
	"next": true, "def": true, "enddef": true, "return": true, "module": true,
	"endmodule": true, "import": true, "rem": true, "r": true, "f": true,
}

func notKeyword(s string) bool {
	return !keywords[strings.ToLower(s)]
}

package stdlib

import (
	"fmt"
	"strings"

	"github.com/zurustar/wwbasic/pkg/value"
	"github.com/zurustar/wwbasic/pkg/vm"
)

func registerIOFunctions(c *vm.Context) {
	// PRINT(args...) - writes the arguments separated by spaces
	c.RegisterNative("PRINT", func(ctx *vm.Context, args []value.Value) (value.Value, error) {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = a.ToString()
		}
		_, err := fmt.Fprintln(ctx.Output(), strings.Join(parts, " "))
		return value.Default(), err
	}, "args")

	// wwiv.io.PRINT(s) - writes its first argument with a WWIV.IO prefix
	c.RegisterNative(IOModule+".PRINT", func(ctx *vm.Context, args []value.Value) (value.Value, error) {
		if len(args) == 0 {
			return value.Default(), nil
		}
		_, err := fmt.Fprintf(ctx.Output(), "WWIV.IO: %s\n", args[0].ToString())
		return value.Default(), err
	}, "s")
}

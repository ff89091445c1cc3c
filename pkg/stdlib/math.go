package stdlib

import (
	"math/rand/v2"

	"github.com/zurustar/wwbasic/pkg/value"
	"github.com/zurustar/wwbasic/pkg/vm"
)

func registerMathFunctions(c *vm.Context) {
	// ABS(n)
	c.RegisterNative("ABS", func(_ *vm.Context, args []value.Value) (value.Value, error) {
		if err := requireArgs("ABS", args, 1, "n"); err != nil {
			return value.Int(0), err
		}
		n := args[0].ToInt()
		if n < 0 {
			n = -n
		}
		return value.Int(n), nil
	}, "n")

	// RND(max) - random number from 0 to max-1
	// RND(min, max) - random number from min to max-1
	c.RegisterNative("RND", func(_ *vm.Context, args []value.Value) (value.Value, error) {
		if err := requireArgs("RND", args, 1, "max"); err != nil {
			return value.Int(0), err
		}

		var lo, hi int64
		if len(args) == 1 {
			hi = args[0].ToInt()
		} else {
			lo, hi = args[0].ToInt(), args[1].ToInt()
		}

		if hi <= lo {
			return value.Int(lo), nil
		}
		return value.Int(lo + rand.Int64N(hi-lo)), nil
	}, "min", "max")
}

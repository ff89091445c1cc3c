// Package stdlib provides the native functions available to every BASIC
// program.
//
// Register installs the string, math and output functions into the root
// module and creates the wwiv.io module. Natives validate their own
// arguments: a missing argument yields the zero result for the function and
// an error, which the interpreter reports without stopping.
package stdlib

import (
	"fmt"

	"github.com/zurustar/wwbasic/pkg/value"
	"github.com/zurustar/wwbasic/pkg/vm"
)

// IOModule is the name of the module holding the prefixed output functions.
const IOModule = "wwiv.io"

// Register installs the standard library into c.
func Register(c *vm.Context) {
	registerStringFunctions(c)
	registerMathFunctions(c)
	registerIOFunctions(c)
}

// requireArgs reports an error when fewer than n arguments were passed.
func requireArgs(name string, args []value.Value, n int, params string) error {
	if len(args) < n {
		return fmt.Errorf("%s requires %d argument(s) (%s), got %d", name, n, params, len(args))
	}
	return nil
}

package stdlib

import (
	"strings"
	"unicode/utf8"

	"github.com/zurustar/wwbasic/pkg/value"
	"github.com/zurustar/wwbasic/pkg/vm"
)

// String positions and lengths count characters, not bytes.
func registerStringFunctions(c *vm.Context) {
	// LEN(s) - number of characters in s
	c.RegisterNative("LEN", func(_ *vm.Context, args []value.Value) (value.Value, error) {
		if len(args) == 0 {
			return value.Int(0), nil
		}
		return value.Int(int64(utf8.RuneCountInString(args[0].ToString()))), nil
	}, "s")

	// VAL(s) - leading integer of s, 0 if there is none
	c.RegisterNative("VAL", func(_ *vm.Context, args []value.Value) (value.Value, error) {
		if len(args) == 0 {
			return value.Int(0), nil
		}
		return value.Int(args[0].ToInt()), nil
	}, "s")

	// STR(v) - text form of any value
	c.RegisterNative("STR", func(_ *vm.Context, args []value.Value) (value.Value, error) {
		if err := requireArgs("STR", args, 1, "v"); err != nil {
			return value.Str(""), err
		}
		return value.Str(args[0].ToString()), nil
	}, "v")

	// ASC(s) - code of the first character, 0 for ""
	c.RegisterNative("ASC", func(_ *vm.Context, args []value.Value) (value.Value, error) {
		if err := requireArgs("ASC", args, 1, "s"); err != nil {
			return value.Int(0), err
		}
		r, size := utf8.DecodeRuneInString(args[0].ToString())
		if size == 0 {
			return value.Int(0), nil
		}
		return value.Int(int64(r)), nil
	}, "s")

	// CHR(n) - one-character string for codes 0..255, "" otherwise
	c.RegisterNative("CHR", func(_ *vm.Context, args []value.Value) (value.Value, error) {
		if err := requireArgs("CHR", args, 1, "n"); err != nil {
			return value.Str(""), err
		}
		n := args[0].ToInt()
		if n < 0 || n > 255 {
			return value.Str(""), nil
		}
		return value.Str(string(rune(n))), nil
	}, "n")

	// LEFT(s, n) - first n characters
	c.RegisterNative("LEFT", func(_ *vm.Context, args []value.Value) (value.Value, error) {
		if err := requireArgs("LEFT", args, 2, "s, n"); err != nil {
			return value.Str(""), err
		}
		return value.Str(Left(args[0].ToString(), args[1].ToInt())), nil
	}, "s", "n")

	// RIGHT(s, n) - last n characters
	c.RegisterNative("RIGHT", func(_ *vm.Context, args []value.Value) (value.Value, error) {
		if err := requireArgs("RIGHT", args, 2, "s, n"); err != nil {
			return value.Str(""), err
		}
		return value.Str(Right(args[0].ToString(), args[1].ToInt())), nil
	}, "s", "n")

	// MID(s, start[, n]) - substring from 0-based start
	c.RegisterNative("MID", func(_ *vm.Context, args []value.Value) (value.Value, error) {
		switch len(args) {
		case 0:
			return value.Str(""), requireArgs("MID", args, 1, "s, start[, n]")
		case 1:
			return value.Str(args[0].ToString()), nil
		case 2:
			return value.Str(Mid(args[0].ToString(), args[1].ToInt(), -1)), nil
		}
		return value.Str(Mid(args[0].ToString(), args[1].ToInt(), args[2].ToInt())), nil
	}, "s", "start", "n")

	// INSTR(s, sub) - 0-based character index of sub in s, -1 if absent
	c.RegisterNative("INSTR", func(_ *vm.Context, args []value.Value) (value.Value, error) {
		if err := requireArgs("INSTR", args, 2, "s, sub"); err != nil {
			return value.Int(-1), err
		}
		return value.Int(Instr(args[0].ToString(), args[1].ToString())), nil
	}, "s", "sub")

	c.RegisterNative("UCASE", func(_ *vm.Context, args []value.Value) (value.Value, error) {
		if err := requireArgs("UCASE", args, 1, "s"); err != nil {
			return value.Str(""), err
		}
		return value.Str(strings.ToUpper(args[0].ToString())), nil
	}, "s")

	c.RegisterNative("LCASE", func(_ *vm.Context, args []value.Value) (value.Value, error) {
		if err := requireArgs("LCASE", args, 1, "s"); err != nil {
			return value.Str(""), err
		}
		return value.Str(strings.ToLower(args[0].ToString())), nil
	}, "s")
}

// Left returns the first n characters of s; all of s when n is too large.
func Left(s string, n int64) string {
	r := []rune(s)
	if n >= int64(len(r)) {
		return s
	}
	if n <= 0 {
		return ""
	}
	return string(r[:n])
}

// Right returns the last n characters of s; all of s when n is too large.
func Right(s string, n int64) string {
	r := []rune(s)
	if n >= int64(len(r)) {
		return s
	}
	if n <= 0 {
		return ""
	}
	return string(r[int64(len(r))-n:])
}

// Mid returns up to n characters of s starting at the 0-based index start.
// A negative n means the rest of the string. s is returned unchanged when
// start is out of range.
func Mid(s string, start, n int64) string {
	r := []rune(s)
	if start < 0 || start >= int64(len(r)) {
		return s
	}
	rest := r[start:]
	if n < 0 || n >= int64(len(rest)) {
		return string(rest)
	}
	return string(rest[:n])
}

// Instr returns the character index of sub in s, or -1.
func Instr(s, sub string) int64 {
	i := strings.Index(s, sub)
	if i < 0 {
		return -1
	}
	return int64(utf8.RuneCountInString(s[:i]))
}

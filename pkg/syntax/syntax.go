// Package syntax is the front end of the interpreter: it turns BASIC source
// (in any supported encoding) into an ast.Program.
//
// The pipeline is Decode -> lexer -> parser. Errors from every phase are
// returned as an ErrorList of SyntaxError values carrying the source lines
// around the failure.
package syntax

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/zurustar/wwbasic/pkg/syntax/ast"
	"github.com/zurustar/wwbasic/pkg/syntax/lexer"
	"github.com/zurustar/wwbasic/pkg/syntax/parser"
)

// Supported source encodings.
const (
	EncodingAuto     = "auto"
	EncodingUTF8     = "utf-8"
	EncodingShiftJIS = "shift-jis"
	EncodingCP437    = "cp437"
	EncodingLatin1   = "latin1"
)

// Encodings lists the accepted encoding names.
var Encodings = []string{EncodingAuto, EncodingUTF8, EncodingShiftJIS, EncodingCP437, EncodingLatin1}

// SyntaxError is a structured front-end error with location information.
type SyntaxError struct {
	File    string
	Line    int
	Column  int
	Message string

	// Context holds the source lines around the error with a caret under
	// the offending column.
	Context string
}

func (e *SyntaxError) Error() string {
	loc := fmt.Sprintf("line %d, column %d", e.Line, e.Column)
	if e.File != "" {
		loc = fmt.Sprintf("%s:%d:%d", e.File, e.Line, e.Column)
	}
	if e.Context != "" {
		return fmt.Sprintf("syntax error at %s: %s\n%s", loc, e.Message, e.Context)
	}
	return fmt.Sprintf("syntax error at %s: %s", loc, e.Message)
}

// ErrorList is the set of syntax errors of one source unit, in source order.
type ErrorList []*SyntaxError

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", l[0], len(l)-1)
}

// Err returns l as an error, or nil if l is empty.
func (l ErrorList) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

// ParseString parses UTF-8 source text. name is used in error messages and
// recorded as the program's file.
func ParseString(name, source string) (*ast.Program, error) {
	p := parser.New(lexer.New(source))
	program, errs := p.ParseProgram()
	program.File = name

	if len(errs) == 0 {
		return program, nil
	}

	list := make(ErrorList, 0, len(errs))
	for _, err := range errs {
		se := &SyntaxError{File: name, Message: err.Error()}
		if pe, ok := err.(*parser.ParserError); ok {
			se.Line, se.Column, se.Message = pe.Line, pe.Column, pe.Message
			se.Context = GenerateErrorContext(source, pe.Line, pe.Column)
		}
		list = append(list, se)
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Line != list[j].Line {
			return list[i].Line < list[j].Line
		}
		return list[i].Column < list[j].Column
	})
	return program, list
}

// ParseFile reads, decodes and parses a source file.
func ParseFile(path, enc string) (*ast.Program, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read file %s: %w", path, err)
	}

	source, err := Decode(data, enc)
	if err != nil {
		return nil, "", fmt.Errorf("failed to convert encoding for %s: %w", path, err)
	}

	program, err := ParseString(path, source)
	return program, source, err
}

// Decode converts raw source bytes into UTF-8 text. With EncodingAuto a
// UTF-8 or UTF-16 byte order mark is honored, valid UTF-8 is used as is and
// anything else is read as Shift-JIS.
func Decode(data []byte, enc string) (string, error) {
	var e encoding.Encoding

	switch strings.ToLower(enc) {
	case "", EncodingAuto:
		e = detect(data)
	case EncodingUTF8, "utf8":
		e = unicode.UTF8BOM
	case EncodingShiftJIS, "sjis", "shift_jis":
		e = japanese.ShiftJIS
	case EncodingCP437, "ibm437":
		e = charmap.CodePage437
	case EncodingLatin1, "iso-8859-1":
		e = charmap.ISO8859_1
	default:
		return "", fmt.Errorf("unsupported encoding %q", enc)
	}

	reader := transform.NewReader(bytes.NewReader(data), e.NewDecoder())
	out, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to decode source: %w", err)
	}
	return string(out), nil
}

func detect(data []byte) encoding.Encoding {
	switch {
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return unicode.UTF8BOM
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}), bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		return unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)
	case utf8.Valid(data):
		return unicode.UTF8
	}
	return japanese.ShiftJIS
}

// GenerateErrorContext renders up to two lines before and after line, with
// a caret under column.
//
//	  2 | x = 5
//	> 3 | y = (x +
//	    |         ^
//	  4 | PRINT(y)
func GenerateErrorContext(source string, line, column int) string {
	if source == "" || line <= 0 {
		return ""
	}

	lines := strings.Split(source, "\n")
	if line > len(lines) {
		return ""
	}

	start := line - 3
	if start < 0 {
		start = 0
	}
	end := line + 2
	if end > len(lines) {
		end = len(lines)
	}

	var buf strings.Builder
	lineNumWidth := len(fmt.Sprintf("%d", end))

	for i := start; i < end; i++ {
		lineNum := i + 1
		lineContent := strings.TrimRight(lines[i], "\r")

		if lineNum != line {
			fmt.Fprintf(&buf, "  %*d | %s\n", lineNumWidth, lineNum, lineContent)
			continue
		}
		fmt.Fprintf(&buf, "> %*d | %s\n", lineNumWidth, lineNum, lineContent)
		pad := 0
		if column > 1 {
			pad = column - 1
		}
		fmt.Fprintf(&buf, "  %*s | %s^\n", lineNumWidth, "", strings.Repeat(" ", pad))
	}

	return buf.String()
}

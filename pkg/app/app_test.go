package app

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

func newTestApp(embedded fstest.MapFS) (*Application, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	app := New(nil)
	if embedded != nil {
		app = New(embedded)
	}
	app.stdout, app.stderr = &out, &errOut
	return app, &out, &errOut
}

func writeScript(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun_Help(t *testing.T) {
	app, out, _ := newTestApp(nil)
	if err := app.Run([]string{"--help"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "Usage:") {
		t.Errorf("help not printed: %q", out.String())
	}
}

func TestRun_InvalidArgs(t *testing.T) {
	app, _, _ := newTestApp(nil)
	if err := app.Run([]string{"--log-level", "loud"}); err == nil {
		t.Error("expected error")
	}
}

func TestRun_NoInput(t *testing.T) {
	app, _, _ := newTestApp(nil)
	err := app.Run(nil)
	if err == nil || !strings.Contains(err.Error(), "no input files") {
		t.Errorf("expected no input files error, got %v", err)
	}
}

func TestRun_Sequential(t *testing.T) {
	dir := t.TempDir()
	lib := writeScript(t, dir, "lib.bas", "MODULE util\nDEF twice(n)\nRETURN n * 2\nENDDEF\nENDMODULE\n")
	main := writeScript(t, dir, "main.bas", "x = util.twice(21)\nPRINT(\"x is\", x)\n")

	app, out, _ := newTestApp(nil)
	if err := app.Run([]string{lib, main, "--dump-vars"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "x is 42\nx = 42 (INTEGER)\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestRun_ShowTreeWithoutExecute(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "a.bas", "PRINT(1 + 2)\n")

	app, out, _ := newTestApp(nil)
	if err := app.Run([]string{"-t", "--execute=false", path}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "CallExpression") || !strings.Contains(out.String(), "InfixExpression +") {
		t.Errorf("tree not printed: %q", out.String())
	}
	if strings.Contains(out.String(), "\n3\n") {
		t.Error("program should not run with --execute=false")
	}
}

func TestRun_SyntaxError(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "bad.bas", "x = (1 +\n")

	app, _, _ := newTestApp(nil)
	err := app.Run([]string{path})
	if err == nil || !strings.Contains(err.Error(), "bad.bas") {
		t.Errorf("expected syntax error naming the file, got %v", err)
	}
}

func TestRun_Strict(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "warn.bas", "x = missing\nPRINT(\"still runs\")\n")

	app, out, errOut := newTestApp(nil)
	if err := app.Run([]string{path}); err != nil {
		t.Fatalf("runtime errors are not fatal without --strict: %v", err)
	}
	if out.String() != "still runs\n" {
		t.Errorf("output = %q", out.String())
	}
	if !strings.Contains(errOut.String(), "UNDEFINED_VARIABLE") {
		t.Errorf("diagnostic should be logged, got %q", errOut.String())
	}

	app, _, _ = newTestApp(nil)
	if err := app.Run([]string{"--strict", path}); !errors.Is(err, ErrRuntime) {
		t.Errorf("expected ErrRuntime, got %v", err)
	}
}

func TestRun_Batch(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"a.bas", "b.bas", "c.bas"} {
		paths = append(paths, writeScript(t, dir, name, "x = 1\nPRINT(\""+name+"\", x)\n"))
	}
	// Each program has its own context: x from one file is not seen by another.
	writeScript(t, dir, "d.bas", "PRINT(x)\n")
	paths = append(paths, filepath.Join(dir, "d.bas"))

	app, out, _ := newTestApp(nil)
	err := app.Run(append([]string{"--batch", "-j", "2"}, paths...))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var want strings.Builder
	for _, p := range paths[:3] {
		want.WriteString("== " + p + " ==\n" + filepath.Base(p) + " 1\n")
	}
	want.WriteString("== " + paths[3] + " ==\nFALSE\n")
	if out.String() != want.String() {
		t.Errorf("output = %q, want %q", out.String(), want.String())
	}
}

func TestRun_BatchCollectsErrors(t *testing.T) {
	dir := t.TempDir()
	good := writeScript(t, dir, "good.bas", "PRINT(\"ok\")\n")
	bad := writeScript(t, dir, "bad.bas", "IF TRUE THEN\n")

	app, out, _ := newTestApp(nil)
	err := app.Run([]string{"-b", bad, good})
	if err == nil || !strings.Contains(err.Error(), "bad.bas") {
		t.Errorf("expected error for bad.bas, got %v", err)
	}
	if !strings.Contains(out.String(), "ok\n") {
		t.Error("other programs should still run")
	}
}

func TestRun_Directory(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "1_first.bas", "n = 1\n")
	writeScript(t, dir, "2_second.BAS", "n = n + 1\nPRINT(n)\n")
	writeScript(t, dir, "notes.txt", "ignored")

	app, out, _ := newTestApp(nil)
	if err := app.Run([]string{dir}); err != nil {
		t.Fatal(err)
	}
	if out.String() != "2\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestRun_ConfigGlobalsAndEncoding(t *testing.T) {
	dir := t.TempDir()
	encoded, _, err := transform.String(japanese.ShiftJIS.NewEncoder(), "PRINT(greeting, \"世界\", limit * 2)\n")
	if err != nil {
		t.Fatal(err)
	}
	path := writeScript(t, dir, "hello.bas", encoded)
	writeScript(t, dir, "wwbasic.yml", "encoding: shift-jis\nglobals:\n  greeting: こんにちは\n  limit: 21\n")

	app, out, _ := newTestApp(nil)
	if err := app.Run([]string{path}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "こんにちは 世界 42\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestRun_Embedded(t *testing.T) {
	app, out, _ := newTestApp(fstest.MapFS{
		EmbeddedDir + "/hello.bas": {Data: []byte("wwiv.io.PRINT(\"embedded\")\n")},
	})
	if err := app.Run(nil); err != nil {
		t.Fatal(err)
	}
	if out.String() != "WWIV.IO: embedded\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestRun_MaxDepth(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "deep.bas", "DEF down(n)\nIF n == 0 THEN\nRETURN 0\nENDIF\nRETURN down(n - 1)\nENDDEF\nPRINT(down(20))\n")

	app, _, errOut := newTestApp(nil)
	if err := app.Run([]string{"--max-depth", "10", "--strict", path}); !errors.Is(err, ErrRuntime) {
		t.Errorf("expected ErrRuntime, got %v", err)
	}
	if !strings.Contains(errOut.String(), "STACK_OVERFLOW") {
		t.Errorf("expected a STACK_OVERFLOW diagnostic, got %q", errOut.String())
	}
}

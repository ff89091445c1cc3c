package script

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/zurustar/wwbasic/pkg/fileutil"
	"github.com/zurustar/wwbasic/pkg/syntax"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
}

func TestNewLoader(t *testing.T) {
	loader := NewLoader("/test/path", "")
	if loader.fs.BasePath() != "/test/path" {
		t.Errorf("expected basePath '/test/path', got %q", loader.fs.BasePath())
	}
	if loader.encoding != syntax.EncodingAuto {
		t.Errorf("default encoding = %q", loader.encoding)
	}
}

func TestFindScriptFiles_CaseInsensitive(t *testing.T) {
	// テスト用の一時ディレクトリを作成
	tmpDir := t.TempDir()

	// 様々な大文字小文字の.basファイルを作成
	for _, name := range []string{"test.bas", "script.BAS", "lib/helper.Bas", "other.txt"} {
		writeFile(t, filepath.Join(tmpDir, name), []byte("x = 1"))
	}

	loader := NewLoader(tmpDir, "")
	files, err := loader.findScriptFiles()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// other.txtは検出されないはず
	want := []string{"lib/helper.Bas", "script.BAS", "test.bas"}
	for i := range files {
		files[i] = filepath.ToSlash(files[i])
	}
	if diff := cmp.Diff(want, files); diff != "" {
		t.Errorf("script files mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_UTF8(t *testing.T) {
	tmpDir := t.TempDir()
	content := "PRINT(\"Hello World\")\nx = 1"
	writeFile(t, filepath.Join(tmpDir, "test.bas"), []byte(content))

	loader := NewLoader(tmpDir, "")
	// ファイル名の大文字小文字は無視される
	s, err := loader.Load("TEST.BAS")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Content != content {
		t.Errorf("content mismatch:\nexpected: %q\ngot: %q", content, s.Content)
	}
	if s.Size != int64(len(content)) {
		t.Errorf("size = %d, want %d", s.Size, len(content))
	}
}

func TestLoad_ShiftJIS(t *testing.T) {
	tmpDir := t.TempDir()
	content := "msg = \"これはShift-JISのテストです\""

	// UTF-8からShift-JISに変換
	encoded, _, err := transform.String(japanese.ShiftJIS.NewEncoder(), content)
	if err != nil {
		t.Fatalf("failed to encode to Shift-JIS: %v", err)
	}
	writeFile(t, filepath.Join(tmpDir, "sjis.bas"), []byte(encoded))

	for _, enc := range []string{syntax.EncodingAuto, syntax.EncodingShiftJIS} {
		t.Run(enc, func(t *testing.T) {
			s, err := NewLoader(tmpDir, enc).Load("sjis.bas")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s.Content != content {
				t.Errorf("content mismatch:\nexpected: %q\ngot: %q", content, s.Content)
			}
		})
	}
}

func TestLoad_UnsupportedEncoding(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "a.bas"), []byte("x = 1"))

	_, err := NewLoader(tmpDir, "ebcdic").Load("a.bas")
	if err == nil || !strings.Contains(err.Error(), "ebcdic") {
		t.Errorf("expected unsupported encoding error, got %v", err)
	}
}

func TestLoadAll(t *testing.T) {
	loader := NewLoaderFS(fileutil.NewFSys(fstest.MapFS{
		"progs/main.bas":   {Data: []byte("x = 1")},
		"progs/sub.BAS":    {Data: []byte("y = 2")},
		"progs/readme.txt": {Data: []byte("hi")},
	}, "progs"), "")

	scripts, err := loader.LoadAll()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var names []string
	for _, s := range scripts {
		names = append(names, s.FileName)
	}
	if diff := cmp.Diff([]string{"main.bas", "sub.BAS"}, names); diff != "" {
		t.Errorf("loaded scripts mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadAll_NoScripts(t *testing.T) {
	// スクリプトファイルがないディレクトリ
	_, err := NewLoader(t.TempDir(), "").LoadAll()
	if err == nil {
		t.Error("expected error when no script files found, got nil")
	}
}

func TestLoadAll_NonExistentDirectory(t *testing.T) {
	_, err := NewLoader("/nonexistent/path", "").LoadAll()
	if err == nil {
		t.Error("expected error for nonexistent directory, got nil")
	}
}

func TestLoadPath(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "Main.bas"), []byte("x = 1"))
	writeFile(t, filepath.Join(tmpDir, "lib", "util.bas"), []byte("y = 2"))

	t.Run("file", func(t *testing.T) {
		scripts, err := LoadPath(filepath.Join(tmpDir, "Main.bas"), "")
		if err != nil {
			t.Fatal(err)
		}
		if len(scripts) != 1 || scripts[0].Content != "x = 1" {
			t.Errorf("scripts = %+v", scripts)
		}
	})

	t.Run("file with different case", func(t *testing.T) {
		scripts, err := LoadPath(filepath.Join(tmpDir, "MAIN.BAS"), "")
		if err != nil {
			t.Fatal(err)
		}
		if len(scripts) != 1 || filepath.Base(scripts[0].FileName) != "Main.bas" {
			t.Errorf("scripts = %+v", scripts)
		}
	})

	t.Run("directory", func(t *testing.T) {
		scripts, err := LoadPath(tmpDir, "")
		if err != nil {
			t.Fatal(err)
		}
		if len(scripts) != 2 {
			t.Fatalf("expected 2 scripts, got %d", len(scripts))
		}
		if scripts[0].FileName != filepath.Join(tmpDir, "Main.bas") {
			t.Errorf("FileName = %q", scripts[0].FileName)
		}
	})

	t.Run("missing", func(t *testing.T) {
		if _, err := LoadPath(filepath.Join(tmpDir, "nope.bas"), ""); err == nil {
			t.Error("expected error")
		}
	})
}

func TestScriptParse(t *testing.T) {
	s := &Script{FileName: "a.bas", Content: "x = 1 +\n"}
	if _, err := s.Parse(); err == nil {
		t.Error("expected a syntax error")
	}

	s.Content = "x = 1 + 2\n"
	program, err := s.Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if program.File != "a.bas" || len(program.Statements) != 1 {
		t.Errorf("program = %+v", program)
	}
}

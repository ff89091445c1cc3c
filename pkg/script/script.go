// Package script はBASICスクリプトファイルの検出と読み込みを行う
package script

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/zurustar/wwbasic/pkg/fileutil"
	"github.com/zurustar/wwbasic/pkg/syntax"
	"github.com/zurustar/wwbasic/pkg/syntax/ast"
)

// Ext はスクリプトファイルの拡張子（大文字小文字を区別しない）
const Ext = ".bas"

// Script はスクリプトファイルを表す
type Script struct {
	FileName string // ベースパスからの相対パス
	Content  string // UTF-8に変換された内容
	Size     int64  // ファイルサイズ
}

// Parse はスクリプトを構文解析する
func (s *Script) Parse() (*ast.Program, error) {
	return syntax.ParseString(s.FileName, s.Content)
}

// Loader はスクリプトファイルの読み込みを行う
type Loader struct {
	fs       fileutil.FileSystem
	encoding string
}

// NewLoader はディレクトリ basePath から読み込むLoaderを作成する
func NewLoader(basePath, encoding string) *Loader {
	return NewLoaderFS(fileutil.NewRealFS(basePath), encoding)
}

// NewLoaderFS は任意のFileSystemから読み込むLoaderを作成する
func NewLoaderFS(fsys fileutil.FileSystem, encoding string) *Loader {
	if encoding == "" {
		encoding = syntax.EncodingAuto
	}
	return &Loader{fs: fsys, encoding: encoding}
}

// LoadAll はすべての.basファイルを名前順に読み込む
func (l *Loader) LoadAll() ([]Script, error) {
	files, err := l.findScriptFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to find script files: %w", err)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no script files found in %s", fileutil.Describe(l.fs))
	}

	scripts := make([]Script, 0, len(files))
	for _, name := range files {
		s, err := l.Load(name)
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, *s)
	}
	return scripts, nil
}

// findScriptFiles .basファイルを検出（case-insensitive）
func (l *Loader) findScriptFiles() ([]string, error) {
	var files []string

	err := l.fs.WalkDir(".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && fileutil.HasExt(path, Ext) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// Load は単一のスクリプトファイルを読み込む。nameはベースパスからの相対パス
func (l *Loader) Load(name string) (*Script, error) {
	info, err := l.fs.Stat(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load script %s: %w", name, err)
	}

	data, err := l.fs.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load script %s: %w", name, err)
	}

	// 指定されたエンコーディングからUTF-8に変換
	content, err := syntax.Decode(data, l.encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to convert encoding of %s: %w", name, err)
	}

	return &Script{
		FileName: filepath.ToSlash(name),
		Content:  content,
		Size:     info.Size(),
	}, nil
}

// LoadPath はファイルまたはディレクトリのパスからスクリプトを読み込む。
// ディレクトリの場合は配下のすべての.basファイルを返す。
// FileNameには表示用に指定されたパスを付けたものが入る
func LoadPath(path, encoding string) ([]Script, error) {
	info, err := os.Stat(path)
	if err != nil {
		// ファイル名の大文字小文字だけが違う場合
		found, ferr := fileutil.FindFileCaseInsensitive(filepath.Dir(path), filepath.Base(path))
		if ferr != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}
		path = found
		if info, err = os.Stat(path); err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}
	}

	if info.IsDir() {
		scripts, err := NewLoader(path, encoding).LoadAll()
		if err != nil {
			return nil, err
		}
		for i := range scripts {
			scripts[i].FileName = filepath.Join(path, scripts[i].FileName)
		}
		return scripts, nil
	}

	s, err := NewLoader(filepath.Dir(path), encoding).Load(filepath.Base(path))
	if err != nil {
		return nil, err
	}
	s.FileName = path
	return []Script{*s}, nil
}

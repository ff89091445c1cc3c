package fileutil

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// FileSystem は実ファイルシステムとfs.FSを統一的に扱うインターフェース
type FileSystem interface {
	// ReadFile はファイルの内容を読み込む（大文字小文字を無視）
	ReadFile(name string) ([]byte, error)
	// Stat はファイル情報を返す（大文字小文字を無視）
	Stat(name string) (fs.FileInfo, error)
	// WalkDir はrootを再帰的に走査する。fnに渡るパスはベースパスからの相対パス
	WalkDir(root string, fn fs.WalkDirFunc) error
	// BasePath はベースパスを返す
	BasePath() string
}

// RealFS は実ファイルシステムへのアクセスを提供する
type RealFS struct {
	basePath string
}

// NewRealFS は実ファイルシステム用のFileSystemを作成する
func NewRealFS(basePath string) *RealFS {
	return &RealFS{basePath: basePath}
}

func (r *RealFS) ReadFile(name string) ([]byte, error) {
	p, err := r.find(name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(p)
}

func (r *RealFS) Stat(name string) (fs.FileInfo, error) {
	p, err := r.find(name)
	if err != nil {
		return nil, err
	}
	return os.Stat(p)
}

func (r *RealFS) WalkDir(root string, fn fs.WalkDirFunc) error {
	start := r.resolve(root)
	return filepath.WalkDir(start, func(walkPath string, d fs.DirEntry, err error) error {
		rel := walkPath
		if r.basePath != "" {
			if p, relErr := filepath.Rel(r.basePath, walkPath); relErr == nil {
				rel = p
			}
		}
		return fn(rel, d, err)
	})
}

func (r *RealFS) BasePath() string {
	return r.basePath
}

func (r *RealFS) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	// 先頭の "\" を除去
	clean := strings.TrimLeft(name, `\`)
	if clean == "" {
		clean = "."
	}
	return filepath.Join(r.basePath, clean)
}

func (r *RealFS) find(name string) (string, error) {
	p := r.resolve(name)
	// まず直接アクセスを試みる
	if _, err := os.Stat(p); err == nil {
		return p, nil
	}
	return FindFileCaseInsensitive(filepath.Dir(p), filepath.Base(p))
}

// FSys はfs.FS（embed.FS、fstest.MapFSなど）へのアクセスを提供する
type FSys struct {
	fsys     fs.FS
	basePath string
}

// NewFSys はfs.FS用のFileSystemを作成する
func NewFSys(fsys fs.FS, basePath string) *FSys {
	return &FSys{fsys: fsys, basePath: basePath}
}

func (f *FSys) ReadFile(name string) ([]byte, error) {
	p, err := f.find(name)
	if err != nil {
		return nil, err
	}
	return fs.ReadFile(f.fsys, p)
}

func (f *FSys) Stat(name string) (fs.FileInfo, error) {
	p, err := f.find(name)
	if err != nil {
		return nil, err
	}
	return fs.Stat(f.fsys, p)
}

func (f *FSys) WalkDir(root string, fn fs.WalkDirFunc) error {
	start := f.resolve(root)
	return fs.WalkDir(f.fsys, start, func(walkPath string, d fs.DirEntry, err error) error {
		// ベースパスからの相対パスに変換
		rel := walkPath
		switch {
		case f.basePath == "":
		case walkPath == f.basePath:
			rel = "."
		case strings.HasPrefix(walkPath, f.basePath+"/"):
			rel = strings.TrimPrefix(walkPath, f.basePath+"/")
		}
		return fn(rel, d, err)
	})
}

func (f *FSys) BasePath() string {
	return f.basePath
}

func (f *FSys) resolve(name string) string {
	// fs.FSでは "/" を使用
	clean := strings.Trim(strings.ReplaceAll(name, `\`, "/"), "/")
	if clean == "" {
		clean = "."
	}
	if f.basePath == "" {
		return path.Clean(clean)
	}
	return path.Join(f.basePath, clean)
}

func (f *FSys) find(name string) (string, error) {
	p := f.resolve(name)
	if _, err := fs.Stat(f.fsys, p); err == nil {
		return p, nil
	}
	return FindFileCaseInsensitiveFS(f.fsys, path.Dir(p), path.Base(p))
}

var (
	_ FileSystem = (*RealFS)(nil)
	_ FileSystem = (*FSys)(nil)
)

// Describe returns a short label for error messages.
func Describe(fsys FileSystem) string {
	if _, ok := fsys.(*FSys); ok {
		return fmt.Sprintf("fs:%s", fsys.BasePath())
	}
	return fsys.BasePath()
}

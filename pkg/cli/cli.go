// Package cli はコマンドライン引数・環境変数・実行設定ファイルを解析する
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/zurustar/wwbasic/pkg/logger"
	"github.com/zurustar/wwbasic/pkg/syntax"
	"github.com/zurustar/wwbasic/pkg/value"
	"github.com/zurustar/wwbasic/pkg/vm"
)

// ErrHelp は -h/--help が指定されたことを表す
var ErrHelp = flag.ErrHelp

// Config はコマンドライン引数から解析された設定を保持する
type Config struct {
	Files       []string // 実行するスクリプトファイルまたはディレクトリ
	LogLevel    string   // ログレベル（debug, info, warn, error）
	LogFormat   string   // ログ形式（text, json）
	ShowTree    bool     // 構文木を表示する
	Execute     bool     // 構文解析後に実行する
	Encoding    string   // ソースのエンコーディング
	DumpVars    bool     // 実行後にルートのグローバル変数を表示する
	MaxDepth    int      // 最大呼び出し深度
	Batch       bool     // 各ファイルを独立したプログラムとして実行する
	Jobs        int      // バッチモードの並列数
	Interactive bool     // REPLを起動する
	ConfigPath  string   // 実行設定ファイル
	Strict      bool     // 実行時エラーがあれば終了コードを非0にする
	ShowHelp    bool     // ヘルプ表示フラグ

	// Globals は実行前にルートモジュールへ設定される変数（設定ファイル由来）
	Globals map[string]value.Value
}

// Environment variables read by ParseArgs. Flags take precedence.
const (
	EnvLogLevel = "LOG_LEVEL"
	EnvEncoding = "WWBASIC_ENCODING"
	EnvConfig   = "WWBASIC_CONFIG"
)

// DefaultConfigFile は設定ファイルが指定されなかった場合に最初のスクリプトの隣で探すファイル名
const DefaultConfigFile = "wwbasic.yml"

func defaults() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		Execute:   true,
		Encoding:  syntax.EncodingAuto,
		MaxDepth:  vm.MaxStackDepth,
		Jobs:      4,
	}
}

// ParseArgs コマンドライン引数を解析してConfigを返す。
// 優先順位はフラグ、環境変数、設定ファイル、デフォルト値の順。
func ParseArgs(args []string) (*Config, error) {
	return parseArgs(args, os.Getenv)
}

func parseArgs(args []string, getenv func(string) string) (*Config, error) {
	config := defaults()

	fs := flag.NewFlagSet("wwbasic", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "ログレベル（debug, info, warn, error）")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "ログレベル（短縮形）")
	fs.StringVar(&config.LogFormat, "log-format", config.LogFormat, "ログ形式（text, json）")
	fs.BoolVar(&config.ShowTree, "show-tree", false, "構文木を表示")
	fs.BoolVar(&config.ShowTree, "t", false, "構文木を表示（短縮形）")
	fs.BoolVar(&config.Execute, "execute", true, "プログラムを実行")
	fs.BoolVar(&config.Execute, "e", true, "プログラムを実行（短縮形）")
	fs.StringVar(&config.Encoding, "encoding", config.Encoding, "ソースのエンコーディング")
	fs.BoolVar(&config.DumpVars, "dump-vars", false, "実行後にグローバル変数を表示")
	fs.BoolVar(&config.DumpVars, "d", false, "実行後にグローバル変数を表示（短縮形）")
	fs.IntVar(&config.MaxDepth, "max-depth", config.MaxDepth, "最大呼び出し深度")
	fs.BoolVar(&config.Batch, "batch", false, "各ファイルを独立して実行")
	fs.BoolVar(&config.Batch, "b", false, "各ファイルを独立して実行（短縮形）")
	fs.IntVar(&config.Jobs, "jobs", config.Jobs, "バッチモードの並列数")
	fs.IntVar(&config.Jobs, "j", config.Jobs, "バッチモードの並列数（短縮形）")
	fs.BoolVar(&config.Interactive, "interactive", false, "対話モード")
	fs.BoolVar(&config.Interactive, "i", false, "対話モード（短縮形）")
	fs.StringVar(&config.ConfigPath, "config", "", "実行設定ファイル")
	fs.StringVar(&config.ConfigPath, "c", "", "実行設定ファイル（短縮形）")
	fs.BoolVar(&config.Strict, "strict", false, "実行時エラーで非0終了")
	fs.BoolVar(&config.ShowHelp, "help", false, "ヘルプを表示")
	fs.BoolVar(&config.ShowHelp, "h", false, "ヘルプを表示（短縮形）")

	// 引数を並べ替え：フラグを前に、位置引数を後ろに
	if err := fs.Parse(reorderArgs(fs, args)); err != nil {
		return nil, err
	}
	if config.ShowHelp {
		return config, ErrHelp
	}
	config.Files = fs.Args()

	set := setFlags(fs)

	// 環境変数からの設定（コマンドラインフラグが優先）
	if !set["log-level"] {
		if v := getenv(EnvLogLevel); v != "" {
			config.LogLevel = strings.ToLower(v)
			set["log-level"] = true
		}
	}
	if !set["encoding"] {
		if v := getenv(EnvEncoding); v != "" {
			config.Encoding = strings.ToLower(v)
			set["encoding"] = true
		}
	}

	// 設定ファイル
	path, explicit := config.ConfigPath, config.ConfigPath != ""
	if !explicit {
		if v := getenv(EnvConfig); v != "" {
			path, explicit = v, true
		} else if len(config.Files) > 0 {
			path = filepath.Join(baseDir(config.Files[0]), DefaultConfigFile)
		}
	}
	if path != "" {
		rc, err := LoadRunConfig(path)
		switch {
		case err == nil:
			config.ConfigPath = path
			config.apply(rc, set)
		case !explicit && errors.Is(err, os.ErrNotExist):
			// 暗黙の設定ファイルは無くてもよい
		default:
			return nil, err
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// apply は設定ファイルの値のうち、フラグや環境変数で指定されなかったものを反映する
func (c *Config) apply(rc *RunConfig, set map[string]bool) {
	if rc.LogLevel != "" && !set["log-level"] {
		c.LogLevel = strings.ToLower(rc.LogLevel)
	}
	if rc.LogFormat != "" && !set["log-format"] {
		c.LogFormat = strings.ToLower(rc.LogFormat)
	}
	if rc.Encoding != "" && !set["encoding"] {
		c.Encoding = strings.ToLower(rc.Encoding)
	}
	if rc.MaxCallDepth > 0 && !set["max-depth"] {
		c.MaxDepth = rc.MaxCallDepth
	}
	if rc.Strict != nil && !set["strict"] {
		c.Strict = *rc.Strict
	}
	if len(c.Files) == 0 {
		c.Files = rc.ResolvedFiles()
	}
	c.Globals = rc.GlobalValues()
}

// Validate はConfigの値を検証する
func (c *Config) Validate() error {
	var issues []string

	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		issues = append(issues, fmt.Sprintf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		issues = append(issues, fmt.Sprintf("invalid log format: %s (must be text or json)", c.LogFormat))
	}
	if !validEncoding(c.Encoding) {
		issues = append(issues, fmt.Sprintf("invalid encoding: %s (must be one of %s)", c.Encoding, strings.Join(syntax.Encodings, ", ")))
	}
	if c.MaxDepth <= 0 {
		issues = append(issues, "max-depth must be positive, got "+strconv.Itoa(c.MaxDepth))
	}
	if c.Jobs <= 0 {
		issues = append(issues, "jobs must be positive, got "+strconv.Itoa(c.Jobs))
	}
	if c.Interactive && c.Batch {
		issues = append(issues, "--interactive and --batch cannot be combined")
	}

	if len(issues) > 0 {
		return &ValidationError{Source: "command line", Issues: issues}
	}
	return nil
}

func validEncoding(enc string) bool {
	for _, e := range syntax.Encodings {
		if strings.EqualFold(e, enc) {
			return true
		}
	}
	return false
}

// setFlags は明示的に指定されたフラグを長い名前で返す
func setFlags(fs *flag.FlagSet) map[string]bool {
	long := map[string]string{
		"l": "log-level", "t": "show-tree", "e": "execute", "d": "dump-vars",
		"b": "batch", "j": "jobs", "i": "interactive", "c": "config", "h": "help",
	}
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		name := f.Name
		if l, ok := long[name]; ok {
			name = l
		}
		set[name] = true
	})
	return set
}

func baseDir(path string) string {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return path
	}
	return filepath.Dir(path)
}

type boolFlag interface {
	IsBoolFlag() bool
}

// reorderArgs 引数を並べ替えて、フラグを前に、位置引数を後ろに配置する。
// "--" 以降はすべて位置引数として扱う
func reorderArgs(fs *flag.FlagSet, args []string) []string {
	var flags []string
	var positional []string

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if arg == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}

		// フラグかどうかを判定（-または--で始まる）
		if len(arg) < 2 || arg[0] != '-' {
			positional = append(positional, arg)
			continue
		}
		flags = append(flags, arg)

		name := strings.TrimLeft(arg, "-")
		if strings.Contains(name, "=") {
			continue
		}
		// ブール型フラグでなければ次の引数は値
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if bf, ok := f.Value.(boolFlag); ok && bf.IsBoolFlag() {
			continue
		}
		if i+1 < len(args) {
			i++
			flags = append(flags, args[i])
		}
	}

	return append(append(flags, "--"), positional...)
}

// PrintHelp ヘルプメッセージを表示
func PrintHelp(w io.Writer) {
	fmt.Fprintf(w, `wwbasic - BASIC Interpreter

Usage:
  wwbasic [options] [file-or-dir ...]

Arguments:
  file-or-dir   実行するBASICスクリプト（.bas）またはそれを含むディレクトリ
                複数指定した場合は同じ実行コンテキストで順に実行
                （--batch 指定時は独立したプログラムとして並列実行）

Options:
  -l, --log-level <level>     ログレベル: debug, info, warn, error（デフォルト: info）
      --log-format <format>   ログ形式: text, json（デフォルト: text）
  -t, --show-tree             構文木を表示
  -e, --execute               プログラムを実行（デフォルト: true、--execute=false で解析のみ）
      --encoding <enc>        ソースのエンコーディング: %s（デフォルト: auto）
  -d, --dump-vars             実行後にルートのグローバル変数を表示
      --max-depth <n>         最大呼び出し深度（デフォルト: %d）
  -b, --batch                 各ファイルを独立したプログラムとして実行
  -j, --jobs <n>              バッチモードの並列数（デフォルト: 4）
  -i, --interactive           対話モード（REPL）
  -c, --config <file>         実行設定ファイル（デフォルト: スクリプトの隣の %s）
      --strict                実行時エラーがあれば終了コード1
  -h, --help                  このヘルプを表示

Environment Variables:
  LOG_LEVEL=<level>           ログレベル
  WWBASIC_ENCODING=<enc>      ソースのエンコーディング
  WWBASIC_CONFIG=<file>       実行設定ファイル

Examples:
  wwbasic hello.bas                 スクリプトを実行
  wwbasic -t --execute=false a.bas  構文木を表示のみ
  wwbasic --batch -j 8 tests/       ディレクトリ内のスクリプトを並列実行
  wwbasic -i                        対話モード
`, strings.Join(syntax.Encodings, ", "), vm.MaxStackDepth, DefaultConfigFile)
}

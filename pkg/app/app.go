// Package app ties the command line, the loader, the front end and the
// interpreter together.
package app

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/zurustar/wwbasic/pkg/cli"
	"github.com/zurustar/wwbasic/pkg/fileutil"
	"github.com/zurustar/wwbasic/pkg/logger"
	"github.com/zurustar/wwbasic/pkg/repl"
	"github.com/zurustar/wwbasic/pkg/script"
	"github.com/zurustar/wwbasic/pkg/stdlib"
	"github.com/zurustar/wwbasic/pkg/syntax/ast"
	"github.com/zurustar/wwbasic/pkg/vm"
)

// ErrRuntime is returned in strict mode when a run produced diagnostics.
var ErrRuntime = errors.New("runtime errors reported")

// EmbeddedDir は埋め込みファイルシステム内のスクリプトのディレクトリ
const EmbeddedDir = "examples"

// Application はアプリケーションのメインロジックを管理する
type Application struct {
	config   *cli.Config
	log      *slog.Logger
	embedded fs.FS // 入力ファイルが無い場合に実行するスクリプト（nil可）

	stdout io.Writer
	stderr io.Writer
}

// New Applicationを作成
func New(embedded fs.FS) *Application {
	return &Application{
		embedded: embedded,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
}

// Run アプリケーションを実行
func (app *Application) Run(args []string) error {
	// 1. コマンドライン引数の解析
	if err := app.parseArgs(args); err != nil {
		if errors.Is(err, cli.ErrHelp) {
			cli.PrintHelp(app.stdout)
			return nil
		}
		return fmt.Errorf("failed to parse args: %w", err)
	}

	// 2. ロガーの初期化
	if err := app.initLogger(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	app.log.Debug("Application started", "files", app.config.Files, "config", app.config.ConfigPath)

	// 3. 対話モード
	if app.config.Interactive {
		return app.runInteractive()
	}

	// 4. スクリプトファイルの読み込み
	scripts, err := app.loadScripts()
	if err != nil {
		return fmt.Errorf("failed to load scripts: %w", err)
	}
	app.log.Debug("Scripts loaded", "count", len(scripts))
	for _, s := range scripts {
		app.log.Debug("Script file", "name", s.FileName, "size", s.Size)
	}

	// 5. 実行
	var diags int
	if app.config.Batch {
		diags, err = app.runBatch(scripts)
	} else {
		diags, err = app.runSequential(scripts)
	}
	if err != nil {
		return err
	}

	app.log.Debug("Application terminated normally", "diagnostics", diags)
	if app.config.Strict && diags > 0 {
		return fmt.Errorf("%w: %d", ErrRuntime, diags)
	}
	return nil
}

// parseArgs コマンドライン引数を解析
func (app *Application) parseArgs(args []string) error {
	config, err := cli.ParseArgs(args)
	if err != nil {
		return err
	}
	app.config = config
	return nil
}

// initLogger ロガーを初期化
func (app *Application) initLogger() error {
	err := logger.InitLoggerWithOptions(logger.Options{
		Level:  app.config.LogLevel,
		Format: app.config.LogFormat,
		Writer: app.stderr,
	})
	if err != nil {
		return err
	}
	app.log = logger.GetLogger()
	return nil
}

// loadScripts 引数のファイルまたはディレクトリ、無ければ埋め込みスクリプトを読み込む
func (app *Application) loadScripts() ([]script.Script, error) {
	if len(app.config.Files) == 0 {
		if app.embedded == nil {
			return nil, errors.New("no input files")
		}
		app.log.Debug("No input files, using embedded scripts", "dir", EmbeddedDir)
		return script.NewLoaderFS(fileutil.NewFSys(app.embedded, EmbeddedDir), app.config.Encoding).LoadAll()
	}

	var scripts []script.Script
	for _, path := range app.config.Files {
		loaded, err := script.LoadPath(path, app.config.Encoding)
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, loaded...)
	}
	return scripts, nil
}

// newContext 標準ライブラリと設定ファイルのグローバル変数を持つContextを作成
func (app *Application) newContext(out io.Writer, log *slog.Logger) *vm.Context {
	ctx := vm.New(
		vm.WithLogger(log),
		vm.WithOutput(out),
		vm.WithMaxDepth(app.config.MaxDepth),
	)
	stdlib.Register(ctx)

	names := make([]string, 0, len(app.config.Globals))
	for name := range app.config.Globals {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := ctx.Upsert(name, app.config.Globals[name]); err != nil {
			log.Warn("Failed to set global", "name", name, "error", err)
		}
	}
	return ctx
}

// runProgram は1つのスクリプトを構文解析し、必要なら構文木を表示して実行する
func (app *Application) runProgram(ctx *vm.Context, s script.Script, out io.Writer) error {
	program, err := s.Parse()
	if err != nil {
		return err
	}

	if app.config.ShowTree {
		if err := ast.Fprint(out, program); err != nil {
			return fmt.Errorf("failed to print tree: %w", err)
		}
	}
	if !app.config.Execute {
		return nil
	}

	result := ctx.Exec(ctx.AddSource(s.FileName, s.Content, program))
	app.log.Debug("Program finished", "file", s.FileName, "signal", result.Signal, "value", result.Value)
	return nil
}

// runSequential は全スクリプトを1つのContextで順に実行する
func (app *Application) runSequential(scripts []script.Script) (int, error) {
	ctx := app.newContext(app.stdout, app.log)

	for _, s := range scripts {
		if err := app.runProgram(ctx, s, app.stdout); err != nil {
			return len(ctx.Diagnostics()), err
		}
	}

	if app.config.DumpVars {
		repl.DumpVars(app.stdout, ctx.Root())
	}
	return len(ctx.Diagnostics()), nil
}

type batchResult struct {
	out   bytes.Buffer
	diags int
	err   error
}

// runBatch は各スクリプトを独立したContextで並列に実行し、
// 出力は引数の順に表示する
func (app *Application) runBatch(scripts []script.Script) (int, error) {
	results := make([]*batchResult, len(scripts))

	var g errgroup.Group
	g.SetLimit(app.config.Jobs)
	for i, s := range scripts {
		res := &batchResult{}
		results[i] = res
		g.Go(func() error {
			log := app.log.With("file", s.FileName)
			ctx := app.newContext(&res.out, log)
			res.err = app.runProgram(ctx, s, &res.out)
			if app.config.DumpVars {
				repl.DumpVars(&res.out, ctx.Root())
			}
			res.diags = len(ctx.Diagnostics())
			return nil
		})
	}
	_ = g.Wait()

	var diags int
	var errs []error
	for i, res := range results {
		fmt.Fprintf(app.stdout, "== %s ==\n", scripts[i].FileName)
		_, _ = res.out.WriteTo(app.stdout)
		if res.err != nil {
			fmt.Fprintln(app.stderr, res.err)
			errs = append(errs, fmt.Errorf("%s: %w", scripts[i].FileName, res.err))
		}
		diags += res.diags
	}
	return diags, errors.Join(errs...)
}

// runInteractive はREPLを起動する。引数のスクリプトは先に同じContextで実行される
func (app *Application) runInteractive() error {
	ctx := app.newContext(app.stdout, app.log)

	if len(app.config.Files) > 0 {
		scripts, err := app.loadScripts()
		if err != nil {
			return fmt.Errorf("failed to load scripts: %w", err)
		}
		for _, s := range scripts {
			if err := app.runProgram(ctx, s, app.stdout); err != nil {
				return err
			}
		}
	}

	return repl.NewSession(ctx, app.stdout, app.stderr).Start(repl.DefaultHistoryPath())
}

// Command jswalk runs ESTree programs stored as JSON or YAML, or serves
// the remote evaluation service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"

	"github.com/funvibe/jswalk/internal/config"
	"github.com/funvibe/jswalk/internal/evaluator"
	"github.com/funvibe/jswalk/internal/logger"
	"github.com/funvibe/jswalk/internal/rpc"
	jswalk "github.com/funvibe/jswalk/pkg/embed"
)

type options struct {
	configPath string
	verbose    bool
	maxSteps   int
	format     string
	serve      string
	call       string
	printExp   bool
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r)
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(1)
		}
	}()
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("jswalk", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var opts options
	fs.StringVar(&opts.configPath, "config", "", "path to jswalk.yaml")
	fs.BoolVar(&opts.verbose, "v", false, "debug logging")
	fs.IntVar(&opts.maxSteps, "n", 0, "step budget, 0 keeps the configured value")
	fs.StringVar(&opts.format, "format", "", "tree format: json or yaml (default: by extension)")
	fs.StringVar(&opts.serve, "serve", "", "serve the evaluation service on host:port")
	fs.StringVar(&opts.call, "call", "", "call this export after the program settles; remaining args are passed as strings")
	fs.BoolVar(&opts.printExp, "print", false, "print module.exports when done")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: jswalk [flags] program.json [args...]")
		fmt.Fprintln(stderr, "       jswalk [flags] -serve host:port")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	noColor := cfg.NoColor || !isTerminal(os.Stderr)
	logger.Init(cfg.LogLevel, noColor)

	if addr := serveAddr(opts, cfg, fs.NArg()); addr != "" {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := rpc.Serve(ctx, addr, rpc.NewServer(cfg)); err != nil {
			log.Error("server stopped", "err", err)
			return 1
		}
		return 0
	}

	if fs.NArg() < 1 {
		fs.Usage()
		return 2
	}
	path := fs.Arg(0)
	if err := runFile(path, fs.Args()[1:], opts, cfg, stdout, stderr); err != nil {
		reportError(stderr, path, err)
		return 1
	}
	return 0
}

func loadConfig(opts options) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return nil, err
		}
	}
	if opts.verbose {
		cfg.LogLevel = "debug"
	}
	if opts.maxSteps > 0 {
		cfg.MaxSteps = opts.maxSteps
	}
	return cfg, nil
}

// serveAddr returns the listen address. The configured address applies
// only when no program file is given.
func serveAddr(opts options, cfg *config.Config, nargs int) string {
	if opts.serve != "" {
		return opts.serve
	}
	if nargs == 0 {
		return cfg.Serve.Addr
	}
	return ""
}

// detectFormat picks the tree format from -format or the file extension.
func detectFormat(path, explicit string) (string, error) {
	if explicit != "" {
		switch explicit {
		case config.FormatJSON, config.FormatYAML:
			return explicit, nil
		}
		return "", fmt.Errorf("unknown format %q", explicit)
	}
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := config.TreeFileExtensions[ext]; ok {
		return f, nil
	}
	return "", fmt.Errorf("%s: cannot infer tree format from extension %q, use -format", path, ext)
}

func runFile(path string, callArgs []string, opts options, cfg *config.Config, stdout, stderr io.Writer) error {
	format, err := detectFormat(path, opts.format)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	log.Debug("running", "file", path, "format", format, "max_steps", cfg.MaxSteps)

	vm := jswalk.New(jswalk.WithConfig(cfg), jswalk.WithWriter(stdout), jswalk.WithErrWriter(stderr))
	defer vm.Close()

	var exports evaluator.Object
	switch format {
	case config.FormatYAML:
		exports, err = vm.RunYAML(data)
	default:
		exports, err = vm.RunJSON(data)
	}
	if err != nil {
		return err
	}

	if opts.call != "" {
		args := make([]any, len(callArgs))
		for i, a := range callArgs {
			args[i] = a
		}
		if exports, err = vm.CallExport(opts.call, args...); err != nil {
			return err
		}
		if err := vm.Settle(); err != nil {
			return err
		}
	}
	log.Debug("finished", "file", path, "steps", vm.Steps())
	if opts.printExp || opts.call != "" {
		fmt.Fprintln(stdout, exports.Inspect())
	}
	return nil
}

// reportError prints uncaught guest exceptions without the wrapping
// chain and everything else as is.
func reportError(w io.Writer, path string, err error) {
	var thrown *evaluator.ThrowError
	if errors.As(err, &thrown) {
		fmt.Fprintf(w, "%s: %s\n", path, thrown.Error())
		return
	}
	fmt.Fprintf(w, "%s: %v\n", path, err)
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

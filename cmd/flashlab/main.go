package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mgomes/flashlab/flashcode"
)

func main() {
	if err := runCLI(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type globalFlags struct {
	config  string
	catalog string
	strict  bool
	verbose bool
}

// app carries what every command needs.
type app struct {
	ctx    context.Context
	cfg    Config
	logger *slog.Logger
	out    io.Writer
}

func runCLI(args []string) error {
	return run(args, os.Stdout, os.Stderr)
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) < 2 {
		return usageError(stderr)
	}

	fs := flag.NewFlagSet("flashlab", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	var g globalFlags
	fs.StringVar(&g.config, "config", "", "config file")
	fs.StringVar(&g.catalog, "catalog", "", "option catalog (.json, .toml, .cbor, .db)")
	fs.BoolVar(&g.strict, "strict", false, "verify the check digit of input codes")
	fs.BoolVar(&g.verbose, "v", false, "debug logging")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) == 0 {
		return usageError(stderr)
	}

	cfg, err := loadConfig(g.config)
	if err != nil {
		return err
	}
	cfg.applyOverrides(g)

	logger, err := newLogger(cfg.LogLevel, stderr)
	if err != nil {
		return err
	}
	if cfg.Path != "" {
		logger.Debug("config loaded", slog.String("path", cfg.Path))
	}

	a := &app{
		ctx:    context.Background(),
		cfg:    cfg,
		logger: logger,
		out:    stdout,
	}

	cmd, cmdArgs := rest[0], rest[1:]
	switch cmd {
	case "shell":
		return runShell(a)
	case "new":
		fmt.Fprintln(a.out, flashcode.New(nil))
		return nil
	case "show":
		return runShow(a, cmdArgs)
	case "bits":
		return runBits(a, cmdArgs)
	case "add":
		return runApply(a, cmdArgs, true)
	case "remove":
		return runApply(a, cmdArgs, false)
	case "enabled":
		return runListOptions(a, cmdArgs, (*flashcode.Code).EnabledOptions)
	case "available":
		return runListOptions(a, cmdArgs, (*flashcode.Code).AvailableOptions)
	case "list":
		return runList(a)
	case "catalog":
		return runCatalogCommand(a, cmdArgs)
	case "help", "-h", "--help":
		printUsage(stderr)
		return nil
	default:
		return usageError(stderr)
	}
}

func usageError(w io.Writer) error {
	printUsage(w)
	return errors.New("invalid command")
}

func printUsage(w io.Writer) {
	prog := filepath.Base(os.Args[0])
	fmt.Fprintf(w, "Usage: %s [flags] <command> [args...]\n", prog)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  shell                       interactive shell")
	fmt.Fprintln(w, "  new                         print the blank code")
	fmt.Fprintln(w, "  show <code>                 print code, bits and enabled options")
	fmt.Fprintln(w, "  bits <code>                 print the code as bits")
	fmt.Fprintln(w, "  add <code> <option>...      enable options")
	fmt.Fprintln(w, "  remove <code> <option>...   disable options")
	fmt.Fprintln(w, "  enabled <code>              list enabled options")
	fmt.Fprintln(w, "  available <code>            list available options")
	fmt.Fprintln(w, "  list                        list catalog options")
	fmt.Fprintln(w, "  catalog convert <in> <out>  convert a catalog between formats")
	fmt.Fprintln(w, "  catalog import <cs> <out>   build a catalog from a FlashcodeTable.cs")
	fmt.Fprintln(w, "  catalog info [path]         print catalog size and fingerprint")
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -config <file>")
	fmt.Fprintln(w, "    config file (default $FLASHLAB_CONFIG or <user config dir>/flashlab/config.toml)")
	fmt.Fprintln(w, "  -catalog <file>")
	fmt.Fprintln(w, "    option catalog, .json, .toml, .cbor or .db (default \"options.json\")")
	fmt.Fprintln(w, "  -strict")
	fmt.Fprintln(w, "    reject codes whose check digit is wrong")
	fmt.Fprintln(w, "  -v")
	fmt.Fprintln(w, "    debug logging")
}

type flagErrorSink struct{}

func (flagErrorSink) Write(p []byte) (int, error) {
	return len(p), nil
}

func (a *app) catalog() (*flashcode.Catalog, error) {
	c, err := readCatalog(a.ctx, a.cfg.Catalog)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("catalog loaded", slog.String("path", a.cfg.Catalog), slog.Int("options", c.Len()))
	return c, nil
}

func (a *app) parseCode(s string, c *flashcode.Catalog) (*flashcode.Code, error) {
	if a.cfg.StrictChecksum {
		return flashcode.ParseStrict(s, c)
	}
	return flashcode.Parse(s, c)
}

// codeWithCatalog parses the first argument of a command that needs option
// names.
func (a *app) codeWithCatalog(cmd string, args []string) (*flashcode.Code, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("flashlab %s: code required", cmd)
	}
	c, err := a.catalog()
	if err != nil {
		return nil, err
	}
	return a.parseCode(args[0], c)
}

func runShow(a *app, args []string) error {
	code, err := a.codeWithCatalog("show", args)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, code)
	fmt.Fprintln(a.out, code.BitsString())
	for _, name := range code.EnabledOptions() {
		fmt.Fprintln(a.out, name)
	}
	return nil
}

func runBits(a *app, args []string) error {
	if len(args) != 1 {
		return errors.New("flashlab bits: code required")
	}
	code, err := a.parseCode(args[0], nil)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, code.BitsString())
	return nil
}

func runApply(a *app, args []string, enable bool) error {
	verb := "remove"
	if enable {
		verb = "add"
	}
	if len(args) < 2 {
		return fmt.Errorf("flashlab %s: code and at least one option required", verb)
	}
	code, err := a.codeWithCatalog(verb, args)
	if err != nil {
		return err
	}
	names := args[1:]
	if enable {
		err = code.ApplyOptions(names, nil)
	} else {
		err = code.ApplyOptions(nil, names)
	}
	if err != nil {
		return err
	}
	a.logger.Debug("options applied", slog.String("op", verb), slog.String("options", strings.Join(names, ",")))
	fmt.Fprintln(a.out, code)
	return nil
}

func runListOptions(a *app, args []string, list func(*flashcode.Code) []string) error {
	if len(args) != 1 {
		return errors.New("flashlab: exactly one code required")
	}
	code, err := a.codeWithCatalog("options", args)
	if err != nil {
		return err
	}
	for _, name := range list(code) {
		fmt.Fprintln(a.out, name)
	}
	return nil
}

func runList(a *app) error {
	c, err := a.catalog()
	if err != nil {
		return err
	}
	for _, line := range catalogLines(c) {
		fmt.Fprintln(a.out, line)
	}
	return nil
}

func catalogLines(c *flashcode.Catalog) []string {
	opts := c.Options()
	lines := make([]string, len(opts))
	for i, o := range opts {
		lines[i] = fmt.Sprintf("%s: %s", o.Name, o.Range())
	}
	return lines
}

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/Liamolucko/wasm2ts"
	"github.com/Liamolucko/wasm2ts/dts"
	"github.com/Liamolucko/wasm2ts/errors"
)

var errorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#FF6B6B"))

type options struct {
	input       string
	output      string
	newline     string
	verbose     bool
	interactive bool
}

func main() {
	var (
		output      = flag.String("o", "", "Write declarations to file instead of stdout")
		verbose     = flag.Bool("v", false, "Log progress to stderr")
		interactive = flag.Bool("i", false, "Browse exports interactively")
		crlf        = flag.Bool("crlf", false, "Terminate lines with \\r\\n")
	)
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() > 1 {
		usage()
		os.Exit(2)
	}

	opts := options{
		input:       flag.Arg(0),
		output:      *output,
		verbose:     *verbose,
		interactive: *interactive,
	}
	if *crlf {
		opts.newline = "\r\n"
	}

	// the browser reads keys from stdin, so the module must come from a file
	if opts.interactive && opts.input == "" {
		usage()
		os.Exit(2)
	}

	// reading a terminal would block waiting for a binary nobody is typing
	if opts.input == "" && term.IsTerminal(int(os.Stdin.Fd())) {
		usage()
		os.Exit(2)
	}

	logger := newLogger(opts.verbose)
	defer logger.Sync() //nolint:errcheck

	if err := run(opts, os.Stdin, os.Stdout, logger); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: wasm2ts [-o out.d.ts] [-v] [-crlf] [file.wasm]")
	fmt.Fprintln(os.Stderr, "       wasm2ts -i file.wasm  (interactive mode)")
	fmt.Fprintln(os.Stderr, "Reads the module from stdin when no file is given.")
	fmt.Fprintln(os.Stderr)
	flag.PrintDefaults()
}

func newLogger(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func run(opts options, stdin io.Reader, stdout io.Writer, logger *zap.Logger) error {
	data, source, err := readInput(opts.input, stdin)
	if err != nil {
		return err
	}
	logger.Debug("read module", zap.String("source", source), zap.Int("bytes", len(data)))

	if opts.interactive {
		return runInteractive(source, data)
	}

	start := time.Now()
	decls, err := wasm2ts.ConvertToDeclarations(data)
	if err != nil {
		return err
	}
	var out strings.Builder
	if err := dts.Print(&out, decls, dts.PrintConfig{Newline: opts.newline}); err != nil {
		return errors.IOFailure(errors.PhaseRender, "print declarations", err)
	}
	text := out.String()
	logger.Debug("converted module",
		zap.Int("declarations", len(decls.Decls)),
		zap.Int("output_bytes", len(text)),
		zap.Duration("elapsed", time.Since(start)))

	return writeOutput(opts.output, stdout, text, logger)
}

func readInput(path string, stdin io.Reader) ([]byte, string, error) {
	if path == "" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, "<stdin>", errors.IOFailure(errors.PhaseIO, "read <stdin>", err)
		}
		return data, "<stdin>", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, errors.IOFailure(errors.PhaseIO, "read "+path, err)
	}
	return data, path, nil
}

func writeOutput(path string, stdout io.Writer, text string, logger *zap.Logger) error {
	if path == "" {
		if _, err := io.WriteString(stdout, text); err != nil {
			return errors.IOFailure(errors.PhaseIO, "write <stdout>", err)
		}
		return nil
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return errors.IOFailure(errors.PhaseIO, "write "+path, err)
	}
	logger.Debug("wrote declarations", zap.String("path", path))
	return nil
}

func reportError(w *os.File, err error) {
	msg := fmt.Sprintf("Error: %v", err)
	if term.IsTerminal(int(w.Fd())) {
		msg = errorStyle.Render(msg)
	}
	fmt.Fprintln(w, msg)
}

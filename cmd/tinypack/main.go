package main

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/tinypacks/bridge"
	"github.com/wippyai/tinypacks/codec"
	"github.com/wippyai/tinypacks/hostmem"
	"github.com/wippyai/tinypacks/packfile"
)

var (
	errUsage = stderrors.New("usage")
	errHelp  = stderrors.New("help requested")
)

type command struct {
	run   func(env *cliEnv, args []string) error
	name  string
	usage string
	help  string
}

var commands = []command{
	{name: "encode", usage: "encode [--from json|yaml|cbor] [--double] [--compress none|zstd|lz4] [-o out] [file]", help: "convert a document into packed bytes", run: runEncode},
	{name: "decode", usage: "decode [--strict] [--all] [--hex] [--to text|json|cbor] [-o out] [file]", help: "unpack bytes and print the value", run: runDecode},
	{name: "dump", usage: "dump [--hex] [file]", help: "print the annotated element tree", run: runDump},
	{name: "inspect", usage: "inspect [--hex] [file]", help: "browse elements and bytes interactively", run: runInspect},
	{name: "demo", usage: "demo", help: "pack and unpack a sample mapping", run: runDemo},
}

// cliEnv carries the process streams so commands can run under test.
type cliEnv struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	tty    bool
}

func main() {
	env := &cliEnv{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		tty:    term.IsTerminal(int(os.Stdout.Fd())),
	}
	if err := run(env, os.Args[1:]); err != nil {
		if err != errUsage {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(env *cliEnv, args []string) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printUsage(env.stderr)
		if len(args) == 0 {
			return errUsage
		}
		return nil
	}
	for _, c := range commands {
		if c.name == args[0] {
			if err := c.run(env, args[1:]); err != errHelp {
				return err
			}
			return nil
		}
	}
	fmt.Fprintf(env.stderr, "unknown command %q\n\n", args[0])
	printUsage(env.stderr)
	return errUsage
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tinypack <command> [flags]")
	fmt.Fprintln(w)
	for _, c := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", c.name, c.help)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Every command accepts -v/--verbose for debug logging.")
}

// newFlags builds a flag set with the flags every command shares.
func newFlags(env *cliEnv, c string) (*pflag.FlagSet, *bool) {
	fs := pflag.NewFlagSet(c, pflag.ContinueOnError)
	fs.SetOutput(env.stderr)
	fs.Usage = func() {
		for _, cmd := range commands {
			if cmd.name == c {
				fmt.Fprintf(env.stderr, "Usage: tinypack %s\n\n", cmd.usage)
			}
		}
		fs.PrintDefaults()
	}
	verbose := fs.BoolP("verbose", "v", false, "log debug output to stderr")
	return fs, verbose
}

func parse(fs *pflag.FlagSet, verbose *bool, args []string) error {
	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return errHelp
		}
		return errUsage
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return errUsage
	}
	if *verbose {
		log, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		codec.SetLogger(log)
		bridge.SetLogger(log)
		packfile.SetLogger(log)
		hostmem.SetLogger(log)
	}
	return nil
}

// readInput reads the named file, or stdin for "" and "-". With hexText
// the input is hex digits, whitespace ignored.
func readInput(env *cliEnv, path string, hexText bool) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(env.stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if hexText {
		return parseHex(string(data))
	}
	return data, nil
}

func writeOutput(env *cliEnv, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := env.stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// formatFor picks a document format from a flag value or a file extension.
func formatFor(flagValue, path string) string {
	if flagValue != "" {
		return flagValue
	}
	switch {
	case strings.HasSuffix(path, ".yaml"), strings.HasSuffix(path, ".yml"):
		return "yaml"
	case strings.HasSuffix(path, ".cbor"):
		return "cbor"
	}
	return "json"
}

//go:build !js
// +build !js

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"rui/bytecode"
	"rui/config"
	"rui/input"
	"rui/inter"
	"rui/log"
)

const usage = `usage: rui [flags] <program> [input...]

Runs a Rui program. Inputs are non-negative integers consumed in order by r.
Without a program, rui starts an interactive session.

`

const (
	exitOK = iota
	exitFailure
	exitSyntax
	exitSource
	exitInvalidTarget
	exitInputExhausted
	exitOutputEncoding
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("rui", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}
	var (
		settings   config.Run
		configPath string
		format     bool
	)
	fs.BoolVar(&settings.Ascii, "ascii", false, "output characters, treating numbers as Unicode code points")
	fs.BoolVar(&settings.Ascii, "a", false, "shorthand for -ascii")
	fs.BoolVar(&settings.Prompt, "prompt", false, "prompt on the terminal when the supplied input runs out")
	fs.BoolVar(&settings.Debug, "debug", false, "print the program listing, trace execution and report timing")
	fs.StringVar(&settings.LogLevel, "log-level", "", "diagnostic log level (default warn)")
	fs.Uint64Var(&settings.MaxTicks, "max-ticks", 0, "stop after this many ticks (0 means no limit)")
	fs.BoolVar(&format, "fmt", false, "print the program in canonical form and exit")
	fs.StringVar(&configPath, "config", "", "YAML run configuration")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitFailure
	}

	explicit := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			fmt.Fprintf(stderr, "rui: %v\n", err)
			return exitFailure
		}
		// Flags given explicitly win over the file.
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "ascii", "a":
				loaded.Ascii = settings.Ascii
			case "prompt":
				loaded.Prompt = settings.Prompt
			case "debug":
				loaded.Debug = settings.Debug
			case "log-level":
				loaded.LogLevel = settings.LogLevel
			case "max-ticks":
				loaded.MaxTicks = settings.MaxTicks
			}
		})
		settings = *loaded
	}
	if fs.NArg() > 0 {
		settings.Program = fs.Arg(0)
	}
	if fs.NArg() > 1 {
		settings.Input = nil
		for _, arg := range fs.Args()[1:] {
			v, err := inter.ParseValue(arg)
			if err != nil {
				fmt.Fprintf(stderr, "rui: input %v\n", err)
				return exitFailure
			}
			settings.Input = append(settings.Input, v)
		}
	}

	// -debug on the command line outranks a configured level, but not an
	// explicit -log-level.
	if explicit["debug"] && settings.Debug && !explicit["log-level"] {
		settings.LogLevel = "debug"
	}
	if err := setupLogging(&settings, stderr); err != nil {
		fmt.Fprintf(stderr, "rui: %v\n", err)
		return exitFailure
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if settings.Program == "" {
		return repl(ctx, &settings, stdout, stderr)
	}

	program, err := bytecode.LoadFile(settings.Program)
	if err != nil {
		return fail(stderr, err)
	}
	if format {
		fmt.Fprint(stdout, program.String())
		return exitOK
	}
	if settings.Debug {
		log.CLI.Debug().Str("program", settings.Program).Msg("listing\n" + program.Listing())
	}

	var fallback inter.Input
	if settings.Prompt {
		p, err := input.NewPrompt("r> ")
		if err != nil {
			return fail(stderr, err)
		}
		defer p.Close()
		fallback = p
	}
	return fail(stderr, execute(ctx, program, &settings, stdout, fallback))
}

func setupLogging(settings *config.Run, out io.Writer) error {
	if settings.Debug && settings.LogLevel == "" {
		settings.LogLevel = "debug"
	}
	level, err := log.ParseLogLevel(settings.LogLevel)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	log.Init(log.Options{LogLevel: level, Type: log.ConsoleLogger, Out: out})
	return nil
}

// execute runs program with the settings' input queue, followed by fallback
// when it is not nil.
func execute(ctx context.Context, program bytecode.Program, settings *config.Run, stdout io.Writer, fallback inter.Input) error {
	var source inter.Input = inter.NewQueue(settings.Input...)
	if fallback != nil {
		source = inter.Fallback(source, fallback)
	}
	in := inter.NewInterpreter(program, inter.Options{
		Mode:     settings.Mode(),
		Input:    source,
		Output:   stdout,
		Log:      &log.VM,
		MaxTicks: settings.MaxTicks,
	})
	if settings.Debug {
		defer timer("interpreter")()
	}
	err := in.Run(ctx)
	stats := in.Stats()
	log.CLI.Debug().
		Uint64("ticks", stats.Ticks).
		Uint64("instructions", stats.Instructions).
		Int("peak_threads", stats.PeakThreads).
		Msg("run finished")
	return err
}

func timer(name string) func() {
	start := time.Now()
	return func() {
		log.CLI.Debug().Dur("took", time.Since(start)).Msg(name)
	}
}

// fail reports err on stderr and maps it to an exit status.
func fail(stderr io.Writer, err error) int {
	if err == nil {
		return exitOK
	}
	fmt.Fprintf(stderr, "rui: %v\n", err)
	return exitCode(err)
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, bytecode.ErrSyntax):
		return exitSyntax
	case errors.Is(err, bytecode.ErrSourceUnavailable):
		return exitSource
	case errors.Is(err, inter.ErrInvalidTarget):
		return exitInvalidTarget
	case errors.Is(err, inter.ErrInputExhausted):
		return exitInputExhausted
	case errors.Is(err, inter.ErrOutputEncoding):
		return exitOutputEncoding
	}
	return exitFailure
}

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/panjf2000/ants/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fogfactory/linepipe"
	"github.com/fogfactory/linepipe/internal/config"
	"github.com/fogfactory/linepipe/internal/logging"
	"github.com/fogfactory/linepipe/stages"
)

const (
	exitOK    = 0
	exitUsage = 1
	exitInit  = 2
)

// exitError carries the process exit code of a failure already reported to the user.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg := config.LoadOrDefault()
	logCfg := logging.DefaultConfig()
	logCfg.Level, logCfg.Development = cfg.Logging.Level, cfg.Logging.Development
	logger, err := logging.New(logCfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error: invalid logging configuration: %v\n", err)
		return exitUsage
	}
	defer func() { _ = logger.Sync() }()

	cmd := rootCmd(cfg, logger)
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			return exit.code
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}
	return exitOK
}

func rootCmd(cfg *config.Config, logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "analyzer <queue_size> <stage1> <stage2> ... <stageN>",
		Short: "Run the lines of stdin through a chain of text stages",
		Long: `analyzer feeds every line of stdin through a chain of stages, each one with its own
bounded queue and goroutine, until a line reading <END> or the end of input.`,
		// queue_size may look like a flag ("-1"): arguments are validated by analyze.
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return analyze(cmd, args, cfg, logger)
		},
	}
}

func analyze(cmd *cobra.Command, args []string, cfg *config.Config, logger *zap.Logger) error {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	env := stages.Env{
		Console:         stages.NewConsole(stdout),
		TypewriterDelay: cfg.Typewriter.DelayOr(stages.DefaultTypewriterDelay),
	}

	if len(args) < 2 {
		return fail(cmd, stages.NewRegistry(env, logger), exitUsage, errors.New("not enough arguments"), "Not enough arguments.")
	}
	capacity, err := strconv.Atoi(args[0])
	if err != nil || capacity <= 0 {
		return fail(cmd, stages.NewRegistry(env, logger), exitUsage, linepipe.ErrInvalidCapacity, "Queue size must be a positive integer.")
	}

	metrics, serveMetrics, err := newMetrics(cfg.Metrics.Address, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to set up metrics: %v\n", err)
		return &exitError{code: exitUsage, err: err}
	}
	defer serveMetrics()

	// One goroutine per stage plus the feeder.
	workers, err := linepipe.NewWorkersWithOptions(len(args), ants.WithPanicHandler(func(p any) {
		logger.Error("worker panicked", zap.Any("panic", p))
	}))
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to allocate workers: %v\n", err)
		return &exitError{code: exitUsage, err: err}
	}
	defer workers.Release()

	opts := []linepipe.Option{
		linepipe.WithLogger(logger),
		linepipe.WithMetrics(metrics),
		linepipe.WithWorkers(workers),
	}
	return execute(cmd, stages.NewRegistry(env, logger, opts...), capacity, args[1:], logger, opts...)
}

// execute runs the named stages of registry over the command input and maps the pipeline outcome to an exit code.
func execute(cmd *cobra.Command, registry *stages.Registry, capacity int, names []string, logger *zap.Logger, opts ...linepipe.Option) error {
	pipeline, err := linepipe.New(registry, capacity, names, opts...)
	if err != nil {
		return fail(cmd, registry, exitUsage, err, "%v", err)
	}

	err = pipeline.Run(cmd.InOrStdin())
	var stageErr *linepipe.StageError
	switch {
	case err == nil:
	case errors.Is(err, linepipe.ErrLoad) && errors.As(err, &stageErr):
		return fail(cmd, registry, exitUsage, err, "failed to load stage %s: %v", stageErr.Stage, stageErr.Err)
	case errors.Is(err, linepipe.ErrInit) && errors.As(err, &stageErr):
		return fail(cmd, registry, exitInit, err, "failed to initialize stage %s: %v", stageErr.Stage, stageErr.Err)
	case errors.Is(err, linepipe.ErrFeeder):
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return &exitError{code: exitUsage, err: err}
	default:
		// Teardown is best effort: every stage has been released anyway.
		logger.Warn("pipeline teardown incomplete", zap.Error(err))
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Pipeline shutdown complete")
	return nil
}

// fail reports a startup failure followed by the usage text.
func fail(cmd *cobra.Command, registry *stages.Registry, code int, err error, format string, a ...any) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: "+format+"\n", a...)
	printUsage(cmd.OutOrStdout(), registry)
	return &exitError{code: code, err: err}
}

func printUsage(w io.Writer, registry *stages.Registry) {
	fmt.Fprintln(w, "Usage: ./analyzer <queue_size> <stage1> <stage2> ... <stageN>")
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  queue_size    Maximum number of items in each stage's queue")
	fmt.Fprintln(w, "  stage1..N     Names of stages to chain, a name may be repeated")
	fmt.Fprintln(w, "Available stages:")
	for _, name := range registry.Names() {
		fmt.Fprintf(w, "  %-10s - %s\n", name, registry.Description(name))
	}
	fmt.Fprintln(w, "Example:")
	fmt.Fprintln(w, "  ./analyzer 20 uppercaser rotator logger")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  echo 'hello' | ./analyzer 20 uppercaser rotator logger")
	fmt.Fprintln(w, "  echo '<END>' | ./analyzer 20 uppercaser rotator logger")
}

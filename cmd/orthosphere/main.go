package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/caiodallaqua/orthosphere/internal/config"
	"github.com/caiodallaqua/orthosphere/internal/progress"
	"github.com/caiodallaqua/orthosphere/internal/report"
	"github.com/caiodallaqua/orthosphere/internal/sweep"
)

const (
	PHASE_ALL    = "all"
	PHASE_ANGLES = "angles"
	PHASE_SEARCH = "search"
)

type entrypoint struct {
	cfg     *config.Config
	phase   string
	logger  *slog.Logger
	report  *report.Writer
	sweeper *sweep.Sweeper
}

type options struct {
	configPath string
	phase      string
	logLevel   string
	dims       string
	progress   bool

	seed        uint64
	workers     int
	policy      string
	fold        bool
	vectors     uint32
	tolerance   float64
	attempts    uint32
	maxSamples  uint64
	explicitSet map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{explicitSet: make(map[string]bool)}
	defaults := config.Default()

	fs := flag.NewFlagSet("orthosphere", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.configPath, "config", "", "path to a YAML sweep config")
	fs.StringVar(&opts.phase, "phase", PHASE_ALL, "phases to run: all, angles or search")
	fs.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	fs.StringVar(&opts.dims, "dims", "", "comma separated dimensions to sweep")
	fs.BoolVar(&opts.progress, "progress", progress.DefaultEnabled(), "show a spinner during the search phase")
	fs.Uint64Var(&opts.seed, "seed", 0, "seed for a reproducible run")
	fs.IntVar(&opts.workers, "workers", defaults.Workers, "dimensions processed concurrently")
	fs.StringVar(&opts.policy, "policy", defaults.Policy, "bound policy: doubling or rankin")
	fs.BoolVar(&opts.fold, "fold", defaults.Angles.FoldReflection, "fold angles into [0, 90] degrees")
	fs.Var(newUint32Value(defaults.Angles.NumVectors, &opts.vectors), "vectors", "random vectors per dimension")
	fs.Float64Var(&opts.tolerance, "tolerance", defaults.Search.Tolerance, "degrees from 90 still considered orthogonal")
	fs.Var(newUint32Value(defaults.Search.MaxAttempts, &opts.attempts), "attempts", "consecutive rejections before giving up")
	fs.Uint64Var(&opts.maxSamples, "max-samples", defaults.Search.MaxSamples, "total samples per dimension, 0 for no cap")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		opts.explicitSet[f.Name] = true
	})

	return opts, nil
}

// uint32Value is a flag.Value that rejects anything outside the uint32 range.
type uint32Value uint32

func newUint32Value(val uint32, p *uint32) *uint32Value {
	*p = val
	return (*uint32Value)(p)
}

func (v *uint32Value) Set(s string) error {
	parsed, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return err
	}

	*v = uint32Value(parsed)
	return nil
}

func (v *uint32Value) String() string {
	if v == nil {
		return "0"
	}

	return strconv.FormatUint(uint64(*v), 10)
}

// loadConfig starts from the config file, or the defaults, and applies the
// flags that were set explicitly.
func (opts *options) loadConfig() (*config.Config, error) {
	cfg := config.Default()

	if opts.configPath != "" {
		loaded, err := config.LoadFromFile(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	set := opts.explicitSet

	if set["dims"] {
		dims, err := config.ParseDimensions(opts.dims)
		if err != nil {
			return nil, err
		}
		cfg.Dimensions = dims
	}
	if set["seed"] {
		seed := opts.seed
		cfg.Seed = &seed
	}
	if set["workers"] {
		cfg.Workers = opts.workers
	}
	if set["policy"] {
		cfg.Policy = opts.policy
	}
	if set["fold"] {
		cfg.Angles.FoldReflection = opts.fold
	}
	if set["vectors"] {
		cfg.Angles.NumVectors = opts.vectors
	}
	if set["tolerance"] {
		cfg.Search.Tolerance = opts.tolerance
	}
	if set["attempts"] {
		cfg.Search.MaxAttempts = opts.attempts
	}
	if set["max-samples"] {
		cfg.Search.MaxSamples = opts.maxSamples
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseLevel(name string) (slog.Level, error) {
	var level slog.Level

	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", name, err)
	}

	return level, nil
}

func newEntrypoint(logger *slog.Logger, out io.Writer, cfg *config.Config, phase string, showProgress bool, stderr io.Writer) (*entrypoint, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	switch phase {
	case PHASE_ALL, PHASE_ANGLES, PHASE_SEARCH:
	default:
		return nil, fmt.Errorf("unknown phase %q", phase)
	}

	sweeper, err := sweep.New(cfg,
		sweep.WithLogger(logger),
		sweep.WithProgress(progress.NewSearchProgress(showProgress, stderr)),
	)
	if err != nil {
		logger.Error("unable to create sweeper", "function", "newEntrypoint", "error", err)
		return nil, err
	}

	return &entrypoint{
		cfg:     cfg,
		phase:   phase,
		logger:  logger,
		report:  report.New(out),
		sweeper: sweeper,
	}, nil
}

func (entry *entrypoint) run(ctx context.Context) error {
	logDebug := entry.logger.With("function", "run")

	if err := entry.report.RunHeader(entry.sweeper.RunID(), entry.cfg.BoundPolicy().String()); err != nil {
		logDebug.Error("unable to write run header", "error", err.Error())
		return err
	}

	if entry.phase != PHASE_SEARCH {
		entry.logger.Info("measuring angle distributions", "dimensions", len(entry.cfg.Dimensions))
		rows, err := entry.sweeper.Angles(ctx)
		if err != nil {
			logDebug.Error("unable to measure angles", "error", err.Error())
			return err
		}

		if err := entry.report.Angles(entry.cfg.Angles.NumVectors, rows); err != nil {
			logDebug.Error("unable to write angle report", "error", err.Error())
			return err
		}
	}

	if entry.phase != PHASE_ANGLES {
		entry.logger.Info("searching near-orthogonal sets", "dimensions", len(entry.cfg.Dimensions))
		rows, err := entry.sweeper.Search(ctx)
		if err != nil {
			logDebug.Error("unable to search near-orthogonal sets", "error", err.Error())
			return err
		}

		if err := entry.report.Search(entry.cfg.Search.Tolerance, entry.cfg.Search.MaxAttempts, rows); err != nil {
			logDebug.Error("unable to write search report", "error", err.Error())
			return err
		}
	}

	return nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	level, err := parseLevel(opts.logLevel)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	logDebug := logger.With("function", "main")

	cfg, err := opts.loadConfig()
	if err != nil {
		logDebug.Error("unable to load config", "error", err.Error())
		return 1
	}

	entry, err := newEntrypoint(logger, stdout, cfg, strings.ToLower(opts.phase), opts.progress, stderr)
	if err != nil {
		logDebug.Error("unable to create entrypoint", "error", err.Error())
		return 1
	}
	logger.Info("sweep starting", "run_id", entry.sweeper.RunID(), "workers", cfg.Workers, "policy", cfg.Policy)

	if err := entry.run(ctx); err != nil {
		logDebug.Error("sweep failed", "error", err.Error())
		return 1
	}

	return 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)

	stop()
	os.Exit(code)
}

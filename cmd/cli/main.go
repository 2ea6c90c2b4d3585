package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"transit-lc/internal/analysis"
	"transit-lc/internal/config"
	"transit-lc/internal/harness"
	"transit-lc/internal/lightcurve"
	"transit-lc/internal/logging"
	"transit-lc/internal/model"
	"transit-lc/internal/report"
	"transit-lc/internal/suite"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, logging.ConfigureRuntime())
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, logger zerolog.Logger) int {
	if len(args) < 1 {
		usage(stderr)
		return exitUsage
	}

	switch args[0] {
	case "check":
		return cmdCheck(ctx, "check", args[1:], stdout, stderr, logger)
	case "sweep":
		return cmdCheck(ctx, "sweep", args[1:], stdout, stderr, logger)
	case "curve":
		return cmdCurve(args[1:], stdout, stderr, logger)
	default:
		usage(stderr)
		return exitUsage
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage:")
	fmt.Fprintln(w, "  cli check --config examples/suite.yaml [--workers 4] [--timeout 30s] [--report results/summary.json]")
	fmt.Fprintln(w, "  cli sweep --config examples/suite.yaml")
	fmt.Fprintln(w, "  cli curve --config examples/suite.yaml --out results/curve.csv [--model quad]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "notes:")
	fmt.Fprintln(w, "  - check runs the batched, sweep and idempotence scenarios; sweep runs only the radius x order grid")
	fmt.Fprintln(w, "  - exit code is 0 when every scenario passes, 1 on any failure, 2 on usage or config errors")
	fmt.Fprintln(w, "  - without --config the built-in two-planet system is used")
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		c := &config.Config{}
		c.ApplyDefaults()
		return c, c.Validate()
	}
	return config.Load(path)
}

func cmdCheck(ctx context.Context, name string, args []string, stdout, stderr io.Writer, logger zerolog.Logger) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", "", "Path to suite config (YAML or TOML)")
	workers := fs.Int("workers", 0, "Override runner.workers (0 = use config)")
	timeout := fs.Duration("timeout", 0, "Override runner.timeout per scenario (0 = use config)")
	reportPath := fs.String("report", "", "Optional path to write a JSON summary")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return exitUsage
	}
	opts, err := cfg.RunnerOptions()
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return exitUsage
	}
	if *workers > 0 {
		opts.Workers = *workers
	}
	if *timeout > 0 {
		opts.Timeout = *timeout
	}

	sys := cfg.SuiteSystem()
	var scenarios []harness.Scenario
	if name == "sweep" {
		scenarios = suite.Sweep(sys, cfg.Grid(), cfg.Tol())
	} else {
		scenarios = suite.Build(sys, cfg.Grid(), cfg.Tol())
	}

	runID := uuid.NewString()
	started := time.Now()
	logger.Info().
		Str("run_id", runID).
		Int("scenarios", len(scenarios)).
		Int("workers", opts.Workers).
		Dur("timeout", opts.Timeout).
		Msg("running scenarios")

	summary := harness.NewRunner(opts, logger).Run(ctx, scenarios)
	for _, r := range summary.Results {
		if r.Passed() {
			fmt.Fprintf(stdout, "PASS %s (%s)\n", r.Scenario, r.Duration.Round(time.Microsecond))
			continue
		}
		fmt.Fprintf(stdout, "FAIL %s\n", r.Err)
	}
	passed, failed := summary.Counts()
	fmt.Fprintf(stdout, "%d passed, %d failed\n", passed, failed)

	if *reportPath != "" {
		if err := os.MkdirAll(filepath.Dir(*reportPath), 0o755); err != nil {
			fmt.Fprintf(stderr, "report: %v\n", err)
			return exitFailed
		}
		if err := report.WriteSummaryJSON(*reportPath, report.NewSummary(runID, started, cfg.Tol(), summary)); err != nil {
			fmt.Fprintf(stderr, "report: %v\n", err)
			return exitFailed
		}
		fmt.Fprintf(stdout, "Wrote summary to %s\n", *reportPath)
	}
	return summary.ExitCode()
}

func cmdCurve(args []string, stdout, stderr io.Writer, logger zerolog.Logger) int {
	fs := flag.NewFlagSet("curve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", "", "Path to suite config (YAML or TOML)")
	outPath := fs.String("out", "results/curve.csv", "Output CSV path")
	modelName := fs.String("model", lightcurve.NameQuad, "Light curve model: quad, limbdark or uniform")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return exitUsage
	}
	sys := cfg.SuiteSystem()

	u := sys.LimbDarkening
	if *modelName == lightcurve.NameUniform {
		u = nil
	}
	lcModel, err := lightcurve.New(*modelName, u)
	if err != nil {
		fmt.Fprintf(stderr, "model: %v\n", err)
		return exitUsage
	}
	orbit, err := model.NewOrbit(sys.Central, sys.Orbit)
	if err != nil {
		fmt.Fprintf(stderr, "orbit: %v\n", err)
		return exitFailed
	}
	curve, err := lcModel.LightCurve(orbit, sys.Times)
	if err != nil {
		fmt.Fprintf(stderr, "light curve: %v\n", err)
		return exitFailed
	}

	names := cfg.System.BodyNames()
	// ensure output dir exists
	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		fmt.Fprintf(stderr, "write: %v\n", err)
		return exitFailed
	}
	if err := report.WriteCurveCSV(*outPath, sys.Times, curve, names); err != nil {
		fmt.Fprintf(stderr, "write: %v\n", err)
		return exitFailed
	}
	logger.Debug().Str("model", lcModel.Name()).Str("out", *outPath).Msg("curve written")
	fmt.Fprintf(stdout, "Wrote %d samples x %d bodies to %s\n", len(sys.Times), orbit.Len(), *outPath)

	summaries, err := analysis.Summarize(orbit, sys.Times, curve)
	if err != nil {
		fmt.Fprintf(stderr, "summary: %v\n", err)
		return exitFailed
	}
	fmt.Fprintf(stdout, "%-4s %-10s %-12s %-10s %-10s\n", "rank", "body", "depth", "duration", "t_min")
	for i, s := range analysis.RankByDepth(analysis.Named(summaries, names)) {
		fmt.Fprintf(stdout, "%-4d %-10s %-12.6g %-10.4f %-10.4f\n", i+1, s.Name, s.Depth, s.Duration, s.TimeOfMinimum)
	}
	return exitOK
}

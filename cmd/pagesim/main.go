package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/tuannm99/pagesim/internal"
	"github.com/tuannm99/pagesim/internal/metrics"
	"github.com/tuannm99/pagesim/internal/page"
	"github.com/tuannm99/pagesim/internal/sim"
	"github.com/tuannm99/pagesim/internal/trace"
)

const usage = `usage: pagesim <command> [flags]

commands:
  run    simulate every policy x frame size over a reference string
  repl   step through accesses interactively
  gen    write a random reference string to a trace file

run "pagesim <command> -h" for command flags`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "run":
		err = runCmd(os.Args[2:])
	case "repl":
		err = replCmd(os.Args[2:])
	case "gen":
		err = genCmd(os.Args[2:])
	case "-h", "--help", "help":
		fmt.Println(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s\n", os.Args[1], usage)
		os.Exit(2)
	}

	if err != nil {
		log.Fatalf("pagesim %s: %v", os.Args[1], err)
	}
}

func setupLogger(cfg *internal.PageSimConfig) {
	level, err := cfg.LogLevel()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
	if err != nil {
		slog.Warn(err.Error())
	}
}

// runFlags are the run command's flags. Only flags set on the command line
// override the config file.
type runFlags struct {
	fs          *flag.FlagSet
	configPath  *string
	ref         *string
	traceFile   *string
	frameSizes  *string
	policies    *string
	seed        *uint64
	parallelism *int
	reset       *int
	metricsAddr *string
}

func newRunFlags() *runFlags {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	return &runFlags{
		fs:          fs,
		configPath:  fs.String("config", "", "YAML config file"),
		ref:         fs.String("ref", "", `reference string, e.g. "1 2 3w 1"`),
		traceFile:   fs.String("trace", "", "trace file (.txt, .sz, .lz4)"),
		frameSizes:  fs.String("frames", "", "comma separated frame sizes"),
		policies:    fs.String("policies", "", "comma separated policies"),
		seed:        fs.Uint64("seed", 1, "NRU random seed"),
		parallelism: fs.Int("parallelism", 4, "concurrent runs (0 = unbounded)"),
		reset:       fs.Int("reference-reset", 0, "clear referenced bits every n accesses"),
		metricsAddr: fs.String("metrics-addr", "", "serve Prometheus metrics on this address after the sweep"),
	}
}

// apply copies every explicitly set flag into cfg.
func (f *runFlags) apply(cfg *internal.PageSimConfig) error {
	var err error
	f.fs.Visit(func(fl *flag.Flag) {
		if err != nil {
			return
		}
		switch fl.Name {
		case "ref":
			cfg.Reference, cfg.TraceFile = *f.ref, ""
		case "trace":
			cfg.TraceFile, cfg.Reference = *f.traceFile, ""
		case "frames":
			var sizes []int
			if sizes, err = parseInts(*f.frameSizes); err == nil {
				cfg.FrameSizes = sizes
			}
		case "policies":
			cfg.Policies = splitList(*f.policies)
		case "seed":
			cfg.Seed = *f.seed
		case "parallelism":
			cfg.Parallelism = *f.parallelism
		case "reference-reset":
			cfg.ReferenceReset = *f.reset
		case "metrics-addr":
			cfg.Metrics.Addr = *f.metricsAddr
		}
	})
	return err
}

func runCmd(args []string) error {
	f := newRunFlags()
	_ = f.fs.Parse(args)

	cfg, err := internal.LoadConfig(*f.configPath)
	if err != nil {
		return err
	}
	if err := f.apply(cfg); err != nil {
		return err
	}

	setupLogger(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	accesses, err := loadAccesses(cfg)
	if err != nil {
		return err
	}

	rec, err := metrics.NewRecorder()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	results, err := sim.Sweep(ctx, sim.SweepConfig{
		Policies:      cfg.Policies,
		FrameSizes:    cfg.FrameSizes,
		Accesses:      accesses,
		Seed:          cfg.Seed,
		Parallelism:   cfg.Parallelism,
		ResetInterval: cfg.ReferenceReset,
		Observer:      rec,
	})
	if err != nil {
		return err
	}
	slog.Info("sweep done", "runs", len(results), "accesses", len(accesses), "elapsed", time.Since(start))

	printResults(accesses, results)

	if cfg.Metrics.Addr == "" {
		return nil
	}
	return serveMetrics(ctx, cfg.Metrics.Addr, rec)
}

func loadAccesses(cfg *internal.PageSimConfig) ([]page.Access, error) {
	if cfg.TraceFile != "" {
		return trace.ReadFile(cfg.TraceFile)
	}
	return trace.Parse(cfg.Reference)
}

func printResults(accesses []page.Access, results []sim.Result) {
	fmt.Printf("Ran With: [%s]\n", trace.Format(accesses))

	width := 0
	for _, r := range results {
		width = max(width, len(r.Policy))
	}
	for _, r := range results {
		fmt.Printf("| %-*s frames=%-3d %s hit_ratio=%.3f\n",
			width, r.Policy, r.FrameSize, r.Report, r.Report.HitRatio())
	}
}

func serveMetrics(ctx context.Context, addr string, rec *metrics.Recorder) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", rec.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func genCmd(args []string) error {
	fs := flag.NewFlagSet("gen", flag.ExitOnError)
	var (
		n          = fs.Int("n", 1000, "number of accesses")
		pages      = fs.Int("pages", 16, "distinct page numbers [0, pages)")
		writeRatio = fs.Float64("write-ratio", 0, "probability an access is a write")
		seed       = fs.Uint64("seed", 1, "random seed")
		out        = fs.String("o", "trace.txt", "output file (.txt, .sz, .lz4)")
	)
	_ = fs.Parse(args)

	if *n <= 0 || *pages <= 0 {
		return fmt.Errorf("n and pages must be positive")
	}

	accesses := trace.Random(rand.New(rand.NewPCG(*seed, 0)), *n, *pages, *writeRatio)
	if err := trace.WriteFile(*out, accesses); err != nil {
		return err
	}

	fmt.Printf("wrote %d accesses to %s (%s)\n", len(accesses), *out, trace.CodecFor(*out))
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseInts(s string) ([]int, error) {
	parts := splitList(s)
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid frame size %q", p)
		}
		out = append(out, v)
	}
	return out, nil
}

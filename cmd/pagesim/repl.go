package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"github.com/tuannm99/pagesim/internal"
	"github.com/tuannm99/pagesim/internal/frames"
	"github.com/tuannm99/pagesim/internal/page"
	"github.com/tuannm99/pagesim/internal/replacer"
	"github.com/tuannm99/pagesim/internal/sim"
	"github.com/tuannm99/pagesim/internal/trace"
)

const replHelp = `meta commands:
  \q | quit | exit       quit
  \frames                show resident pages
  \report                show hits/faults/evictions so far
  \reset                 empty the frames and the report
  \history               print input history
  \help                  show help

input:
  page numbers separated by spaces or commas, suffix w marks a write (e.g. 1 2w 3)`

// session is one interactive table plus its running report.
type session struct {
	table  *frames.Table
	report sim.Report
	out    io.Writer
}

// feed applies every access on line and returns them once all succeeded.
func (s *session) feed(line string) ([]page.Access, error) {
	accesses, err := trace.Parse(line)
	if err != nil {
		return nil, err
	}
	for _, a := range accesses {
		step, err := s.table.Apply(a.Number, a.Write)
		if err != nil {
			return nil, err
		}
		s.report = s.report.With(step.Outcome)

		if step.Outcome == frames.FaultEvicted {
			fmt.Fprintf(s.out, "%-5s %-11s victim=%-4d %v\n", a, step.Outcome, step.Victim, s.table.Resident())
		} else {
			fmt.Fprintf(s.out, "%-5s %-11s             %v\n", a, step.Outcome, s.table.Resident())
		}
	}
	return accesses, nil
}

func (s *session) reset() {
	s.table.Reset()
	s.report = sim.Report{}
}

// replFlags mirror runFlags: set flags win over the config file, the config's
// first policy and frame size are the defaults.
type replFlags struct {
	fs         *flag.FlagSet
	configPath *string
	policy     *string
	frameSize  *int
	seed       *uint64
	reset      *int
	histPath   *string
	histMax    *int
}

func newReplFlags() *replFlags {
	fs := flag.NewFlagSet("repl", flag.ExitOnError)
	return &replFlags{
		fs:         fs,
		configPath: fs.String("config", "", "YAML config file"),
		policy:     fs.String("policy", replacer.FIFOName, "replacement policy (default: first configured policy)"),
		frameSize:  fs.Int("frames", 3, "frame size (default: first configured frame size)"),
		seed:       fs.Uint64("seed", 1, "NRU random seed"),
		reset:      fs.Int("reference-reset", 0, "clear referenced bits every n accesses"),
		histPath:   fs.String("history", defaultHistoryPath(), "history file path"),
		histMax:    fs.Int("history-max", 2000, "max history entries loaded into memory"),
	}
}

type replSettings struct {
	policy    string
	frameSize int
	seed      uint64
	reset     int
}

func (f *replFlags) settings(cfg *internal.PageSimConfig) replSettings {
	st := replSettings{
		policy:    replacer.FIFOName,
		frameSize: 3,
		seed:      cfg.Seed,
		reset:     cfg.ReferenceReset,
	}
	if len(cfg.Policies) > 0 {
		st.policy = cfg.Policies[0]
	}
	if len(cfg.FrameSizes) > 0 {
		st.frameSize = cfg.FrameSizes[0]
	}

	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "policy":
			st.policy = *f.policy
		case "frames":
			st.frameSize = *f.frameSize
		case "seed":
			st.seed = *f.seed
		case "reference-reset":
			st.reset = *f.reset
		}
	})
	return st
}

func replCmd(args []string) error {
	f := newReplFlags()
	_ = f.fs.Parse(args)

	cfg, err := internal.LoadConfig(*f.configPath)
	if err != nil {
		return err
	}
	setupLogger(cfg)
	st := f.settings(cfg)

	policy, err := replacer.New(st.policy, rand.New(rand.NewPCG(st.seed, 0)))
	if err != nil {
		return err
	}
	table, err := frames.New(st.frameSize, policy, frames.WithReferenceReset(st.reset))
	if err != nil {
		return err
	}
	s := &session{table: table, out: os.Stdout}

	h := NewHistory(*f.histPath)
	if err := h.Load(*f.histMax); err != nil {
		slog.Warn("repl: history not loaded", "path", *f.histPath, "err", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "pagesim> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer func() { _ = rl.Close() }()

	for _, e := range h.entries {
		_ = rl.SaveHistory(trace.Format(e))
	}

	fmt.Printf("policy=%s frames=%d reference_reset=%d\n", policy.Name(), table.Size(), st.reset)
	fmt.Println("type \\help for help")

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			fmt.Println("^C")
			continue
		}
		if err != nil {
			// EOF
			fmt.Println()
			return nil
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if cmd, ok := metaCommand(line); ok {
			switch cmd {
			case "q":
				return nil
			case "help":
				fmt.Println(replHelp)
			case "frames":
				fmt.Println(table.Resident())
			case "report":
				fmt.Println(s.report)
			case "reset":
				s.reset()
				fmt.Println("OK")
			case "history":
				h.Print(os.Stdout, 50)
			default:
				fmt.Printf("unknown command: %s\n", line)
			}
			continue
		}

		accesses, err := s.feed(line)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			if errors.Is(err, frames.ErrInvariantViolation) {
				// The table is no longer trustworthy.
				s.reset()
			}
			continue
		}
		if err := h.Append(accesses); err != nil {
			slog.Warn("repl: history not saved", "err", err)
		}
	}
}

// metaCommand recognises \name commands plus the bare quit/exit words.
func metaCommand(line string) (string, bool) {
	switch line = strings.TrimSpace(line); {
	case line == "quit" || line == "exit" || line == "\\q":
		return "q", true
	case strings.HasPrefix(line, "\\"):
		return strings.TrimPrefix(line, "\\"), true
	}
	return "", false
}

// History keeps the access batches entered in the REPL, one formatted
// reference string per line in the history file.
type History struct {
	path    string
	entries [][]page.Access
}

func NewHistory(path string) *History {
	return &History{path: path}
}

// Load reads at most max recent entries (0 = all). Lines that no longer
// parse as a reference string are skipped.
func (h *History) Load(max int) error {
	if h.path == "" {
		return nil
	}
	f, err := os.Open(h.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer func() { _ = f.Close() }()

	br := bufio.NewReader(f)
	for {
		line, rerr := br.ReadString('\n')
		if accesses, err := trace.Parse(line); err == nil && len(accesses) > 0 {
			h.entries = append(h.entries, accesses)
		}
		if rerr != nil {
			if errors.Is(rerr, io.EOF) {
				break
			}
			return rerr
		}
	}

	if max > 0 && len(h.entries) > max {
		h.entries = h.entries[len(h.entries)-max:]
	}
	return nil
}

func (h *History) Append(accesses []page.Access) error {
	if len(accesses) == 0 {
		return nil
	}
	h.entries = append(h.entries, accesses)
	if h.path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(h.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	_, err = fmt.Fprintln(f, trace.Format(accesses))
	return err
}

// Print lists the last entries with their access and write counts.
func (h *History) Print(w io.Writer, last int) {
	if last <= 0 || last > len(h.entries) {
		last = len(h.entries)
	}
	for i := len(h.entries) - last; i < len(h.entries); i++ {
		e := h.entries[i]
		writes := 0
		for _, a := range e {
			if a.Write {
				writes++
			}
		}
		fmt.Fprintf(w, "%5d  %-40s %d accesses, %d writes\n", i+1, trace.Format(e), len(e), writes)
	}
}

func defaultHistoryPath() string {
	dir, err := os.UserCacheDir()
	if err != nil || dir == "" {
		return ".pagesim_history"
	}
	return filepath.Join(dir, "pagesim", "history")
}

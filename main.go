package main

import (
	"errors"
	"flag"
	"fmt"
	"go/token"
	"io"
	"log/slog"
	"os"

	"github.com/sirkon/trylower/internal/config"
	"github.com/sirkon/trylower/internal/lowering"
	"github.com/sirkon/trylower/internal/tir"
	"github.com/sirkon/trylower/internal/yamlhost"
)

const usage = `usage: trylower [-config file] [-workers n] [-flat] [-v] unit.yaml...

Lowers try/catch constructs of every unit, prints lowered functions to stdout
and diagnostics to stderr.
`

const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("trylower", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		_, _ = io.WriteString(stderr, usage)
		flags.PrintDefaults()
	}
	configPath := flags.String("config", "", "YAML config `file`")
	workers := flags.Int("workers", -1, "functions lowered in parallel, 0 means GOMAXPROCS")
	flat := flags.Bool("flat", false, "print diagnostics one per line, without grouping by construct")
	verbose := flags.Bool("v", false, "log every lowered construct")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return exitUsage
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			_, _ = fmt.Fprintln(stderr, err)
			return exitUsage
		}
	}
	if *workers >= 0 {
		cfg.Workers = *workers
	}
	if *verbose {
		cfg.Log = slog.LevelDebug
	}

	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.Log}))
	fset := token.NewFileSet()

	failed := false
	for _, path := range flags.Args() {
		unitFailed, err := lowerUnit(fset, path, cfg, *flat, log, stdout, stderr)
		if err != nil {
			log.Error("cannot lower unit", slog.String("unit", path), slog.Any("err", err))
			return exitUsage
		}
		failed = failed || unitFailed
	}

	if failed {
		return exitFailed
	}
	return exitOK
}

// lowerUnit lowers one unit file and prints its output. It reports whether
// any construct was rejected.
func lowerUnit(
	fset *token.FileSet,
	path string,
	cfg *config.Config,
	flat bool,
	log *slog.Logger,
	stdout io.Writer,
	stderr io.Writer,
) (bool, error) {
	unit, err := yamlhost.Load(fset, path)
	if err != nil {
		return false, fmt.Errorf("load unit: %w", err)
	}

	engine := lowering.New(
		unit.Types,
		lowering.WithUnreachable(cfg.Unreachable),
		lowering.WithWorkers(cfg.Workers),
		lowering.WithLogger(log.With(slog.String("unit", path))),
		lowering.WithFileSet(fset),
	)
	out, err := engine.LowerUnit(unit.Funcs)
	if err != nil {
		return false, fmt.Errorf("lower unit: %w", err)
	}

	for i, fn := range out.Funcs {
		if i > 0 {
			if _, err := io.WriteString(stdout, "\n"); err != nil {
				return false, fmt.Errorf("print lowered functions: %w", err)
			}
		}
		if err := tir.Fprint(stdout, fn); err != nil {
			return false, fmt.Errorf("print lowered function %s: %w", fn.Name, err)
		}
	}

	if flat {
		err = out.Reports.PrintSummary(stderr, fset)
	} else {
		err = printDiagnostics(stderr, fset, unit.Funcs, out.Reports.Reports())
	}
	if err != nil {
		return false, err
	}

	return out.Failed(), nil
}

package app

import (
	"fmt"
	"net/http"
	"os"

	"github.com/Calmarius/pogoproto/internal/config"
	"github.com/Calmarius/pogoproto/internal/gamedata"
	"github.com/Calmarius/pogoproto/internal/output"
	"github.com/Calmarius/pogoproto/internal/rank"
	"github.com/Calmarius/pogoproto/internal/server"
	"github.com/Calmarius/pogoproto/internal/sim"
)

// Options come from the command line.
type Options struct {
	MasterPath string // the GAME_MASTER dump
	ConfigPath string
	OutDir     string
	Serve      bool
	Addr       string
}

// Run executes one ranking run and returns the desired process exit code.
func Run(opts Options) int {
	if err := run(opts); err != nil {
		if ee, ok := asExitError(err); ok {
			if ee.Err != nil && ee.Code != 0 {
				fmt.Fprintln(os.Stderr, ee.Err)
			}
			return ee.Code
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func run(opts Options) error {
	if opts.MasterPath == "" {
		return ExitWithError(2, fmt.Errorf("no GAME_MASTER file given (use -master)"))
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	buf, err := os.ReadFile(opts.MasterPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", opts.MasterPath, err)
	}

	extractor := gamedata.Extractor{Excluded: cfg.ExcludedSet()}
	tables, err := extractor.Extract(buf)
	if err != nil {
		return fmt.Errorf("decode %s: %w", opts.MasterPath, err)
	}
	fmt.Printf("Decoded %d creatures, %d abilities, %d types (%d templates skipped)\n",
		len(tables.Creatures), len(tables.Abilities), len(tables.Chart.Types()), tables.Skipped)

	augmentLegacy(tables, cfg.LegacyMoves)

	rankings := rank.Rank(tables, rank.Params{
		Battle: sim.Params{
			StrikeInterval: cfg.StrikeIntervalSec,
			Duration:       cfg.BattleDurationSec,
			RegenLifetime:  cfg.RegenLifetimeSec,
		},
		CombatMultiplier: cfg.CombatMultiplier,
		TargetCP:         cfg.TargetCP,
	})
	fmt.Printf("Ranked %d movesets\n", len(rankings.Overall))

	written, err := output.WriteAll(opts.OutDir, tables, rankings)
	if err != nil {
		return err
	}
	for _, path := range written {
		fmt.Println("Wrote", path)
	}

	if cfg.ExportXlsx {
		path, err := output.ExportXLSX(opts.OutDir, cfg.ReportName, tables, rankings)
		if err != nil {
			return err
		}
		fmt.Println("Exported results to", path)
	}

	if opts.Serve {
		srv := server.New(tables, rankings)
		fmt.Println("Serving rankings on", opts.Addr)
		if err := http.ListenAndServe(opts.Addr, srv.Handler()); err != nil {
			return fmt.Errorf("serve: %w", err)
		}
	}

	return nil
}

// augmentLegacy applies the legacy movepool list. Unresolved names are
// reported and skipped; they are historical data outside the dump.
func augmentLegacy(tables *gamedata.Tables, moves []config.LegacyMove) {
	for _, lm := range moves {
		for _, name := range lm.Fast {
			if err := tables.AppendLegacyFast(lm.Creature, name); err != nil {
				fmt.Fprintln(os.Stderr, "warning:", err)
			}
		}
		for _, name := range lm.Charged {
			if err := tables.AppendLegacyCharged(lm.Creature, name); err != nil {
				fmt.Fprintln(os.Stderr, "warning:", err)
			}
		}
	}
}

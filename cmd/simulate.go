package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"water_tank/internal/config"
	"water_tank/internal/engine"
	"water_tank/internal/models"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// simulateOptions holds flags for the simulate command.
type simulateOptions struct {
	*rootOptions
	Ticks        int
	Hour         int
	TicksPerHour int
	Pump         bool
	Level        float64
	LevelSet     bool
	JSON         bool
}

func newSimulateCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &simulateOptions{rootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the engine offline for a number of ticks",
		Long: `Advance the interlock engine without the tick driver and print every state.

The hour is fixed unless --ticks-per-hour is set, in which case it advances
one hour every N ticks and wraps at midnight.

Example:
  tank simulate --ticks 20 --hour 22 --ticks-per-hour 5 --pump
  tank simulate --ticks 100 --level 90 --pump --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.LevelSet = cmd.Flags().Changed("level")
			return runSimulate(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Ticks, "ticks", "n", 60, "number of ticks to run")
	cmd.Flags().IntVar(&opts.Hour, "hour", 12, "hour of day [0,23] for the first tick")
	cmd.Flags().IntVar(&opts.TicksPerHour, "ticks-per-hour", 0, "advance the hour every N ticks (0 keeps it fixed)")
	cmd.Flags().BoolVar(&opts.Pump, "pump", false, "start with the pump on")
	cmd.Flags().Float64Var(&opts.Level, "level", 0, "initial level in percent (default from config)")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "print one JSON reading per line")

	return cmd
}

func runSimulate(w io.Writer, opts *simulateOptions) error {
	if opts.Ticks < 0 {
		return fmt.Errorf("--ticks must be >= 0, got %d", opts.Ticks)
	}
	if opts.TicksPerHour < 0 {
		return fmt.Errorf("--ticks-per-hour must be >= 0, got %d", opts.TicksPerHour)
	}
	if opts.LevelSet && (math.IsNaN(opts.Level) || opts.Level < 0 || opts.Level > 100) {
		return fmt.Errorf("--level must be in [0,100], got %v", opts.Level)
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	eng, err := engine.New(cfg.EngineConfig())
	if err != nil {
		return err
	}

	st := cfg.InitialState()
	if opts.LevelSet {
		st.Level = opts.Level
	}
	st = engine.SetPump(st, opts.Pump)

	enc := json.NewEncoder(w)
	var cutoffs, lockouts int
	for i := 0; i < opts.Ticks; i++ {
		hour := opts.Hour
		if opts.TicksPerHour > 0 {
			hour = (opts.Hour + i/opts.TicksPerHour) % 24
		}
		res, err := eng.Step(st, hour)
		if err != nil {
			return fmt.Errorf("tick %d: %w", i+1, err)
		}
		st = res.State
		if res.Trips.Has(engine.TripAutoCutoff) {
			cutoffs++
		}
		if res.Trips.Has(engine.TripNightLockout) {
			lockouts++
		}

		r := eng.Reading(st)
		r.Seq = uint64(i + 1)
		r.Hour = hour
		if opts.JSON {
			if err := enc.Encode(r); err != nil {
				return err
			}
			continue
		}
		printReading(w, r, res.Trips)
	}

	if !opts.JSON {
		fmt.Fprintf(w, "%s ticks, %d auto cut-off, %d night lockout, final %.2f%% (%s L)\n",
			humanize.Comma(int64(opts.Ticks)), cutoffs, lockouts, st.Level, humanize.Commaf(roundLiters(eng.Reading(st))))
	}
	return nil
}

func printReading(w io.Writer, r models.TankReading, trips engine.Trip) {
	pump := "off"
	if r.PumpOn {
		pump = "on"
	}
	fmt.Fprintf(w, "%5d  %02d:00  %6.2f%%  pump=%-3s  %-8s  %s\n",
		r.Seq, r.Hour, r.Level, pump, r.Status, strings.Join(trips.Names(), ","))
}

func roundLiters(r models.TankReading) float64 {
	return float64(int64(r.Liters*10+0.5)) / 10
}

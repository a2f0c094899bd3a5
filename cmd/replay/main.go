package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/danielpatrickdp/field-triage/internal/config"
	"github.com/danielpatrickdp/field-triage/internal/replay"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON")
	configPath := flag.String("config", "", "optional settings file")
	live := flag.Bool("live", false, "use the configured model backends instead of fallback")
	parallel := flag.Int("parallel", 4, "cases replayed concurrently")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json [--config file] [--live] [--parallel N]")
		os.Exit(2)
	}
	os.Exit(run(*fixturePath, *configPath, *live, *parallel))
}

// #endregion main

// #region run

func run(fixturePath, configPath string, live bool, parallel int) int {
	f, err := replay.LoadFixture(fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}

	settings, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v (continuing with defaults)\n", err)
	}
	if !live {
		settings.ForceFallback()
	}
	rt, err := config.OpenRuntime(settings, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open runtime: %v\n", err)
		return 2
	}
	defer rt.Close()

	if parallel < 1 {
		parallel = 1
	}
	results := make([]replay.CaseResult, len(f.Cases))
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(parallel)
	for i, fc := range f.Cases {
		i, fc := i, fc
		g.Go(func() error {
			results[i] = replay.ReplayCase(ctx, rt.Orchestrator, fc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		return 2
	}

	return printComparison(results)
}

// #endregion run

// #region output

// printComparison outputs a comparison table and returns the exit code.
func printComparison(results []replay.CaseResult) int {
	fmt.Printf("%-20s| %-10s| %-10s| %s\n", "Case", "Urgency", "Escalated", "Match")
	fmt.Printf("%-20s+%-11s+%-11s+%s\n",
		"--------------------", "-----------", "-----------", "------")

	for _, r := range results {
		match := "OK"
		if !r.Match() {
			match = "DIFF " + strings.Join(r.Diffs, "; ")
		}
		fmt.Printf("%-20s| %-10s| %-10t| %s\n", r.CaseID, r.Output.Triage.Urgency, r.Output.Escalation.Called, match)
	}

	s := replay.Summarize(results)
	fmt.Printf("\nSummary: %d total, %d match, %d diverge\n", s.Total, s.Matches, s.Diverged)
	if s.Diverged > 0 {
		return 1
	}
	return 0
}

// #endregion output

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/quantbet/quantum/internal/httpapi"
	"github.com/quantbet/quantum/internal/orchestrator"
	"github.com/quantbet/quantum/internal/snapshot"
)

func runAnalyze(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	odds, err := loadOdds(cmd.Flags())
	if err != nil {
		return err
	}

	home, away := args[0], args[1]
	fixtureID, _ := cmd.Flags().GetString("fixture")
	if fixtureID == "" {
		fixtureID = fmt.Sprintf("%s-vs-%s", slug(home), slug(away))
	}
	ref, _ := cmd.Flags().GetString("referee")

	decision, err := a.engine.Analyze(cmd.Context(), orchestrator.Fixture{
		ID:       fixtureID,
		HomeTeam: home,
		AwayTeam: away,
		Referee:  ref,
		Odds:     odds,
	})
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(decision)
	}
	printDecision(decision)
	return nil
}

func printDecision(d *orchestrator.Decision) {
	if d.Skipped() {
		fmt.Printf("SKIP  %s\n", d.FixtureID)
		fmt.Printf("      reason:   %s\n", d.SkipReason)
		fmt.Printf("      snapshot: %s\n", d.Snapshot)
		return
	}

	p := d.Pick
	fmt.Printf("PICK  %s\n", d.FixtureID)
	fmt.Printf("      market:     %s @ %.2f (%s)\n", p.Selection, p.Odds, p.Market)
	fmt.Printf("      stake:      %.1fu  (EV %+.3f)\n", p.Stake, p.ExpectedValue)
	fmt.Printf("      edge:       %.1f%%  prob %.1f%%\n", p.EdgePct, p.Probability*100)
	fmt.Printf("      conviction: %s (%s, confidence %.0f)\n", p.Conviction, p.Consensus, p.Confidence)
	fmt.Printf("      validators: mc=%s(%.0f) clv=%s conflict=%s\n",
		p.Robustness, p.MonteCarloScore, p.CLVSignal, p.Conflict)
	for _, line := range p.Reasoning {
		fmt.Printf("      * %s\n", line)
	}
	fmt.Printf("      snapshot:   %s\n", p.SnapshotID)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	srv := httpapi.New(a.engine, a.settler, a.repo, a.tracker, a.metrics, a.cfg.HTTP, a.log)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		a.log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}

func runSettle(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid snapshot id %q: %w", args[0], err)
	}
	pnl, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("invalid profit/loss %q: %w", args[2], err)
	}

	// the result argument lists every market that landed, comma separated;
	// each frozen vote is scored against it before the tracker update
	snap, err := a.repo.Get(cmd.Context(), id)
	if err != nil {
		return err
	}
	winners := strings.Split(args[1], ",")

	settled, err := a.settler.Settle(cmd.Context(), id, snapshot.Settlement{
		ActualResult: args[1],
		ProfitLoss:   pnl,
		SettledAt:    time.Now().UTC(),
		ModelCorrect: orchestrator.DeriveModelCorrect(snap, winners),
	})
	if err != nil {
		return err
	}

	fmt.Printf("settled %s  %s vs %s  result=%s pnl=%+.2f\n",
		settled.ID, settled.HomeTeam, settled.AwayTeam, args[1], pnl)
	return nil
}

func slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}

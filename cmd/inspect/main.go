package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/field-triage/internal/logging"
	"github.com/danielpatrickdp/field-triage/internal/orchestrator"
	"github.com/danielpatrickdp/field-triage/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "database path or DSN")
	driver := flag.String("driver", store.DriverSQLite, "database driver: sqlite | postgres")
	last := flag.Int("last", 20, "show N most recent audit entries")
	caseID := flag.String("case", "", "show every entry for one case")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/field_triage.db [--driver sqlite|postgres] [--last N] [--case id] [--json]")
		os.Exit(2)
	}

	st, err := store.Open(*driver, *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()
	rec := logging.NewRecorder(st)

	ctx := context.Background()
	if *caseID != "" {
		err = runDetailMode(ctx, rec, *caseID, *jsonOut)
	} else {
		err = runListMode(ctx, rec, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	CaseID     string `json:"case_id"`
	Trigger    string `json:"trigger_type"`
	Urgency    string `json:"urgency"`
	Guardrail  bool   `json:"guardrail"`
	Escalation bool   `json:"escalation_called"`
	CreatedAt  string `json:"created_at"`
}

func runListMode(ctx context.Context, rec *logging.Recorder, last int, jsonOut bool) error {
	entries, err := rec.ListRecent(ctx, last)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "no audit entries found")
		return nil
	}

	// Recorder returns newest first, reverse for chronological
	rows := make([]listRow, len(entries))
	for i, e := range entries {
		rows[len(entries)-1-i] = listRow{
			CaseID:     e.CaseID,
			Trigger:    e.TriggerType,
			Urgency:    e.Urgency,
			Guardrail:  e.Guardrail,
			Escalation: e.EscalationCalled,
			CreatedAt:  e.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
	}

	if jsonOut {
		return printJSON(rows)
	}
	fmt.Printf("%-12s  %-11s  %-10s  %-9s  %-9s  %s\n",
		"Case", "Trigger", "Urgency", "Guardrail", "Escalated", "Time")
	fmt.Printf("%-12s+-%-11s+-%-10s+-%-9s+-%-9s+-%s\n",
		"------------", "-----------", "----------", "---------", "---------", "--------------------")
	for _, r := range rows {
		fmt.Printf("%-12s  %-11s  %-10s  %-9t  %-9t  %s\n",
			shortID(r.CaseID), r.Trigger, r.Urgency, r.Guardrail, r.Escalation, r.CreatedAt)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

func runDetailMode(ctx context.Context, rec *logging.Recorder, caseID string, jsonOut bool) error {
	entries, err := rec.ListCase(ctx, caseID)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("case %s: %w", caseID, store.ErrNotFound)
	}

	if jsonOut {
		return printJSON(entries)
	}

	for _, e := range entries {
		fmt.Printf("Case:       %s\n", e.CaseID)
		fmt.Printf("Trigger:    %s\n", e.TriggerType)
		fmt.Printf("Created:    %s\n", e.CreatedAt.Format("2006-01-02T15:04:05Z"))
		fmt.Printf("Urgency:    %s\n", e.Urgency)
		fmt.Printf("Guardrail:  %v\n", e.Guardrail)
		fmt.Printf("Escalated:  %v (%s)\n", e.EscalationCalled, e.EscalationReason)

		if e.TriggerType == logging.TriggerRun {
			var out orchestrator.RunOutput
			if err := json.Unmarshal([]byte(e.PayloadJSON), &out); err == nil {
				fmt.Printf("Next step:  %s\n", out.Triage.RecommendedNextStep)
				fmt.Printf("\nRationale:\n")
				for _, line := range out.Triage.Rationale {
					fmt.Printf("  - %s\n", line)
				}
				fmt.Printf("\nDialogue:\n")
				for _, line := range out.Dialogue {
					fmt.Printf("  %s\n", line)
				}
			}
		} else if e.PayloadJSON != "" {
			fmt.Printf("Payload:    %s\n", e.PayloadJSON)
		}
		fmt.Println()
	}
	return nil
}

// #endregion detail-mode

// #region output

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output

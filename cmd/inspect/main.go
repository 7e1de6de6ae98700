package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/borovskvet/intake-bot/internal/logging"
	"github.com/borovskvet/intake-bot/internal/record"
	"github.com/borovskvet/intake-bot/internal/store"
	_ "modernc.org/sqlite"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to intake.db")
	last := flag.Int("last", 20, "show N most recent entries")
	today := flag.Bool("today", false, "only records with today's visit date")
	auditMode := flag.Bool("audit", false, "show the event audit log instead of records")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/intake.db [--last N] [--today] [--audit] [--json]")
		os.Exit(2)
	}

	recordStore, err := store.NewRecordStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer recordStore.Close()

	if *auditMode {
		if err := runAuditMode(recordStore, *last, *jsonOut); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	} else {
		visitDate := ""
		if *today {
			visitDate = time.Now().Format("2006-01-02")
		}
		if err := runRecordMode(recordStore, *last, visitDate, *jsonOut); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
}

// #endregion main

// #region record-mode

func runRecordMode(recordStore *store.RecordStore, last int, visitDate string, jsonOut bool) error {
	recs, err := recordStore.Query(context.Background())
	if err != nil {
		return err
	}
	recs = filterVisitDate(recs, visitDate)
	if len(recs) == 0 {
		fmt.Fprintln(os.Stderr, "no records found")
		return nil
	}

	// Query returns oldest first; keep the tail.
	if len(recs) > last {
		recs = recs[len(recs)-last:]
	}

	if jsonOut {
		return printJSON(recs)
	}
	return printRecordTable(recs)
}

func printRecordTable(recs []record.Stored) error {
	fmt.Printf("%-12s  %-18s  %-12s  %-14s  %-12s  %s\n",
		"Visit", "Owner", "Nickname", "Vaccine", "Next (mo)", "Channel")
	fmt.Printf("%-12s+-%-18s+-%-12s+-%-14s+-%-12s+-%s\n",
		"------------", "------------------", "------------", "--------------", "------------", "--------")

	for _, r := range recs {
		fmt.Printf("%-12s  %-18s  %-12s  %-14s  %-12s  %s\n",
			r[record.FieldVisitDate],
			clip(r[record.FieldOwner], 18),
			clip(r[record.FieldNickname], 12),
			clip(r[record.FieldVaccineType], 14),
			r[record.FieldTermMonths],
			r[record.FieldChannel],
		)
	}

	fmt.Printf("\nTotal shown: %d\n", len(recs))
	return nil
}

// filterVisitDate keeps records matching the visit date; empty keeps all.
func filterVisitDate(recs []record.Stored, visitDate string) []record.Stored {
	if visitDate == "" {
		return recs
	}
	var out []record.Stored
	for _, r := range recs {
		if r[record.FieldVisitDate] == visitDate {
			out = append(out, r)
		}
	}
	return out
}

// #endregion record-mode

// #region audit-mode

func runAuditMode(recordStore *store.RecordStore, last int, jsonOut bool) error {
	audit, err := logging.NewAuditLog(recordStore.DB())
	if err != nil {
		return err
	}

	entries, err := audit.Recent(last)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "no audit entries found")
		return nil
	}

	if jsonOut {
		return printJSON(entries)
	}

	fmt.Printf("%-20s  %-10s  %-12s  %-14s  %-10s  %s\n",
		"Time", "Chat", "Event", "Step", "Decision", "Reason")
	fmt.Printf("%-20s+-%-10s+-%-12s+-%-14s+-%-10s+-%s\n",
		"--------------------", "----------", "------------", "--------------", "----------", "--------")

	for _, e := range entries {
		fmt.Printf("%-20s  %-10d  %-12s  %-14s  %-10s  %s\n",
			e.CreatedAt.Format("2006-01-02T15:04:05Z"),
			e.ChatID, e.Event, e.StepKey, e.Decision, clip(e.Reason, 40))
	}

	fmt.Printf("\nTotal shown: %d\n", len(entries))
	return nil
}

// #endregion audit-mode

// #region output

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return s
}

// #endregion output

// Package search implements substring lookup over saved intake records and
// formats the result summaries shown to the operator.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/borovskvet/intake-bot/internal/record"
)

// #region engine

// NothingFound is the fixed reply for an empty match set.
const NothingFound = "🔍 Ничего не найдено"

// maxShown caps how many matches are rendered in full.
const maxShown = 5

// Engine scans the record sink for containment matches.
type Engine struct {
	sink record.Sink
}

// NewEngine creates an Engine reading from sink.
func NewEngine(sink record.Sink) *Engine {
	return &Engine{sink: sink}
}

// #endregion engine

// #region search

// Search normalizes the query, scans every record's serialized values for a
// substring match, and formats at most 5 matches in source order with a
// remainder count.
func (e *Engine) Search(ctx context.Context, query string) (string, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return NothingFound, nil
	}

	recs, err := e.sink.Query(ctx)
	if err != nil {
		return "", fmt.Errorf("search query: %w", err)
	}

	var matches []record.Stored
	for _, rec := range recs {
		if matchRecord(rec, q) {
			matches = append(matches, rec)
		}
	}
	if len(matches) == 0 {
		return NothingFound, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🔍 Найдено: %d\n", len(matches))
	shown := matches
	if len(shown) > maxShown {
		shown = shown[:maxShown]
	}
	for _, rec := range shown {
		b.WriteString("\n")
		b.WriteString(formatRecord(rec))
	}
	if rest := len(matches) - maxShown; rest > 0 {
		fmt.Fprintf(&b, "\n…и ещё %d записей.", rest)
	}
	return b.String(), nil
}

// matchRecord reports whether q is a substring of the record's lowercased
// value serialization. Values are joined in row order so matches are stable.
func matchRecord(rec record.Stored, q string) bool {
	var b strings.Builder
	for _, name := range record.FieldOrder {
		b.WriteString(rec[name])
		b.WriteString(" ")
	}
	return strings.Contains(strings.ToLower(b.String()), q)
}

// #endregion search

// #region today

// TodayByStaff lists the records submitted today by one operator.
func (e *Engine) TodayByStaff(ctx context.Context, staff, visitDate string) (string, error) {
	recs, err := e.sink.Query(ctx)
	if err != nil {
		return "", fmt.Errorf("today query: %w", err)
	}

	var mine []record.Stored
	for _, rec := range recs {
		if rec[record.FieldVisitDate] == visitDate && rec[record.FieldStaff] == staff {
			mine = append(mine, rec)
		}
	}
	if len(mine) == 0 {
		return "📋 Сегодня записей нет.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📋 Сегодня записей: %d\n", len(mine))
	for _, rec := range mine {
		fmt.Fprintf(&b, "\n🐾 <b>%s</b> — %s, %s мес.",
			rec[record.FieldNickname],
			rec[record.FieldVaccineType],
			rec[record.FieldTermMonths],
		)
	}
	return b.String(), nil
}

// #endregion today

// #region format

// formatRecord renders one match with its per-field display lines.
func formatRecord(rec record.Stored) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🐾 <b>%s</b> — %s, %s\n",
		rec[record.FieldNickname], rec[record.FieldSpecies], rec[record.FieldSex])
	fmt.Fprintf(&b, "👤 %s\n", rec[record.FieldOwner])
	phone := rec[record.FieldPhone]
	if h := rec[record.FieldHandle]; h != "" {
		phone += " " + h
	}
	fmt.Fprintf(&b, "📞 %s\n", phone)
	fmt.Fprintf(&b, "🏠 %s\n", rec[record.FieldAddress])
	fmt.Fprintf(&b, "📅 Возраст/ДР: %s\n", rec[record.FieldAgeOrDOB])
	fmt.Fprintf(&b, "💉 %s от %s, срок %s мес.\n",
		rec[record.FieldVaccineType], rec[record.FieldVaccineDate], rec[record.FieldTermMonths])
	fmt.Fprintf(&b, "🔔 Канал: %s | Статус: %s\n",
		rec[record.FieldChannel], rec[record.FieldStatus])
	return b.String()
}

// #endregion format

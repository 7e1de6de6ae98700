package record

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/borovskvet/intake-bot/internal/session"
)

type fakeSink struct {
	rows [][]string
	fail bool
}

func (f *fakeSink) Append(_ context.Context, row []string) error {
	if f.fail {
		return errors.New("sink unavailable")
	}
	f.rows = append(f.rows, row)
	return nil
}

func (f *fakeSink) Query(_ context.Context) ([]Stored, error) {
	return nil, nil
}

func sampleFields() map[string]string {
	return map[string]string{
		"fio":          "Иванов Иван Иванович",
		"phone":        "+79001234567",
		"telegram":     "@ivan_petrov",
		"address":      "ул. Ленина, д. 5",
		"consent":      "Да",
		"animal_type":  "Собака",
		"nickname":     "Барсик",
		"sex":          "М",
		"age_or_dob":   "15.05.2020",
		"vaccine_type": "Бешенство",
		"vaccine_date": "2025-02-13",
		"term_months":  "12",
		"channel":      "SMS",
	}
}

func TestBuildFixedColumnOrder(t *testing.T) {
	row := Build("2025-02-13", "@vet", sampleFields())
	want := []string{
		"2025-02-13", "@vet",
		"Иванов Иван Иванович", "+79001234567", "@ivan_petrov",
		"ул. Ленина, д. 5", "Да", "Собака", "Барсик", "М", "15.05.2020",
		"Бешенство", "2025-02-13", "12", "SMS",
		StatusNew, "",
	}
	if len(row) != ColumnCount {
		t.Fatalf("expected %d cells, got %d", ColumnCount, len(row))
	}
	for i := range want {
		if row[i] != want[i] {
			t.Fatalf("cell %d: expected %q, got %q", i, want[i], row[i])
		}
	}
}

func TestFinalizeAppendsOnceAndConfirms(t *testing.T) {
	sink := &fakeSink{}
	f := NewFinalizer(sink)
	s := session.New(42, "@vet", time.Date(2025, 2, 13, 12, 0, 0, 0, time.UTC))
	s.Fields = sampleFields()

	text, ok := f.Finalize(context.Background(), s)
	if !ok {
		t.Fatalf("expected success, got %q", text)
	}
	if len(sink.rows) != 1 {
		t.Fatalf("expected exactly one append, got %d", len(sink.rows))
	}
	if sink.rows[0][0] != "2025-02-13" {
		t.Fatalf("unexpected visit date %q", sink.rows[0][0])
	}
	for _, part := range []string{"Барсик", "Бешенство", "12"} {
		if !strings.Contains(text, part) {
			t.Fatalf("confirmation missing %q: %s", part, text)
		}
	}
}

func TestFinalizeStampsSurveyStartDate(t *testing.T) {
	sink := &fakeSink{}
	f := NewFinalizer(sink)

	// Started just before midnight, finished after; the visit date is the
	// day the survey started.
	s := session.New(42, "@vet", time.Date(2025, 2, 13, 23, 55, 0, 0, time.UTC))
	s.Fields = sampleFields()

	if _, ok := f.Finalize(context.Background(), s); !ok {
		t.Fatal("expected success")
	}
	if sink.rows[0][0] != "2025-02-13" {
		t.Fatalf("expected start date 2025-02-13, got %q", sink.rows[0][0])
	}
}

func TestFinalizeFailureNotice(t *testing.T) {
	f := NewFinalizer(&fakeSink{fail: true})
	s := session.New(42, "@vet", time.Now())
	s.Fields = sampleFields()

	text, ok := f.Finalize(context.Background(), s)
	if ok {
		t.Fatal("expected failure")
	}
	if !strings.Contains(text, "Ошибка записи") {
		t.Fatalf("unexpected failure text %q", text)
	}
}

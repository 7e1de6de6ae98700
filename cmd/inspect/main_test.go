package main

import (
	"testing"

	"github.com/borovskvet/intake-bot/internal/record"
)

func TestFilterVisitDate(t *testing.T) {
	recs := []record.Stored{
		{record.FieldVisitDate: "2025-02-13", record.FieldNickname: "Барсик"},
		{record.FieldVisitDate: "2025-02-12", record.FieldNickname: "Рекс"},
		{record.FieldVisitDate: "2025-02-13", record.FieldNickname: "Мурка"},
	}

	got := filterVisitDate(recs, "2025-02-13")
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0][record.FieldNickname] != "Барсик" || got[1][record.FieldNickname] != "Мурка" {
		t.Fatalf("wrong records kept: %+v", got)
	}

	if got := filterVisitDate(recs, ""); len(got) != 3 {
		t.Fatalf("empty filter must keep all, got %d", len(got))
	}
}

func TestClip(t *testing.T) {
	if got := clip("Барсик", 12); got != "Барсик" {
		t.Fatalf("short string altered: %q", got)
	}
	if got := clip("Иванов Иван Иванович", 10); len([]rune(got)) != 10 {
		t.Fatalf("expected 10 runes, got %q", got)
	}
}

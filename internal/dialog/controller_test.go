package dialog

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/borovskvet/intake-bot/internal/record"
	"github.com/borovskvet/intake-bot/internal/search"
	"github.com/borovskvet/intake-bot/internal/session"
	"github.com/borovskvet/intake-bot/internal/steps"
)

var fixedNow = time.Date(2025, 2, 13, 12, 0, 0, 0, time.UTC)

type fakeSink struct {
	rows [][]string
	recs []record.Stored
	fail bool
}

func (f *fakeSink) Append(_ context.Context, row []string) error {
	if f.fail {
		return errors.New("sink unavailable")
	}
	f.rows = append(f.rows, row)
	return nil
}

func (f *fakeSink) Query(_ context.Context) ([]record.Stored, error) {
	return f.recs, nil
}

func newTestController(sink record.Sink) (*Controller, *session.MemoryRepository) {
	repo := session.NewMemoryRepository(0)
	c := NewController(repo, record.NewFinalizer(sink), search.NewEngine(sink), nil)
	c.now = func() time.Time { return fixedNow }
	return c, repo
}

func text(chatID int64, t string) Event {
	return Event{ChatID: chatID, Kind: EventText, Text: t, Staff: "@vet"}
}

func choice(chatID int64, token string) Event {
	return Event{ChatID: chatID, Kind: EventText, Token: token, Staff: "@vet"}
}

// happyPath answers all 13 steps with valid input.
var happyPath = []Event{
	text(42, "иванов иван иванович"),
	text(42, "89001234567"),
	text(42, "-"),
	text(42, "ул. Ленина, д. 5, кв. 12"),
	choice(42, "consent_yes"),
	choice(42, "animal_dog"),
	text(42, "Барсик"),
	choice(42, "sex_m"),
	text(42, "15.05.2020"),
	choice(42, "vaccine_rabies"),
	text(42, "сегодня"),
	text(42, "12"),
	choice(42, "channel_sms"),
}

func TestFullSurveyProducesOneRecord(t *testing.T) {
	sink := &fakeSink{}
	c, repo := newTestController(sink)
	ctx := context.Background()

	reply := c.Handle(ctx, Event{ChatID: 42, Kind: EventNewRecord, Staff: "@vet"})
	first, _ := steps.ByIndex(0)
	if reply.Text != first.Prompt {
		t.Fatalf("expected first step prompt, got %q", reply.Text)
	}

	for i, ev := range happyPath {
		reply = c.Handle(ctx, ev)
		if i < len(happyPath)-1 {
			next, _ := steps.ByIndex(i + 1)
			if reply.Text != next.Prompt {
				t.Fatalf("step %d: expected prompt for %s, got %q", i, next.Key, reply.Text)
			}
		}
	}

	if !strings.Contains(reply.Text, "Записано") {
		t.Fatalf("expected confirmation, got %q", reply.Text)
	}
	if len(sink.rows) != 1 {
		t.Fatalf("expected exactly one append, got %d", len(sink.rows))
	}

	row := sink.rows[0]
	want := []string{
		"2025-02-13", "@vet",
		"Иванов Иван Иванович", "+79001234567", "",
		"ул. Ленина, д. 5, кв. 12", "Да", "Собака", "Барсик", "М",
		"15.05.2020", "Бешенство", "2025-02-13", "12", "SMS",
		record.StatusNew, "",
	}
	if len(row) != record.ColumnCount {
		t.Fatalf("expected %d cells, got %d", record.ColumnCount, len(row))
	}
	for i := range want {
		if row[i] != want[i] {
			t.Fatalf("cell %d: expected %q, got %q", i, want[i], row[i])
		}
	}

	if _, ok, _ := repo.Get(ctx, 42); ok {
		t.Fatal("expected session discarded after finalize")
	}
}

func TestInvalidAnswerRepromptsSameStep(t *testing.T) {
	c, repo := newTestController(&fakeSink{})
	ctx := context.Background()

	c.Handle(ctx, Event{ChatID: 42, Kind: EventNewRecord, Staff: "@vet"})
	c.Handle(ctx, text(42, "иванов иван иванович"))

	phoneStep, _ := steps.ByIndex(1)
	reply := c.Handle(ctx, text(42, "123"))
	if !strings.Contains(reply.Text, "Неверный формат номера") {
		t.Fatalf("expected rejection reason, got %q", reply.Text)
	}
	if !strings.Contains(reply.Text, phoneStep.Prompt) {
		t.Fatalf("expected prompt re-issued, got %q", reply.Text)
	}

	s, ok, _ := repo.Get(ctx, 42)
	if !ok || s.StepIndex != 1 {
		t.Fatalf("expected session still at step 1, got %+v", s)
	}
	if _, present := s.Fields["phone"]; present {
		t.Fatal("rejected answer must not be stored")
	}
}

func TestCancelDiscardsSessionAndRestarts(t *testing.T) {
	c, repo := newTestController(&fakeSink{})
	ctx := context.Background()

	c.Handle(ctx, Event{ChatID: 42, Kind: EventNewRecord, Staff: "@vet"})
	c.Handle(ctx, text(42, "иванов иван иванович"))

	reply := c.Handle(ctx, Event{ChatID: 42, Kind: EventCancel, Staff: "@vet"})
	if !strings.Contains(reply.Text, "отменено") {
		t.Fatalf("expected cancel ack, got %q", reply.Text)
	}
	if _, ok, _ := repo.Get(ctx, 42); ok {
		t.Fatal("expected session discarded on cancel")
	}

	c.Handle(ctx, Event{ChatID: 42, Kind: EventNewRecord, Staff: "@vet"})
	s, ok, _ := repo.Get(ctx, 42)
	if !ok || s.StepIndex != 0 || len(s.Fields) != 0 {
		t.Fatalf("expected fresh session at step 0, got %+v", s)
	}
}

func TestCancelFromIdleIsAcknowledged(t *testing.T) {
	c, _ := newTestController(&fakeSink{})
	reply := c.Handle(context.Background(), Event{ChatID: 42, Kind: EventCancel})
	if !strings.Contains(reply.Text, "отменено") {
		t.Fatalf("expected ack, got %q", reply.Text)
	}
}

func TestOtherBranchStoresFreeTextSpecies(t *testing.T) {
	c, repo := newTestController(&fakeSink{})
	ctx := context.Background()

	c.Handle(ctx, Event{ChatID: 42, Kind: EventNewRecord, Staff: "@vet"})
	for _, ev := range happyPath[:5] {
		c.Handle(ctx, ev)
	}

	// Select "other" on the species step.
	reply := c.Handle(ctx, choice(42, steps.TokenOther))
	if reply.Text != branchPromptText {
		t.Fatalf("expected branch prompt, got %q", reply.Text)
	}
	s, _, _ := repo.Get(ctx, 42)
	if s.Mode != session.ModeAwaitingBranch || s.PendingBranch != "animal_type" {
		t.Fatalf("expected awaiting branch on animal_type, got %+v", s)
	}

	reply = c.Handle(ctx, text(42, "хомяк"))
	nickname, _ := steps.ByKey("nickname")
	if reply.Text != nickname.Prompt {
		t.Fatalf("expected nickname prompt after branch, got %q", reply.Text)
	}

	s, _, _ = repo.Get(ctx, 42)
	if s.Fields["animal_type"] != "Хомяк" {
		t.Fatalf("expected capitalized branch value, got %q", s.Fields["animal_type"])
	}
	// The branch prompt is not an extra field: exactly one step advanced.
	if s.StepIndex != 6 {
		t.Fatalf("expected step 6, got %d", s.StepIndex)
	}
	if s.Mode != session.ModeInProgress || s.PendingBranch != "" {
		t.Fatalf("branch state not cleared: %+v", s)
	}
}

func TestBranchRejectsTooShortText(t *testing.T) {
	c, repo := newTestController(&fakeSink{})
	ctx := context.Background()

	c.Handle(ctx, Event{ChatID: 42, Kind: EventNewRecord, Staff: "@vet"})
	for _, ev := range happyPath[:5] {
		c.Handle(ctx, ev)
	}
	c.Handle(ctx, choice(42, steps.TokenOther))

	reply := c.Handle(ctx, text(42, "Х"))
	if reply.Text != branchTooShortText {
		t.Fatalf("expected too-short re-prompt, got %q", reply.Text)
	}
	s, _, _ := repo.Get(ctx, 42)
	if s.Mode != session.ModeAwaitingBranch {
		t.Fatalf("expected still awaiting branch, got %+v", s)
	}
}

func TestChoiceStepRejectsFreeText(t *testing.T) {
	c, _ := newTestController(&fakeSink{})
	ctx := context.Background()

	c.Handle(ctx, Event{ChatID: 42, Kind: EventNewRecord, Staff: "@vet"})
	for _, ev := range happyPath[:4] {
		c.Handle(ctx, ev)
	}

	// Consent is a choice step; arbitrary text is not an option.
	reply := c.Handle(ctx, text(42, "может быть"))
	if !strings.Contains(reply.Text, chooseOptionText) {
		t.Fatalf("expected choice rejection, got %q", reply.Text)
	}
	if len(reply.Choices) == 0 {
		t.Fatal("expected keyboard re-issued with rejection")
	}
}

func TestChoiceResolvesByLabel(t *testing.T) {
	c, repo := newTestController(&fakeSink{})
	ctx := context.Background()

	c.Handle(ctx, Event{ChatID: 42, Kind: EventNewRecord, Staff: "@vet"})
	for _, ev := range happyPath[:4] {
		c.Handle(ctx, ev)
	}

	c.Handle(ctx, text(42, "✓ Да"))
	s, _, _ := repo.Get(ctx, 42)
	if s.Fields["consent"] != "Да" {
		t.Fatalf("expected label-resolved consent, got %q", s.Fields["consent"])
	}
}

func TestSearchModeConsumesOneQuery(t *testing.T) {
	sink := &fakeSink{recs: []record.Stored{{
		record.FieldNickname: "Барсик",
		record.FieldOwner:    "Иванов Иван",
	}}}
	c, repo := newTestController(sink)
	ctx := context.Background()

	reply := c.Handle(ctx, Event{ChatID: 42, Kind: EventSearch, Staff: "@vet"})
	if reply.Text != searchText {
		t.Fatalf("expected search prompt, got %q", reply.Text)
	}

	reply = c.Handle(ctx, text(42, "барсик"))
	if !strings.Contains(reply.Text, "Барсик") {
		t.Fatalf("expected search result, got %q", reply.Text)
	}
	if _, ok, _ := repo.Get(ctx, 42); ok {
		t.Fatal("expected search session cleared after query")
	}

	reply = c.Handle(ctx, text(42, "хомяк"))
	if reply.Text != hintText {
		t.Fatalf("expected idle hint after search mode ended, got %q", reply.Text)
	}
}

func TestSearchNothingFound(t *testing.T) {
	c, _ := newTestController(&fakeSink{})
	ctx := context.Background()

	c.Handle(ctx, Event{ChatID: 42, Kind: EventSearch, Staff: "@vet"})
	reply := c.Handle(ctx, text(42, "хомяк"))
	if reply.Text != search.NothingFound {
		t.Fatalf("expected nothing-found message, got %q", reply.Text)
	}
}

func TestTextWithoutSessionShowsHint(t *testing.T) {
	c, _ := newTestController(&fakeSink{})
	reply := c.Handle(context.Background(), text(42, "привет"))
	if reply.Text != hintText {
		t.Fatalf("expected hint, got %q", reply.Text)
	}
	if len(reply.Choices) == 0 {
		t.Fatal("expected main menu keyboard")
	}
}

func TestFinalizeFailureDiscardsSession(t *testing.T) {
	sink := &fakeSink{fail: true}
	c, repo := newTestController(sink)
	ctx := context.Background()

	c.Handle(ctx, Event{ChatID: 42, Kind: EventNewRecord, Staff: "@vet"})
	var reply Reply
	for _, ev := range happyPath {
		reply = c.Handle(ctx, ev)
	}

	if !strings.Contains(reply.Text, "Ошибка записи") {
		t.Fatalf("expected failure notice, got %q", reply.Text)
	}
	if _, ok, _ := repo.Get(ctx, 42); ok {
		t.Fatal("expected session discarded after failed finalize")
	}
}

func TestMenuEventsMidSurveyAreAnswers(t *testing.T) {
	c, repo := newTestController(&fakeSink{})
	ctx := context.Background()

	c.Handle(ctx, Event{ChatID: 42, Kind: EventNewRecord, Staff: "@vet"})
	// A search button press during the fio step is just invalid input.
	reply := c.Handle(ctx, Event{ChatID: 42, Kind: EventSearch, Text: BtnSearch, Staff: "@vet"})
	if reply.Text == searchText {
		t.Fatal("search must not hijack an in-progress survey")
	}
	s, ok, _ := repo.Get(ctx, 42)
	if !ok || s.Mode != session.ModeInProgress {
		t.Fatalf("expected survey session intact, got %+v", s)
	}
}

func TestNewRecordMidSurveyKeepsAnswers(t *testing.T) {
	c, repo := newTestController(&fakeSink{})
	ctx := context.Background()

	c.Handle(ctx, Event{ChatID: 42, Kind: EventNewRecord, Staff: "@vet"})
	for _, ev := range happyPath[:2] {
		c.Handle(ctx, ev)
	}

	// A second "new record" tap mid-survey must not discard collected answers.
	first, _ := steps.ByIndex(0)
	reply := c.Handle(ctx, Event{ChatID: 42, Kind: EventNewRecord, Text: BtnNewRecord, Staff: "@vet"})
	if reply.Text == first.Prompt {
		t.Fatal("new-record must not restart an in-progress survey")
	}
	s, ok, _ := repo.Get(ctx, 42)
	if !ok || s.StepIndex != 2 || s.Fields["phone"] != "+79001234567" {
		t.Fatalf("expected survey intact at step 2, got %+v", s)
	}
}

func TestStartClearsSession(t *testing.T) {
	c, repo := newTestController(&fakeSink{})
	ctx := context.Background()

	c.Handle(ctx, Event{ChatID: 42, Kind: EventNewRecord, Staff: "@vet"})
	reply := c.Handle(ctx, Event{ChatID: 42, Kind: EventStart, Staff: "@vet"})
	if !strings.Contains(reply.Text, "БДПЖ") {
		t.Fatalf("expected welcome, got %q", reply.Text)
	}
	if _, ok, _ := repo.Get(ctx, 42); ok {
		t.Fatal("expected session cleared on /start")
	}
}

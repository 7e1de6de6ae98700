// Package record assembles completed sessions into fixed-order rows and
// hands them to the record sink.
package record

import (
	"context"
	"fmt"
	"log"

	"github.com/borovskvet/intake-bot/internal/session"
	"github.com/borovskvet/intake-bot/internal/steps"
)

// #region columns

// StatusNew is the processing status every freshly saved record carries.
const StatusNew = "Новый"

// ColumnCount is the width of a persisted row: visit date, staff identity,
// the 13 survey fields, status, comment.
const ColumnCount = 17

// Stored is a saved record keyed by display-oriented field names, as the
// sink's query operation returns it.
type Stored map[string]string

// Display field names used by Stored records.
const (
	FieldVisitDate   = "Дата визита"
	FieldStaff       = "Сотрудник"
	FieldOwner       = "ФИО"
	FieldPhone       = "Телефон"
	FieldHandle      = "Telegram"
	FieldAddress     = "Адрес"
	FieldConsent     = "Согласие"
	FieldSpecies     = "Вид"
	FieldNickname    = "Кличка"
	FieldSex         = "Пол"
	FieldAgeOrDOB    = "Возраст/ДР"
	FieldVaccineType = "Прививка"
	FieldVaccineDate = "Дата прививки"
	FieldTermMonths  = "Срок (мес.)"
	FieldChannel     = "Канал"
	FieldStatus      = "Статус"
	FieldComment     = "Комментарий"
)

// FieldOrder lists the display field names in persisted row order.
var FieldOrder = []string{
	FieldVisitDate, FieldStaff, FieldOwner, FieldPhone, FieldHandle,
	FieldAddress, FieldConsent, FieldSpecies, FieldNickname, FieldSex,
	FieldAgeOrDOB, FieldVaccineType, FieldVaccineDate, FieldTermMonths,
	FieldChannel, FieldStatus, FieldComment,
}

// #endregion columns

// #region sink

// Sink is the external record store: append one finished row, or query all
// saved records as display-keyed mappings in source order.
type Sink interface {
	Append(ctx context.Context, row []string) error
	Query(ctx context.Context) ([]Stored, error)
}

// #endregion sink

// #region build

// Build produces the 17-cell row for a completed session: visit date, staff
// identity, the 13 field values in step order, the status literal, and an
// empty comment placeholder.
func Build(visitDate, staff string, fields map[string]string) []string {
	row := make([]string, 0, ColumnCount)
	row = append(row, visitDate, staff)
	for _, d := range steps.All() {
		row = append(row, fields[d.Key])
	}
	row = append(row, StatusNew, "")
	return row
}

// #endregion build

// #region finalizer

// Finalizer persists completed sessions and composes the user-facing outcome
// message.
type Finalizer struct {
	sink Sink
}

// NewFinalizer creates a Finalizer writing to sink.
func NewFinalizer(sink Sink) *Finalizer {
	return &Finalizer{sink: sink}
}

// Finalize builds the row for s and appends it to the sink. The visit date
// is the day the survey started, not the day it finished. It returns the
// confirmation or failure text and whether the append succeeded. The caller
// discards the session in both outcomes.
func (f *Finalizer) Finalize(ctx context.Context, s session.Session) (string, bool) {
	row := Build(s.StartedAt.Format("2006-01-02"), s.Staff, s.Fields)
	if err := f.sink.Append(ctx, row); err != nil {
		log.Printf("[SINK] append failed for chat %d: %v", s.ChatID, err)
		return "✕ Ошибка записи. Попробуйте позже.", false
	}

	return fmt.Sprintf(
		"✅ <b>Записано!</b>\n\nПитомец: <b>%s</b>\nПрививка: %s\nСрок: %s мес.\n\n🔔 Напоминание придёт за 3 дня до окончания срока.",
		s.Fields["nickname"], s.Fields["vaccine_type"], s.Fields["term_months"],
	), true
}

// #endregion finalizer

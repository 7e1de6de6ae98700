// Package steps defines the fixed 13-step intake survey: one Definition per
// record field, in persisted column order, with its prompt, input mode,
// validator and choice set. The registry is immutable after startup.
package steps

import (
	"github.com/borovskvet/intake-bot/internal/validate"
)

// #region types

// Mode is a step's input mode.
type Mode string

const (
	FreeText Mode = "free_text"
	Choice   Mode = "choice"
)

// Option is one selectable answer of a choice step. Token is the stable
// identifier carried on inbound choice events; Value is the canonical stored
// value. The designated "other" option routes into the free-text branch.
type Option struct {
	Label string
	Token string
	Value string
}

// Definition describes one field of the intake record.
type Definition struct {
	Key         string
	Prompt      string
	Mode        Mode
	Validator   validate.ID
	Options     []Option
	AllowsOther bool
	OtherToken  string
}

// #endregion types

// #region tokens

// TokenOther marks the free-text branch option of a choice step.
const TokenOther = "other"

// #endregion tokens

// #region registry

var defs = []Definition{
	{
		Key:       "fio",
		Prompt:    "👤 <b>ФИО владельца</b>\n\nВведите полностью фамилию, имя и отчество",
		Mode:      FreeText,
		Validator: validate.IDOwnerName,
	},
	{
		Key:       "phone",
		Prompt:    "📞 <b>Телефон</b>\n\nВведите номер для связи:\n• +79001234567\n• 89001234567",
		Mode:      FreeText,
		Validator: validate.IDPhone,
	},
	{
		Key:       "telegram",
		Prompt:    "🐾 <b>Telegram</b> (необязательно)\n\nВведите @username или напишите <b>-</b> если нет",
		Mode:      FreeText,
		Validator: validate.IDHandle,
	},
	{
		Key:       "address",
		Prompt:    "🏠 <b>Адрес</b>\n\nГде проживаете?\n(улица, дом, квартира)",
		Mode:      FreeText,
		Validator: validate.IDAddress,
	},
	{
		Key:    "consent",
		Prompt: "🔔 <b>Согласие на уведомления</b>\n\nМожем ли мы присылать напоминания о прививках?",
		Mode:   Choice,
		Options: []Option{
			{Label: "✓ Да", Token: "consent_yes", Value: "Да"},
			{Label: "✕ Нет", Token: "consent_no", Value: "Нет"},
		},
	},
	{
		Key:    "animal_type",
		Prompt: "🐾 <b>Вид животного</b>",
		Mode:   Choice,
		Options: []Option{
			{Label: "🐕 Собака", Token: "animal_dog", Value: "Собака"},
			{Label: "🐈 Кошка", Token: "animal_cat", Value: "Кошка"},
			{Label: "🐇 Другое", Token: TokenOther},
		},
		AllowsOther: true,
		OtherToken:  TokenOther,
	},
	{
		Key:       "nickname",
		Prompt:    "❤️ <b>Кличка питомца</b>",
		Mode:      FreeText,
		Validator: validate.IDPetName,
	},
	{
		Key:    "sex",
		Prompt: "<b>Пол</b>",
		Mode:   Choice,
		Options: []Option{
			{Label: "♂ М", Token: "sex_m", Value: "М"},
			{Label: "♀ Ж", Token: "sex_f", Value: "Ж"},
		},
	},
	{
		Key:       "age_or_dob",
		Prompt:    "📅 <b>Возраст или дата рождения</b>\n\nПримеры:\n• 3 года\n• 15.05.2020",
		Mode:      FreeText,
		Validator: validate.IDAgeOrDOB,
	},
	{
		Key:    "vaccine_type",
		Prompt: "💉 <b>Тип прививки</b>",
		Mode:   Choice,
		Options: []Option{
			{Label: "💉 Бешенство", Token: "vaccine_rabies", Value: "Бешенство"},
			{Label: "💉 Комплексная", Token: "vaccine_complex", Value: "Комплексная"},
			{Label: "Другое", Token: TokenOther},
		},
		AllowsOther: true,
		OtherToken:  TokenOther,
	},
	{
		Key:       "vaccine_date",
		Prompt:    "📅 <b>Дата прививки</b>\n\n• Сегодня\n• 13.02.2025",
		Mode:      FreeText,
		Validator: validate.IDVaccineDate,
	},
	{
		Key:       "term_months",
		Prompt:    "<b>Срок действия</b> (месяцев)\n\n• 12 — бешенство\n• 36 — комплексная",
		Mode:      FreeText,
		Validator: validate.IDTermMonths,
	},
	{
		Key:    "channel",
		Prompt: "🔔 <b>Канал напоминаний</b>",
		Mode:   Choice,
		Options: []Option{
			{Label: "🔔 SMS", Token: "channel_sms", Value: "SMS"},
			{Label: "🐾 Telegram", Token: "channel_telegram", Value: "Telegram"},
		},
	},
}

// #endregion registry

// #region accessors

// Count returns the number of survey steps.
func Count() int { return len(defs) }

// All returns the full ordered step list.
func All() []Definition { return defs }

// ByIndex returns the step at position i.
func ByIndex(i int) (Definition, bool) {
	if i < 0 || i >= len(defs) {
		return Definition{}, false
	}
	return defs[i], true
}

// ByKey returns the step with the given field key.
func ByKey(key string) (Definition, bool) {
	for _, d := range defs {
		if d.Key == key {
			return d, true
		}
	}
	return Definition{}, false
}

// Resolve matches an inbound answer against a choice step's options, by
// token first, then by exact label.
func (d Definition) Resolve(token, label string) (Option, bool) {
	for _, opt := range d.Options {
		if token != "" && opt.Token == token {
			return opt, true
		}
	}
	for _, opt := range d.Options {
		if label != "" && opt.Label == label {
			return opt, true
		}
	}
	return Option{}, false
}

// #endregion accessors

package telegram

import (
	"strings"

	"github.com/borovskvet/intake-bot/internal/dialog"
	"github.com/borovskvet/intake-bot/internal/steps"
)

// #region choice-tokens

// choiceTokens maps a choice button's label to its stable token.
// Built once from the step registry.
var choiceTokens = buildChoiceTokens()

func buildChoiceTokens() map[string]string {
	m := make(map[string]string)
	for _, d := range steps.All() {
		for _, opt := range d.Options {
			m[opt.Label] = opt.Token
		}
	}
	return m
}

// #endregion choice-tokens

// #region parse

// ParseEvent converts a webhook update into a dialogue event. The second
// return is false for updates the bot ignores (no message, empty text).
func ParseEvent(u Update) (dialog.Event, bool) {
	if u.Message == nil {
		return dialog.Event{}, false
	}
	text := strings.TrimSpace(u.Message.Text)
	if text == "" {
		return dialog.Event{}, false
	}

	ev := dialog.Event{
		ChatID: u.Message.Chat.ID,
		Text:   text,
		Staff:  senderIdentity(u.Message.From),
		Kind:   classify(text),
	}
	if token, ok := choiceTokens[text]; ok {
		ev.Token = token
	}
	return ev, true
}

// senderIdentity prefers @username, falling back to the first name.
func senderIdentity(u *User) string {
	if u == nil {
		return "сотрудник"
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	return "сотрудник"
}

// classify maps commands and menu button texts to event kinds; everything
// else is a plain text answer.
func classify(text string) dialog.EventKind {
	lower := strings.ToLower(text)
	switch {
	case text == "/start":
		return dialog.EventStart
	case text == "/cancel" || strings.Contains(text, dialog.BtnCancel):
		return dialog.EventCancel
	case strings.Contains(lower, "новая") && strings.Contains(lower, "запись"):
		return dialog.EventNewRecord
	case text == dialog.BtnSearch:
		return dialog.EventSearch
	case text == dialog.BtnMyRecords:
		return dialog.EventMyRecords
	case strings.Contains(text, "Контакты"):
		return dialog.EventContacts
	default:
		return dialog.EventText
	}
}

// #endregion parse

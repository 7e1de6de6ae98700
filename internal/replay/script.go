package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/borovskvet/intake-bot/internal/dialog"
)

// #region script-types

// Script is the top-level JSON structure of a replay script file.
type Script struct {
	Description string        `json:"description"`
	ChatID      int64         `json:"chat_id"`
	Staff       string        `json:"staff"`
	Events      []ScriptEvent `json:"events"`
}

// ScriptEvent is one scripted inbound event. Kind defaults to a plain text
// answer when omitted.
type ScriptEvent struct {
	Kind  string `json:"kind,omitempty"`
	Text  string `json:"text,omitempty"`
	Token string `json:"token,omitempty"`
}

// #endregion script-types

// #region load

// LoadScript reads a script file and expands it into dialogue events.
func LoadScript(path string) (*Script, []dialog.Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read script: %w", err)
	}

	var script Script
	if err := json.Unmarshal(data, &script); err != nil {
		return nil, nil, fmt.Errorf("parse script: %w", err)
	}
	if script.ChatID == 0 {
		script.ChatID = 1
	}
	if script.Staff == "" {
		script.Staff = "@replay"
	}

	events := make([]dialog.Event, 0, len(script.Events))
	for _, se := range script.Events {
		kind := dialog.EventKind(se.Kind)
		if se.Kind == "" {
			kind = dialog.EventText
		}
		events = append(events, dialog.Event{
			ChatID: script.ChatID,
			Kind:   kind,
			Text:   se.Text,
			Token:  se.Token,
			Staff:  script.Staff,
		})
	}
	return &script, events, nil
}

// #endregion load

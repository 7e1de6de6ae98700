package session

import "time"

// #region mode
// Mode is the tagged dialogue state of a stored session. The Idle state has
// no session at all; the mode is only meaningful while a session exists.
type Mode string

const (
	ModeInProgress     Mode = "in_progress"
	ModeAwaitingBranch Mode = "awaiting_branch"
	ModeSearch         Mode = "search"
)

// #endregion mode

// #region session
// Session is one conversation's in-progress record collection.
// Fields holds the answers for steps [0, StepIndex) plus, after a branch
// completes, the overridden choice field.
type Session struct {
	ChatID        int64             `json:"chat_id"`
	Mode          Mode              `json:"mode"`
	StepIndex     int               `json:"step_index"`
	Fields        map[string]string `json:"fields"`
	PendingBranch string            `json:"pending_branch,omitempty"`
	Staff         string            `json:"staff"`
	StartedAt     time.Time         `json:"started_at"`
}

// New returns a fresh in-progress session at step 0.
func New(chatID int64, staff string, startedAt time.Time) Session {
	return Session{
		ChatID:    chatID,
		Mode:      ModeInProgress,
		Fields:    make(map[string]string),
		Staff:     staff,
		StartedAt: startedAt,
	}
}

// #endregion session

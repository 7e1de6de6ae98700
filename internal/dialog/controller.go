// Package dialog drives the intake conversation: one inbound event in, one
// outbound reply out, with all state kept in the session repository.
package dialog

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/borovskvet/intake-bot/internal/logging"
	"github.com/borovskvet/intake-bot/internal/record"
	"github.com/borovskvet/intake-bot/internal/search"
	"github.com/borovskvet/intake-bot/internal/session"
	"github.com/borovskvet/intake-bot/internal/steps"
	"github.com/borovskvet/intake-bot/internal/validate"
)

// #region texts

const (
	welcomeText = "🌿🐾❤️ <b>БДПЖ Боровск</b>\n\nБаза данных привитых животных\n\nВыберите действие 👇"
	cancelText  = "✅ Ок, отменено.\n\nЧто дальше?"
	hintText    = "🐾 Нажмите <b>«Новая запись»</b> или отправьте /start"
	searchText  = "🔍 <b>Поиск</b>\n\nВведите телефон или кличку:"

	contactsText = "🐾 <b>Ветеринарная клиника</b>\n\n📞 +7 (XXX) XXX-XX-XX\n🕐 Пн-Пт: 9:00-18:00\n🕐 Сб: 9:00-14:00"

	branchPromptText   = "✏️ Введите свой вариант:"
	branchTooShortText = "🟡 Минимум 2 символа. Введите свой вариант:"
	chooseOptionText   = "🟡 Выберите вариант с клавиатуры."

	searchFailedText = "✕ Поиск временно недоступен. Попробуйте позже."
	internalText     = "✕ Что-то пошло не так. Попробуйте ещё раз."
)

// #endregion texts

// #region controller

// Audit receives one entry per handled event; failures are best-effort.
type Audit interface {
	LogEvent(entry logging.EventEntry) error
}

// Controller is the dialogue state machine. It owns no state itself; every
// conversation lives in the session repository.
type Controller struct {
	repo      session.Repository
	finalizer *record.Finalizer
	engine    *search.Engine
	audit     Audit
	now       func() time.Time
}

// NewController wires a Controller. audit may be nil.
func NewController(repo session.Repository, finalizer *record.Finalizer, engine *search.Engine, audit Audit) *Controller {
	return &Controller{
		repo:      repo,
		finalizer: finalizer,
		engine:    engine,
		audit:     audit,
		now:       time.Now,
	}
}

// #endregion controller

// #region handle

// Handle processes one inbound event and returns exactly one reply.
// It never returns an error: internal failures produce a generic notice and
// are logged, so no event is fatal to the process.
func (c *Controller) Handle(ctx context.Context, ev Event) Reply {
	switch ev.Kind {
	case EventStart:
		_ = c.repo.Delete(ctx, ev.ChatID)
		c.logEvent(ev, "", "menu", "")
		return Reply{ChatID: ev.ChatID, Text: welcomeText, Choices: MainMenu()}

	case EventCancel:
		// Unconditional, also a no-op acknowledgment when idle.
		_ = c.repo.Delete(ctx, ev.ChatID)
		c.logEvent(ev, "", "cancelled", "")
		return Reply{ChatID: ev.ChatID, Text: cancelText, Choices: MainMenu()}

	case EventNewRecord:
		if c.busy(ctx, ev.ChatID) {
			return c.handleText(ctx, ev)
		}
		s := session.New(ev.ChatID, ev.Staff, c.now())
		if err := c.repo.Put(ctx, s); err != nil {
			return c.internalReply(ev, err)
		}
		d, _ := steps.ByIndex(0)
		c.logEvent(ev, d.Key, "menu", "survey started")
		return c.stepPrompt(ev.ChatID, d)

	case EventSearch:
		if c.busy(ctx, ev.ChatID) {
			return c.handleText(ctx, ev)
		}
		s := session.New(ev.ChatID, ev.Staff, c.now())
		s.Mode = session.ModeSearch
		if err := c.repo.Put(ctx, s); err != nil {
			return c.internalReply(ev, err)
		}
		c.logEvent(ev, "", "menu", "search mode")
		return Reply{ChatID: ev.ChatID, Text: searchText}

	case EventMyRecords:
		if c.busy(ctx, ev.ChatID) {
			return c.handleText(ctx, ev)
		}
		text, err := c.engine.TodayByStaff(ctx, ev.Staff, c.now().Format("2006-01-02"))
		if err != nil {
			log.Printf("[DIALOG] today listing failed for chat %d: %v", ev.ChatID, err)
			text = searchFailedText
		}
		c.logEvent(ev, "", "menu", "today listing")
		return Reply{ChatID: ev.ChatID, Text: text, Choices: MainMenu()}

	case EventContacts:
		if c.busy(ctx, ev.ChatID) {
			return c.handleText(ctx, ev)
		}
		c.logEvent(ev, "", "menu", "contacts")
		return Reply{ChatID: ev.ChatID, Text: contactsText, Choices: MainMenu()}

	default:
		return c.handleText(ctx, ev)
	}
}

// busy reports whether a session already exists; menu events arriving
// mid-survey are treated as ordinary answers instead of mode switches.
func (c *Controller) busy(ctx context.Context, chatID int64) bool {
	_, ok, err := c.repo.Get(ctx, chatID)
	if err != nil {
		log.Printf("[DIALOG] session lookup failed for chat %d: %v", chatID, err)
	}
	return ok
}

// #endregion handle

// #region handle-text

func (c *Controller) handleText(ctx context.Context, ev Event) Reply {
	s, ok, err := c.repo.Get(ctx, ev.ChatID)
	if err != nil {
		return c.internalReply(ev, err)
	}
	if !ok {
		c.logEvent(ev, "", "menu", "no session")
		return Reply{ChatID: ev.ChatID, Text: hintText, Choices: MainMenu()}
	}

	switch s.Mode {
	case session.ModeSearch:
		_ = c.repo.Delete(ctx, ev.ChatID)
		out, err := c.engine.Search(ctx, ev.Text)
		if err != nil {
			log.Printf("[DIALOG] search failed for chat %d: %v", ev.ChatID, err)
			out = searchFailedText
		}
		c.logEvent(ev, "", "search", "")
		return Reply{ChatID: ev.ChatID, Text: out, Choices: MainMenu()}

	case session.ModeAwaitingBranch:
		return c.handleBranch(ctx, ev, s)

	case session.ModeInProgress:
		return c.handleAnswer(ctx, ev, s)

	default:
		// Unknown mode means a corrupt session; start over.
		_ = c.repo.Delete(ctx, ev.ChatID)
		c.logEvent(ev, "", "error", "unknown session mode")
		return Reply{ChatID: ev.ChatID, Text: hintText, Choices: MainMenu()}
	}
}

// #endregion handle-text

// #region branch

func (c *Controller) handleBranch(ctx context.Context, ev Event, s session.Session) Reply {
	text := strings.TrimSpace(ev.Text)
	if len([]rune(text)) < 2 {
		c.logEvent(ev, s.PendingBranch, "rejected", "branch value too short")
		return Reply{ChatID: ev.ChatID, Text: branchTooShortText}
	}

	key := s.PendingBranch
	s.Fields[key] = validate.Capitalize(text)
	s.PendingBranch = ""
	s.Mode = session.ModeInProgress
	c.logEvent(ev, key, "accepted", "branch value")
	return c.advance(ctx, ev, s)
}

// #endregion branch

// #region answer

func (c *Controller) handleAnswer(ctx context.Context, ev Event, s session.Session) Reply {
	d, ok := steps.ByIndex(s.StepIndex)
	if !ok {
		_ = c.repo.Delete(ctx, ev.ChatID)
		c.logEvent(ev, "", "error", "step index out of range")
		return Reply{ChatID: ev.ChatID, Text: hintText, Choices: MainMenu()}
	}

	if d.Mode == steps.Choice {
		opt, ok := d.Resolve(ev.Token, strings.TrimSpace(ev.Text))
		if !ok {
			c.logEvent(ev, d.Key, "rejected", "not a listed option")
			return c.rejectReply(ev.ChatID, d, chooseOptionText)
		}
		if d.AllowsOther && opt.Token == d.OtherToken {
			s.Mode = session.ModeAwaitingBranch
			s.PendingBranch = d.Key
			if err := c.repo.Put(ctx, s); err != nil {
				return c.internalReply(ev, err)
			}
			c.logEvent(ev, d.Key, "accepted", "other branch")
			return Reply{ChatID: ev.ChatID, Text: branchPromptText}
		}
		s.Fields[d.Key] = opt.Value
		c.logEvent(ev, d.Key, "accepted", "")
		return c.advance(ctx, ev, s)
	}

	res := validate.Funcs[d.Validator](ev.Text, c.now())
	if !res.OK {
		c.logEvent(ev, d.Key, "rejected", res.Reason)
		return c.rejectReply(ev.ChatID, d, res.Reason)
	}
	s.Fields[d.Key] = res.Value
	c.logEvent(ev, d.Key, "accepted", "")
	return c.advance(ctx, ev, s)
}

// #endregion answer

// #region advance

// advance moves the session past a just-stored field: either prompt for the
// next step, or finalize and discard on the last one.
func (c *Controller) advance(ctx context.Context, ev Event, s session.Session) Reply {
	s.StepIndex++
	if s.StepIndex >= steps.Count() {
		text, saved := c.finalizer.Finalize(ctx, s)
		// Session is discarded on both outcomes; a failed save loses the
		// collected answers (kept for compatibility with the original bot).
		_ = c.repo.Delete(ctx, ev.ChatID)
		if saved {
			c.logEvent(ev, "", "finalized", "")
		} else {
			c.logEvent(ev, "", "error", "sink append failed")
		}
		return Reply{ChatID: ev.ChatID, Text: text, Choices: MainMenu()}
	}

	if err := c.repo.Put(ctx, s); err != nil {
		return c.internalReply(ev, err)
	}
	d, _ := steps.ByIndex(s.StepIndex)
	return c.stepPrompt(ev.ChatID, d)
}

// #endregion advance

// #region replies

func (c *Controller) stepPrompt(chatID int64, d steps.Definition) Reply {
	return Reply{ChatID: chatID, Text: d.Prompt, Choices: stepKeyboard(d)}
}

// rejectReply re-issues the step prompt together with the rejection reason.
func (c *Controller) rejectReply(chatID int64, d steps.Definition, reason string) Reply {
	return Reply{ChatID: chatID, Text: reason + "\n\n" + d.Prompt, Choices: stepKeyboard(d)}
}

func (c *Controller) internalReply(ev Event, err error) Reply {
	log.Printf("[DIALOG] internal error for chat %d: %v", ev.ChatID, err)
	c.logEvent(ev, "", "error", err.Error())
	return Reply{ChatID: ev.ChatID, Text: internalText, Choices: MainMenu()}
}

// stepKeyboard renders a choice step's options two per row plus a cancel
// row. Free-text steps get no keyboard.
func stepKeyboard(d steps.Definition) [][]Choice {
	if len(d.Options) == 0 {
		return nil
	}
	var rows [][]Choice
	var row []Choice
	for _, opt := range d.Options {
		row = append(row, Choice{Label: opt.Label, Token: opt.Token})
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, []Choice{{Label: BtnCancel, Token: "cancel"}})
	return rows
}

// #endregion replies

// #region audit

func (c *Controller) logEvent(ev Event, stepKey, decision, reason string) {
	if c.audit == nil {
		return
	}
	err := c.audit.LogEvent(logging.EventEntry{
		ChatID:   ev.ChatID,
		Event:    string(ev.Kind),
		StepKey:  stepKey,
		Decision: decision,
		Reason:   reason,
	})
	if err != nil {
		log.Printf("[DIALOG] audit log failed: %v", err)
	}
}

// #endregion audit

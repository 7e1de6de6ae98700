package telegram

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/borovskvet/intake-bot/internal/dialog"
)

// #region webhook

// Webhook handles Bot API updates. Every update is acknowledged with "ok"
// regardless of the outcome: retries from the Bot API would only replay the
// same event.
type Webhook struct {
	controller *dialog.Controller
	client     *Client
	secret     string
}

// NewWebhook wires a webhook handler.
func NewWebhook(controller *dialog.Controller, client *Client, secret string) *Webhook {
	return &Webhook{controller: controller, client: client, secret: secret}
}

// ServeHTTP implements http.Handler.
func (w *Webhook) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[TG] panic while handling update: %v", rec)
		}
		rw.Write([]byte("ok"))
	}()

	if w.secret != "" && r.URL.Query().Get("secret") != w.secret {
		return
	}

	var update Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.Printf("[TG] bad update payload: %v", err)
		return
	}

	ev, ok := ParseEvent(update)
	if !ok {
		return
	}

	reply := w.controller.Handle(r.Context(), ev)
	if err := w.client.SendMessage(r.Context(), reply); err != nil {
		// Best-effort delivery: log and acknowledge anyway.
		log.Printf("[TG] send failed for chat %d: %v", reply.ChatID, err)
	}
}

// #endregion webhook

// #region health

// HealthHandler answers the liveness probe.
func HealthHandler() http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		rw.Write([]byte("🌿🐾❤️ БДПЖ Боровск — бот работает"))
	})
}

// #endregion health

// Package telegram is the Bot API transport: it parses webhook updates into
// dialogue events and delivers the controller's replies as chat messages
// with reply keyboards.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/borovskvet/intake-bot/internal/dialog"
)

// #region client

const defaultAPIBase = "https://api.telegram.org"

// Client sends messages through the Bot API. Calls are synchronous with a
// short timeout and best-effort: the caller logs failures and moves on.
type Client struct {
	token string
	base  string
	http  *http.Client
}

// NewClient creates a Client for the given bot token.
func NewClient(token string) *Client {
	return &Client{
		token: token,
		base:  defaultAPIBase,
		http:  &http.Client{Timeout: 10 * time.Second},
	}
}

// NewClientWithBase creates a Client against a custom API base URL.
// Used for testing against a local stub server.
func NewClientWithBase(token, base string) *Client {
	c := NewClient(token)
	c.base = base
	return c
}

// #endregion client

// #region send

// SendMessage delivers one reply as an HTML message. A reply without
// choices removes any visible keyboard.
func (c *Client) SendMessage(ctx context.Context, reply dialog.Reply) error {
	req := sendMessageRequest{
		ChatID:      reply.ChatID,
		Text:        reply.Text,
		ParseMode:   "HTML",
		ReplyMarkup: markupFor(reply.Choices),
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal sendMessage: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.base, c.token)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build sendMessage request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("sendMessage: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sendMessage: status %d", resp.StatusCode)
	}
	return nil
}

// markupFor renders choice rows as a reply keyboard, or removes the
// keyboard when there are none.
func markupFor(choices [][]dialog.Choice) interface{} {
	if len(choices) == 0 {
		return removeKeyboard{RemoveKeyboard: true}
	}
	kb := replyKeyboard{ResizeKeyboard: true, OneTimeKeyboard: true}
	for _, row := range choices {
		var btns []keyButton
		for _, ch := range row {
			btns = append(btns, keyButton{Text: ch.Label})
		}
		kb.Keyboard = append(kb.Keyboard, btns)
	}
	return kb
}

// #endregion send

package telegram

// #region update

// Update is the subset of a Bot API webhook payload the bot consumes.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

// Message is one inbound chat message.
type Message struct {
	MessageID int64  `json:"message_id"`
	From      *User  `json:"from"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
}

// User identifies the sender.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
}

// Chat identifies the conversation.
type Chat struct {
	ID int64 `json:"id"`
}

// #endregion update

// #region outbound

// sendMessageRequest is the JSON body of a sendMessage call.
type sendMessageRequest struct {
	ChatID      int64       `json:"chat_id"`
	Text        string      `json:"text"`
	ParseMode   string      `json:"parse_mode"`
	ReplyMarkup interface{} `json:"reply_markup"`
}

// replyKeyboard mirrors the Bot API reply keyboard markup.
type replyKeyboard struct {
	Keyboard        [][]keyButton `json:"keyboard"`
	ResizeKeyboard  bool          `json:"resize_keyboard"`
	OneTimeKeyboard bool          `json:"one_time_keyboard"`
}

type keyButton struct {
	Text string `json:"text"`
}

type removeKeyboard struct {
	RemoveKeyboard bool `json:"remove_keyboard"`
}

// #endregion outbound

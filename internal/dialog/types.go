package dialog

// #region events

// EventKind classifies one inbound event from the transport.
type EventKind string

const (
	EventStart     EventKind = "start"
	EventCancel    EventKind = "cancel"
	EventNewRecord EventKind = "new_record"
	EventSearch    EventKind = "search"
	EventMyRecords EventKind = "my_records"
	EventContacts  EventKind = "contacts"
	EventText      EventKind = "text"
)

// Event is one inbound message or choice selection. Token is set when the
// text matched a known choice button; Staff is the sender identity.
type Event struct {
	ChatID int64
	Kind   EventKind
	Text   string
	Token  string
	Staff  string
}

// #endregion events

// #region reply

// Choice is one selectable button of an outbound prompt.
type Choice struct {
	Label string
	Token string
}

// Reply is the single outbound prompt or result emitted for an event.
// Nil Choices means any visible keyboard should be removed.
type Reply struct {
	ChatID  int64
	Text    string
	Choices [][]Choice
}

// #endregion reply

// #region menu-buttons

// Main-menu button labels. The transport matches inbound text against these
// and the keyboards render them.
const (
	BtnNewRecord = "➕ Новая запись"
	BtnSearch    = "🔍 Поиск"
	BtnMyRecords = "📋 Мои записи"
	BtnContacts  = "📞 Контакты клиники"
	BtnCancel    = "❌ Отмена"
)

// MainMenu is the idle-state keyboard.
func MainMenu() [][]Choice {
	return [][]Choice{
		{{Label: BtnNewRecord, Token: "new_record"}},
		{{Label: BtnSearch, Token: "search"}, {Label: BtnMyRecords, Token: "my_records"}},
		{{Label: BtnContacts, Token: "contacts"}},
	}
}

// #endregion menu-buttons

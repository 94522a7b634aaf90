package chat

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
}

// History is the append-only conversation of one session.
type History struct {
	messages []Message
}

func (h *History) Append(role Role, content string) {
	h.messages = append(h.messages, Message{Role: role, Content: content})
}

// Messages returns a copy of the conversation in order.
func (h *History) Messages() []Message {
	return append([]Message(nil), h.messages...)
}

func (h *History) Len() int { return len(h.messages) }

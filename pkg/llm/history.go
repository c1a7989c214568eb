package llm

import (
	"sync"
)

// Conversation is the ordered message list of one request. It is owned by a
// single request and discarded when the request ends.
type Conversation struct {
	RequestID string

	messages []Message
	mu       sync.RWMutex
}

// NewConversation starts a conversation from the given messages.
func NewConversation(requestID string, initial ...Message) *Conversation {
	c := &Conversation{
		RequestID: requestID,
		messages:  make([]Message, 0, len(initial)+4),
	}
	c.messages = append(c.messages, initial...)
	return c
}

// Append adds messages to the end of the conversation.
func (c *Conversation) Append(msgs ...Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.messages = append(c.messages, msgs...)
}

// Messages returns a copy of the current message list.
func (c *Conversation) Messages() []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cp := make([]Message, len(c.messages))
	copy(cp, c.messages)
	return cp
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}

// Last returns the final message, or false when the conversation is empty.
func (c *Conversation) Last() (Message, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.messages) == 0 {
		return Message{}, false
	}
	return c.messages[len(c.messages)-1], true
}

package entity

import (
	"fmt"
	"time"
)

type Message struct {
	ID             string `json:"id" firestore:"-"`
	ConversationID string `json:"conversation_id" firestore:"-"`
	Text           string `json:"text" firestore:"text"`
	SenderID       string `json:"sender_id" firestore:"senderId"`
	SenderSide     string `json:"sender_side" firestore:"senderSide"`
	// Zero until the server has assigned the write time.
	Timestamp time.Time `json:"timestamp" firestore:"timestamp"`
}

func (m *Message) Pending() bool {
	return m.Timestamp.IsZero()
}

func (m *Message) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("message: missing id")
	}
	if m.SenderID == "" || m.SenderSide == "" {
		return fmt.Errorf("message %s: missing sender", m.ID)
	}
	return nil
}

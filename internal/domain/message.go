package domain

import "time"

// Message is one entry of the append-only direct message log.
type Message struct {
	ID               string    `json:"id"`
	SenderUsername   string    `json:"senderUsername"`
	ReceiverUsername string    `json:"receiverUsername"`
	Content          string    `json:"content"`
	Timestamp        time.Time `json:"timestamp"`
	IsRead           bool      `json:"isRead"`
}

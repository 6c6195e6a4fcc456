package models

import "time"

// MaxMessages is how many chat entries a room keeps
const MaxMessages = 50

// Message is a chat entry
type Message struct {
	ID        string    `json:"id"`
	PlayerID  string    `json:"player_id"`
	Username  string    `json:"username"`
	Text      string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// CapMessages keeps only the most recent MaxMessages entries
func CapMessages(messages []*Message) []*Message {
	if len(messages) <= MaxMessages {
		return messages
	}
	return messages[len(messages)-MaxMessages:]
}

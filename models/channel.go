package models

import "time"

// Channel — зарегистрированный Discord-канал с набором привязанных
// к нему LeetCode-аккаунтов.
type Channel struct {
	ID        string    `json:"id"`
	Usernames []string  `json:"usernames"`
	CreatedAt time.Time `json:"created_at"`
}

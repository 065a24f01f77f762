package domain

import "time"

// Session is the in-memory record of an online user. It is never persisted.
type Session struct {
	UserID              string    `json:"user_id"`
	CharacterID         string    `json:"character_id"`
	LoginTime           time.Time `json:"login_time"`
	LastCultivationTick time.Time `json:"last_cultivation_tick"`
	LastActivity        time.Time `json:"last_activity"`
	Online              bool      `json:"online"`
}

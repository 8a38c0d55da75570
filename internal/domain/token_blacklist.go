package domain

import "time"

// TokenBlacklist registra um JWT revogado até a sua expiração natural.
type TokenBlacklist struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Token     string    `json:"-" gorm:"type:text;uniqueIndex;not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null;index"`
}

func (TokenBlacklist) TableName() string {
	return "token_blacklist"
}

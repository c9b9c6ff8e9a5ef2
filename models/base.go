package models

import "time"

// BaseModel tüm modellere gömülen ortak alanlar.
type BaseModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

type contextKey string

// ContextUserIDKey transaction context'inde işlemi yapan kullanıcıyı taşır.
const ContextUserIDKey contextKey = "user_id"

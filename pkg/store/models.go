package store

import "time"

// GORM models used for persistence.
type UserModel struct {
	ID           string    `gorm:"primaryKey"`
	Name         string    `gorm:"not null"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	GlobalHashID string    `gorm:"uniqueIndex;not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time
}

type ListModel struct {
	ID           string `gorm:"primaryKey"`
	UserID       string `gorm:"not null;index"`
	Name         string `gorm:"not null"`
	Description  string
	Slug         string    `gorm:"uniqueIndex;not null"`
	PublicHashID string    `gorm:"uniqueIndex;not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

type GiftModel struct {
	ID             string `gorm:"primaryKey"`
	ListID         string `gorm:"not null;index:idx_gifts_list_status;index:idx_gifts_list_priority"`
	UserID         string `gorm:"not null;index:idx_gifts_user_status;index:idx_gifts_user_priority"`
	Name           string `gorm:"not null"`
	Link           string
	Price          *float64
	Status         string    `gorm:"not null;index:idx_gifts_list_status;index:idx_gifts_user_status"`
	ListPriority   int       `gorm:"not null;index:idx_gifts_list_priority"`
	GlobalPriority int       `gorm:"not null;index:idx_gifts_user_priority"`
	InsertedAt     time.Time `gorm:"not null"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

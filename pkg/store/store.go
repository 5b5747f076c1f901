package store

import (
	"time"

	"giftregistry/pkg/domain"
)

// Store defines persistence operations for users, lists, and gifts.
type Store interface {
	// users
	SaveUser(domain.User) error
	HasUserEmail(email string) (bool, error)
	GetUserByEmail(email string) (domain.User, bool, error)
	GetUserByID(id string) (domain.User, bool, error)
	GetUserByGlobalHash(hashID string) (domain.User, bool, error)

	// lists
	SaveList(domain.List) error
	GetList(id string) (domain.List, bool, error)
	GetListBySlug(slug string) (domain.List, bool, error)
	ListListsByOwner(userID string) ([]domain.List, error)
	ListSummariesByOwner(userID string) ([]domain.ListSummary, error)
	DeleteListWithGifts(id string) error

	// gifts
	SaveGift(domain.Gift) error
	GetGift(id string) (domain.Gift, bool, error)
	DeleteGift(id string) error
	ListAvailableGiftsByList(listID string, sort domain.SortOption) ([]domain.Gift, error)
	ListAvailableGiftsByOwner(userID string, sort domain.SortOption) ([]domain.Gift, error)

	// ordering
	NextListPriority(listID string) (int, error)
	NextGlobalPriority(userID string) (int, error)
	SetListPriorities(listID, userID string, giftIDs []string) error
	SetGlobalPriorities(userID string, giftIDs []string) error

	// public claim
	ClaimGift(id string) (bool, error)
}

// SessionStore issues and validates access tokens.
type SessionStore interface {
	NewSession(userID string) (string, error)
	GetUserIDByToken(token string) (string, bool, error)
}

// RefreshTokenStore persists refresh tokens with rotation, explicit
// revocation of a single token, and revocation of all tokens of a user.
type RefreshTokenStore interface {
	NewToken(userID string, ttl time.Duration) (string, error)
	RotateToken(token string, ttl time.Duration) (userID string, newToken string, err error)
	DeleteToken(token string) error
	RevokeUserTokens(userID string) error
}

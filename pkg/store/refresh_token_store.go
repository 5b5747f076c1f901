package store

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrInvalidRefreshToken indicates the token is unknown, expired, or revoked.
var ErrInvalidRefreshToken = errors.New("invalid refresh token")

type refreshEntry struct {
	userID string
	expiry time.Time
}

// MemoryRefreshTokenStore keeps refresh tokens in memory.
type MemoryRefreshTokenStore struct {
	mu         sync.Mutex
	tokens     map[string]refreshEntry        // token hash -> entry
	userTokens map[string]map[string]struct{} // user ID -> token hashes
}

// NewMemoryRefreshTokenStore constructs an in-memory refresh token store.
func NewMemoryRefreshTokenStore() *MemoryRefreshTokenStore {
	return &MemoryRefreshTokenStore{
		tokens:     make(map[string]refreshEntry),
		userTokens: make(map[string]map[string]struct{}),
	}
}

// NewToken issues and stores a new refresh token.
func (s *MemoryRefreshTokenStore) NewToken(userID string, ttl time.Duration) (string, error) {
	token, err := generateRefreshToken()
	if err != nil {
		return "", err
	}
	tokenHash := refreshTokenHash(token)

	s.mu.Lock()
	s.tokens[tokenHash] = refreshEntry{userID: userID, expiry: time.Now().UTC().Add(ttl)}
	if s.userTokens[userID] == nil {
		s.userTokens[userID] = make(map[string]struct{})
	}
	s.userTokens[userID][tokenHash] = struct{}{}
	s.mu.Unlock()
	return token, nil
}

// RotateToken consumes a valid token and issues a replacement for the same
// user. Consuming is atomic, so a concurrently replayed token loses.
func (s *MemoryRefreshTokenStore) RotateToken(token string, ttl time.Duration) (string, string, error) {
	tokenHash := refreshTokenHash(token)
	now := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.tokens[tokenHash]
	if !ok {
		return "", "", ErrInvalidRefreshToken
	}
	s.removeLocked(tokenHash, entry.userID)
	if now.After(entry.expiry) {
		return "", "", ErrInvalidRefreshToken
	}

	newToken, err := generateRefreshToken()
	if err != nil {
		return "", "", err
	}
	newHash := refreshTokenHash(newToken)
	s.tokens[newHash] = refreshEntry{userID: entry.userID, expiry: now.Add(ttl)}
	if s.userTokens[entry.userID] == nil {
		s.userTokens[entry.userID] = make(map[string]struct{})
	}
	s.userTokens[entry.userID][newHash] = struct{}{}
	return entry.userID, newToken, nil
}

// DeleteToken revokes a single refresh token.
func (s *MemoryRefreshTokenStore) DeleteToken(token string) error {
	tokenHash := refreshTokenHash(token)
	s.mu.Lock()
	if entry, ok := s.tokens[tokenHash]; ok {
		s.removeLocked(tokenHash, entry.userID)
	}
	s.mu.Unlock()
	return nil
}

// RevokeUserTokens revokes every refresh token of a user.
func (s *MemoryRefreshTokenStore) RevokeUserTokens(userID string) error {
	s.mu.Lock()
	for tokenHash := range s.userTokens[userID] {
		delete(s.tokens, tokenHash)
	}
	delete(s.userTokens, userID)
	s.mu.Unlock()
	return nil
}

func (s *MemoryRefreshTokenStore) removeLocked(tokenHash, userID string) {
	delete(s.tokens, tokenHash)
	if hashes, ok := s.userTokens[userID]; ok {
		delete(hashes, tokenHash)
		if len(hashes) == 0 {
			delete(s.userTokens, userID)
		}
	}
}

// RedisRefreshTokenStore stores refresh tokens in Redis, keyed by token hash
// with TTL expiry, plus a per-user index set for revoke-all.
type RedisRefreshTokenStore struct {
	client *redis.Client
}

// NewRedisRefreshTokenStore builds a Redis-backed refresh token store.
func NewRedisRefreshTokenStore(addr, password string) *RedisRefreshTokenStore {
	return &RedisRefreshTokenStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
	}
}

// NewToken issues and stores a new refresh token.
func (s *RedisRefreshTokenStore) NewToken(userID string, ttl time.Duration) (string, error) {
	token, err := generateRefreshToken()
	if err != nil {
		return "", err
	}
	tokenHash := refreshTokenHash(token)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, refreshTokenRedisKey(tokenHash), userID, ttl)
	pipe.SAdd(ctx, refreshUserRedisKey(userID), tokenHash)
	pipe.Expire(ctx, refreshUserRedisKey(userID), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", err
	}
	return token, nil
}

// RotateToken consumes a valid token via GETDEL and issues a replacement.
// Two concurrent rotations of the same token cannot both succeed: the single
// atomic GETDEL decides the winner.
func (s *RedisRefreshTokenStore) RotateToken(token string, ttl time.Duration) (string, string, error) {
	tokenHash := refreshTokenHash(token)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	userID, err := s.client.GetDel(ctx, refreshTokenRedisKey(tokenHash)).Result()
	if err == redis.Nil {
		return "", "", ErrInvalidRefreshToken
	}
	if err != nil {
		return "", "", err
	}
	if err := s.client.SRem(ctx, refreshUserRedisKey(userID), tokenHash).Err(); err != nil && err != redis.Nil {
		return "", "", err
	}

	newToken, err := generateRefreshToken()
	if err != nil {
		return "", "", err
	}
	newHash := refreshTokenHash(newToken)
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, refreshTokenRedisKey(newHash), userID, ttl)
	pipe.SAdd(ctx, refreshUserRedisKey(userID), newHash)
	pipe.Expire(ctx, refreshUserRedisKey(userID), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", "", err
	}
	return userID, newToken, nil
}

// DeleteToken revokes a single refresh token.
func (s *RedisRefreshTokenStore) DeleteToken(token string) error {
	tokenHash := refreshTokenHash(token)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	userID, err := s.client.GetDel(ctx, refreshTokenRedisKey(tokenHash)).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.client.SRem(ctx, refreshUserRedisKey(userID), tokenHash).Err(); err != nil && err != redis.Nil {
		return err
	}
	return nil
}

// RevokeUserTokens revokes every refresh token of a user.
func (s *RedisRefreshTokenStore) RevokeUserTokens(userID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	hashes, err := s.client.SMembers(ctx, refreshUserRedisKey(userID)).Result()
	if err != nil && err != redis.Nil {
		return err
	}
	pipe := s.client.TxPipeline()
	for _, tokenHash := range hashes {
		pipe.Del(ctx, refreshTokenRedisKey(tokenHash))
	}
	pipe.Del(ctx, refreshUserRedisKey(userID))
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return err
	}
	return nil
}

func generateRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func refreshTokenHash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func refreshTokenRedisKey(tokenHash string) string {
	return fmt.Sprintf("refresh:token:%s", tokenHash)
}

func refreshUserRedisKey(userID string) string {
	return fmt.Sprintf("refresh:user:%s", userID)
}

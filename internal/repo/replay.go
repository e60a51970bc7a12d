// Package repo implements the persistence layer backed by GORM. This file
// provides the store for idempotent replays: the status and body of a
// successful generation, keyed by (user_id, scope, key).
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-campaign-backend/internal/domain"
)

// ErrDuplicate indicates that a replay already exists for the given
// (user_id, scope, key) tuple.
var ErrDuplicate = errors.New("duplicate")

// GetReplay returns a non-expired replay or ErrNotFound.
func GetReplay(ctx context.Context, db *gorm.DB, userID, scope, key string, now time.Time) (*domain.Replay, error) {
	if strings.TrimSpace(key) == "" {
		return nil, ErrNotFound
	}
	var rec domain.Replay
	err := db.WithContext(ctx).
		Where("user_id = ? AND scope = ? AND key = ? AND expires_at > ?", userID, scope, key, now).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// SaveReplay stores a response body and returns ErrDuplicate on unique
// violation. An expired row for the same tuple is replaced.
func SaveReplay(ctx context.Context, db *gorm.DB, userID, scope, key string, status int, body []byte, ttl time.Duration) (*domain.Replay, error) {
	now := time.Now().UTC()
	rec := &domain.Replay{
		ID:        uuid.NewString(),
		UserID:    userID,
		Scope:     scope,
		Key:       key,
		Status:    status,
		Body:      body,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND scope = ? AND key = ? AND expires_at <= ?", userID, scope, key, now).
			Delete(&domain.Replay{}).Error; err != nil {
			return err
		}
		return tx.Create(rec).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return rec, nil
}

// PurgeExpiredReplays deletes every replay that expired at or before now.
func PurgeExpiredReplays(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&domain.Replay{})
	return res.RowsAffected, res.Error
}

// Replays binds the replay functions to a database handle so the HTTP layer
// can depend on a small interface instead of *gorm.DB.
type Replays struct {
	DB *gorm.DB
}

// Get implements handlers.ReplayStore.
func (r Replays) Get(ctx context.Context, userID, scope, key string, now time.Time) (*domain.Replay, error) {
	return GetReplay(ctx, r.DB, userID, scope, key, now)
}

// Save implements handlers.ReplayStore. A concurrent save of the same live
// key is not an error: the first stored response wins.
func (r Replays) Save(ctx context.Context, userID, scope, key string, status int, body []byte, ttl time.Duration) error {
	_, err := SaveReplay(ctx, r.DB, userID, scope, key, status, body, ttl)
	if errors.Is(err, ErrDuplicate) {
		return nil
	}
	return err
}

// Exists reports whether a live replay exists. It has the shape of
// middleware.IdempotencyLookup.
func (r Replays) Exists(ctx context.Context, userID, scope, key string, now time.Time) (bool, error) {
	_, err := GetReplay(ctx, r.DB, userID, scope, key, now)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

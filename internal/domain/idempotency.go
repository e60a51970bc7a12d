package domain

import "time"

// Replay is a stored successful response for an Idempotency-Key, keyed by
// (user_id, scope, key). Scope is the route that produced it, so the same key
// sent to /message and /image does not collide. A replay lets a client retry
// a billed generation without triggering a second one.
type Replay struct {
	ID        string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	UserID    string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_scope_key,priority:1"`
	Scope     string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_scope_key,priority:2"`
	Key       string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_scope_key,priority:3"`
	Status    int       `gorm:"type:INTEGER NOT NULL"`
	Body      []byte    `gorm:"type:BLOB NOT NULL"`
	CreatedAt time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Replay) TableName() string { return "idempotency_replays" }

// Expired reports whether the record is no longer valid at now.
func (r Replay) Expired(now time.Time) bool { return !r.ExpiresAt.After(now) }

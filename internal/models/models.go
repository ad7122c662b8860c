// file: internal/models/models.go
package models

import (
	"time"
)

// ===============================
// CORE ENTITIES
// ===============================

// User represents a platform participant. The cached total_points column is
// maintained in the same transaction as every ledger append; current_badge_id
// is written only by the badge assignment pass.
type User struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name" validate:"required,max=255"`
	Email       string `json:"email" db:"email" validate:"required,email,max=320"`
	TotalPoints int    `json:"total_points" db:"total_points"`

	// Credentials
	APIKey *string `json:"-" db:"api_key"`

	// Weak reference into the badge catalog, nulled when the badge is removed.
	CurrentBadgeID *int64 `json:"current_badge_id,omitempty" db:"current_badge_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// Joined fields (not in users table)
	CurrentBadgeName *string `json:"current_badge,omitempty" db:"-"`
}

// PointEntry is one row of the append-only point ledger. Entries are never
// updated or deleted individually; corrections are new offsetting entries.
type PointEntry struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Delta     int       `json:"delta" db:"delta"`
	Message   *string   `json:"message,omitempty" db:"message"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Badge is an achievement with a minimum-points threshold.
type Badge struct {
	ID          int64   `json:"id" db:"id"`
	Name        string  `json:"name" db:"name" validate:"required,max=100"`
	Description *string `json:"description,omitempty" db:"description"`
	Threshold   int     `json:"threshold" db:"threshold" validate:"min=0"`
	ImageRef    string  `json:"image_ref" db:"image_ref" validate:"required,max=255"`
}

// Quest is a one-shot task. Completing it awards Points to the owner exactly
// once; the completed flag flip and the point grant share a transaction.
type Quest struct {
	ID          int64   `json:"id" db:"id"`
	Title       string  `json:"title" db:"title" validate:"required,max=255"`
	Description *string `json:"description,omitempty" db:"description"`
	Points      int     `json:"points" db:"points" validate:"gt=0"`
	Completed   bool    `json:"completed" db:"completed"`
	UserID      int64   `json:"user_id" db:"user_id"`
}

// NFCTag is a deduplicated tag arrival from the ingestion pipeline.
// tag_id is unique; a second arrival of the same tag is dropped before any
// ledger effect.
type NFCTag struct {
	ID        int64     `json:"id" db:"id"`
	TagID     string    `json:"tag_id" db:"tag_id" validate:"required,max=64"`
	UserName  string    `json:"user_name" db:"user_name" validate:"required"`
	UserEmail string    `json:"user_email" db:"user_email" validate:"required,email"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// RankedUser is one row of the ranking view. Rank is the 1-based position
// when ordered by total_points descending, ties broken by ascending id.
type RankedUser struct {
	Rank        int     `json:"rank"`
	UserID      int64   `json:"user_id"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	TotalPoints int     `json:"total_points"`
	Badge       *string `json:"badge"`
}

// BadgeChange reports a user whose current badge actually changed during an
// assignment pass. Unchanged users are not reported.
type BadgeChange struct {
	UserID   int64  `json:"user_id"`
	Name     string `json:"name"`
	NewBadge string `json:"new_badge"` // empty when the badge was cleared
	Cleared  bool   `json:"cleared,omitempty"`
}

// ===============================
// PAGINATION
// ===============================

// PaginationParams represents offset pagination parameters for ledger history.
type PaginationParams struct {
	Skip  int `json:"skip" validate:"min=0"`
	Limit int `json:"limit" validate:"min=1,max=100"`
}

// PointHistory is a user's paginated ledger slice with totals.
type PointHistory struct {
	UserID      int64         `json:"user_id"`
	Name        string        `json:"name"`
	Email       string        `json:"email"`
	TotalPoints int           `json:"total_points"`
	Entries     []*PointEntry `json:"history"`
	TotalCount  int64         `json:"total_results"`
	Pagination  HistoryMeta   `json:"pagination"`
}

// HistoryMeta echoes the applied window and how many entries remain past it.
type HistoryMeta struct {
	Skip      int   `json:"skip"`
	Limit     int   `json:"limit"`
	Remaining int64 `json:"remaining"`
}

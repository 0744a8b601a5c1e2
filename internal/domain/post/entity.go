// Package post contains posts and the interaction ledger that records
// reactions (Like, Love, Save, ...) to them.
package post

import (
	"strings"
	"time"
)

// Post is a user-authored entry. Display order is newest first.
type Post struct {
	ID        int64     `json:"id"`
	AuthorID  int64     `json:"author_id"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

// InteractionType names a reaction kind.
type InteractionType string

// Built-in interaction types. The strategy registry is open, so other
// types may be registered.
const (
	InteractionLike InteractionType = "like"
	InteractionLove InteractionType = "love"
	InteractionSave InteractionType = "save"
)

// ParseInteractionType normalizes user input ("Like", " SAVE ") to a type.
// It does not check that a strategy exists for it.
func ParseInteractionType(s string) InteractionType {
	return InteractionType(strings.ToLower(strings.TrimSpace(s)))
}

// String implements fmt.Stringer.
func (t InteractionType) String() string {
	return string(t)
}

// Interaction is one ledger row. There is at most one row per
// (PostID, UserID, Type).
type Interaction struct {
	PostID    int64           `json:"post_id"`
	UserID    int64           `json:"user_id"`
	Type      InteractionType `json:"type"`
	CreatedAt time.Time       `json:"created_at"`
}

// Key identifies the ledger tuple an interaction belongs to.
type Key struct {
	PostID int64
	UserID int64
	Type   InteractionType
}

// Key returns the tuple of the interaction.
func (i Interaction) Key() Key {
	return Key{PostID: i.PostID, UserID: i.UserID, Type: i.Type}
}

package post

import "context"

// Repository is the CRUD boundary for posts. Absence is a nil result.
type Repository interface {
	Find(ctx context.Context, id int64) (*Post, error)
	FindAll(ctx context.Context) ([]Post, error)

	// FindRecentByAuthor returns at most limit posts, newest first.
	FindRecentByAuthor(ctx context.Context, authorID int64, limit int) ([]Post, error)

	// CountByAuthor returns the total number of posts of an author.
	CountByAuthor(ctx context.Context, authorID int64) (int, error)

	Create(ctx context.Context, p *Post) (int64, error)
	Update(ctx context.Context, p *Post) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// InteractionRepository is the interaction ledger.
//
// Rows carry no ID and are addressed by Key (post, user, type). Toggle is
// the only write: it covers create and delete, and a row has no mutable
// fields to update. There is no FindAll; the ledger is read per key
// (Exists), per post (CountByPost) or per user (FindByUser).
type InteractionRepository interface {
	// Toggle creates the row for key if it is absent and removes it if it
	// is present, as one atomic storage operation. It reports whether the
	// row exists afterwards. Two concurrent toggles that both observed an
	// absent row leave exactly one row and both report true.
	Toggle(ctx context.Context, key Key) (active bool, err error)

	// Exists reports whether the row for key is present.
	Exists(ctx context.Context, key Key) (bool, error)

	// CountByPost returns per-type tallies for a post.
	CountByPost(ctx context.Context, postID int64) (map[InteractionType]int, error)

	// FindByUser returns a user's rows of the given type, newest first.
	FindByUser(ctx context.Context, userID int64, t InteractionType) ([]Interaction, error)
}

package user

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store provides Postgres-backed access to accounts and relationship edges.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore constructs a Store over the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const userColumns = `id::text, username, email, password_hash, bio, avatar_key, created_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Bio, &u.AvatarKey, &u.CreatedAt)
	return u, err
}

// Create inserts a new account and returns the stored record.
func (s *Store) Create(ctx context.Context, username, email, passwordHash string) (User, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING `+userColumns,
		username, email, passwordHash)
	return scanUser(row)
}

// GetByID fetches an account by its identifier.
func (s *Store) GetByID(ctx context.Context, id string) (User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1::uuid`, id)
	return scanUser(row)
}

// GetByEmail fetches an account by email, used by the login flow.
func (s *Store) GetByEmail(ctx context.Context, email string) (User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// Exists reports whether an account with the given identifier exists.
func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1::uuid)`, id).Scan(&exists)
	return exists, err
}

// UpdateProfile updates the mutable profile fields and returns the new record.
func (s *Store) UpdateProfile(ctx context.Context, id, username, bio, avatarKey string) (User, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE users
		 SET username = $2, bio = $3, avatar_key = $4, updated_at = now()
		 WHERE id = $1::uuid
		 RETURNING `+userColumns,
		id, username, bio, avatarKey)
	return scanUser(row)
}

// UpdatePassword replaces the stored password hash.
func (s *Store) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1::uuid`,
		id, passwordHash)
	return err
}

// ListPeers returns the public profiles of every account other than selfID.
func (s *Store) ListPeers(ctx context.Context, selfID string, limit int) ([]Profile, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id::text, username, avatar_key
		 FROM users
		 WHERE id <> $1::uuid
		 ORDER BY username
		 LIMIT $2`,
		selfID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectProfiles(rows)
}

// Friends returns the public profiles of the user's committed friends.
func (s *Store) Friends(ctx context.Context, id string) ([]Profile, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT u.id::text, u.username, u.avatar_key
		 FROM friendships f
		 JOIN users u ON u.id = f.friend_id
		 WHERE f.user_id = $1::uuid
		 ORDER BY u.username`,
		id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectProfiles(rows)
}

func collectProfiles(rows pgx.Rows) ([]Profile, error) {
	profiles := make([]Profile, 0)
	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.ID, &p.Username, &p.Avatar); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// PairState returns the authoritative relationship state for the ordered pair (a, b).
// It is the single state lookup the friend-request state machine consults; the
// caller must hold the pair's serialization lock for the read-check-write to be safe.
func (s *Store) PairState(ctx context.Context, a, b string) (PairState, error) {
	var friends, sent, received bool
	err := s.pool.QueryRow(ctx,
		`SELECT
		   EXISTS (SELECT 1 FROM friendships WHERE user_id = $1::uuid AND friend_id = $2::uuid),
		   EXISTS (SELECT 1 FROM friend_requests WHERE sender_id = $1::uuid AND recipient_id = $2::uuid),
		   EXISTS (SELECT 1 FROM friend_requests WHERE sender_id = $2::uuid AND recipient_id = $1::uuid)`,
		a, b).Scan(&friends, &sent, &received)
	if err != nil {
		return PairNone, err
	}

	switch {
	case friends:
		return PairFriends, nil
	case sent:
		return PairPendingSent, nil
	case received:
		return PairPendingReceived, nil
	default:
		return PairNone, nil
	}
}

// CreateRequest records a pending request from sender to recipient.
func (s *Store) CreateRequest(ctx context.Context, senderID, recipientID string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO friend_requests (sender_id, recipient_id) VALUES ($1::uuid, $2::uuid)`,
		senderID, recipientID)
	return err
}

// AcceptRequest converts the pending request from sender to recipient into a committed,
// symmetric friendship. Both edge changes happen in one transaction: either both
// users gain the friendship and the request disappears, or nothing changes.
// It returns pgx.ErrNoRows when no such pending request exists.
func (s *Store) AcceptRequest(ctx context.Context, senderID, recipientID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`DELETE FROM friend_requests WHERE sender_id = $1::uuid AND recipient_id = $2::uuid`,
		senderID, recipientID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO friendships (user_id, friend_id)
		 VALUES ($1::uuid, $2::uuid), ($2::uuid, $1::uuid)
		 ON CONFLICT DO NOTHING`,
		senderID, recipientID)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// DeclineRequest removes the pending request from sender to recipient.
// It returns pgx.ErrNoRows when no such pending request exists.
func (s *Store) DeclineRequest(ctx context.Context, senderID, recipientID string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM friend_requests WHERE sender_id = $1::uuid AND recipient_id = $2::uuid`,
		senderID, recipientID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// RemoveFriend deletes the friendship edges in both directions. Removing a
// non-existent friendship is a no-op, which makes the operation idempotent.
func (s *Store) RemoveFriend(ctx context.Context, a, b string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM friendships
		 WHERE (user_id = $1::uuid AND friend_id = $2::uuid)
		    OR (user_id = $2::uuid AND friend_id = $1::uuid)`,
		a, b)
	return err
}

// Block adds target to the user's block list if absent. Blocking does not touch
// friendships or pending requests.
func (s *Store) Block(ctx context.Context, userID, targetID string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO blocked_users (user_id, blocked_id)
		 VALUES ($1::uuid, $2::uuid)
		 ON CONFLICT DO NOTHING`,
		userID, targetID)
	return err
}

// IsBlocked reports whether userID has blocked targetID.
func (s *Store) IsBlocked(ctx context.Context, userID, targetID string) (bool, error) {
	var blocked bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM blocked_users WHERE user_id = $1::uuid AND blocked_id = $2::uuid
		 )`,
		userID, targetID).Scan(&blocked)
	if err != nil {
		return false, fmt.Errorf("block lookup: %w", err)
	}
	return blocked, nil
}

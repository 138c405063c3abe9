package message

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the durable ledger the Service writes through. The Postgres
// implementation below is the production one; tests substitute an in-memory fake.
type Store interface {
	// Insert appends the message and returns the stored record with its
	// server-assigned creation time.
	Insert(ctx context.Context, m Message) (Message, error)

	// History returns every message between the pair, both directions, ascending
	// by commit order.
	History(ctx context.Context, a, b string) ([]Message, error)

	// UnreadCounts returns, per peer, how many unread messages that peer has sent
	// to owner. The rows counted are exactly the rows MarkRead would clear.
	UnreadCounts(ctx context.Context, owner string) (map[string]int, error)

	// MarkRead flips the read flag on every unread message from peer to owner.
	MarkRead(ctx context.Context, owner, peer string) error
}

// PGStore is the Postgres-backed message ledger.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore constructs a PGStore over the given connection pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

const messageColumns = `id::text, from_id::text, to_id::text, content, msg_type, read, created_at`

func scanMessage(row pgx.Row) (Message, error) {
	var m Message
	err := row.Scan(&m.ID, &m.From, &m.To, &m.Content, &m.Type, &m.Read, &m.CreatedAt)
	return m, err
}

// Insert appends a message row; created_at is assigned by the database so commit
// order stays authoritative.
func (s *PGStore) Insert(ctx context.Context, m Message) (Message, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO messages (id, from_id, to_id, content, msg_type)
		 VALUES ($1::uuid, $2::uuid, $3::uuid, $4, $5)
		 RETURNING `+messageColumns,
		m.ID, m.From, m.To, m.Content, string(m.Type))
	return scanMessage(row)
}

// History returns the conversation between a and b, ascending. The id tiebreak
// keeps ordering stable for rows committed in the same microsecond.
func (s *PGStore) History(ctx context.Context, a, b string) ([]Message, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+messageColumns+`
		 FROM messages
		 WHERE (from_id = $1::uuid AND to_id = $2::uuid)
		    OR (from_id = $2::uuid AND to_id = $1::uuid)
		 ORDER BY created_at, id`,
		a, b)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]Message, 0)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// UnreadCounts groups the owner's unread messages by sender.
func (s *PGStore) UnreadCounts(ctx context.Context, owner string) (map[string]int, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT from_id::text, COUNT(*)
		 FROM messages
		 WHERE to_id = $1::uuid AND read = FALSE
		 GROUP BY from_id`,
		owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var peer string
		var count int
		if err := rows.Scan(&peer, &count); err != nil {
			return nil, err
		}
		counts[peer] = count
	}
	return counts, rows.Err()
}

// MarkRead clears the unread flag on everything peer has sent to owner.
// Already-read rows are untouched, so repeated calls are no-ops.
func (s *PGStore) MarkRead(ctx context.Context, owner, peer string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE messages
		 SET read = TRUE
		 WHERE from_id = $2::uuid AND to_id = $1::uuid AND read = FALSE`,
		owner, peer)
	return err
}

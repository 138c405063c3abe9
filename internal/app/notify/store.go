package notify

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store provides Postgres-backed access to the notification ledger.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore constructs a Store over the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const notificationColumns = `id::text, recipient_id::text, COALESCE(sender_id::text, ''), note_type, sender_name, read, created_at`

func scanNotification(row pgx.Row) (Notification, error) {
	var n Notification
	err := row.Scan(&n.ID, &n.Recipient, &n.Sender, &n.Type, &n.SenderName, &n.Read, &n.CreatedAt)
	return n, err
}

// Create appends a notification to the recipient's ledger and returns the stored record.
func (s *Store) Create(ctx context.Context, recipientID, senderID string, noteType Type, senderName string) (Notification, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO notifications (recipient_id, sender_id, note_type, sender_name)
		 VALUES ($1::uuid, NULLIF($2, '')::uuid, $3, $4)
		 RETURNING `+notificationColumns,
		recipientID, senderID, string(noteType), senderName)
	return scanNotification(row)
}

// GetByID fetches a single notification.
func (s *Store) GetByID(ctx context.Context, id string) (Notification, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE id = $1::uuid`, id)
	return scanNotification(row)
}

// ListRecent returns the recipient's notifications, newest first.
func (s *Store) ListRecent(ctx context.Context, recipientID string, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+notificationColumns+`
		 FROM notifications
		 WHERE recipient_id = $1::uuid
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		recipientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := make([]Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkRead flips a single notification's read flag.
func (s *Store) MarkRead(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1::uuid`, id)
	return err
}

// MarkAllRead flips the read flag on every unread notification of the recipient.
// Repeated calls are no-ops after the first.
func (s *Store) MarkAllRead(ctx context.Context, recipientID string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE notifications SET read = TRUE WHERE recipient_id = $1::uuid AND read = FALSE`,
		recipientID)
	return err
}

// ClearAll deletes every notification of the recipient.
func (s *Store) ClearAll(ctx context.Context, recipientID string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM notifications WHERE recipient_id = $1::uuid`, recipientID)
	return err
}

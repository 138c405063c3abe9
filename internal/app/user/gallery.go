package user

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

// Image is one entry in a user's personal gallery.
type Image struct {
	ID        string    `json:"id"`
	Key       string    `json:"fileKey"`
	FileName  string    `json:"fileName"`
	CreatedAt time.Time `json:"createdAt"`
}

const imageColumns = `id::text, object_key, file_name, created_at`

func scanImage(row pgx.Row) (Image, error) {
	var img Image
	err := row.Scan(&img.ID, &img.Key, &img.FileName, &img.CreatedAt)
	return img, err
}

// AddImage records a gallery entry pointing at an uploaded object.
func (s *Store) AddImage(ctx context.Context, userID, key, fileName string) (Image, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO user_images (user_id, object_key, file_name)
		 VALUES ($1::uuid, $2, $3)
		 RETURNING `+imageColumns,
		userID, key, fileName)
	return scanImage(row)
}

// ListImages returns the user's gallery, newest first.
func (s *Store) ListImages(ctx context.Context, userID string) ([]Image, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+imageColumns+`
		 FROM user_images
		 WHERE user_id = $1::uuid
		 ORDER BY created_at DESC, id`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := make([]Image, 0)
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// DeleteImage removes the gallery entry and returns it so the caller can clean
// up the stored object. The owner filter doubles as the authorization check;
// it returns pgx.ErrNoRows when the entry is missing or owned by someone else.
func (s *Store) DeleteImage(ctx context.Context, userID, imageID string) (Image, error) {
	row := s.pool.QueryRow(ctx,
		`DELETE FROM user_images
		 WHERE id = $1::uuid AND user_id = $2::uuid
		 RETURNING `+imageColumns,
		imageID, userID)
	return scanImage(row)
}

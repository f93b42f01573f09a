package store

import (
	"context"
	"time"

	"example.com/campusfeed/internal/models"
	"github.com/gocql/gocql"
)

// timelineBucket is the only partition of posts_timeline.
const timelineBucket = "all"

// --- User operations ---

// FindUserByEmail returns the user registered with email, or nil if none.
func (s *CassandraStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var (
		id   gocql.UUID
		user models.User
	)
	err := s.Session.Query(`
		SELECT user_id, first_name, last_name, email, password, created_at
		FROM users_by_email WHERE email = ?`,
		email,
	).WithContext(ctx).Scan(&id, &user.FirstName, &user.LastName, &user.Email, &user.Password, &user.CreatedAt)
	if err != nil {
		if err == gocql.ErrNotFound {
			return nil, nil
		}
		logg.Error("store", "Failed to query user by email", err)
		return nil, wrap("find user by email", err)
	}
	user.ID = id.String()
	return &user, nil
}

// CreateUser inserts the user with a lightweight transaction on the email
// key, so a concurrent duplicate surfaces as ErrDuplicateEmail.
func (s *CassandraStore) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	id := gocql.TimeUUID()
	user.ID = id.String()
	user.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	result := make(map[string]interface{})
	applied, err := s.Session.Query(`
		INSERT INTO users_by_email (email, user_id, first_name, last_name, password, created_at)
		VALUES (?, ?, ?, ?, ?, ?) IF NOT EXISTS`,
		user.Email, id, user.FirstName, user.LastName, user.Password, user.CreatedAt,
	).WithContext(ctx).MapScanCAS(result)
	if err != nil {
		logg.Error("store", "Failed to create user", err)
		return models.User{}, wrap("create user", err)
	}

	if !applied {
		return models.User{}, ErrDuplicateEmail
	}

	logg.Info("store", "User created successfully (email anonymized)")
	return user, nil
}

// ListUserDisplayNames scans users_by_email; order is token order.
func (s *CassandraStore) ListUserDisplayNames(ctx context.Context) ([]string, error) {
	iter := s.Session.Query(`SELECT first_name, last_name FROM users_by_email`).WithContext(ctx).Iter()

	var first, last string
	res := []string{}
	for iter.Scan(&first, &last) {
		res = append(res, first+" "+last)
	}

	if err := iter.Close(); err != nil {
		logg.Error("store", "Failed to list user names", err)
		return nil, wrap("list user display names", err)
	}
	return res, nil
}

// --- Post operations ---

func (s *CassandraStore) CreatePost(ctx context.Context, post models.Post) (models.Post, error) {
	id := gocql.TimeUUID()
	post.ID = id.String()
	post.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	if err := s.Session.Query(`
		INSERT INTO posts_timeline (bucket, created_at, post_id, image_url, caption)
		VALUES (?, ?, ?, ?, ?)`,
		timelineBucket, post.CreatedAt, id, post.ImageURL, post.Caption,
	).WithContext(ctx).Exec(); err != nil {
		logg.Error("store", "Failed to add post", err)
		return models.Post{}, wrap("create post", err)
	}

	logg.Info("store", "Post added to timeline (post content anonymized)")
	return post, nil
}

// ListPosts relies on the CLUSTERING ORDER BY (created_at DESC) of the table.
func (s *CassandraStore) ListPosts(ctx context.Context) ([]models.Post, error) {
	iter := s.Session.Query(`
		SELECT post_id, image_url, caption, created_at
		FROM posts_timeline WHERE bucket = ?`,
		timelineBucket,
	).WithContext(ctx).Iter()

	res := []models.Post{}
	var (
		pid       gocql.UUID
		imageURL  string
		caption   string
		createdAt time.Time
	)
	for iter.Scan(&pid, &imageURL, &caption, &createdAt) {
		res = append(res, models.Post{
			ID:        pid.String(),
			ImageURL:  imageURL,
			Caption:   caption,
			CreatedAt: createdAt,
		})
	}

	if err := iter.Close(); err != nil {
		logg.Error("store", "Failed to retrieve posts", err)
		return nil, wrap("list posts", err)
	}
	return res, nil
}

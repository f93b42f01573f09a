package store

import (
	"context"
	"errors"
	"fmt"

	config "example.com/campusfeed/internal/init"
	"example.com/campusfeed/internal/logger"
	"example.com/campusfeed/internal/models"
)

var logg = logger.New()

// ErrDuplicateEmail is returned by CreateUser when the backend itself detects
// that the email is already registered.
var ErrDuplicateEmail = errors.New("store: email already registered")

// Error wraps a backend failure (connectivity or query) with the gateway
// operation that produced it.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return "store: " + e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// --- Interfaces ---

type StoreInterface interface {
	// FindUserByEmail returns nil, nil when no user has that email.
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	CreatePost(ctx context.Context, post models.Post) (models.Post, error)
	// ListPosts returns every post, newest first.
	ListPosts(ctx context.Context) ([]models.Post, error)
	ListUserDisplayNames(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
	Close()
}

// New connects to the backend selected by cfg.StoreDriver.
func New(ctx context.Context, cfg *config.Config) (StoreInterface, error) {
	switch cfg.StoreDriver {
	case "mongo", "":
		return NewMongo(ctx, cfg)
	case "cassandra":
		return NewCassandra(cfg)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

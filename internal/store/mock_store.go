package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"example.com/campusfeed/internal/models"
)

// MockStore simulates the gateway in memory for testing. Like the Mongo
// backend it does not enforce email uniqueness on insert.
type MockStore struct {
	mu         sync.Mutex
	Users      []models.User
	Posts      []models.Post
	ShouldFail bool             // flag to simulate failures
	Now        func() time.Time // clock for CreatedAt; time.Now when nil
	seq        int
}

// NewMock initializes a new mock store
func NewMock() *MockStore {
	return &MockStore{}
}

func (m *MockStore) Close() {}

func (m *MockStore) Ping(ctx context.Context) error {
	if m.ShouldFail {
		return wrap("ping", errors.New("mock: ping failed"))
	}
	return nil
}

func (m *MockStore) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now().UTC()
}

func (m *MockStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldFail {
		return nil, wrap("find user by email", errors.New("mock: find user failed"))
	}
	for _, u := range m.Users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

func (m *MockStore) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldFail {
		return models.User{}, wrap("create user", errors.New("mock: create user failed"))
	}
	m.seq++
	user.ID = fmt.Sprintf("user_%d", m.seq)
	user.CreatedAt = m.now()
	m.Users = append(m.Users, user)
	return user, nil
}

func (m *MockStore) ListUserDisplayNames(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldFail {
		return nil, wrap("list user display names", errors.New("mock: list users failed"))
	}
	res := make([]string, 0, len(m.Users))
	for _, u := range m.Users {
		res = append(res, u.DisplayName())
	}
	return res, nil
}

func (m *MockStore) CreatePost(ctx context.Context, post models.Post) (models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldFail {
		return models.Post{}, wrap("create post", errors.New("mock: create post failed"))
	}
	m.seq++
	post.ID = fmt.Sprintf("post_%d", m.seq)
	post.CreatedAt = m.now()
	m.Posts = append(m.Posts, post)
	return post, nil
}

func (m *MockStore) ListPosts(ctx context.Context) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldFail {
		return nil, wrap("list posts", errors.New("mock: list posts failed"))
	}
	res := make([]models.Post, len(m.Posts))
	copy(res, m.Posts)
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].CreatedAt.After(res[j].CreatedAt)
	})
	return res, nil
}

// UserSnapshot returns a copy of the stored users.
func (m *MockStore) UserSnapshot() []models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.User, len(m.Users))
	copy(out, m.Users)
	return out
}

// PostCount returns the number of stored posts.
func (m *MockStore) PostCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Posts)
}

// ---------------------------------------------
// MockStoreFail always returns errors for negative tests
type MockStoreFail struct{}

func (m *MockStoreFail) Close() {}

func (m *MockStoreFail) Ping(ctx context.Context) error {
	return wrap("ping", errors.New("mock store ping failed"))
}

func (m *MockStoreFail) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, wrap("find user by email", errors.New("mock store find user failed"))
}

func (m *MockStoreFail) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	return models.User{}, wrap("create user", errors.New("mock store create user failed"))
}

func (m *MockStoreFail) ListUserDisplayNames(ctx context.Context) ([]string, error) {
	return nil, wrap("list user display names", errors.New("mock store list users failed"))
}

func (m *MockStoreFail) CreatePost(ctx context.Context, post models.Post) (models.Post, error) {
	return models.Post{}, wrap("create post", errors.New("mock store create post failed"))
}

func (m *MockStoreFail) ListPosts(ctx context.Context) ([]models.Post, error) {
	return nil, wrap("list posts", errors.New("mock store list posts failed"))
}

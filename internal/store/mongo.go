package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	config "example.com/campusfeed/internal/init"
	"example.com/campusfeed/internal/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection = "users"
	postsCollection = "posts"
)

// MongoStore keeps users and posts as documents. Email uniqueness is only
// checked by the caller's lookup; no unique index is created.
type MongoStore struct {
	client *mongo.Client
	users  *mongo.Collection
	posts  *mongo.Collection
}

// NewMongo connects and pings; an unreachable server is an error.
func NewMongo(ctx context.Context, cfg *config.Config) (*MongoStore, error) {
	opts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetConnectTimeout(cfg.MongoTimeout).
		SetServerSelectionTimeout(cfg.MongoTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.MongoTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(cfg.MongoDatabase)
	logg.Info("store", "Connected to MongoDB (uri anonymized)")
	return &MongoStore{
		client: client,
		users:  db.Collection(usersCollection),
		posts:  db.Collection(postsCollection),
	}, nil
}

func (s *MongoStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		logg.Error("store", "Failed to query user by email", err)
		return nil, wrap("find user by email", err)
	}
	return &user, nil
}

func (s *MongoStore) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	if _, err := s.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, ErrDuplicateEmail
		}
		logg.Error("store", "Failed to create user", err)
		return models.User{}, wrap("create user", err)
	}

	logg.Info("store", "User created successfully (email anonymized)")
	return user, nil
}

func (s *MongoStore) ListUserDisplayNames(ctx context.Context) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"fname": 1, "lname": 1})
	cur, err := s.users.Find(ctx, bson.D{}, opts)
	if err != nil {
		logg.Error("store", "Failed to list user names", err)
		return nil, wrap("list user display names", err)
	}

	var rows []struct {
		FirstName string `bson:"fname"`
		LastName  string `bson:"lname"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		logg.Error("store", "Failed to decode user names", err)
		return nil, wrap("list user display names", err)
	}

	res := make([]string, 0, len(rows))
	for _, r := range rows {
		res = append(res, r.FirstName+" "+r.LastName)
	}
	return res, nil
}

func (s *MongoStore) CreatePost(ctx context.Context, post models.Post) (models.Post, error) {
	post.ID = uuid.NewString()
	post.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	if _, err := s.posts.InsertOne(ctx, post); err != nil {
		logg.Error("store", "Failed to add post", err)
		return models.Post{}, wrap("create post", err)
	}

	logg.Info("store", "Post added (post content anonymized)")
	return post, nil
}

func (s *MongoStore) ListPosts(ctx context.Context) ([]models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := s.posts.Find(ctx, bson.D{}, opts)
	if err != nil {
		logg.Error("store", "Failed to retrieve posts", err)
		return nil, wrap("list posts", err)
	}

	res := []models.Post{}
	if err := cur.All(ctx, &res); err != nil {
		logg.Error("store", "Failed to decode posts", err)
		return nil, wrap("list posts", err)
	}
	return res, nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return wrap("ping", s.client.Ping(ctx, nil))
}

func (s *MongoStore) Close() {
	if s.client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.client.Disconnect(ctx); err != nil {
		logg.Error("store", "Error disconnecting MongoDB", err)
		return
	}
	logg.Info("store", "MongoDB connection closed")
}

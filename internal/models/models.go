package models

import "time"

// User is a registered account. Password is stored as submitted.
type User struct {
	ID        string    `json:"id" bson:"_id"`
	FirstName string    `json:"fname" bson:"fname"`
	LastName  string    `json:"lname" bson:"lname"`
	Email     string    `json:"email" bson:"email"`
	Password  string    `json:"-" bson:"password"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// DisplayName is "first last".
func (u User) DisplayName() string {
	return u.FirstName + " " + u.LastName
}

type Post struct {
	ID        string    `json:"id" bson:"_id"`
	ImageURL  string    `json:"imageUrl" bson:"imageUrl"`
	Caption   string    `json:"caption" bson:"caption"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// Activity event types published to the broker.
const (
	EventUserRegistered = "user_registered"
	EventPostCreated    = "post_created"
)

// ActivityEvent is the broker payload for a completed write. It carries
// identifiers only, never credentials or content.
type ActivityEvent struct {
	Type string    `json:"type"`
	ID   string    `json:"id"`
	At   time.Time `json:"at"`
}

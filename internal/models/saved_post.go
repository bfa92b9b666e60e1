package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Save links a user to a post they bookmarked
type Save struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	User      string             `json:"user" bson:"user"`
	Post      string             `json:"post" bson:"post"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// SavePost is the input of the save mutation.
type SavePost struct {
	PostID string `json:"post_id" validate:"required"`
	UserID string `json:"user_id" validate:"required"`
}

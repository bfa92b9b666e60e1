package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a photo post stored in MongoDB
type Post struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Creator   string             `json:"creator" bson:"creator"` // ID of the user document of the author
	Caption   string             `json:"caption" bson:"caption"`
	ImageURL  string             `json:"image_url" bson:"image_url"` // Preview URL of ImageID
	ImageID   string             `json:"image_id" bson:"image_id"`
	Location  string             `json:"location" bson:"location"`
	Tags      []string           `json:"tags" bson:"tags"`
	Likes     []string           `json:"likes" bson:"likes"` // IDs of the users who liked the post
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// NewPost is the input of post creation. Tags is the raw comma separated
// text typed by the user.
type NewPost struct {
	UserID   string `validate:"required"`
	Caption  string `validate:"max=2200"`
	File     *File  `validate:"required"`
	Location string `validate:"max=100"`
	Tags     string `validate:"max=500"`
}

// UpdatePost is the input of a post update. ImageID and ImageURL describe the
// current image; File replaces it when set.
type UpdatePost struct {
	PostID   string `validate:"required"`
	Caption  string `validate:"max=2200"`
	ImageID  string `validate:"required"`
	ImageURL string `validate:"required"`
	File     *File
	Location string `validate:"max=100"`
	Tags     string `validate:"max=500"`
}

// DeletePost identifies a post and the image it references.
type DeletePost struct {
	PostID  string `json:"post_id" validate:"required"`
	ImageID string `json:"image_id" validate:"required"`
}

// LikePost replaces the like list of a post.
type LikePost struct {
	PostID string   `json:"post_id" validate:"required"`
	Likes  []string `json:"likes" validate:"dive,required"`
}

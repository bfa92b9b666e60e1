package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the public profile document of an account, stored in MongoDB
type User struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AccountID string             `json:"account_id" bson:"account_id"`
	Name      string             `json:"name" bson:"name"`
	Username  string             `json:"username" bson:"username"`
	Email     string             `json:"email" bson:"email"`
	Bio       string             `json:"bio" bson:"bio"`
	ImageURL  string             `json:"image_url" bson:"image_url"`
	ImageID   string             `json:"image_id,omitempty" bson:"image_id,omitempty"` // Empty for generated avatars
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// CurrentUser is the signed-in user together with their saved posts
type CurrentUser struct {
	User
	Saves []Save `json:"saves"`
}

// NewUser is the signup form
type NewUser struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Username string `json:"username" validate:"required,min=2,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// NewUserDocument is the profile document written for a fresh account
type NewUserDocument struct {
	AccountID string `validate:"required"`
	Name      string `validate:"required,max=50"`
	Username  string `validate:"max=30"`
	Email     string `validate:"required,email"`
	ImageURL  string `validate:"required,url"`
}

// UpdateUser is the profile edit form. ImageID and ImageURL describe the
// current avatar; File replaces it when set.
type UpdateUser struct {
	UserID   string `validate:"required"`
	Name     string `validate:"required,min=2,max=50"`
	Bio      string `validate:"max=2200"`
	ImageID  string
	ImageURL string `validate:"required"`
	File     *File
}

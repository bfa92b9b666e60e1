package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Account holds login credentials (PostgreSQL)
type Account struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name         string    `json:"name"`
	Email        string    `json:"email" gorm:"uniqueIndex"`
	PasswordHash string    `json:"-"`                                  // bcrypt hash, empty for Firebase-only accounts
	FirebaseUID  *string   `json:"firebase_uid,omitempty" gorm:"uniqueIndex"` // Link to Firebase User UID
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Session is a signed-in device (PostgreSQL). Token is only set right
// after sign-in.
type Session struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	AccountID string    `json:"account_id" gorm:"index"`
	ExpiresAt time.Time `json:"expires_at" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`
	Token     string    `json:"token,omitempty" gorm:"-"`
}

// SignIn is the email/password login form
type SignIn struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// FirebaseSignIn exchanges a Firebase ID token for a session
type FirebaseSignIn struct {
	IDToken string `json:"idToken" validate:"required"`
}

// JwtCustomClaims are the claims of a session token. RegisteredClaims.ID
// carries the session ID.
type JwtCustomClaims struct {
	AccountID string `json:"account_id"`
	jwt.RegisteredClaims
}

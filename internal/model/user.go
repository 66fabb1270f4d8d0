package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a document in the users collection. Username and email carry
// unique indexes.
type User struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Username     string             `json:"username" bson:"username"`
	Email        string             `json:"email" bson:"email"`
	FullName     string             `json:"full_name" bson:"full_name"`
	PasswordHash string             `json:"-" bson:"password"` // Never expose in JSON
	Avatar       string             `json:"avatar" bson:"avatar"`
	CoverImage   string             `json:"cover_image,omitempty" bson:"cover_image,omitempty"`
	RefreshToken string             `json:"-" bson:"refresh_token,omitempty"` // Single active value; empty means logged out
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}

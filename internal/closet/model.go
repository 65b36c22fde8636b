package closet

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Item is one garment in a user's virtual closet.
type Item struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      string             `bson:"user_id" json:"user_id"`
	Name        string             `bson:"name" json:"name"`
	Category    string             `bson:"category" json:"category"`
	Color       string             `bson:"color" json:"color"`
	ImageURL    string             `bson:"image_url,omitempty" json:"image_url,omitempty"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Tags        []string           `bson:"tags" json:"tags"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// CreateRequest is the payload for adding a closet item.
type CreateRequest struct {
	Name        string   `json:"name" validate:"required,min=1,max=100"`
	Category    string   `json:"category" validate:"required"`
	Color       string   `json:"color" validate:"required"`
	ImageURL    string   `json:"image_url,omitempty" validate:"omitempty,url"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// UpdateRequest carries a partial update; nil fields are left untouched.
type UpdateRequest struct {
	Name        *string   `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Category    *string   `json:"category,omitempty"`
	Color       *string   `json:"color,omitempty"`
	Description *string   `json:"description,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
}

package users

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the stored account document.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Email          string             `bson:"email"`
	Username       string             `bson:"username"`
	HashedPassword string             `bson:"hashed_password"`
	CreatedAt      time.Time          `bson:"created_at"`
}

// DTO is the public representation of a user. The password hash never
// leaves the service layer.
type DTO struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// ToDTO strips credentials from a stored user.
func ToDTO(u User) DTO {
	return DTO{
		ID:        u.ID.Hex(),
		Email:     u.Email,
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
	}
}

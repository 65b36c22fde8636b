package outfits

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/stylesense/stylesense-backend/internal/vision"
)

// Comment is a single remark on a public analysis. The username is
// denormalized at write time and never updated afterwards.
type Comment struct {
	UserID    string    `bson:"user_id" json:"user_id"`
	Username  string    `bson:"username" json:"username"`
	Text      string    `bson:"text" json:"text"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Analysis is a stored outfit analysis with its social state. Likes and
// dislikes hold user ids and are kept disjoint by the toggle operations.
type Analysis struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID         string             `bson:"user_id" json:"user_id"`
	ImageFilename  string             `bson:"image_filename" json:"image_filename"`
	AnalysisResult vision.Result      `bson:"analysis_result" json:"analysis_result"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	IsPublic       bool               `bson:"is_public" json:"is_public"`
	Tags           []string           `bson:"tags" json:"tags"`
	Likes          []string           `bson:"likes" json:"likes"`
	Dislikes       []string           `bson:"dislikes" json:"dislikes"`
	Comments       []Comment          `bson:"comments" json:"comments"`
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document is a stored file owned by a user. Links grant visitors scoped
// access to it through the object store.
type Document struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"user_id" json:"userId"`
	Name        string             `bson:"name" json:"name" validate:"required,min=1,max=255"`
	StoragePath string             `bson:"storage_path" json:"-"`
	Size        int64              `bson:"size" json:"size"`
	MimeType    string             `bson:"mime_type" json:"mimeType"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

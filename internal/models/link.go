package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Link is a bearer capability bound to one document. Its token is the
// public-facing identifier and must come from a cryptographically strong
// random source.
type Link struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Token         string             `bson:"token" json:"token" validate:"required"`
	DocumentID    primitive.ObjectID `bson:"document_id" json:"documentId"`
	CreatedBy     primitive.ObjectID `bson:"created_by" json:"createdBy"`
	Alias         string             `bson:"alias,omitempty" json:"alias,omitempty"`
	IsPublic      bool               `bson:"is_public" json:"isPublic"`
	Password      string             `bson:"password" json:"-"`
	ExpiresAt     time.Time          `bson:"expires_at" json:"expiresAt"`
	VisitorFields []string           `bson:"visitor_fields" json:"visitorFields"`
	ViewCount     int                `bson:"view_count" json:"viewCount"`
	CreatedAt     time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updatedAt"`
}

// HasPassword reports whether the link carries a password gate.
func (l *Link) HasPassword() bool {
	return l.Password != ""
}

// HasGate reports whether any gate dimension is configured. Password and
// visitor fields are independent of IsPublic.
func (l *Link) HasGate() bool {
	return l.HasPassword() || len(l.VisitorFields) > 0
}

// IsFullyPublic reports whether access requires no gate at all, in which
// case metadata reads issue the signed URL inline.
func (l *Link) IsFullyPublic() bool {
	return l.IsPublic && !l.HasGate()
}

// IsExpired reports whether the link is past its expiration time.
func (l *Link) IsExpired(now time.Time) bool {
	return now.After(l.ExpiresAt)
}

// VisitorRecord is one logged access for a gated link. Fully public links
// never produce visitor records.
type VisitorRecord struct {
	ID        primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	LinkID    primitive.ObjectID     `bson:"link_id" json:"linkId"`
	FirstName string                 `bson:"first_name,omitempty" json:"firstName,omitempty"`
	LastName  string                 `bson:"last_name,omitempty" json:"lastName,omitempty"`
	Email     string                 `bson:"email,omitempty" json:"email,omitempty"`
	Metadata  map[string]interface{} `bson:"metadata,omitempty" json:"metadata,omitempty"`
	VisitedAt time.Time              `bson:"visited_at" json:"visitedAt"`
	UpdatedAt time.Time              `bson:"updated_at" json:"updatedAt"`
}

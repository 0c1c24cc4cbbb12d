package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AnalyticsEventType string

const (
	EventLinkCreated    AnalyticsEventType = "link_created"
	EventLinkViewed     AnalyticsEventType = "link_viewed"
	EventFileDownloaded AnalyticsEventType = "file_downloaded"
	EventLinkDeleted    AnalyticsEventType = "link_deleted"
)

// AnalyticsEvent is a fire-and-forget usage event. Writers never block the
// access path on it.
type AnalyticsEvent struct {
	ID         primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	EventType  AnalyticsEventType     `bson:"event_type" json:"eventType"`
	LinkID     primitive.ObjectID     `bson:"link_id,omitempty" json:"linkId,omitempty"`
	DocumentID primitive.ObjectID     `bson:"document_id,omitempty" json:"documentId,omitempty"`
	Metadata   map[string]interface{} `bson:"metadata,omitempty" json:"metadata,omitempty"`
	Timestamp  time.Time              `bson:"timestamp" json:"timestamp"`
}

// Package model defines data structure.
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is the stored form of a chat message. Optional fields are pointers
// so an absent value persists as BSON null and round-trips back to the client
// as JSON null. The store assigns the identifier on insert; nothing mutates a
// message afterwards.
type Message struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Username    string             `bson:"username"`
	Text        *string            `bson:"text"`
	FileURL     *string            `bson:"file_url"`
	ContentType *string            `bson:"content_type"`
	CreatedAt   time.Time          `bson:"created_at"`
}

package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TimeLayout is RFC 3339 with a fixed-width millisecond fraction. Fixed width
// keeps the textual form lexicographically ordered by time, which the listing
// relies on when it sorts a page by normalized timestamps.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// MessageOut is the wire shape of a listed message. Every field except
// username may be absent in storage; absent fields surface as JSON null.
type MessageOut struct {
	ID          string  `json:"id"`
	Username    string  `json:"username"`
	Text        *string `json:"text"`
	FileURL     *string `json:"file_url"`
	ContentType *string `json:"content_type"`
	CreatedAt   *string `json:"created_at"`
}

// Normalize converts a raw store document into the wire shape. It is tolerant
// on purpose: unexpected field shapes degrade to absent values instead of
// failing the whole listing.
func Normalize(doc bson.M) MessageOut {
	out := MessageOut{
		Username:    stringValue(doc, "username"),
		Text:        optionalString(doc, "text"),
		FileURL:     optionalString(doc, "file_url"),
		ContentType: optionalString(doc, "content_type"),
	}

	switch id := doc["_id"].(type) {
	case primitive.ObjectID:
		out.ID = id.Hex()
	case string:
		out.ID = id
	}

	if ts, ok := timeValue(doc, "created_at"); ok {
		s := ts.UTC().Format(TimeLayout)
		out.CreatedAt = &s
	}
	return out
}

func stringValue(doc bson.M, key string) string {
	s, _ := doc[key].(string)
	return s
}

func optionalString(doc bson.M, key string) *string {
	if s, ok := doc[key].(string); ok {
		return &s
	}
	return nil
}

func timeValue(doc bson.M, key string) (time.Time, bool) {
	switch v := doc[key].(type) {
	case primitive.DateTime:
		return v.Time(), true
	case time.Time:
		return v, true
	}
	return time.Time{}, false
}

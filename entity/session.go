package entity

import "time"

type SessionStatus string

const (
	SessionStatusDraft     SessionStatus = "draft"
	SessionStatusPublished SessionStatus = "published"
)

func (s SessionStatus) Valid() bool {
	return s == SessionStatusDraft || s == SessionStatusPublished
}

// Session is one authored wellness session. ContentURL points at an
// externally hosted JSON file.
type Session struct {
	ID         string        `bson:"_id" json:"_id"`
	OwnerID    string        `bson:"user_id" json:"user_id"`
	Title      string        `bson:"title" json:"title"`
	Tags       []string      `bson:"tags" json:"tags"`
	ContentURL string        `bson:"json_file_url" json:"json_file_url"`
	Status     SessionStatus `bson:"status" json:"status"`
	CreatedAt  time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time     `bson:"updated_at" json:"updated_at"`
}

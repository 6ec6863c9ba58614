package model

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode/utf8"
)

const MaxTitleLength = 100

// Tags is an ordered tag list. In JSON it is accepted either as an array of
// strings or as a single comma-delimited string.
type Tags []string

// ParseTags splits raw on commas, trimming each element and dropping empties.
func ParseTags(raw string) Tags {
	return Tags(strings.Split(raw, ",")).Normalize()
}

// Normalize returns a copy with every element trimmed and empty ones removed.
// The result is never nil.
func (t Tags) Normalize() Tags {
	out := make(Tags, 0, len(t))
	for _, tag := range t {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// String joins the tags the way an editor displays them.
func (t *Tags) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*t = Tags{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var raw string
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		*t = ParseTags(raw)
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return err
	}
	*t = Tags(list).Normalize()
	return nil
}

// SessionInput is the payload of a save-draft or publish call. An empty
// SessionID creates a new session.
type SessionInput struct {
	SessionID  string `json:"sessionId,omitempty"`
	Title      string `json:"title"`
	Tags       Tags   `json:"tags"`
	ContentURL string `json:"json_file_url"`
}

// Normalized trims the scalar fields and normalizes tags.
func (in SessionInput) Normalized() SessionInput {
	return SessionInput{
		SessionID:  strings.TrimSpace(in.SessionID),
		Title:      strings.TrimSpace(in.Title),
		Tags:       in.Tags.Normalize(),
		ContentURL: strings.TrimSpace(in.ContentURL),
	}
}

func (in SessionInput) Validate() error {
	in = in.Normalized()
	if in.Title == "" || in.ContentURL == "" {
		field := "title"
		if in.Title != "" {
			field = "json_file_url"
		}
		return invalid(field, "Title and JSON file URL are required")
	}
	if utf8.RuneCountInString(in.Title) > MaxTitleLength {
		return invalid("title", "Title cannot be more than %d characters", MaxTitleLength)
	}
	return nil
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

const MinPasswordLength = 6

func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Email) == "" || c.Password == "" {
		return invalid("email", "Please provide email and password")
	}
	if !strings.Contains(c.Email, "@") {
		return invalid("email", "Please provide a valid email")
	}
	return nil
}

// ValidateNew additionally enforces the password policy for new accounts.
func (c Credentials) ValidateNew() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if utf8.RuneCountInString(c.Password) < MinPasswordLength {
		return invalid("password", "Password must be at least %d characters", MinPasswordLength)
	}
	return nil
}

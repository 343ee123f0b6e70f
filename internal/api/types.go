package api

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// User mirrors the backend's user record.
type User struct {
	ID         string `json:"_id"`
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	ProfilePic string `json:"profilePic,omitempty"`
}

// DisplayName returns the full name, falling back to email and then id.
func (u User) DisplayName() string {
	switch {
	case u.FullName != "":
		return u.FullName
	case u.Email != "":
		return u.Email
	default:
		return u.ID
	}
}

// Message is a one-to-one message.
type Message struct {
	ID         string    `json:"_id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId,omitempty"`
	Text       string    `json:"text,omitempty"`
	Image      string    `json:"image,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// UserRef is a user reference that the backend sends either as a bare id
// or as a populated user object.
type UserRef struct {
	User
}

// UnmarshalJSON accepts "id" or {"_id": ...}.
func (r *UserRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		r.User = User{ID: id}
		return nil
	}
	return json.Unmarshal(data, &r.User)
}

// MarshalJSON always writes the populated form.
func (r UserRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.User)
}

// Members is a group's member list. Each element may be an id or a
// populated user; only ids are kept.
type Members []string

// UnmarshalJSON implements json.Unmarshaler.
func (m *Members) UnmarshalJSON(data []byte) error {
	var refs []UserRef
	if err := json.Unmarshal(data, &refs); err != nil {
		return err
	}
	ids := make(Members, 0, len(refs))
	for _, r := range refs {
		ids = append(ids, r.ID)
	}
	*m = ids
	return nil
}

// Group mirrors the backend's group record.
type Group struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Members     Members   `json:"members"`
	Admin       string    `json:"admin,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// GroupMessage is a message posted to a group, with its sender populated.
type GroupMessage struct {
	ID        string    `json:"_id"`
	GroupID   string    `json:"groupId,omitempty"`
	Sender    UserRef   `json:"senderId"`
	Text      string    `json:"text,omitempty"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Draft is an outgoing message body. Image is a data URL.
type Draft struct {
	Text  string `json:"text"`
	Image string `json:"image,omitempty"`
}

// Trimmed returns d with surrounding whitespace removed from Text.
func (d Draft) Trimmed() Draft {
	d.Text = strings.TrimSpace(d.Text)
	return d
}

// Empty reports whether there is nothing to send. Whitespace-only text
// counts as empty.
func (d Draft) Empty() bool {
	return strings.TrimSpace(d.Text) == "" && d.Image == ""
}

// CreateGroupRequest is the body of POST /groups.
type CreateGroupRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Members     []string `json:"members"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

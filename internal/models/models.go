package models

import (
	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID `json:"id,omitempty"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	IsAdmin   bool      `json:"isadmin"`
	Skills    []string  `json:"skills,omitempty"`
	BirthDate Timestamp `json:"birth_date,omitempty"`
}

type Character struct {
	ID          uuid.UUID `json:"id,omitempty"`
	UserID      uuid.UUID `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   Timestamp `json:"created_at,omitempty"`
}

type Article struct {
	ID          uuid.UUID `json:"id,omitempty"`
	CharacterID uuid.UUID `json:"character_id"`
	UserID      uuid.UUID `json:"user_id"`
	Title       string    `json:"title"`
	Ingress     string    `json:"ingress"`
	Body        string    `json:"body"`
	CreatedAt   Timestamp `json:"created_at,omitempty"`
	UpdatedBy   string    `json:"updated_by,omitempty"`
}

type Tag struct {
	ID        uuid.UUID `json:"id,omitempty"`
	UserID    uuid.UUID `json:"user_id,omitempty"`
	Title     string    `json:"title"`
	CreatedAt Timestamp `json:"created_at,omitempty"`
	UpdatedBy string    `json:"updated_by,omitempty"`
}

// ContentTag links a tag to a piece of content. On the wire the content id
// travels as "id" because it is the placeholder of the content-tags path.
type ContentTag struct {
	ContentID uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id,omitempty"`
	TagID     uuid.UUID `json:"tag_id"`
}

type Upload struct {
	ID        uuid.UUID `json:"id,omitempty"`
	UserID    uuid.UUID `json:"user_id"`
	Filename  string    `json:"filename"`
	URL       string    `json:"url,omitempty"`
	CreatedAt Timestamp `json:"created_at,omitempty"`
}

type Invitation struct {
	ID            uuid.UUID `json:"id,omitempty"`
	Email         string    `json:"email"`
	Username      string    `json:"username"`
	PasswordPlain string    `json:"password_plain,omitempty"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type PasswordReset struct {
	Email string `json:"email"`
}

type PasswordUpdate struct {
	ID       uuid.UUID `json:"id"`
	Password string    `json:"password"`
}

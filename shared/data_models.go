package shared

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

type User struct {
	Id                string     `json:"_id,omitempty"`
	UserName          string     `json:"userName"`
	Email             string     `json:"email"`
	FirstName         *string    `json:"firstName,omitempty"`
	LastName          *string    `json:"lastName,omitempty"`
	PhoneNumber       *string    `json:"phone_number,omitempty"`
	DateOfBirth       *time.Time `json:"date_of_birth,omitempty"`
	DateJoined        *time.Time `json:"date_joined,omitempty"`
	ProfilePictureUri string     `json:"profile_picture_uri,omitempty"`
	IsConnected       bool       `json:"is_connected,omitempty"`
	Provider          *string    `json:"provider,omitempty"`
	Gender            *string    `json:"gender,omitempty"`
}

func (u *User) FullName() string {
	var first, last string
	if u.FirstName != nil {
		first = *u.FirstName
	}
	if u.LastName != nil {
		last = *u.LastName
	}
	if first == "" && last == "" {
		return ""
	}
	if last == "" {
		return first
	}
	if first == "" {
		return last
	}
	return first + " " + last
}

type Post struct {
	Id           string     `json:"_id"`
	Title        string     `json:"title,omitempty"`
	Content      string     `json:"content"`
	OwnerId      string     `json:"ownerId"`
	ImageUri     string     `json:"image_uri,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
	Tags         []string   `json:"tags,omitempty"`
	LikeCount    int        `json:"like_count"`
	CommentCount int        `json:"comment_count"`
	IsLikedByMe  bool       `json:"isLikedByMe"`

	// filled in client-side from the owner's profile
	OwnerName  string `json:"-"`
	OwnerImage string `json:"-"`
}

func (p *Post) AuthorId() string {
	return p.OwnerId
}

func (p *Post) SetAuthor(u *User) {
	p.OwnerName = u.UserName
	p.OwnerImage = u.ProfilePictureUri
}

type Comment struct {
	Id        string     `json:"_id"`
	PostId    string     `json:"postId"`
	OwnerId   string     `json:"ownerId"`
	Content   string     `json:"content"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`

	OwnerName  string `json:"-"`
	OwnerImage string `json:"-"`
}

func (c *Comment) AuthorId() string {
	return c.OwnerId
}

func (c *Comment) SetAuthor(u *User) {
	c.OwnerName = u.UserName
	c.OwnerImage = u.ProfilePictureUri
}

type Conversation struct {
	Id           string     `json:"_id"`
	Participants []*User    `json:"participants"`
	Messages     []*Message `json:"messages,omitempty"`
	LastMessage  *Message   `json:"lastMessage,omitempty"`
}

type Message struct {
	Id             string        `json:"_id,omitempty"`
	TempId         string        `json:"tempId,omitempty"`
	ConversationId string        `json:"conversationId,omitempty"`
	Sender         MessageSender `json:"sender"`
	Content        string        `json:"content"`
	Timestamp      time.Time     `json:"timestamp"`
	Read           bool          `json:"read,omitempty"`
}

func (m *Message) SenderId() string {
	return m.Sender.Id
}

// MessageSender is either a populated user or a bare user id on the wire.
type MessageSender struct {
	Id       string
	UserName string
}

func (s MessageSender) MarshalJSON() ([]byte, error) {
	if s.UserName == "" {
		return json.Marshal(s.Id)
	}
	return json.Marshal(User{Id: s.Id, UserName: s.UserName})
}

func (s *MessageSender) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '"' {
		return json.Unmarshal(data, &s.Id)
	}

	var u User
	err := json.Unmarshal(data, &u)
	if err != nil {
		return fmt.Errorf("error unmarshalling message sender: %v", err)
	}
	s.Id = u.Id
	s.UserName = u.UserName
	return nil
}

type PaginatedPostsResponse struct {
	Posts       []*Post `json:"posts"`
	CurrentPage int     `json:"currentPage"`
	TotalPages  int     `json:"totalPages"`
}

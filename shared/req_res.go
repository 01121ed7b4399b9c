package shared

import "time"

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Id           string `json:"_id"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type RegisterRequest struct {
	UserName          string     `json:"userName" validate:"required,min=3"`
	Password          string     `json:"password" validate:"required,min=6"`
	Email             string     `json:"email" validate:"required,email"`
	FirstName         string     `json:"firstName,omitempty"`
	LastName          string     `json:"lastName,omitempty"`
	PhoneNumber       string     `json:"phone_number,omitempty" validate:"omitempty,e164"`
	DateOfBirth       *time.Time `json:"date_of_birth,omitempty"`
	ProfilePictureUri string     `json:"profile_picture_uri,omitempty"`
	Gender            string     `json:"gender,omitempty" validate:"omitempty,oneof=male female other"`
}

type GoogleSignInRequest struct {
	Credential string `json:"credential" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type RefreshTokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

type UpdateUserRequest struct {
	UserName          *string    `json:"userName,omitempty" validate:"omitempty,min=3"`
	Email             *string    `json:"email,omitempty" validate:"omitempty,email"`
	FirstName         *string    `json:"firstName,omitempty"`
	LastName          *string    `json:"lastName,omitempty"`
	PhoneNumber       *string    `json:"phone_number,omitempty" validate:"omitempty,e164"`
	DateOfBirth       *time.Time `json:"date_of_birth,omitempty"`
	ProfilePictureUri *string    `json:"profile_picture_uri,omitempty"`
	Gender            *string    `json:"gender,omitempty" validate:"omitempty,oneof=male female other"`
}

type CreatePostRequest struct {
	Content  string   `json:"content" validate:"required"`
	ImageUri string   `json:"image_uri"`
	Tags     []string `json:"tags,omitempty"`
}

type UpdatePostRequest struct {
	Content  *string  `json:"content,omitempty" validate:"omitempty,min=1"`
	ImageUri *string  `json:"image_uri,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

type DeleteResponse struct {
	Id string `json:"_id"`
}

type AddCommentRequest struct {
	PostId  string `json:"postId"`
	Content string `json:"content"`
}

type AddLikeRequest struct {
	PostId string `json:"postId"`
}

type StartConversationRequest struct {
	RecipientId string `json:"recipientId"`
}

type SendMessageRequest struct {
	Content string `json:"content"`
}

type GenresRequest struct {
	Text string `json:"text"`
}

type UploadResponse struct {
	Url string `json:"url"`
}

package types

import (
	"context"

	shared "storybox-cli/shared"
)

type AuthApi interface {
	Login(ctx context.Context, req shared.LoginRequest) (*shared.LoginResponse, *shared.ApiError)
	Register(ctx context.Context, req shared.RegisterRequest) (*shared.User, *shared.ApiError)
	GoogleSignIn(ctx context.Context, req shared.GoogleSignInRequest) (*shared.LoginResponse, *shared.ApiError)
	SignOut() *shared.ApiError
}

type UsersApi interface {
	ListUsers(ctx context.Context) ([]*shared.User, *shared.ApiError)
	GetUser(ctx context.Context, userId string) (*shared.User, *shared.ApiError)
	GetMe(ctx context.Context) (*shared.User, *shared.ApiError)
	UpdateUser(ctx context.Context, userId string, req shared.UpdateUserRequest) (*shared.User, *shared.ApiError)
	DeleteUser(ctx context.Context, userId string) *shared.ApiError
}

type PostsApi interface {
	ListPostsPage(ctx context.Context, page int, sender string) (*shared.PaginatedPostsResponse, *shared.ApiError)
	GetPost(ctx context.Context, postId string) (*shared.Post, *shared.ApiError)
	CreatePost(ctx context.Context, req shared.CreatePostRequest) (*shared.Post, *shared.ApiError)
	UpdatePost(ctx context.Context, postId string, req shared.UpdatePostRequest) (*shared.Post, *shared.ApiError)
	DeletePost(ctx context.Context, postId string) *shared.ApiError
}

type CommentsApi interface {
	ListComments(ctx context.Context, postId string) ([]*shared.Comment, *shared.ApiError)
	AddComment(ctx context.Context, req shared.AddCommentRequest) (*shared.Comment, *shared.ApiError)
}

type LikesApi interface {
	AddLike(ctx context.Context, postId string) *shared.ApiError
	RemoveLike(ctx context.Context, postId string) *shared.ApiError
}

type ConversationsApi interface {
	ListConversations(ctx context.Context) ([]*shared.Conversation, *shared.ApiError)
	GetConversation(ctx context.Context, conversationId string) (*shared.Conversation, *shared.ApiError)
	StartConversation(ctx context.Context, recipientId string) (*shared.Conversation, *shared.ApiError)
	DeleteConversation(ctx context.Context, conversationId string) *shared.ApiError
	SendMessage(ctx context.Context, conversationId string, req shared.SendMessageRequest) (*shared.Message, *shared.ApiError)
}

type TagsApi interface {
	GetGenres(ctx context.Context, text string) ([]string, *shared.ApiError)
}

type UploadApi interface {
	UploadImage(ctx context.Context, fileName string, data []byte) (string, *shared.ApiError)
}

// PostCardApi is what a single post view talks to.
type PostCardApi interface {
	LikesApi
	CommentsApi
	UsersApi
}

type ApiClient interface {
	AuthApi
	UsersApi
	PostsApi
	CommentsApi
	LikesApi
	ConversationsApi
	TagsApi
	UploadApi
}

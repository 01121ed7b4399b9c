package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"

	"storybox-cli/auth"
	shared "storybox-cli/shared"
)

func (a *Api) Login(ctx context.Context, req shared.LoginRequest) (*shared.LoginResponse, *shared.ApiError) {
	if apiErr := shared.ValidateRequest(req); apiErr != nil {
		return nil, apiErr
	}

	var res shared.LoginResponse
	apiErr := a.sendUnauthenticated(ctx, http.MethodPost, "/auth/login", req, &res)
	if apiErr != nil {
		return nil, apiErr
	}

	apiErr = a.storeLogin(&res)
	if apiErr != nil {
		return nil, apiErr
	}

	return &res, nil
}

func (a *Api) Register(ctx context.Context, req shared.RegisterRequest) (*shared.User, *shared.ApiError) {
	if apiErr := shared.ValidateRequest(req); apiErr != nil {
		return nil, apiErr
	}

	var user shared.User
	apiErr := a.sendUnauthenticated(ctx, http.MethodPost, "/auth/register", req, &user)
	if apiErr != nil {
		return nil, apiErr
	}

	return &user, nil
}

func (a *Api) GoogleSignIn(ctx context.Context, req shared.GoogleSignInRequest) (*shared.LoginResponse, *shared.ApiError) {
	if apiErr := shared.ValidateRequest(req); apiErr != nil {
		return nil, apiErr
	}

	var res shared.LoginResponse
	apiErr := a.sendUnauthenticated(ctx, http.MethodPost, "/auth/google", req, &res)
	if apiErr != nil {
		return nil, apiErr
	}

	apiErr = a.storeLogin(&res)
	if apiErr != nil {
		return nil, apiErr
	}

	return &res, nil
}

func (a *Api) SignOut() *shared.ApiError {
	err := a.session.Clear()
	if err != nil {
		return &shared.ApiError{Type: shared.ApiErrorTypeOther, Msg: fmt.Sprintf("error clearing session: %v", err)}
	}
	return nil
}

func (a *Api) storeLogin(res *shared.LoginResponse) *shared.ApiError {
	if res.AccessToken == "" || res.RefreshToken == "" {
		return &shared.ApiError{Type: shared.ApiErrorTypeServer, Msg: "sign in response is missing tokens"}
	}

	err := a.session.Set(auth.Tokens{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		UserId:       res.Id,
	})
	if err != nil {
		return &shared.ApiError{Type: shared.ApiErrorTypeOther, Msg: fmt.Sprintf("error storing session: %v", err)}
	}

	return nil
}

func (a *Api) ListUsers(ctx context.Context) ([]*shared.User, *shared.ApiError) {
	var users []*shared.User
	apiErr := a.send(ctx, http.MethodGet, "/users", nil, &users)
	if apiErr != nil {
		return nil, apiErr
	}
	return users, nil
}

func (a *Api) GetUser(ctx context.Context, userId string) (*shared.User, *shared.ApiError) {
	var user shared.User
	apiErr := a.send(ctx, http.MethodGet, "/users/"+url.PathEscape(userId), nil, &user)
	if apiErr != nil {
		return nil, apiErr
	}
	return &user, nil
}

func (a *Api) GetMe(ctx context.Context) (*shared.User, *shared.ApiError) {
	var user shared.User
	apiErr := a.send(ctx, http.MethodGet, "/users/self/me", nil, &user)
	if apiErr != nil {
		return nil, apiErr
	}
	return &user, nil
}

func (a *Api) UpdateUser(ctx context.Context, userId string, req shared.UpdateUserRequest) (*shared.User, *shared.ApiError) {
	if apiErr := shared.ValidateRequest(req); apiErr != nil {
		return nil, apiErr
	}

	var user shared.User
	apiErr := a.send(ctx, http.MethodPut, "/users/"+url.PathEscape(userId), req, &user)
	if apiErr != nil {
		return nil, apiErr
	}
	return &user, nil
}

func (a *Api) DeleteUser(ctx context.Context, userId string) *shared.ApiError {
	return a.send(ctx, http.MethodDelete, "/users/"+url.PathEscape(userId), nil, nil)
}

func (a *Api) ListPostsPage(ctx context.Context, page int, sender string) (*shared.PaginatedPostsResponse, *shared.ApiError) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	if sender != "" {
		query.Set("sender", sender)
	}

	var res shared.PaginatedPostsResponse
	apiErr := a.send(ctx, http.MethodGet, "/posts/paging?"+query.Encode(), nil, &res)
	if apiErr != nil {
		return nil, apiErr
	}
	return &res, nil
}

func (a *Api) GetPost(ctx context.Context, postId string) (*shared.Post, *shared.ApiError) {
	var post shared.Post
	apiErr := a.send(ctx, http.MethodGet, "/posts/"+url.PathEscape(postId), nil, &post)
	if apiErr != nil {
		return nil, apiErr
	}
	return &post, nil
}

func (a *Api) CreatePost(ctx context.Context, req shared.CreatePostRequest) (*shared.Post, *shared.ApiError) {
	if apiErr := shared.ValidateRequest(req); apiErr != nil {
		return nil, apiErr
	}

	var post shared.Post
	apiErr := a.send(ctx, http.MethodPost, "/posts", req, &post)
	if apiErr != nil {
		return nil, apiErr
	}
	return &post, nil
}

func (a *Api) UpdatePost(ctx context.Context, postId string, req shared.UpdatePostRequest) (*shared.Post, *shared.ApiError) {
	if apiErr := shared.ValidateRequest(req); apiErr != nil {
		return nil, apiErr
	}

	var post shared.Post
	apiErr := a.send(ctx, http.MethodPut, "/posts/"+url.PathEscape(postId), req, &post)
	if apiErr != nil {
		return nil, apiErr
	}
	return &post, nil
}

func (a *Api) DeletePost(ctx context.Context, postId string) *shared.ApiError {
	return a.send(ctx, http.MethodDelete, "/posts/"+url.PathEscape(postId), nil, nil)
}

func (a *Api) ListComments(ctx context.Context, postId string) ([]*shared.Comment, *shared.ApiError) {
	var comments []*shared.Comment
	apiErr := a.send(ctx, http.MethodGet, "/comments?postId="+url.QueryEscape(postId), nil, &comments)
	if apiErr != nil {
		return nil, apiErr
	}
	return comments, nil
}

func (a *Api) AddComment(ctx context.Context, req shared.AddCommentRequest) (*shared.Comment, *shared.ApiError) {
	var comment shared.Comment
	apiErr := a.send(ctx, http.MethodPost, "/comments", req, &comment)
	if apiErr != nil {
		return nil, apiErr
	}
	return &comment, nil
}

func (a *Api) AddLike(ctx context.Context, postId string) *shared.ApiError {
	return a.send(ctx, http.MethodPost, "/likes", shared.AddLikeRequest{PostId: postId}, nil)
}

func (a *Api) RemoveLike(ctx context.Context, postId string) *shared.ApiError {
	return a.send(ctx, http.MethodDelete, "/likes/"+url.PathEscape(postId), nil, nil)
}

func (a *Api) ListConversations(ctx context.Context) ([]*shared.Conversation, *shared.ApiError) {
	var convos []*shared.Conversation
	apiErr := a.send(ctx, http.MethodGet, "/conversations", nil, &convos)
	if apiErr != nil {
		return nil, apiErr
	}
	return convos, nil
}

func (a *Api) GetConversation(ctx context.Context, conversationId string) (*shared.Conversation, *shared.ApiError) {
	var convo shared.Conversation
	apiErr := a.send(ctx, http.MethodGet, "/conversations/"+url.PathEscape(conversationId), nil, &convo)
	if apiErr != nil {
		return nil, apiErr
	}
	return &convo, nil
}

func (a *Api) StartConversation(ctx context.Context, recipientId string) (*shared.Conversation, *shared.ApiError) {
	var convo shared.Conversation
	apiErr := a.send(ctx, http.MethodPost, "/conversations", shared.StartConversationRequest{RecipientId: recipientId}, &convo)
	if apiErr != nil {
		return nil, apiErr
	}
	return &convo, nil
}

func (a *Api) DeleteConversation(ctx context.Context, conversationId string) *shared.ApiError {
	return a.send(ctx, http.MethodDelete, "/conversations/"+url.PathEscape(conversationId), nil, nil)
}

func (a *Api) SendMessage(ctx context.Context, conversationId string, req shared.SendMessageRequest) (*shared.Message, *shared.ApiError) {
	var msg shared.Message
	apiErr := a.send(ctx, http.MethodPost, "/conversations/"+url.PathEscape(conversationId)+"/messages", req, &msg)
	if apiErr != nil {
		return nil, apiErr
	}
	if msg.ConversationId == "" {
		msg.ConversationId = conversationId
	}
	return &msg, nil
}

func (a *Api) GetGenres(ctx context.Context, text string) ([]string, *shared.ApiError) {
	var genres []string
	apiErr := a.send(ctx, http.MethodPost, "/genres", shared.GenresRequest{Text: text}, &genres)
	if apiErr != nil {
		return nil, apiErr
	}
	return genres, nil
}

func (a *Api) UploadImage(ctx context.Context, fileName string, data []byte) (string, *shared.ApiError) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filepath.Base(fileName))
	if err != nil {
		return "", &shared.ApiError{Type: shared.ApiErrorTypeOther, Msg: fmt.Sprintf("error creating form file: %v", err)}
	}

	_, err = part.Write(data)
	if err != nil {
		return "", &shared.ApiError{Type: shared.ApiErrorTypeOther, Msg: fmt.Sprintf("error writing form file: %v", err)}
	}

	err = writer.Close()
	if err != nil {
		return "", &shared.ApiError{Type: shared.ApiErrorTypeOther, Msg: fmt.Sprintf("error closing multipart writer: %v", err)}
	}

	var res shared.UploadResponse
	apiErr := a.do(ctx, &request{
		method:      http.MethodPost,
		path:        "/file",
		contentType: writer.FormDataContentType(),
		body:        body.Bytes(),
		client:      a.authenticatedSlowClient,
	}, &res, false)
	if apiErr != nil {
		return "", apiErr
	}

	if res.Url == "" {
		return "", &shared.ApiError{Type: shared.ApiErrorTypeServer, Msg: "upload response is missing the file url"}
	}

	return res.Url, nil
}

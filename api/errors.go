package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	shared "storybox-cli/shared"
)

type serverErrorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Field   string `json:"field"`
}

func HandleApiError(r *http.Response, errBody []byte) *shared.ApiError {
	msg := strings.TrimSpace(string(errBody))
	field := ""

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body serverErrorBody
		err := json.Unmarshal(errBody, &body)
		if err == nil {
			if body.Message != "" {
				msg = body.Message
			} else if body.Error != "" {
				msg = body.Error
			}
			field = body.Field
		}
	}

	if msg == "" {
		msg = http.StatusText(r.StatusCode)
	}

	if r.StatusCode == http.StatusUnauthorized {
		return &shared.ApiError{
			Type:   shared.ApiErrorTypeInvalidToken,
			Status: r.StatusCode,
			Msg:    msg,
		}
	}

	if field == "" {
		field = FieldForMessage(msg)
	}

	return &shared.ApiError{
		Type:   shared.ApiErrorTypeServer,
		Status: r.StatusCode,
		Msg:    msg,
		Field:  field,
	}
}

var fieldKeywords = []struct {
	keyword string
	field   string
}{
	{"email", "email"},
	{"username", "userName"},
	{"user name", "userName"},
	{"password", "password"},
	{"phone", "phone_number"},
	{"content", "content"},
	{"image", "image"},
}

// FieldForMessage picks the form field a server message is about, or ""
// when the message should be shown at form level.
func FieldForMessage(msg string) string {
	lower := strings.ToLower(msg)
	for _, kw := range fieldKeywords {
		if strings.Contains(lower, kw.keyword) {
			return kw.field
		}
	}
	return ""
}

func requestError(ctx context.Context, err error) *shared.ApiError {
	if errors.Is(ctx.Err(), context.Canceled) || errors.Is(err, context.Canceled) {
		return &shared.ApiError{Type: shared.ApiErrorTypeCanceled, Msg: "request canceled"}
	}
	return &shared.ApiError{Type: shared.ApiErrorTypeNetwork, Msg: fmt.Sprintf("error sending request: %v", err)}
}

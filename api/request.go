package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"storybox-cli/logger"
	shared "storybox-cli/shared"

	"go.uber.org/zap"
)

type request struct {
	method      string
	path        string
	contentType string
	body        []byte
	client      *http.Client

	// auth endpoints answer 401 for bad credentials, not for an expired token
	noRefresh bool
}

func (a *Api) send(ctx context.Context, method, path string, reqBody, out interface{}) *shared.ApiError {
	return a.sendWith(ctx, a.authenticatedFastClient, method, path, reqBody, out, false)
}

func (a *Api) sendUnauthenticated(ctx context.Context, method, path string, reqBody, out interface{}) *shared.ApiError {
	return a.sendWith(ctx, a.unauthenticatedClient, method, path, reqBody, out, true)
}

func (a *Api) sendWith(ctx context.Context, client *http.Client, method, path string, reqBody, out interface{}, noRefresh bool) *shared.ApiError {
	req := &request{
		method:    method,
		path:      path,
		client:    client,
		noRefresh: noRefresh,
	}

	if reqBody != nil {
		reqBytes, err := json.Marshal(reqBody)
		if err != nil {
			return &shared.ApiError{Type: shared.ApiErrorTypeOther, Msg: fmt.Sprintf("error marshalling request: %v", err)}
		}
		req.body = reqBytes
		req.contentType = "application/json"
	}

	return a.do(ctx, req, out, false)
}

// do sends req and decodes a successful response into out. A 401 triggers one
// token refresh and exactly one replay; a 401 on the replay is final.
func (a *Api) do(ctx context.Context, req *request, out interface{}, retried bool) *shared.ApiError {
	serverUrl := a.host + req.path

	var bodyReader io.Reader
	if req.body != nil {
		bodyReader = bytes.NewReader(req.body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, serverUrl, bodyReader)
	if err != nil {
		return &shared.ApiError{Type: shared.ApiErrorTypeOther, Msg: fmt.Sprintf("error creating request: %v", err)}
	}
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}

	if !retried && !req.noRefresh && a.session.AccessTokenExpired() {
		refreshErr := a.refreshToken(ctx)
		if refreshErr != nil {
			return refreshErr
		}
	}

	tokenUsed := a.session.Get().AccessToken

	resp, err := req.client.Do(httpReq)
	if err != nil {
		return requestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		errorBody, _ := io.ReadAll(resp.Body)
		apiErr := HandleApiError(resp, errorBody)

		if apiErr.Type != shared.ApiErrorTypeInvalidToken {
			return apiErr
		}

		if req.noRefresh {
			apiErr.Type = shared.ApiErrorTypeServer
			return apiErr
		}

		if retried {
			logger.Logger.Warn("request rejected after token refresh", zap.String("method", req.method), zap.String("path", req.path))
			a.session.ForceLogout("unauthorized after token refresh")
			return apiErr
		}

		// another request may already have renewed the token
		if current := a.session.Get().AccessToken; current == "" || current == tokenUsed {
			refreshErr := a.refreshToken(ctx)
			if refreshErr != nil {
				return refreshErr
			}
		}

		return a.do(ctx, req, out, true)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	err = json.NewDecoder(resp.Body).Decode(out)
	if err != nil && err != io.EOF {
		return &shared.ApiError{Type: shared.ApiErrorTypeOther, Msg: fmt.Sprintf("error decoding response: %v", err)}
	}

	return nil
}

// refreshToken renews the access token. Concurrent callers share one refresh call.
func (a *Api) refreshToken(ctx context.Context) *shared.ApiError {
	ch := a.refreshGroup.DoChan("refresh", func() (interface{}, error) {
		err := a.doRefresh(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		return nil, nil
	})

	select {
	case res := <-ch:
		if res.Err == nil {
			return nil
		}
		if apiErr, ok := res.Err.(*shared.ApiError); ok {
			return apiErr
		}
		return &shared.ApiError{Type: shared.ApiErrorTypeInvalidToken, Msg: res.Err.Error()}
	case <-ctx.Done():
		return requestError(ctx, ctx.Err())
	}
}

func (a *Api) doRefresh(ctx context.Context) *shared.ApiError {
	tokens := a.session.Get()
	if tokens.RefreshToken == "" {
		a.session.ForceLogout("no refresh token available")
		return &shared.ApiError{Type: shared.ApiErrorTypeInvalidToken, Status: http.StatusUnauthorized, Msg: "no refresh token available, please sign in again"}
	}

	fail := func(reason string) *shared.ApiError {
		logger.Logger.Warn("error refreshing token", zap.String("reason", reason))
		a.session.ForceLogout("error refreshing token: " + reason)
		return &shared.ApiError{Type: shared.ApiErrorTypeInvalidToken, Status: http.StatusUnauthorized, Msg: "session expired, please sign in again"}
	}

	reqBytes, err := json.Marshal(shared.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	if err != nil {
		return fail(fmt.Sprintf("error marshalling request: %v", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.host+"/auth/refresh", bytes.NewReader(reqBytes))
	if err != nil {
		return fail(fmt.Sprintf("error creating request: %v", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.unauthenticatedClient.Do(httpReq)
	if err != nil {
		return fail(fmt.Sprintf("error sending request: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		errorBody, _ := io.ReadAll(resp.Body)
		return fail(HandleApiError(resp, errorBody).Msg)
	}

	var refreshed shared.RefreshTokenResponse
	err = json.NewDecoder(resp.Body).Decode(&refreshed)
	if err != nil {
		return fail(fmt.Sprintf("error decoding response: %v", err))
	}
	if refreshed.AccessToken == "" {
		return fail("no access token in response")
	}

	err = a.session.SetAccessToken(refreshed.AccessToken, refreshed.RefreshToken)
	if err != nil {
		// the new token is still held in memory, so the replay can go ahead
		logger.Logger.Error("error persisting refreshed token", zap.Error(err))
	}

	logger.Logger.Debug("access token refreshed")

	return nil
}

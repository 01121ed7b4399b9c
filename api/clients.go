package api

import (
	"net"
	"net/http"
	"time"

	"storybox-cli/auth"
	"storybox-cli/types"
	"storybox-cli/utils"

	"golang.org/x/sync/singleflight"
)

const dialTimeout = 10 * time.Second
const fastReqTimeout = 30 * time.Second
const slowReqTimeout = 5 * time.Minute

type Api struct {
	host    string
	session *auth.Session

	unauthenticatedClient   *http.Client
	authenticatedFastClient *http.Client
	authenticatedSlowClient *http.Client

	refreshGroup singleflight.Group
}

var _ types.ApiClient = (*Api)(nil)

type Params struct {
	Host    string
	Session *auth.Session

	// zero values fall back to the defaults above
	RequestTimeout time.Duration
	UploadTimeout  time.Duration
}

func New(params Params) *Api {
	fast := params.RequestTimeout
	if fast == 0 {
		fast = fastReqTimeout
	}
	slow := params.UploadTimeout
	if slow == 0 {
		slow = slowReqTimeout
	}

	netDialer := &net.Dialer{
		Timeout: dialTimeout,
	}

	return &Api{
		host:    utils.TrimBaseURL(params.Host),
		session: params.Session,

		unauthenticatedClient: &http.Client{
			Transport: &http.Transport{
				DialContext: netDialer.DialContext,
			},
			Timeout: fast,
		},

		authenticatedFastClient: &http.Client{
			Transport: &authenticatedTransport{
				session: params.Session,
				underlyingTransport: &http.Transport{
					DialContext: netDialer.DialContext,
				},
			},
			Timeout: fast,
		},

		authenticatedSlowClient: &http.Client{
			Transport: &authenticatedTransport{
				session: params.Session,
				underlyingTransport: &http.Transport{
					DialContext: netDialer.DialContext,
				},
			},
			Timeout: slow,
		},
	}
}

func (a *Api) Host() string {
	return a.host
}

func (a *Api) Session() *auth.Session {
	return a.session
}

type authenticatedTransport struct {
	session             *auth.Session
	underlyingTransport http.RoundTripper
}

// RoundTrip attaches the current access token. It reads the session on every
// attempt, so a replayed request carries whatever token the refresh stored.
func (t *authenticatedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	t.session.SetAuthHeader(req)
	return t.underlyingTransport.RoundTrip(req)
}

// Package auth resolves the user a request acts on behalf of.
package auth

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
)

// UserIDHeader carries the authenticated user id set by the upstream gateway
const UserIDHeader = "X-User-ID"

// ErrUnauthenticated is returned when a request carries no usable identity
var ErrUnauthenticated = errors.New("User not authenticated")

// Authenticator resolves a request to a user id
type Authenticator interface {
	Authenticate(r *http.Request) (int64, error)
}

// HeaderAuthenticator trusts the user id header set by a gateway in front of the service
type HeaderAuthenticator struct {
	Header string
}

// NewHeaderAuthenticator reads UserIDHeader
func NewHeaderAuthenticator() *HeaderAuthenticator {
	return &HeaderAuthenticator{Header: UserIDHeader}
}

// Authenticate returns the positive user id in the header
func (a *HeaderAuthenticator) Authenticate(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.Header.Get(a.Header))
	if raw == "" {
		return 0, ErrUnauthenticated
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrUnauthenticated
	}
	return id, nil
}

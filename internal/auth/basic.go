package auth

import (
	"net/http"

	"github.com/serroba/keygate/internal/credential"
)

// KeyFromBasicAuth extracts the API key from an HTTP Basic Authorization
// header value. The username carries the key; the password is ignored.
func KeyFromBasicAuth(header string) (credential.APIKey, bool) {
	if header == "" {
		return "", false
	}

	r := http.Request{Header: http.Header{"Authorization": {header}}}

	username, _, ok := r.BasicAuth()
	if !ok || username == "" {
		return "", false
	}

	return credential.APIKey(username), true
}

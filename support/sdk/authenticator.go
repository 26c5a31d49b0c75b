package sdk

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/plumeapp/plume-go/api"
)

// tokenAuthenticator attaches the session token as a bearer Authorization header
type tokenAuthenticator struct {
	token string
}

var _ api.Authenticator = &tokenAuthenticator{}

func makeTokenAuthenticator(token string) api.Authenticator {
	return &tokenAuthenticator{
		token: token,
	}
}

// AuthHeaders impl
func (a *tokenAuthenticator) AuthHeaders(method string, requestPath string, body string) (map[string]string, error) {
	return map[string]string{
		"Authorization": "Bearer " + a.token,
	}, nil
}

// keyAuthenticator signs every request with an API key pair, used by headless
// integrations that don't have an interactive login. The signature covers the
// timestamp, uppercased method, request path, and body so a request cannot be
// replayed against a different endpoint.
type keyAuthenticator struct {
	keyID      string
	signingKey []byte
	clock      func() int64
}

var _ api.Authenticator = &keyAuthenticator{}

// MakeKeyAuthenticator is a factory method, base64EncodedSigningKey is the
// secret half of the API key pair
func MakeKeyAuthenticator(keyID string, base64EncodedSigningKey string) (api.Authenticator, error) {
	signingKey, e := base64.StdEncoding.DecodeString(base64EncodedSigningKey)
	if e != nil {
		return nil, fmt.Errorf("could not decode signing key: %s", e)
	}

	return &keyAuthenticator{
		keyID:      keyID,
		signingKey: signingKey,
		clock: func() int64 {
			return time.Now().Unix()
		},
	}, nil
}

// AuthHeaders impl
func (a *keyAuthenticator) AuthHeaders(method string, requestPath string, body string) (map[string]string, error) {
	timestamp := a.clock()
	payload := fmt.Sprintf("%d%s%s%s", timestamp, strings.ToUpper(method), requestPath, body)

	mac := hmac.New(sha256.New, a.signingKey)
	mac.Write([]byte(payload))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return map[string]string{
		"X-Plume-Key-ID":    a.keyID,
		"X-Plume-Timestamp": strconv.FormatInt(timestamp, 10),
		"X-Plume-Signature": signature,
	}, nil
}

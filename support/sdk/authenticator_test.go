package sdk

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenAuthenticator(t *testing.T) {
	a := makeTokenAuthenticator("my-token")
	headers, e := a.AuthHeaders("GET", "/v1/profile", "")
	assert.NoError(t, e)
	assert.Equal(t, map[string]string{"Authorization": "Bearer my-token"}, headers)
}

func TestKeyAuthenticatorSignsRequest(t *testing.T) {
	signingKey := []byte("plume-test-signing-key")
	base64Key := base64.StdEncoding.EncodeToString(signingKey)

	authenticator, e := MakeKeyAuthenticator("key-1", base64Key)
	if !assert.NoError(t, e) {
		return
	}
	// pin the clock so the signature is deterministic
	authenticator.(*keyAuthenticator).clock = func() int64 { return 1756166400 }

	headers, e := authenticator.AuthHeaders("post", "/v1/entries?draft=true", `{"title":"x"}`)
	if !assert.NoError(t, e) {
		return
	}

	assert.Equal(t, "key-1", headers["X-Plume-Key-ID"])
	assert.Equal(t, "1756166400", headers["X-Plume-Timestamp"])

	// the signature covers timestamp + uppercased method + path + body
	mac := hmac.New(sha256.New, signingKey)
	mac.Write([]byte(`1756166400POST/v1/entries?draft=true{"title":"x"}`))
	wantSignature := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	assert.Equal(t, wantSignature, headers["X-Plume-Signature"])
}

func TestMakeKeyAuthenticatorInvalidKey(t *testing.T) {
	_, e := MakeKeyAuthenticator("key-1", "not-valid-base64!!!")
	assert.Error(t, e)
	assert.Contains(t, e.Error(), "could not decode signing key")
}

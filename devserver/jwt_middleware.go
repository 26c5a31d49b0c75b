package devserver

import (
	"fmt"
	"net/http"
	"time"

	jwtmiddleware "github.com/auth0/go-jwt-middleware"
	"github.com/form3tech-oss/jwt-go"
)

const tokenLifetime = time.Hour

// issueToken mints an HS256 session token for the dev user
func (s *APIServer) issueToken() (string, time.Time, error) {
	expiresAt := time.Now().Add(tokenLifetime)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": s.profile.UserID,
		"exp": expiresAt.Unix(),
	})

	signed, e := token.SignedString(s.jwtSecret)
	if e != nil {
		return "", time.Time{}, fmt.Errorf("could not sign session token: %s", e)
	}
	return signed, expiresAt, nil
}

// jwtMiddleware guards the authenticated routes. It validates the HS256
// signature and expiry of the bearer token issued by the login handler.
func (s *APIServer) jwtMiddleware() func(http.Handler) http.Handler {
	middleware := jwtmiddleware.New(jwtmiddleware.Options{
		ValidationKeyGetter: func(token *jwt.Token) (interface{}, error) {
			return s.jwtSecret, nil
		},
		SigningMethod: jwt.SigningMethodHS256,
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err string) {
			s.fail(w, http.StatusUnauthorized, "unauthorized", err)
		},
	})

	return middleware.Handler
}

package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LocalAuthenticator validates HS256 pro-session tokens minted by the
// external session service with a shared key.
type LocalAuthenticator struct {
	key []byte
}

func NewLocalAuthenticator(privateKey string) (*LocalAuthenticator, error) {
	if privateKey == "" {
		return nil, errors.New("local authentication requires a private key")
	}
	return &LocalAuthenticator{key: []byte(privateKey)}, nil
}

func (a *LocalAuthenticator) parseToken(raw string) (User, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.key, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return User{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return User{}, errors.New("malformed claims")
	}

	sub, _ := claims["sub"].(string)
	proID, err := uuid.Parse(sub)
	if err != nil {
		return User{}, errors.New("subject is not a pro id")
	}

	role, _ := claims["role"].(string)
	if role == "" {
		role = RolePro
	}

	return User{ProID: proID, Role: role, Token: token}, nil
}

func (a *LocalAuthenticator) Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found || raw == "" {
			http.Error(w, "missing or malformed authorization header", http.StatusUnauthorized)
			return
		}

		user, err := a.parseToken(raw)
		if err != nil {
			zap.S().Named("auth").Debugf("session rejected: %s", err)
			http.Error(w, "invalid or expired session", http.StatusUnauthorized)
			return
		}

		ctx := NewTokenContext(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

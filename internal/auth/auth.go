package auth

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/fieldhq/dispatch-engine/internal/config"
)

type Authenticator interface {
	Authenticator(next http.Handler) http.Handler
}

const (
	LocalAuthentication string = "local"
	NoneAuthentication  string = "none"
)

// NewAuthenticator selects the session validator. Session issuance lives in
// an external service; this layer only validates what it minted.
func NewAuthenticator(authConfig config.Auth) (Authenticator, error) {
	zap.S().Named("auth").Infof("authentication: '%s'", authConfig.AuthenticationType)

	switch authConfig.AuthenticationType {
	case LocalAuthentication:
		return NewLocalAuthenticator(authConfig.LocalPrivateKey)
	default:
		return NewNoneAuthenticator()
	}
}

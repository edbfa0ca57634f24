package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type userKeyType struct{}

var userKey userKeyType

func UserFromContext(ctx context.Context) (User, bool) {
	val := ctx.Value(userKey)
	if val == nil {
		return User{}, false
	}
	return val.(User), true
}

// MustHaveUser returns the authenticated user; the authenticator middleware
// guarantees presence on every route behind it.
func MustHaveUser(ctx context.Context) User {
	user, found := UserFromContext(ctx)
	if !found {
		panic("middleware chain did not set the user")
	}
	return user
}

func NewTokenContext(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

const (
	RoleAdmin = "admin"
	RolePro   = "pro"
)

type User struct {
	ProID uuid.UUID
	Role  string
	Token *jwt.Token
}

package server

import (
	"fmt"
	"strconv"

	"aria/app/service/chat"

	"github.com/golang-jwt/jwt/v5"
)

// userFromToken verifies the HS256 session token and extracts the identity
// claims. The subject carries the numeric user id.
func (s *Server) userFromToken(token string) (chat.UserInfo, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		return []byte(s.cfg.JWT.Secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return chat.UserInfo{}, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return chat.UserInfo{}, fmt.Errorf("unexpected claims type")
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return chat.UserInfo{}, fmt.Errorf("token has no subject: %w", err)
	}

	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return chat.UserInfo{}, fmt.Errorf("invalid subject %q: %w", sub, err)
	}

	name, _ := claims["name"].(string)
	email, _ := claims["email"].(string)

	return chat.UserInfo{ID: userID, Name: name, Email: email}, nil
}

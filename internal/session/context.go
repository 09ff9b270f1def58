package session

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ClientIDHeader carries the anonymous visitor identity. It scopes quota and
// todo ownership for requests without a session; it is never trusted for
// billing operations.
const ClientIDHeader = "X-Client-ID"

var ErrNoSession = errors.New("no authenticated session")

// GetUserID extracts the user UUID from JWT claims in context.
func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return uuid.Nil, ErrNoSession
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, errors.New("invalid claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, errors.New("missing sub claim")
	}

	return uuid.Parse(sub)
}

// GetEmail returns the email claim for the authenticated user, if any.
func GetEmail(c *fiber.Ctx) string {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return ""
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	email, _ := claims["email"].(string)
	return email
}

// Actor resolves the owner key for todo operations: the session user UUID
// when authenticated, otherwise the anonymous client UUID from the
// X-Client-ID header. authenticated reports which branch was taken.
func Actor(c *fiber.Ctx) (ownerID string, userID uuid.UUID, authenticated bool, err error) {
	if id, uerr := GetUserID(c); uerr == nil {
		return id.String(), id, true, nil
	}

	raw := c.Get(ClientIDHeader)
	if raw == "" {
		return "", uuid.Nil, false, errors.New("missing " + ClientIDHeader + " header")
	}
	anonID, perr := uuid.Parse(raw)
	if perr != nil {
		return "", uuid.Nil, false, errors.New("invalid " + ClientIDHeader + " header")
	}
	return anonID.String(), uuid.Nil, false, nil
}

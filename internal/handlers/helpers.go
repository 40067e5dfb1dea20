package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/phototree/backend/internal/middleware"
	"github.com/phototree/backend/internal/services"
)

func parseUUID(value string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(value))
}

func parseUUIDList(values []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(values))
	for _, value := range values {
		id, err := parseUUID(value)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// principal builds the access-check identity from the request:
// whatever user the auth middleware attached, plus an optional
// plaintext password supplied by anonymous visitors.
func principal(c *fiber.Ctx, password string) services.Principal {
	return services.Principal{
		User:     middleware.GetCurrentUser(c),
		Password: password,
	}
}

func actorName(c *fiber.Ctx) string {
	if user := middleware.GetCurrentUser(c); user != nil {
		return user.Name
	}
	return "A visitor"
}

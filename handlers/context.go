package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// claimsFromCtx pulls the authenticated identity out of the JWT. Every query
// downstream must be scoped by the workspace ID returned here.
func claimsFromCtx(c *fiber.Ctx) (userID, workspaceID uuid.UUID, role string) {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ = uuid.Parse(claims["user_id"].(string))
	workspaceID, _ = uuid.Parse(claims["workspace_id"].(string))
	role, _ = claims["role"].(string)
	return userID, workspaceID, role
}

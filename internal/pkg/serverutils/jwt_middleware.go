package serverutils

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// JwtMiddleware authenticates operator requests. The token must carry an
// org_id claim; visitor (widget) routes never pass through here.
func JwtMiddleware(ctx *fiber.Ctx) error {
	authHeader := ctx.Get("Authorization")
	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Missing token"})
	}
	tokenStr := authHeader[7:]

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(os.Getenv("JWT_SECRET")), nil
	})

	if err != nil || !token.Valid {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token"})
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid claims"})
	}

	orgId, _ := claims["org_id"].(string)
	if orgId == "" {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Organization not found"})
	}

	ctx.Locals("org_id", orgId)
	if name, ok := claims["name"].(string); ok {
		ctx.Locals("operator_name", name)
	}
	return ctx.Next()
}

// OrgId reads the organization id set by JwtMiddleware.
func OrgId(ctx *fiber.Ctx) string {
	orgId, _ := ctx.Locals("org_id").(string)
	return orgId
}

// OperatorName reads the operator display name, if the token carried one.
func OperatorName(ctx *fiber.Ctx) string {
	name, _ := ctx.Locals("operator_name").(string)
	return name
}

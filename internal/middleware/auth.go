package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"task-management/internal/apperror"
	"task-management/internal/auth"
	"task-management/internal/config"
	"task-management/internal/models"
	"task-management/internal/policy"
	"task-management/pkg/logger"
)

// PanelCookie carries the access token for the panel surface.
const PanelCookie = "panel_token"

const (
	localAccount = "account"
	localClaims  = "claims"
)

func fail(c *fiber.Ctx, err error) error {
	status := apperror.HTTPStatus(err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		logger.ErrorLogger.Error("Authentication failed", zap.Error(err))
		msg = "Internal server error"
	}
	return c.Status(status).JSON(fiber.Map{
		"message": msg,
		"success": false,
		"status":  status,
	})
}

// tokenFrom reads a Bearer token from the Authorization header, falling back
// to the panel cookie.
func tokenFrom(c *fiber.Ctx) (string, error) {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		parts := strings.Split(header, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", apperror.New(apperror.Unauthenticated, "Invalid token format")
		}
		return parts[1], nil
	}
	if cookie := c.Cookies(PanelCookie); cookie != "" {
		return cookie, nil
	}
	return "", apperror.New(apperror.Unauthenticated, "No token provided")
}

// UseToken authenticates the request and stores the resolved account and
// the token claims in the context locals.
func UseToken(c *fiber.Ctx) error {
	raw, err := tokenFrom(c)
	if err != nil {
		return fail(c, err)
	}
	claims, err := config.Tokens.Parse(c.UserContext(), raw, auth.AccessToken)
	if err != nil {
		logger.SecurityLogger.Warn("Rejected token", zap.String("ip", c.IP()), zap.Error(err))
		return fail(c, err)
	}
	acct, err := config.Accounts.Resolve(c.UserContext(), claims.AccountID)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(localAccount, acct)
	c.Locals(localClaims, claims)
	logger.ContextLogger.Debug("Request context",
		zap.String("path", c.Path()),
		zap.Int64("account_id", acct.ID),
		zap.String("role", string(acct.Role)),
		zap.String("session", claims.Session),
	)
	return c.Next()
}

// RequirePolicy rejects the request with 403 unless check allows the actor.
func RequirePolicy(check func(*models.Account) policy.Decision) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := Actor(c)
		d := check(actor)
		if !d.Allowed {
			fields := []zap.Field{zap.String("path", c.Path()), zap.String("reason", d.Reason.String())}
			if actor != nil {
				fields = append(fields, zap.Int64("actor_id", actor.ID), zap.String("role", string(actor.Role)))
			}
			logger.SecurityLogger.Warn("Forbidden route", fields...)
			return fail(c, d.Err())
		}
		return c.Next()
	}
}

// Actor returns the authenticated account, or nil.
func Actor(c *fiber.Ctx) *models.Account {
	a, _ := c.Locals(localAccount).(*models.Account)
	return a
}

// Claims returns the claims of the token used for the request, or nil.
func Claims(c *fiber.Ctx) *auth.Claims {
	cl, _ := c.Locals(localClaims).(*auth.Claims)
	return cl
}

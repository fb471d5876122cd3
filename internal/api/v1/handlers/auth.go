package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"task-management/internal/apperror"
	"task-management/internal/config"
	"task-management/internal/middleware"
	"task-management/internal/models"
	"task-management/internal/policy"
	"task-management/pkg/logger"
)

type loginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// login checks the credentials and issues a token pair.
func login(c *fiber.Ctx) (*models.Account, fiber.Map, error) {
	var req loginRequest
	if err := bindRequest(c, &req); err != nil {
		return nil, nil, err
	}
	acct, err := config.Accounts.Authenticate(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return nil, nil, err
	}
	pair, err := config.Tokens.Issue(acct)
	if err != nil {
		return nil, nil, err
	}
	return acct, fiber.Map{
		"user_id": acct.ID,
		"role":    acct.Role,
		"access":  pair.Access,
		"refresh": pair.Refresh,
	}, nil
}

// Token menukar username dan password dengan access dan refresh token.
// Semua role boleh login lewat API.
func Token(c *fiber.Ctx) error {
	acct, data, err := login(c)
	if err != nil {
		return respondError(c, err, nil)
	}
	logger.AuditLogger.Info("Login success", zap.Int64("user_id", acct.ID), zap.String("role", string(acct.Role)))
	return respond(c, fiber.StatusOK, "Login success", data)
}

func RefreshToken(c *fiber.Ctx) error {
	var req struct {
		Refresh string `json:"refresh" form:"refresh" validate:"required"`
	}
	if err := bindRequest(c, &req); err != nil {
		return respondError(c, err, nil)
	}
	access, err := config.Tokens.Refresh(c.UserContext(), req.Refresh)
	if err != nil {
		return respondError(c, err, nil)
	}
	return respond(c, fiber.StatusOK, "Token refreshed", fiber.Map{"access": access})
}

// Logout mencabut token yang dipakai request ini.
func Logout(c *fiber.Ctx) error {
	if err := config.Tokens.Revoke(c.UserContext(), middleware.Claims(c)); err != nil {
		return respondError(c, err, nil)
	}
	if actor := middleware.Actor(c); actor != nil {
		logger.AuditLogger.Info("Logout", zap.Int64("user_id", actor.ID))
	}
	return respond(c, fiber.StatusOK, "Logged out", nil)
}

// panelLogin is shared by the admin and the user panel login. Only accounts
// allowed by gate get a session cookie.
func panelLogin(c *fiber.Ctx, gate func(*models.Account) policy.Decision, deniedMsg string) error {
	acct, data, err := login(c)
	if err != nil {
		return respondError(c, err, nil)
	}
	if !gate(acct).Allowed {
		logger.SecurityLogger.Warn("Panel login with wrong role",
			zap.Int64("user_id", acct.ID), zap.String("role", string(acct.Role)))
		return respondError(c, apperror.NewForbidden("%s", deniedMsg), nil)
	}
	c.Cookie(&fiber.Cookie{
		Name:     middleware.PanelCookie,
		Value:    data["access"].(string),
		Path:     "/panel",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	data["redirect"] = dashboardPath(acct.Role)
	logger.AuditLogger.Info("Panel login", zap.Int64("user_id", acct.ID), zap.String("role", string(acct.Role)))
	return respond(c, fiber.StatusOK, "Login success", data)
}

func PanelLogin(c *fiber.Ctx) error {
	return panelLogin(c, policy.CanAccessPanel, "Only Admins and SuperAdmins can access the panel.")
}

func PanelUserLogin(c *fiber.Ctx) error {
	return panelLogin(c, policy.CanAccessUserAPI, "Only regular users can access this page.")
}

func panelLogout(c *fiber.Ctx, loginPath string) error {
	if err := config.Tokens.Revoke(c.UserContext(), middleware.Claims(c)); err != nil {
		return respondError(c, err, nil)
	}
	c.Cookie(&fiber.Cookie{
		Name:     middleware.PanelCookie,
		Value:    "",
		Path:     "/panel",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
	})
	return respond(c, fiber.StatusOK, "You have been logged out.", fiber.Map{"redirect": loginPath})
}

func PanelLogout(c *fiber.Ctx) error { return panelLogout(c, "/panel/login") }

func PanelUserLogout(c *fiber.Ctx) error { return panelLogout(c, "/panel/user/login") }

func dashboardPath(role models.Role) string {
	switch role {
	case models.RoleSuperAdmin:
		return "/panel/superadmin/dashboard"
	case models.RoleAdmin:
		return "/panel/admin/dashboard"
	default:
		return "/panel/user/dashboard"
	}
}

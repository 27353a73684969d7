package controllers

import (
	"context"
	"errors"

	"nutriflow/authentication/util"
	"nutriflow/models"
	"nutriflow/repositories"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// EmailVerifier confirms an address from a verification token.
type EmailVerifier interface {
	VerifyEmail(ctx context.Context, token string) (*models.AuthUser, error)
}

type VerifyController struct {
	Verifier EmailVerifier
	Log      *zap.Logger
}

func NewVerifyController(v EmailVerifier, log *zap.Logger) *VerifyController {
	return &VerifyController{Verifier: v, Log: log}
}

// Verify handles GET /auth/verify?token=...
func (vc *VerifyController) Verify(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing verification token",
		})
	}

	user, err := vc.Verifier.VerifyEmail(c.UserContext(), token)
	switch {
	case errors.Is(err, util.ErrInvalidToken):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Verification link is invalid or has expired",
		})
	case errors.Is(err, repositories.ErrIdentityNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	case err != nil:
		vc.Log.Error("email verification failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to verify email",
		})
	}

	vc.Log.Info("email verified", zap.String("user_id", user.ID))
	return c.JSON(fiber.Map{
		"message": "Email verified. You can close this page.",
		"id":      user.ID,
	})
}

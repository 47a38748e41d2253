package handlers

import (
	"frontdesk/internal/dto"
	"frontdesk/pkg/auth"
	"frontdesk/pkg/config"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AuthHandler struct {
	jwtManager *auth.JWTManager
	config     *config.AuthConfig
	logger     *zap.Logger
}

func NewAuthHandler(jwtManager *auth.JWTManager, cfg *config.AuthConfig, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		jwtManager: jwtManager,
		config:     cfg,
		logger:     logger,
	}
}

// Login godoc
// @Summary Supervisor login
// @Description Exchange the supervisor access code for a dashboard token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login request"
// @Success 200 {object} dto.Response{data=dto.AuthResponse}
// @Failure 401 {object} dto.Response
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Invalid request body"))
	}
	if req.Name == "" || req.AccessCode == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("name and access_code are required"))
	}

	if h.config.SupervisorCode == "" || !auth.CheckAccessCode(req.AccessCode, h.config.SupervisorCode) {
		h.logger.Warn("Failed supervisor login", zap.String("name", req.Name))
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("Invalid access code"))
	}

	token, err := h.jwtManager.GenerateToken(req.Name)
	if err != nil {
		h.logger.Error("Failed to issue token", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail("Internal server error"))
	}

	return c.JSON(dto.OK(dto.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.jwtManager.GetTokenDuration().Seconds()),
	}))
}

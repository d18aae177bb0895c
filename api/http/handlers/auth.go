package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/artem13815/accounts/api/http/presenter"
	"github.com/artem13815/accounts/pkg/auth"
)

type AuthHandler struct {
	useCase auth.AuthUseCase
	log     *zap.Logger
}

func NewAuthHandler(useCase auth.AuthUseCase, log *zap.Logger) *AuthHandler {
	return &AuthHandler{useCase: useCase, log: log}
}

type registerRequest struct {
	Name     string `json:"name" example:"John Doe"`
	Email    string `json:"email" example:"johndoe@example.com"`
	Password string `json:"password" example:"admin123"`
}

// Register handles user registration.
// @Summary Cadastrar um novo usuário
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body registerRequest true "registration payload"
// @Success 201 {object} auth.RegisterResult
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 409 {object} presenter.ErrorResponse
// @Router  /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	for _, err := range []error{validateName(req.Name), validateEmail(req.Email), validatePassword(req.Password)} {
		if err != nil {
			return writeError(c, h.log, err)
		}
	}

	result, err := h.useCase.Register(c.Context(), auth.RegisterInput{
		Name:     strings.TrimSpace(req.Name),
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return presenter.JSON(c, http.StatusCreated, result)
}

type loginRequest struct {
	Email    string `json:"email" example:"johndoe@example.com"`
	Password string `json:"password" example:"admin123"`
}

// Login handles user login.
// @Summary Fazer login com as suas credenciais
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body loginRequest true "login payload"
// @Success 200 {object} auth.LoginResult
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Router  /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	if err := validateEmail(req.Email); err != nil {
		return writeError(c, h.log, err)
	}
	if req.Password == "" {
		return presenter.Error(c, http.StatusBadRequest, "password is required")
	}

	result, err := h.useCase.Login(c.Context(), auth.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return presenter.JSON(c, http.StatusOK, result)
}

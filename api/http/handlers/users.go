package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/artem13815/accounts/api/http/presenter"
	"github.com/artem13815/accounts/pkg/user"
)

const msgUserDeleted = "Usuário excluído com sucesso"

type UsersHandler struct {
	users user.UseCase
	log   *zap.Logger
}

func NewUsersHandler(users user.UseCase, log *zap.Logger) *UsersHandler {
	return &UsersHandler{users: users, log: log}
}

type createUserRequest struct {
	Name     string `json:"name" example:"John Doe"`
	Email    string `json:"email" example:"johndoe@example.com"`
	Password string `json:"password,omitempty" example:"admin123"`
	Role     string `json:"role,omitempty" enums:"USER,ADMIN"`
}

// updateUserRequest has no externalId: provider links are only made by the
// provider flow itself.
type updateUserRequest struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
	Role     *string `json:"role,omitempty" enums:"USER,ADMIN"`
}

type inactiveResponse struct {
	Data  []user.Profile `json:"data"`
	Count int            `json:"count"`
}

// Create registers an account on behalf of an administrator.
// @Summary     Cadastrar um novo usuário (Administradores)
// @Tags        users
// @Accept      json
// @Produce     json
// @Param       input body createUserRequest true "user payload"
// @Security    BearerAuth
// @Success     201 {object} user.Profile
// @Failure     400 {object} presenter.ErrorResponse
// @Failure     403 {object} presenter.ErrorResponse
// @Failure     409 {object} presenter.ErrorResponse
// @Router      /users [post]
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var req createUserRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	if err := validateName(req.Name); err != nil {
		return writeError(c, h.log, err)
	}
	if err := validateEmail(req.Email); err != nil {
		return writeError(c, h.log, err)
	}
	if req.Password != "" {
		if err := validatePassword(req.Password); err != nil {
			return writeError(c, h.log, err)
		}
	}
	in := user.CreateInput{Name: strings.TrimSpace(req.Name), Email: req.Email, Password: req.Password}
	if req.Role != "" {
		role, err := parseRole(req.Role)
		if err != nil {
			return writeError(c, h.log, err)
		}
		in.Role = role
	}

	created, err := h.users.Create(c.Context(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return presenter.JSON(c, http.StatusCreated, created.Sanitize())
}

// List returns a page of users.
// @Summary     Listar todos os usuários (Administradores)
// @Description Responds with null when order, page or limit is unusable.
// @Tags        users
// @Produce     json
// @Param       role   query string false "role filter" Enums(USER, ADMIN)
// @Param       sortBy query string false "sort field"  Enums(name, email, createdAt, lastLoginAt) default(createdAt)
// @Param       order  query string false "direction"   Enums(asc, desc) default(desc)
// @Param       page   query int    false "1-based page" default(1)
// @Param       limit  query int    false "page size"    default(10)
// @Security    BearerAuth
// @Success     200 {object} user.Page
// @Failure     400 {object} presenter.ErrorResponse
// @Failure     403 {object} presenter.ErrorResponse
// @Router      /users [get]
func (h *UsersHandler) List(c *fiber.Ctx) error {
	actor, _ := currentUser(c)
	page, err := h.users.List(c.Context(), parseFilters(c), actor)
	if err != nil {
		return writeError(c, h.log, err)
	}
	if page == nil {
		return presenter.JSON(c, http.StatusOK, nil)
	}
	return presenter.JSON(c, http.StatusOK, page)
}

// Inactive lists accounts without a recent login.
// @Summary  Listar usuários com login inativos (Administradores)
// @Tags     users
// @Produce  json
// @Param    days query int false "inactivity threshold in days"
// @Security BearerAuth
// @Success  200 {object} inactiveResponse
// @Failure  400 {object} presenter.ErrorResponse
// @Failure  403 {object} presenter.ErrorResponse
// @Router   /users/inactive [get]
func (h *UsersHandler) Inactive(c *fiber.Ctx) error {
	days := 0
	if v := strings.TrimSpace(c.Query("days")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return presenter.Error(c, http.StatusBadRequest, "days must be a positive integer")
		}
		days = n
	}
	users, err := h.users.ListInactive(c.Context(), days)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return presenter.JSON(c, http.StatusOK, inactiveResponse{Data: user.SanitizeAll(users), Count: len(users)})
}

// Me returns the caller's own profile.
// @Summary  Obter dados do usuário atual logado
// @Tags     users
// @Produce  json
// @Security BearerAuth
// @Success  200 {object} user.Profile
// @Failure  401 {object} presenter.ErrorResponse
// @Router   /users/me [get]
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	actor, ok := currentUser(c)
	if !ok {
		return presenter.Error(c, http.StatusUnauthorized, "authentication required")
	}
	return presenter.JSON(c, http.StatusOK, actor.Sanitize())
}

// Get returns one user, to its owner or an administrator.
// @Summary  Obter dados de usuário por ID
// @Tags     users
// @Produce  json
// @Param    id path string true "user id"
// @Security BearerAuth
// @Success  200 {object} user.Profile
// @Failure  403 {object} presenter.ErrorResponse
// @Failure  404 {object} presenter.ErrorResponse
// @Router   /users/{id} [get]
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid user id")
	}
	actor, _ := currentUser(c)
	u, err := h.users.View(c.Context(), id, actor)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return presenter.JSON(c, http.StatusOK, u.Sanitize())
}

// Update applies a partial update.
// @Summary  Atualizar dados de usuário
// @Tags     users
// @Accept   json
// @Produce  json
// @Param    id    path string            true "user id"
// @Param    input body updateUserRequest true "fields to change"
// @Security BearerAuth
// @Success  200 {object} user.Profile
// @Failure  400 {object} presenter.ErrorResponse
// @Failure  403 {object} presenter.ErrorResponse
// @Failure  404 {object} presenter.ErrorResponse
// @Failure  409 {object} presenter.ErrorResponse
// @Router   /users/{id} [patch]
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid user id")
	}
	var req updateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}

	var p user.Patch
	if req.Name != nil {
		if err := validateName(*req.Name); err != nil {
			return writeError(c, h.log, err)
		}
		name := strings.TrimSpace(*req.Name)
		p.Name = &name
	}
	if req.Email != nil {
		if err := validateEmail(*req.Email); err != nil {
			return writeError(c, h.log, err)
		}
		p.Email = req.Email
	}
	if req.Password != nil {
		if err := validatePassword(*req.Password); err != nil {
			return writeError(c, h.log, err)
		}
		p.Password = req.Password
	}
	if req.Role != nil {
		// Passed through unvalidated: a role field from a non-admin must be
		// refused as FORBIDDEN whatever its value.
		role := user.Role(*req.Role)
		p.Role = &role
	}

	actor, _ := currentUser(c)
	updated, err := h.users.Update(c.Context(), id, p, actor)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return presenter.JSON(c, http.StatusOK, updated.Sanitize())
}

// Delete removes an account.
// @Summary  Excluir usuário do sistema (Administradores)
// @Tags     users
// @Produce  json
// @Param    id path string true "user id"
// @Security BearerAuth
// @Success  200 {object} presenter.MessageResponse
// @Failure  403 {object} presenter.ErrorResponse
// @Failure  404 {object} presenter.ErrorResponse
// @Router   /users/{id} [delete]
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid user id")
	}
	actor, _ := currentUser(c)
	if err := h.users.Remove(c.Context(), id, actor); err != nil {
		return writeError(c, h.log, err)
	}
	return presenter.Message(c, http.StatusOK, msgUserDeleted)
}

package user

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/artem13815/accounts/pkg/apperr"
)

// User-facing messages.
const (
	msgEmailInUse      = "Email já está em uso"
	msgExternalIDInUse = "Identidade externa já vinculada a outra conta"
	msgNotFound        = "Usuário não encontrado"
)

// MaxLimit bounds the page size accepted by List.
const MaxLimit = 100

// DefaultInactiveDays is the listInactive threshold when none is given.
const DefaultInactiveDays = 30

var tracer = otel.Tracer("github.com/artem13815/accounts/pkg/user")

// UseCase describes the identity lifecycle and the authorization rules around it.
type UseCase interface {
	Create(ctx context.Context, in CreateInput) (User, error)
	FindByID(ctx context.Context, id uuid.UUID) (User, error)
	// FindByEmail and FindByExternalID return (nil, nil) when no user matches.
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByExternalID(ctx context.Context, externalID string) (*User, error)
	View(ctx context.Context, id uuid.UUID, actor User) (User, error)
	// List returns (nil, nil) when order, page or limit is missing.
	List(ctx context.Context, f Filters, actor User) (*Page, error)
	Update(ctx context.Context, id uuid.UUID, p Patch, actor User) (User, error)
	Remove(ctx context.Context, id uuid.UUID, actor User) error
	TouchLastLogin(ctx context.Context, id uuid.UUID) error
	ListInactive(ctx context.Context, thresholdDays int) ([]User, error)
}

type service struct {
	repo         Repository
	hasher       PasswordHasher
	log          *zap.Logger
	inactiveDays int
	now          func() time.Time
}

// Option customizes the service.
type Option func(*service)

// WithInactiveDays overrides the default listInactive threshold.
func WithInactiveDays(days int) Option {
	return func(s *service) {
		if days > 0 {
			s.inactiveDays = days
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// NewService returns the default implementation of UseCase.
func NewService(repo Repository, hasher PasswordHasher, log *zap.Logger, opts ...Option) UseCase {
	if log == nil {
		log = zap.NewNop()
	}
	s := &service{
		repo:         repo,
		hasher:       hasher,
		log:          log.Named("users"),
		inactiveDays: DefaultInactiveDays,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Create(ctx context.Context, in CreateInput) (User, error) {
	ctx, span := tracer.Start(ctx, "user.Create")
	defer span.End()

	// Best-effort check; the store's unique index is the real guard.
	if _, err := s.repo.GetByEmail(ctx, in.Email); err == nil {
		return User{}, apperr.Conflict(msgEmailInUse)
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, fmt.Errorf("lookup email: %w", err)
	}

	role := in.Role
	if role == "" {
		role = RoleUser
	}
	if !role.Valid() {
		return User{}, apperr.Invalid("papel inválido")
	}

	u := User{
		ID:         uuid.New(),
		Email:      in.Email,
		Name:       in.Name,
		Role:       role,
		ExternalID: in.ExternalID,
	}
	if in.Password != "" {
		hash, err := s.hasher.Hash(ctx, in.Password)
		if err != nil {
			return User{}, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = hash
	}

	created, err := s.repo.Create(ctx, u)
	if err != nil {
		return User{}, translateWriteErr(err)
	}
	span.SetAttributes(attribute.String("user.id", created.ID.String()))
	s.log.Info("user created", zap.String("user_id", created.ID.String()), zap.String("role", string(created.Role)))
	return created, nil
}

func (s *service) FindByID(ctx context.Context, id uuid.UUID) (User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, apperr.NotFound(msgNotFound)
		}
		return User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *service) FindByEmail(ctx context.Context, email string) (*User, error) {
	return optional(s.repo.GetByEmail(ctx, email))
}

func (s *service) FindByExternalID(ctx context.Context, externalID string) (*User, error) {
	return optional(s.repo.GetByExternalID(ctx, externalID))
}

func (s *service) View(ctx context.Context, id uuid.UUID, actor User) (User, error) {
	u, err := s.FindByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if err := CanView(actor, id).Err(); err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *service) List(ctx context.Context, f Filters, actor User) (*Page, error) {
	ctx, span := tracer.Start(ctx, "user.List")
	defer span.End()

	if err := CanList(actor).Err(); err != nil {
		return nil, err
	}
	if !f.Complete() {
		return nil, nil
	}

	sortBy := f.SortBy
	if sortBy == "" {
		sortBy = DefaultSortBy
	}
	column, ok := SortColumn(sortBy)
	if !ok {
		return nil, apperr.Invalid("sortBy inválido")
	}
	order := strings.ToLower(f.Order)
	if order != "asc" && order != "desc" {
		return nil, apperr.Invalid("order deve ser asc ou desc")
	}
	if f.Role != "" && !f.Role.Valid() {
		return nil, apperr.Invalid("papel inválido")
	}
	if f.Limit > MaxLimit {
		return nil, apperr.Invalid(fmt.Sprintf("limit deve estar entre 1 e %d", MaxLimit))
	}
	if f.Page > math.MaxInt/f.Limit {
		return nil, apperr.Invalid("page fora do intervalo")
	}

	users, total, err := s.repo.List(ctx, ListQuery{
		Role:       f.Role,
		SortColumn: column,
		Descending: order == "desc",
		Offset:     (f.Page - 1) * f.Limit,
		Limit:      f.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return &Page{
		Data: SanitizeAll(users),
		Pagination: Pagination{
			Page:  f.Page,
			Limit: f.Limit,
			Total: total,
			Pages: (total + f.Limit - 1) / f.Limit,
		},
	}, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, p Patch, actor User) (User, error) {
	ctx, span := tracer.Start(ctx, "user.Update")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", id.String()))

	target, err := s.FindByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if err := CanUpdate(actor, id, p).Err(); err != nil {
		return User{}, err
	}
	if p.Role != nil && !p.Role.Valid() {
		return User{}, apperr.Invalid("papel inválido")
	}

	if p.Email != nil && *p.Email != target.Email {
		existing, err := s.FindByEmail(ctx, *p.Email)
		if err != nil {
			return User{}, err
		}
		if existing != nil && existing.ID != id {
			return User{}, apperr.Conflict(msgEmailInUse)
		}
		target.Email = *p.Email
	}
	if p.Name != nil {
		target.Name = *p.Name
	}
	if p.Role != nil {
		target.Role = *p.Role
	}
	if p.ExternalID != nil {
		target.ExternalID = *p.ExternalID
	}
	if p.Password != nil {
		hash, err := s.hasher.Hash(ctx, *p.Password)
		if err != nil {
			return User{}, fmt.Errorf("hash password: %w", err)
		}
		target.PasswordHash = hash
	}

	updated, err := s.repo.Update(ctx, target)
	if err != nil {
		return User{}, translateWriteErr(err)
	}
	return updated, nil
}

func (s *service) Remove(ctx context.Context, id uuid.UUID, actor User) error {
	ctx, span := tracer.Start(ctx, "user.Remove")
	defer span.End()

	if err := CanRemove(actor, id).Err(); err != nil {
		return err
	}
	if _, err := s.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound(msgNotFound)
		}
		return fmt.Errorf("delete user: %w", err)
	}
	s.log.Info("user deleted", zap.String("user_id", id.String()), zap.String("by", actor.ID.String()))
	return nil
}

func (s *service) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SetLastLogin(ctx, id, s.now().UTC()); err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	return nil
}

func (s *service) ListInactive(ctx context.Context, thresholdDays int) ([]User, error) {
	if thresholdDays <= 0 {
		thresholdDays = s.inactiveDays
	}
	before := s.now().UTC().AddDate(0, 0, -thresholdDays)
	users, err := s.repo.ListInactive(ctx, before)
	if err != nil {
		return nil, fmt.Errorf("list inactive users: %w", err)
	}
	return users, nil
}

func optional(u User, err error) (*User, error) {
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func translateWriteErr(err error) error {
	switch {
	case errors.Is(err, ErrDuplicateExternalID):
		return apperr.Conflict(msgExternalIDInUse)
	case errors.Is(err, ErrDuplicate):
		return apperr.Conflict(msgEmailInUse)
	case errors.Is(err, ErrNotFound):
		return apperr.NotFound(msgNotFound)
	default:
		return fmt.Errorf("persist user: %w", err)
	}
}

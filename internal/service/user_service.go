package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"jobboard/internal/cache"
	apperrors "jobboard/internal/errors"
	"jobboard/internal/model"
	"jobboard/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// CreateUserInput carries a user-creation request. CompanyName is optional.
type CreateUserInput struct {
	Email       string
	Password    string
	Name        string
	Role        model.Role
	CompanyName string
}

// UpdateUserInput is a partial patch; nil fields are left untouched.
type UpdateUserInput struct {
	Email    *string
	Password *string
	Name     *string
	Role     *model.Role
}

// UserService exposes domain operations.
type UserService interface {
	// CreateUser creates a user with the default USER role, ignoring input.Role, and
	// attaches a new company owned by that user when input.CompanyName is set.
	CreateUser(ctx context.Context, input CreateUserInput) (*model.User, error)
	// CreateUserWithRole is the privileged variant that honours input.Role.
	CreateUserWithRole(ctx context.Context, input CreateUserInput) (*model.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, input UpdateUserInput) (*model.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) (*model.User, error)
}

type userService struct {
	store     repository.Store
	companies CompanyService
	cache     *cache.Client
}

// NewUserService builds a UserService with store, company collaborator and cache.
func NewUserService(store repository.Store, companies CompanyService, cache *cache.Client) UserService {
	return &userService{store: store, companies: companies, cache: cache}
}

// Cached users live under a versioned key. Writers bump the version after commit, so a
// reader that loaded the row before the commit can only fill a key nobody reads again.
func (s *userService) versionKey(id uuid.UUID) string {
	return fmt.Sprintf("user:%s:version", id.String())
}

func (s *userService) cacheKey(id uuid.UUID, version int64) string {
	return fmt.Sprintf("user:%s:v%d", id.String(), version)
}

func (s *userService) cacheVersion(ctx context.Context, id uuid.UUID) int64 {
	data, _ := s.cache.Get(ctx, s.versionKey(id))
	if data == nil {
		return 0
	}
	v, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func (s *userService) invalidate(ctx context.Context, id uuid.UUID) {
	_, _ = s.cache.Incr(ctx, s.versionKey(id))
}

func (s *userService) CreateUser(ctx context.Context, input CreateUserInput) (*model.User, error) {
	if input.Role != "" && input.Role != model.RoleUser {
		zerolog.Ctx(ctx).Debug().
			Str("requested_role", string(input.Role)).
			Msg("ignoring requested role on public user creation")
	}
	return s.create(ctx, input, model.RoleUser)
}

func (s *userService) CreateUserWithRole(ctx context.Context, input CreateUserInput) (*model.User, error) {
	role := input.Role
	if role == "" {
		role = model.RoleUser
	}
	if !role.Valid() {
		return nil, apperrors.ErrInvalidRole
	}
	return s.create(ctx, input, role)
}

// create persists the user and, when a company name is given, the company and the
// link between them, all in one transaction.
func (s *userService) create(ctx context.Context, input CreateUserInput, role model.Role) (*model.User, error) {
	passwordHash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	companyName := strings.TrimSpace(input.CompanyName)

	var created *model.User
	err = s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		user := &model.User{
			Email:        input.Email,
			PasswordHash: passwordHash,
			Name:         input.Name,
			Role:         role,
		}
		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}

		if companyName == "" {
			created = user
			return nil
		}

		company, err := s.companies.CreateCompany(ctx, CompanyAttrs{Name: companyName}, user.ID, tx)
		if err != nil {
			return fmt.Errorf("create company: %w", err)
		}
		if err := tx.Users().SetCompany(ctx, user.ID, company.ID); err != nil {
			return fmt.Errorf("link company: %w", err)
		}
		linked, err := tx.Users().FindByID(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("reload user: %w", err)
		}
		created = linked
		return nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	log := zerolog.Ctx(ctx).Info().
		Str("user_id", created.ID.String()).
		Str("role", string(created.Role))
	if created.CompanyID != nil {
		log = log.Str("company_id", created.CompanyID.String())
	}
	log.Msg("user created")

	return created, nil
}

func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	key := s.cacheKey(id, s.cacheVersion(ctx, id))
	if data, _ := s.cache.Get(ctx, key); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if payload, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, key, payload, userCacheTTL)
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.store.Users().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *userService) UpdateUser(ctx context.Context, id uuid.UUID, input UpdateUserInput) (*model.User, error) {
	fields := map[string]interface{}{}
	if input.Email != nil {
		fields["email"] = *input.Email
	}
	if input.Name != nil {
		fields["name"] = *input.Name
	}
	if input.Role != nil {
		if !input.Role.Valid() {
			return nil, apperrors.ErrInvalidRole
		}
		fields["role"] = *input.Role
	}
	if input.Password != nil {
		passwordHash, err := hashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		fields["password_hash"] = passwordHash
	}

	var updated *model.User
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if _, err := tx.Users().FindByID(ctx, id); err != nil {
			return err
		}
		if err := tx.Users().Update(ctx, id, fields); err != nil {
			return err
		}
		user, err := tx.Users().FindByID(ctx, id)
		if err != nil {
			return err
		}
		updated = user
		return nil
	})
	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperrors.ErrUserNotFound
	case errors.Is(err, apperrors.ErrEmailAlreadyExists):
		return nil, apperrors.ErrEmailAlreadyExists
	default:
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.invalidate(ctx, id)
	return updated, nil
}

// DeleteUser removes the user and returns the removed record. Every failure,
// whatever its cause, is reported as ErrUserNotFound.
func (s *userService) DeleteUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var deleted *model.User
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		user, err := tx.Users().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.Users().Delete(ctx, id); err != nil {
			return err
		}
		deleted = user
		return nil
	})
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("user_id", id.String()).Msg("delete user failed")
		return nil, apperrors.ErrUserNotFound
	}

	s.invalidate(ctx, id)
	return deleted, nil
}

package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"jobboard/internal/model"
)

// UserRepository defines persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	SetCompany(ctx context.Context, id, companyID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts the user. A duplicate email yields ErrEmailAlreadyExists.
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return translateWriteError(r.db.WithContext(ctx).Omit("Company").Create(user).Error)
}

// FindByID finds a user by ID with its company.
func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Preload("Company").Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns all users, oldest first, with their companies.
func (r *userRepository) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Preload("Company").Order("created_at").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Update applies a column patch. It does not report missing rows: MySQL counts
// unchanged rows as unaffected, so callers check existence first.
func (r *userRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(fields).Error
	return translateWriteError(err)
}

// SetCompany links the user to a company.
func (r *userRepository) SetCompany(ctx context.Context, id, companyID uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("company_id", companyID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the user row. Deleting an unknown id returns gorm.ErrRecordNotFound.
func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

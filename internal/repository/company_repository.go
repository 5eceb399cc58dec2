package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"jobboard/internal/model"
)

// CompanyRepository defines company persistence operations.
type CompanyRepository interface {
	Create(ctx context.Context, company *model.Company) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Company, error)
}

type companyRepository struct {
	db *gorm.DB
}

// NewCompanyRepository creates a new company repository.
func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db}
}

// Create creates a new company record.
func (r *companyRepository) Create(ctx context.Context, company *model.Company) error {
	return r.db.WithContext(ctx).Omit("Users").Create(company).Error
}

// FindByID finds a company by ID together with its associated users.
func (r *companyRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Company, error) {
	var company model.Company
	if err := r.db.WithContext(ctx).Preload("Users").Where("id = ?", id).First(&company).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

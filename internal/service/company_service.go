package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "jobboard/internal/errors"
	"jobboard/internal/model"
	"jobboard/internal/repository"
)

// CompanyAttrs are the caller-provided company fields.
type CompanyAttrs struct {
	Name string
}

// CompanyService handles company operations.
type CompanyService interface {
	// CreateCompany persists a company owned by ownerID on tx, the caller's
	// transactional store. A nil tx runs on the service's own store.
	CreateCompany(ctx context.Context, attrs CompanyAttrs, ownerID uuid.UUID, tx repository.Store) (*model.Company, error)
	GetCompany(ctx context.Context, id uuid.UUID) (*model.Company, error)
}

type companyService struct {
	store repository.Store
}

// NewCompanyService creates a new company service.
func NewCompanyService(store repository.Store) CompanyService {
	return &companyService{store: store}
}

func (s *companyService) CreateCompany(ctx context.Context, attrs CompanyAttrs, ownerID uuid.UUID, tx repository.Store) (*model.Company, error) {
	name := strings.TrimSpace(attrs.Name)
	if name == "" {
		return nil, errors.New("company name is required")
	}
	if tx == nil {
		tx = s.store
	}

	company := &model.Company{
		Name:    name,
		OwnerID: ownerID,
	}
	if err := tx.Companies().Create(ctx, company); err != nil {
		return nil, fmt.Errorf("insert company: %w", err)
	}
	return company, nil
}

func (s *companyService) GetCompany(ctx context.Context, id uuid.UUID) (*model.Company, error) {
	company, err := s.store.Companies().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCompanyNotFound
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	return company, nil
}

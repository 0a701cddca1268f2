// internal/services/company_service.go
package services

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zapcatalog/zapcatalog-backend/internal/apperrors"
	"github.com/zapcatalog/zapcatalog-backend/internal/models"
	"github.com/zapcatalog/zapcatalog-backend/internal/utils"
)

type CompanyService struct {
	db *gorm.DB
}

type CreateCompanyRequest struct {
	Name           string `json:"name" validate:"required,min=2,max=255"`
	Slug           string `json:"slug" validate:"required,slug"`
	WhatsAppNumber string `json:"whatsapp_number" validate:"required,min=8,max=30"`
	Description    string `json:"description,omitempty"`
	Locale         string `json:"locale,omitempty"`
	Currency       string `json:"currency,omitempty" validate:"omitempty,len=3"`
}

type UpdateCompanyRequest struct {
	Name           string `json:"name,omitempty" validate:"omitempty,min=2,max=255"`
	Slug           string `json:"slug,omitempty" validate:"omitempty,slug"`
	WhatsAppNumber string `json:"whatsapp_number,omitempty" validate:"omitempty,min=8,max=30"`
	Description    *string `json:"description,omitempty"`
	LogoURL        *string `json:"logo_url,omitempty"`
	Locale         string `json:"locale,omitempty"`
	Currency       string `json:"currency,omitempty" validate:"omitempty,len=3"`
}

type UpdateSettingsRequest struct {
	SoundEnabled bool `json:"sound_enabled"`
}

func NewCompanyService(db *gorm.DB) *CompanyService {
	return &CompanyService{db: db}
}

// ResolveCompany maps the authenticated principal to its tenant record.
// Shoppers and owners without a storefront resolve to NotFound.
func (s *CompanyService) ResolveCompany(ownerID uuid.UUID) (*models.Company, error) {
	var company models.Company
	if err := s.db.Where("owner_id = ?", ownerID).First(&company).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("company")
		}
		return nil, apperrors.Upstream(err, "database error")
	}
	return &company, nil
}

func (s *CompanyService) GetBySlug(slug string) (*models.Company, error) {
	if !utils.IsValidSlug(slug) {
		return nil, apperrors.Validation("invalid slug format")
	}

	var company models.Company
	if err := s.db.Where("slug = ?", slug).First(&company).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("company")
		}
		return nil, apperrors.Upstream(err, "database error")
	}
	return &company, nil
}

func (s *CompanyService) CreateCompany(ownerID uuid.UUID, req *CreateCompanyRequest) (*models.Company, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("validation failed: %v", err)
	}

	var owner models.User
	if err := s.db.First(&owner, ownerID).Error; err != nil {
		return nil, apperrors.NotFound("owner")
	}
	if owner.UserType != models.UserTypeOwner {
		return nil, apperrors.Authorization("only owners can create a company")
	}

	// One owner owns zero-or-one company
	var existing models.Company
	if err := s.db.Where("owner_id = ?", ownerID).First(&existing).Error; err == nil {
		return nil, apperrors.Validation("owner already has a company")
	}

	if taken, err := s.slugTaken(req.Slug, uuid.Nil); err != nil {
		return nil, err
	} else if taken {
		return nil, apperrors.Validation("slug %q is already taken", req.Slug)
	}

	company := &models.Company{
		OwnerID:        ownerID,
		Name:           req.Name,
		Slug:           req.Slug,
		WhatsAppNumber: req.WhatsAppNumber,
		Description:    req.Description,
	}
	if req.Locale != "" {
		company.Locale = req.Locale
	}
	if req.Currency != "" {
		company.Currency = req.Currency
	}

	if err := s.db.Create(company).Error; err != nil {
		return nil, apperrors.Upstream(err, "failed to create company")
	}

	return company, nil
}

func (s *CompanyService) UpdateCompany(companyID, callerID uuid.UUID, req *UpdateCompanyRequest) (*models.Company, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("validation failed: %v", err)
	}

	var company models.Company
	if err := s.db.First(&company, companyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("company")
		}
		return nil, apperrors.Upstream(err, "database error")
	}

	if company.OwnerID != callerID {
		return nil, apperrors.Authorization("caller does not own this company")
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Slug != "" && req.Slug != company.Slug {
		// Slug changes break published links; allowed, but uniqueness still holds.
		if taken, err := s.slugTaken(req.Slug, company.ID); err != nil {
			return nil, err
		} else if taken {
			return nil, apperrors.Validation("slug %q is already taken", req.Slug)
		}
		updates["slug"] = req.Slug
	}
	if req.WhatsAppNumber != "" {
		updates["whats_app_number"] = req.WhatsAppNumber
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.LogoURL != nil {
		updates["logo_url"] = *req.LogoURL
	}
	if req.Locale != "" {
		updates["locale"] = req.Locale
	}
	if req.Currency != "" {
		updates["currency"] = req.Currency
	}

	if len(updates) == 0 {
		return &company, nil
	}

	if err := s.db.Model(&company).Updates(updates).Error; err != nil {
		return nil, apperrors.Upstream(err, "failed to update company")
	}

	return &company, nil
}

func (s *CompanyService) slugTaken(slug string, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := s.db.Model(&models.Company{}).Where("slug = ?", slug)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, apperrors.Upstream(err, "database error")
	}
	return count > 0, nil
}

// GetSettings returns the owner's dashboard preferences, defaulting to
// sound enabled when no row exists yet.
func (s *CompanyService) GetSettings(ownerID uuid.UUID) (*models.OwnerSetting, error) {
	var setting models.OwnerSetting
	if err := s.db.Where("owner_id = ?", ownerID).First(&setting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.OwnerSetting{OwnerID: ownerID, SoundEnabled: true}, nil
		}
		return nil, apperrors.Upstream(err, "database error")
	}
	return &setting, nil
}

// UpsertSettings is idempotent: repeated calls with the same value leave
// exactly one row per owner.
func (s *CompanyService) UpsertSettings(ownerID uuid.UUID, req *UpdateSettingsRequest) (*models.OwnerSetting, error) {
	setting := &models.OwnerSetting{
		OwnerID:      ownerID,
		SoundEnabled: req.SoundEnabled,
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"sound_enabled", "updated_at"}),
	}).Create(setting).Error
	if err != nil {
		return nil, apperrors.Upstream(err, "failed to save settings")
	}

	return s.GetSettings(ownerID)
}

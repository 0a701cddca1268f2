// internal/services/client_service.go
package services

import (
	"errors"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/zapcatalog/zapcatalog-backend/internal/apperrors"
	"github.com/zapcatalog/zapcatalog-backend/internal/models"
	"github.com/zapcatalog/zapcatalog-backend/internal/utils"
)

type ClientService struct {
	db *gorm.DB
}

type CreateContactRequest struct {
	Name  string `json:"name" validate:"required,min=2,max=255"`
	Phone string `json:"phone,omitempty" validate:"omitempty,max=30"`
}

type UpdateClientRequest struct {
	Name  string `json:"name,omitempty" validate:"omitempty,min=2,max=255"`
	Phone string `json:"phone,omitempty" validate:"omitempty,max=30"`
}

func NewClientService(db *gorm.DB) *ClientService {
	return &ClientService{db: db}
}

// ListClients merges the two contact sources into one registry: customers
// who placed at least one order with the company, and manually entered
// contacts. Entries carry their origin tag and sort newest first.
func (s *ClientService) ListClients(companyID, callerID uuid.UUID) ([]models.Client, error) {
	if err := s.authorizeCompanyOwner(companyID, callerID); err != nil {
		return nil, err
	}

	var customers []models.User
	if err := s.db.
		Joins("JOIN orders ON orders.customer_id = users.id").
		Where("orders.company_id = ?", companyID).
		Distinct("users.*").
		Find(&customers).Error; err != nil {
		return nil, apperrors.Upstream(err, "failed to fetch customers")
	}

	var contacts []models.ManualContact
	if err := s.db.Where("company_id = ?", companyID).
		Find(&contacts).Error; err != nil {
		return nil, apperrors.Upstream(err, "failed to fetch contacts")
	}

	clients := make([]models.Client, 0, len(customers)+len(contacts))
	for _, u := range customers {
		clients = append(clients, models.Client{
			ID:        u.ID,
			Origin:    models.ClientOriginLoggedIn,
			Name:      u.Name,
			Phone:     u.Phone,
			CreatedAt: u.CreatedAt,
		})
	}
	for _, c := range contacts {
		clients = append(clients, models.Client{
			ID:        c.ID,
			Origin:    models.ClientOriginManual,
			Name:      c.Name,
			Phone:     c.Phone,
			CreatedAt: c.CreatedAt,
		})
	}

	sort.Slice(clients, func(i, j int) bool {
		return clients[i].CreatedAt.After(clients[j].CreatedAt)
	})

	return clients, nil
}

// CreateContact adds a manual entry. Logged-in customers enter the registry
// by placing orders, never through this path.
func (s *ClientService) CreateContact(companyID, callerID uuid.UUID, req *CreateContactRequest) (*models.ManualContact, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("validation failed: %v", err)
	}
	if err := s.authorizeCompanyOwner(companyID, callerID); err != nil {
		return nil, err
	}

	contact := &models.ManualContact{
		CompanyID: companyID,
		Name:      req.Name,
		Phone:     req.Phone,
	}

	if err := s.db.Create(contact).Error; err != nil {
		return nil, apperrors.Upstream(err, "failed to create contact")
	}

	return contact, nil
}

// UpdateClient routes the edit by origin. Manual contacts are the company's
// own data and editable directly; a logged-in customer profile is only
// touched when the customer actually placed an order with this company.
func (s *ClientService) UpdateClient(companyID, clientID, callerID uuid.UUID, origin models.ClientOrigin, req *UpdateClientRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return apperrors.Validation("validation failed: %v", err)
	}
	if err := s.authorizeCompanyOwner(companyID, callerID); err != nil {
		return err
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if len(updates) == 0 {
		return nil
	}

	switch origin {
	case models.ClientOriginManual:
		res := s.db.Model(&models.ManualContact{}).
			Where("id = ? AND company_id = ?", clientID, companyID).
			Updates(updates)
		if res.Error != nil {
			return apperrors.Upstream(res.Error, "failed to update contact")
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFound("contact")
		}
		return nil

	case models.ClientOriginLoggedIn:
		hasOrder, err := s.customerHasOrder(companyID, clientID)
		if err != nil {
			return err
		}
		if !hasOrder {
			return apperrors.Authorization("customer has no order with this company")
		}

		res := s.db.Model(&models.User{}).
			Where("id = ? AND user_type = ?", clientID, models.UserTypeCustomer).
			Updates(updates)
		if res.Error != nil {
			return apperrors.Upstream(res.Error, "failed to update customer")
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFound("customer")
		}
		return nil

	default:
		return apperrors.Validation("unknown client origin %q", origin)
	}
}

// DeleteContact removes a manual entry. Customer-originated clients cannot
// be deleted from the registry; their order history keeps them in it.
func (s *ClientService) DeleteContact(companyID, contactID, callerID uuid.UUID) error {
	if err := s.authorizeCompanyOwner(companyID, callerID); err != nil {
		return err
	}

	res := s.db.Where("id = ? AND company_id = ?", contactID, companyID).
		Delete(&models.ManualContact{})
	if res.Error != nil {
		return apperrors.Upstream(res.Error, "failed to delete contact")
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("contact")
	}

	return nil
}

func (s *ClientService) customerHasOrder(companyID, customerID uuid.UUID) (bool, error) {
	var count int64
	if err := s.db.Model(&models.Order{}).
		Where("company_id = ? AND customer_id = ?", companyID, customerID).
		Count(&count).Error; err != nil {
		return false, apperrors.Upstream(err, "database error")
	}
	return count > 0, nil
}

func (s *ClientService) authorizeCompanyOwner(companyID, callerID uuid.UUID) error {
	var company models.Company
	if err := s.db.First(&company, companyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("company")
		}
		return apperrors.Upstream(err, "database error")
	}
	if company.OwnerID != callerID {
		return apperrors.Authorization("caller does not own this company")
	}
	return nil
}

// internal/services/notification_service.go
package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/zapcatalog/zapcatalog-backend/internal/apperrors"
	"github.com/zapcatalog/zapcatalog-backend/internal/models"
	"github.com/zapcatalog/zapcatalog-backend/internal/realtime"
	"github.com/zapcatalog/zapcatalog-backend/internal/utils"
)

type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// PollLatestUnread returns the most recent unread notification for the
// company, or nil when the inbox is clean. The stream endpoint calls this
// on connect so events missed while disconnected are not lost.
func (s *NotificationService) PollLatestUnread(companyID uuid.UUID) (*models.Notification, error) {
	var notification models.Notification
	err := s.db.Where("company_id = ? AND read = ?", companyID, false).
		Order("created_at DESC").
		Preload("Order").
		First(&notification).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Upstream(err, "failed to fetch notifications")
	}
	return &notification, nil
}

// MarkRead acknowledges one notification. It is the only mutation clients
// can apply to the feed; an acked notification never resurfaces.
func (s *NotificationService) MarkRead(notificationID, callerID uuid.UUID) error {
	notification, err := s.findForOwner(notificationID, callerID)
	if err != nil {
		return err
	}
	if notification.Read {
		return nil
	}

	now := time.Now().UTC()
	if err := s.db.Model(notification).Updates(map[string]interface{}{
		"read":    true,
		"read_at": now,
	}).Error; err != nil {
		return apperrors.Upstream(err, "failed to mark notification as read")
	}

	return nil
}

func (s *NotificationService) List(companyID, callerID uuid.UUID, params utils.PaginationParams) ([]models.Notification, int64, error) {
	if err := s.authorizeCompanyOwner(companyID, callerID); err != nil {
		return nil, 0, err
	}

	query := s.db.Model(&models.Notification{}).Where("company_id = ?", companyID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Upstream(err, "failed to count notifications")
	}

	query = query.Order("created_at DESC").Preload("Order")
	query = utils.ApplyPagination(query, params)

	var notifications []models.Notification
	if err := query.Find(&notifications).Error; err != nil {
		return nil, 0, apperrors.Upstream(err, "failed to fetch notifications")
	}

	return notifications, total, nil
}

func (s *NotificationService) UnreadCount(companyID uuid.UUID) (int64, error) {
	var count int64
	if err := s.db.Model(&models.Notification{}).
		Where("company_id = ? AND read = ?", companyID, false).
		Count(&count).Error; err != nil {
		return 0, apperrors.Upstream(err, "failed to count notifications")
	}
	return count, nil
}

// EventFor shapes a stored notification into its change-feed form.
func (s *NotificationService) EventFor(n *models.Notification) realtime.Event {
	return realtime.Event{
		NotificationID: n.ID,
		OrderID:        n.OrderID,
		CompanyID:      n.CompanyID,
		Type:           string(n.Type),
		CreatedAt:      n.CreatedAt,
	}
}

func (s *NotificationService) findForOwner(notificationID, callerID uuid.UUID) (*models.Notification, error) {
	var notification models.Notification
	if err := s.db.Preload("Company").First(&notification, notificationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("notification")
		}
		return nil, apperrors.Upstream(err, "database error")
	}
	if notification.Company.OwnerID != callerID {
		return nil, apperrors.Authorization("caller does not own this company")
	}
	return &notification, nil
}

func (s *NotificationService) authorizeCompanyOwner(companyID, callerID uuid.UUID) error {
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

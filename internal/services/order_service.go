// internal/services/order_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/zapcatalog/zapcatalog-backend/internal/apperrors"
	"github.com/zapcatalog/zapcatalog-backend/internal/models"
	"github.com/zapcatalog/zapcatalog-backend/internal/realtime"
	"github.com/zapcatalog/zapcatalog-backend/internal/utils"
	"github.com/zapcatalog/zapcatalog-backend/internal/whatsapp"
)

type OrderService struct {
	db  *gorm.DB
	hub *realtime.Hub
}

type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

type CreateOrderRequest struct {
	Items []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

func NewOrderService(db *gorm.DB, hub *realtime.Hub) *OrderService {
	return &OrderService{db: db, hub: hub}
}

// CreateOrder runs the whole checkout in one transaction: every line is
// re-validated against the live catalog, prices are snapshotted, the total
// is computed server-side and the owner notification row lands with the
// order itself. Stock is only soft-checked here; the decrement happens at
// approval time.
func (s *OrderService) CreateOrder(companyID uuid.UUID, customerID *uuid.UUID, req *CreateOrderRequest) (*models.Order, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("validation failed: %v", err)
	}

	seen := make(map[uuid.UUID]int, len(req.Items))
	productIDs := make([]uuid.UUID, 0, len(req.Items))
	for _, item := range req.Items {
		if _, dup := seen[item.ProductID]; dup {
			return nil, apperrors.Validation("duplicate product %s in order", item.ProductID)
		}
		seen[item.ProductID] = item.Quantity
		productIDs = append(productIDs, item.ProductID)
	}

	orderNumber, err := utils.GenerateOrderNumber()
	if err != nil {
		return nil, apperrors.Upstream(err, "failed to generate order number")
	}

	var order *models.Order
	var notification *models.Notification

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var products []models.Product
		if err := tx.Where("id IN ?", productIDs).Find(&products).Error; err != nil {
			return apperrors.Upstream(err, "failed to fetch products")
		}

		byID := make(map[uuid.UUID]*models.Product, len(products))
		for i := range products {
			byID[products[i].ID] = &products[i]
		}

		var stockProblems []string
		lineItems := make([]models.OrderLineItem, 0, len(req.Items))
		total := decimal.Zero

		for _, item := range req.Items {
			product, ok := byID[item.ProductID]
			if !ok {
				return apperrors.Validation("product %s does not exist", item.ProductID)
			}
			if product.CompanyID != companyID {
				return apperrors.Validation("product %s belongs to a different company", item.ProductID)
			}
			if !product.Active {
				return apperrors.Validation("product %q is not available", product.Name)
			}
			if !product.Availability().Allows(item.Quantity) {
				stockProblems = append(stockProblems,
					fmt.Sprintf("%s (requested %d, available %d)", product.Name, item.Quantity, product.Stock))
				continue
			}

			subtotal := product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
			lineItems = append(lineItems, models.OrderLineItem{
				ProductID: product.ID,
				Quantity:  item.Quantity,
				UnitPrice: product.Price,
				Subtotal:  subtotal,
			})
			total = total.Add(subtotal)
		}

		// All-or-nothing: one short line fails the whole checkout.
		if len(stockProblems) > 0 {
			return apperrors.Stock("insufficient stock: %s", strings.Join(stockProblems, "; "))
		}

		order = &models.Order{
			OrderNumber: orderNumber,
			CompanyID:   companyID,
			CustomerID:  customerID,
			Status:      models.OrderStatusSubmitted,
			Total:       total,
		}
		if err := tx.Create(order).Error; err != nil {
			return apperrors.Upstream(err, "failed to create order")
		}

		for i := range lineItems {
			lineItems[i].OrderID = order.ID
		}
		if err := tx.Create(&lineItems).Error; err != nil {
			return apperrors.Upstream(err, "failed to create order items")
		}
		order.Items = lineItems

		notification = &models.Notification{
			CompanyID: companyID,
			OrderID:   order.ID,
			Type:      models.NotificationTypeNewOrder,
		}
		if err := tx.Create(notification).Error; err != nil {
			return apperrors.Upstream(err, "failed to create notification")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	// Publish only after the transaction commits; a missed event is
	// recovered by the poll the stream endpoint does on connect.
	s.hub.Publish(realtime.Event{
		NotificationID: notification.ID,
		OrderID:        order.ID,
		CompanyID:      companyID,
		Type:           string(notification.Type),
		CreatedAt:      notification.CreatedAt,
	})

	logrus.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"company_id":   companyID,
		"total":        order.Total,
	}).Info("Order created")

	return order, nil
}

// ApproveOrder moves a submitted order to approved and decrements finite
// stock, all in one transaction. The status flip is a conditional update
// keyed on the current status, so two concurrent approvals can never both
// succeed and stock is never decremented twice.
func (s *OrderService) ApproveOrder(orderID, callerID uuid.UUID) (*models.Order, error) {
	order, err := s.findOwnedOrder(orderID, callerID)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", orderID, models.OrderStatusSubmitted).
			Update("status", models.OrderStatusApproved)
		if res.Error != nil {
			return apperrors.Upstream(res.Error, "failed to update order status")
		}
		if res.RowsAffected == 0 {
			return s.transitionConflict(tx, orderID, "approve")
		}

		var items []models.OrderLineItem
		if err := tx.Where("order_id = ?", orderID).Find(&items).Error; err != nil {
			return apperrors.Upstream(err, "failed to fetch order items")
		}

		for _, item := range items {
			// Unlimited stock is a sentinel, never decremented.
			dec := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", item.ProductID, item.Quantity).
				Update("stock", gorm.Expr("stock - ?", item.Quantity))
			if dec.Error != nil {
				return apperrors.Upstream(dec.Error, "failed to decrement stock")
			}
			if dec.RowsAffected == 0 {
				var product models.Product
				if err := tx.First(&product, item.ProductID).Error; err != nil {
					return apperrors.Upstream(err, "failed to fetch product")
				}
				if product.Availability().IsUnlimited() {
					continue
				}
				return apperrors.Concurrency("stock for %q changed under the approval, retry", product.Name)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	order.Status = models.OrderStatusApproved

	logrus.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
	}).Info("Order approved")

	return order, nil
}

// CancelOrder is the owner's terminal rejection. Stock is never touched:
// nothing was decremented at submit time, so there is nothing to restore.
func (s *OrderService) CancelOrder(orderID, callerID uuid.UUID) (*models.Order, error) {
	order, err := s.findOwnedOrder(orderID, callerID)
	if err != nil {
		return nil, err
	}

	res := s.db.Model(&models.Order{}).
		Where("id = ? AND status IN ?", orderID,
			[]models.OrderStatus{models.OrderStatusDraft, models.OrderStatusSubmitted}).
		Update("status", models.OrderStatusCancelled)
	if res.Error != nil {
		return nil, apperrors.Upstream(res.Error, "failed to update order status")
	}
	if res.RowsAffected == 0 {
		return nil, s.transitionConflict(s.db, orderID, "cancel")
	}

	order.Status = models.OrderStatusCancelled

	logrus.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
	}).Info("Order cancelled")

	return order, nil
}

// ListOrders returns the company's orders with the actionable ones first:
// non-terminal orders sort before terminal ones, newest first within each
// partition.
func (s *OrderService) ListOrders(companyID, callerID uuid.UUID, params utils.PaginationParams) ([]models.Order, int64, error) {
	if err := s.authorizeCompanyOwner(companyID, callerID); err != nil {
		return nil, 0, err
	}

	query := s.db.Model(&models.Order{}).Where("company_id = ?", companyID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Upstream(err, "failed to count orders")
	}

	query = query.
		Order("CASE WHEN status IN ('approved', 'cancelled') THEN 1 ELSE 0 END ASC").
		Order("created_at DESC").
		Preload("Customer")
	query = utils.ApplyPagination(query, params)

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, 0, apperrors.Upstream(err, "failed to fetch orders")
	}

	return orders, total, nil
}

// GetOrder fetches one order with its line items, visible to the company
// owner or to the customer who placed it.
func (s *OrderService) GetOrder(orderID, callerID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("Company").First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("order")
		}
		return nil, apperrors.Upstream(err, "database error")
	}

	isOwner := order.Company.OwnerID == callerID
	isCustomer := order.CustomerID != nil && *order.CustomerID == callerID
	if !isOwner && !isCustomer {
		return nil, apperrors.Authorization("caller cannot view this order")
	}

	items, err := s.loadItems(order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return &order, nil
}

// GetOrderItems returns the line items in creation order with product
// display names resolved for rendering.
func (s *OrderService) GetOrderItems(orderID, callerID uuid.UUID) ([]models.OrderLineItem, error) {
	order, err := s.GetOrder(orderID, callerID)
	if err != nil {
		return nil, err
	}
	return order.Items, nil
}

// WhatsAppLink builds the wa.me handoff URL carrying the itemized order
// message for the company's registered number.
func (s *OrderService) WhatsAppLink(orderID, callerID uuid.UUID) (string, error) {
	order, err := s.GetOrder(orderID, callerID)
	if err != nil {
		return "", err
	}

	if order.Company.WhatsAppNumber == "" {
		return "", apperrors.Validation("company has no WhatsApp number configured")
	}

	link, err := whatsapp.BuildDeepLink(&order.Company, order, order.Items)
	if err != nil {
		return "", apperrors.Upstream(err, "failed to build WhatsApp link")
	}

	return link, nil
}

// Helpers

func (s *OrderService) loadItems(orderID uuid.UUID) ([]models.OrderLineItem, error) {
	var items []models.OrderLineItem
	if err := s.db.Where("order_id = ?", orderID).
		Order("created_at ASC").
		Preload("Product").
		Find(&items).Error; err != nil {
		return nil, apperrors.Upstream(err, "failed to fetch order items")
	}
	for i := range items {
		items[i].ProductName = items[i].Product.Name
	}
	return items, nil
}

// transitionConflict distinguishes an illegal transition from a lost race.
// A terminal current status means the caller asked for something the
// lifecycle forbids; anything else means another writer got there first.
func (s *OrderService) transitionConflict(tx *gorm.DB, orderID uuid.UUID, action string) error {
	var current models.Order
	if err := tx.First(&current, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("order")
		}
		return apperrors.Upstream(err, "database error")
	}
	if current.Status.Terminal() {
		return apperrors.InvalidTransition("cannot %s an order in status %q", action, current.Status)
	}
	return apperrors.Concurrency("order status changed during %s, retry", action)
}

func (s *OrderService) findOwnedOrder(orderID, callerID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("Company").First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("order")
		}
		return nil, apperrors.Upstream(err, "database error")
	}
	if order.Company.OwnerID != callerID {
		return nil, apperrors.Authorization("caller does not own this company")
	}
	return &order, nil
}

func (s *OrderService) authorizeCompanyOwner(companyID, callerID uuid.UUID) error {
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

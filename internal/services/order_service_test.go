// internal/services/order_service_test.go
package services

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/zapcatalog/zapcatalog-backend/internal/apperrors"
	"github.com/zapcatalog/zapcatalog-backend/internal/models"
	"github.com/zapcatalog/zapcatalog-backend/internal/realtime"
	"github.com/zapcatalog/zapcatalog-backend/internal/utils"
)

type OrderServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *OrderService
	hub     *realtime.Hub
	owner   *models.User
	company *models.Company
}

func (suite *OrderServiceTestSuite) SetupTest() {
	suite.db = setupTestDB(suite.T())
	suite.hub = realtime.NewHub()
	suite.service = NewOrderService(suite.db, suite.hub)
	suite.owner = seedOwner(suite.T(), suite.db, "owner@acme.test")
	suite.company = seedCompany(suite.T(), suite.db, suite.owner, "acme")
}

func (suite *OrderServiceTestSuite) TearDownTest() {
	suite.hub.Close()
}

func (suite *OrderServiceTestSuite) createOrder(items ...OrderItemRequest) (*models.Order, error) {
	return suite.service.CreateOrder(suite.company.ID, nil, &CreateOrderRequest{Items: items})
}

func (suite *OrderServiceTestSuite) reloadProduct(id uuid.UUID) *models.Product {
	var product models.Product
	suite.Require().NoError(suite.db.First(&product, id).Error)
	return &product
}

func (suite *OrderServiceTestSuite) TestCreateOrderComputesServerSideTotal() {
	snack := seedProduct(suite.T(), suite.db, suite.company.ID, "Snack", "10.00", 3)

	order, err := suite.createOrder(OrderItemRequest{ProductID: snack.ID, Quantity: 2})
	suite.Require().NoError(err)

	suite.Equal(models.OrderStatusSubmitted, order.Status)
	suite.True(order.Total.Equal(decimal.RequireFromString("20.00")),
		"total was %s", order.Total)
	suite.Len(order.Items, 1)
	suite.True(order.Items[0].UnitPrice.Equal(snack.Price))
	suite.True(order.Items[0].Subtotal.Equal(decimal.RequireFromString("20.00")))
	suite.NotEmpty(order.OrderNumber)

	// Submission only soft-checks stock.
	suite.Equal(3, suite.reloadProduct(snack.ID).Stock)
}

func (suite *OrderServiceTestSuite) TestCreateOrderWritesOneUnreadNotification() {
	snack := seedProduct(suite.T(), suite.db, suite.company.ID, "Snack", "10.00", 3)

	order, err := suite.createOrder(OrderItemRequest{ProductID: snack.ID, Quantity: 1})
	suite.Require().NoError(err)

	var notifications []models.Notification
	suite.Require().NoError(suite.db.Where("order_id = ?", order.ID).Find(&notifications).Error)
	suite.Len(notifications, 1)
	suite.False(notifications[0].Read)
	suite.Equal(models.NotificationTypeNewOrder, notifications[0].Type)
}

func (suite *OrderServiceTestSuite) TestCreateOrderPublishesToHub() {
	session := suite.hub.Subscribe(suite.company.ID, "dashboard")
	snack := seedProduct(suite.T(), suite.db, suite.company.ID, "Snack", "10.00", 3)

	order, err := suite.createOrder(OrderItemRequest{ProductID: snack.ID, Quantity: 1})
	suite.Require().NoError(err)

	select {
	case ev := <-session.C:
		suite.Equal(order.ID, ev.OrderID)
		suite.Equal(suite.company.ID, ev.CompanyID)
	default:
		suite.Fail("expected an event on the session channel")
	}
}

func (suite *OrderServiceTestSuite) TestCreateOrderInsufficientStockIsAllOrNothing() {
	plenty := seedProduct(suite.T(), suite.db, suite.company.ID, "Plenty", "5.00", 100)
	scarce := seedProduct(suite.T(), suite.db, suite.company.ID, "Scarce", "8.00", 1)

	_, err := suite.createOrder(
		OrderItemRequest{ProductID: plenty.ID, Quantity: 2},
		OrderItemRequest{ProductID: scarce.ID, Quantity: 5},
	)
	suite.Require().Error(err)
	suite.True(apperrors.Is(err, apperrors.KindStock), "got %v", err)

	var orderCount int64
	suite.Require().NoError(suite.db.Model(&models.Order{}).Count(&orderCount).Error)
	suite.Zero(orderCount)

	var notificationCount int64
	suite.Require().NoError(suite.db.Model(&models.Notification{}).Count(&notificationCount).Error)
	suite.Zero(notificationCount)
}

func (suite *OrderServiceTestSuite) TestCreateOrderZeroStockProductRejected() {
	gone := seedProduct(suite.T(), suite.db, suite.company.ID, "Gone", "5.00", 0)

	_, err := suite.createOrder(OrderItemRequest{ProductID: gone.ID, Quantity: 1})
	suite.Require().Error(err)
	suite.True(apperrors.Is(err, apperrors.KindStock))
}

func (suite *OrderServiceTestSuite) TestCreateOrderUnlimitedStockAlwaysAllowed() {
	water := seedProduct(suite.T(), suite.db, suite.company.ID, "Water", "2.50", models.StockUnlimited)

	order, err := suite.createOrder(OrderItemRequest{ProductID: water.ID, Quantity: 500})
	suite.Require().NoError(err)
	suite.True(order.Total.Equal(decimal.RequireFromString("1250.00")))
}

func (suite *OrderServiceTestSuite) TestCreateOrderCrossCompanyProductRejected() {
	otherOwner := seedOwner(suite.T(), suite.db, "other@acme.test")
	otherCompany := seedCompany(suite.T(), suite.db, otherOwner, "other")
	foreign := seedProduct(suite.T(), suite.db, otherCompany.ID, "Foreign", "3.00", 10)

	_, err := suite.createOrder(OrderItemRequest{ProductID: foreign.ID, Quantity: 1})
	suite.Require().Error(err)
	suite.True(apperrors.Is(err, apperrors.KindValidation))
}

func (suite *OrderServiceTestSuite) TestCreateOrderInactiveProductRejected() {
	hidden := seedProduct(suite.T(), suite.db, suite.company.ID, "Hidden", "3.00", 10)
	suite.Require().NoError(suite.db.Model(hidden).Update("active", false).Error)

	_, err := suite.createOrder(OrderItemRequest{ProductID: hidden.ID, Quantity: 1})
	suite.Require().Error(err)
	suite.True(apperrors.Is(err, apperrors.KindValidation))
}

func (suite *OrderServiceTestSuite) TestApproveDecrementsStockExactlyOnce() {
	snack := seedProduct(suite.T(), suite.db, suite.company.ID, "Snack", "10.00", 3)

	order, err := suite.createOrder(OrderItemRequest{ProductID: snack.ID, Quantity: 2})
	suite.Require().NoError(err)

	approved, err := suite.service.ApproveOrder(order.ID, suite.owner.ID)
	suite.Require().NoError(err)
	suite.Equal(models.OrderStatusApproved, approved.Status)
	suite.Equal(1, suite.reloadProduct(snack.ID).Stock)

	// The second approval fails and must not decrement again.
	_, err = suite.service.ApproveOrder(order.ID, suite.owner.ID)
	suite.Require().Error(err)
	suite.True(apperrors.Is(err, apperrors.KindInvalidTransition), "got %v", err)
	suite.Equal(1, suite.reloadProduct(snack.ID).Stock)
}

func (suite *OrderServiceTestSuite) TestApproveRaceHasExactlyOneWinner() {
	snack := seedProduct(suite.T(), suite.db, suite.company.ID, "Snack", "10.00", 3)

	order, err := suite.createOrder(OrderItemRequest{ProductID: snack.ID, Quantity: 2})
	suite.Require().NoError(err)

	start := make(chan struct{})
	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := suite.service.ApproveOrder(order.ID, suite.owner.ID)
			errs <- err
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	var winners, losers int
	for err := range errs {
		if err == nil {
			winners++
			continue
		}
		losers++
		suite.True(apperrors.Is(err, apperrors.KindInvalidTransition) ||
			apperrors.Is(err, apperrors.KindConcurrency), "got %v", err)
	}
	suite.Equal(1, winners)
	suite.Equal(1, losers)

	// The loser must not have decremented a second time.
	suite.Equal(1, suite.reloadProduct(snack.ID).Stock)

	var reloaded models.Order
	suite.Require().NoError(suite.db.First(&reloaded, order.ID).Error)
	suite.Equal(models.OrderStatusApproved, reloaded.Status)
}

func (suite *OrderServiceTestSuite) TestApproveStockShrunkSinceSubmitIsConflict() {
	snack := seedProduct(suite.T(), suite.db, suite.company.ID, "Snack", "10.00", 5)

	order, err := suite.createOrder(OrderItemRequest{ProductID: snack.ID, Quantity: 4})
	suite.Require().NoError(err)

	// Another order drained most of the stock between submit and approve.
	suite.Require().NoError(suite.db.Model(&models.Product{}).
		Where("id = ?", snack.ID).Update("stock", 2).Error)

	_, err = suite.service.ApproveOrder(order.ID, suite.owner.ID)
	suite.Require().Error(err)
	suite.True(apperrors.Is(err, apperrors.KindConcurrency), "got %v", err)

	// The rollback restores the status so the owner can retry or cancel.
	var reloaded models.Order
	suite.Require().NoError(suite.db.First(&reloaded, order.ID).Error)
	suite.Equal(models.OrderStatusSubmitted, reloaded.Status)
	suite.Equal(2, suite.reloadProduct(snack.ID).Stock)
}

func (suite *OrderServiceTestSuite) TestApproveLeavesUnlimitedStockUntouched() {
	water := seedProduct(suite.T(), suite.db, suite.company.ID, "Water", "2.50", models.StockUnlimited)

	order, err := suite.createOrder(OrderItemRequest{ProductID: water.ID, Quantity: 10})
	suite.Require().NoError(err)

	_, err = suite.service.ApproveOrder(order.ID, suite.owner.ID)
	suite.Require().NoError(err)
	suite.Equal(models.StockUnlimited, suite.reloadProduct(water.ID).Stock)
}

func (suite *OrderServiceTestSuite) TestApproveRequiresOwnership() {
	snack := seedProduct(suite.T(), suite.db, suite.company.ID, "Snack", "10.00", 3)
	order, err := suite.createOrder(OrderItemRequest{ProductID: snack.ID, Quantity: 1})
	suite.Require().NoError(err)

	stranger := seedOwner(suite.T(), suite.db, "stranger@acme.test")
	_, err = suite.service.ApproveOrder(order.ID, stranger.ID)
	suite.Require().Error(err)
	suite.True(apperrors.Is(err, apperrors.KindAuthorization))
}

func (suite *OrderServiceTestSuite) TestCancelNeverTouchesStock() {
	snack := seedProduct(suite.T(), suite.db, suite.company.ID, "Snack", "10.00", 3)

	order, err := suite.createOrder(OrderItemRequest{ProductID: snack.ID, Quantity: 2})
	suite.Require().NoError(err)

	cancelled, err := suite.service.CancelOrder(order.ID, suite.owner.ID)
	suite.Require().NoError(err)
	suite.Equal(models.OrderStatusCancelled, cancelled.Status)
	suite.Equal(3, suite.reloadProduct(snack.ID).Stock)
}

func (suite *OrderServiceTestSuite) TestCancelApprovedOrderRejected() {
	snack := seedProduct(suite.T(), suite.db, suite.company.ID, "Snack", "10.00", 3)

	order, err := suite.createOrder(OrderItemRequest{ProductID: snack.ID, Quantity: 1})
	suite.Require().NoError(err)

	_, err = suite.service.ApproveOrder(order.ID, suite.owner.ID)
	suite.Require().NoError(err)

	_, err = suite.service.CancelOrder(order.ID, suite.owner.ID)
	suite.Require().Error(err)
	suite.True(apperrors.Is(err, apperrors.KindInvalidTransition))
}

func (suite *OrderServiceTestSuite) TestListOrdersPutsActionableFirst() {
	snack := seedProduct(suite.T(), suite.db, suite.company.ID, "Snack", "10.00", 100)

	first, err := suite.createOrder(OrderItemRequest{ProductID: snack.ID, Quantity: 1})
	suite.Require().NoError(err)
	second, err := suite.createOrder(OrderItemRequest{ProductID: snack.ID, Quantity: 1})
	suite.Require().NoError(err)
	third, err := suite.createOrder(OrderItemRequest{ProductID: snack.ID, Quantity: 1})
	suite.Require().NoError(err)

	// The newest order goes terminal; it must still sort after the
	// two older submitted ones.
	_, err = suite.service.ApproveOrder(third.ID, suite.owner.ID)
	suite.Require().NoError(err)

	orders, total, err := suite.service.ListOrders(suite.company.ID, suite.owner.ID, utils.PaginationParams{Page: 1, Limit: 10})
	suite.Require().NoError(err)
	suite.Equal(int64(3), total)
	suite.Require().Len(orders, 3)

	suite.False(orders[0].Status.Terminal())
	suite.False(orders[1].Status.Terminal())
	suite.True(orders[2].Status.Terminal())
	suite.Equal(third.ID, orders[2].ID)

	// Within the non-terminal partition, newest first.
	suite.Equal(second.ID, orders[0].ID)
	suite.Equal(first.ID, orders[1].ID)
}

func (suite *OrderServiceTestSuite) TestGetOrderItemsResolvesProductNames() {
	snack := seedProduct(suite.T(), suite.db, suite.company.ID, "Snack", "10.00", 5)

	order, err := suite.createOrder(OrderItemRequest{ProductID: snack.ID, Quantity: 1})
	suite.Require().NoError(err)

	items, err := suite.service.GetOrderItems(order.ID, suite.owner.ID)
	suite.Require().NoError(err)
	suite.Require().Len(items, 1)
	suite.Equal("Snack", items[0].ProductName)
}

func (suite *OrderServiceTestSuite) TestWhatsAppLinkCarriesOrderNumber() {
	snack := seedProduct(suite.T(), suite.db, suite.company.ID, "Snack", "10.00", 5)

	order, err := suite.createOrder(OrderItemRequest{ProductID: snack.ID, Quantity: 2})
	suite.Require().NoError(err)

	link, err := suite.service.WhatsAppLink(order.ID, suite.owner.ID)
	suite.Require().NoError(err)
	suite.Contains(link, "https://wa.me/5511999990000?text=")
	suite.Contains(link, "ZC-")
}

func TestOrderServiceTestSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}

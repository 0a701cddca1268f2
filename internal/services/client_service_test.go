// internal/services/client_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapcatalog/zapcatalog-backend/internal/apperrors"
	"github.com/zapcatalog/zapcatalog-backend/internal/models"
	"github.com/zapcatalog/zapcatalog-backend/internal/realtime"
)

func TestListClientsMergesBothOrigins(t *testing.T) {
	db := setupTestDB(t)
	owner := seedOwner(t, db, "owner@clients.test")
	company := seedCompany(t, db, owner, "clients")
	snack := seedProduct(t, db, company.ID, "Snack", "10.00", 100)

	hub := realtime.NewHub()
	defer hub.Close()
	orders := NewOrderService(db, hub)
	clients := NewClientService(db)

	customer := seedCustomer(t, db, "buyer@clients.test")
	_, err := orders.CreateOrder(company.ID, &customer.ID, &CreateOrderRequest{
		Items: []OrderItemRequest{{ProductID: snack.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = clients.CreateContact(company.ID, owner.ID, &CreateContactRequest{
		Name:  "Walk-in Customer",
		Phone: "+5511777770000",
	})
	require.NoError(t, err)

	list, err := clients.ListClients(company.ID, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	origins := map[models.ClientOrigin]bool{}
	for _, entry := range list {
		origins[entry.Origin] = true
	}
	assert.True(t, origins[models.ClientOriginLoggedIn])
	assert.True(t, origins[models.ClientOriginManual])
}

func TestListClientsExcludesCustomersWithoutOrders(t *testing.T) {
	db := setupTestDB(t)
	owner := seedOwner(t, db, "owner@noorder.test")
	company := seedCompany(t, db, owner, "noorder")

	// Registered but never ordered here.
	seedCustomer(t, db, "lurker@noorder.test")

	clients := NewClientService(db)
	list, err := clients.ListClients(company.ID, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUpdateManualContact(t *testing.T) {
	db := setupTestDB(t)
	owner := seedOwner(t, db, "owner@manual.test")
	company := seedCompany(t, db, owner, "manual")

	clients := NewClientService(db)

	contact, err := clients.CreateContact(company.ID, owner.ID, &CreateContactRequest{Name: "Old Name"})
	require.NoError(t, err)

	err = clients.UpdateClient(company.ID, contact.ID, owner.ID, models.ClientOriginManual, &UpdateClientRequest{
		Name: "New Name",
	})
	require.NoError(t, err)

	var stored models.ManualContact
	require.NoError(t, db.First(&stored, contact.ID).Error)
	assert.Equal(t, "New Name", stored.Name)
}

func TestUpdateCustomerRequiresOrderHistory(t *testing.T) {
	db := setupTestDB(t)
	owner := seedOwner(t, db, "owner@history.test")
	company := seedCompany(t, db, owner, "history")

	clients := NewClientService(db)
	customer := seedCustomer(t, db, "buyer@history.test")

	// No order with this company yet, so the profile is off limits.
	err := clients.UpdateClient(company.ID, customer.ID, owner.ID, models.ClientOriginLoggedIn, &UpdateClientRequest{
		Phone: "+5511666660000",
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindAuthorization))
}

func TestUpdateCustomerWithOrderHistory(t *testing.T) {
	db := setupTestDB(t)
	owner := seedOwner(t, db, "owner@edit.test")
	company := seedCompany(t, db, owner, "edit")
	snack := seedProduct(t, db, company.ID, "Snack", "10.00", 100)

	hub := realtime.NewHub()
	defer hub.Close()
	orders := NewOrderService(db, hub)
	clients := NewClientService(db)

	customer := seedCustomer(t, db, "buyer@edit.test")
	_, err := orders.CreateOrder(company.ID, &customer.ID, &CreateOrderRequest{
		Items: []OrderItemRequest{{ProductID: snack.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	err = clients.UpdateClient(company.ID, customer.ID, owner.ID, models.ClientOriginLoggedIn, &UpdateClientRequest{
		Phone: "+5511666660000",
	})
	require.NoError(t, err)

	var stored models.User
	require.NoError(t, db.First(&stored, customer.ID).Error)
	assert.Equal(t, "+5511666660000", stored.Phone)
}

func TestDeleteContactScopedToCompany(t *testing.T) {
	db := setupTestDB(t)
	owner := seedOwner(t, db, "owner@delete.test")
	company := seedCompany(t, db, owner, "delete")

	otherOwner := seedOwner(t, db, "other@delete.test")
	otherCompany := seedCompany(t, db, otherOwner, "other-delete")

	clients := NewClientService(db)

	contact, err := clients.CreateContact(otherCompany.ID, otherOwner.ID, &CreateContactRequest{Name: "Theirs"})
	require.NoError(t, err)

	// The contact belongs to the other company.
	err = clients.DeleteContact(company.ID, contact.ID, owner.ID)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

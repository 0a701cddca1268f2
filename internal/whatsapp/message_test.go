// internal/whatsapp/message_test.go
package whatsapp

import (
	"net/url"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapcatalog/zapcatalog-backend/internal/models"
)

func fixtureCompany() *models.Company {
	return &models.Company{
		Name:           "Acme Snacks",
		Slug:           "acme",
		WhatsAppNumber: "+55 (11) 99999-0000",
		Locale:         "pt-BR",
		Currency:       "BRL",
	}
}

func fixtureOrder() (*models.Order, []models.OrderLineItem) {
	order := &models.Order{
		OrderNumber: "ZC-ABC12345",
		Total:       decimal.RequireFromString("25.00"),
	}
	items := []models.OrderLineItem{
		{
			ProductName: "Snack",
			Quantity:    2,
			UnitPrice:   decimal.RequireFromString("10.00"),
			Subtotal:    decimal.RequireFromString("20.00"),
		},
		{
			ProductName: "Water",
			Quantity:    2,
			UnitPrice:   decimal.RequireFromString("2.50"),
			Subtotal:    decimal.RequireFromString("5.00"),
		},
	}
	return order, items
}

func TestFormatAmountBRL(t *testing.T) {
	out, err := FormatAmount("pt-BR", "BRL", decimal.RequireFromString("20.00"))
	require.NoError(t, err)
	assert.Contains(t, out, "20")
	assert.Contains(t, out, "R$")
}

func TestFormatAmountBadCurrency(t *testing.T) {
	_, err := FormatAmount("pt-BR", "WAT", decimal.RequireFromString("1.00"))
	require.Error(t, err)
}

func TestFormatAmountUnknownLocaleFallsBack(t *testing.T) {
	out, err := FormatAmount("xx-not-a-locale", "USD", decimal.RequireFromString("3.00"))
	require.NoError(t, err)
	assert.Contains(t, out, "3")
}

func TestBuildOrderMessageItemizesLines(t *testing.T) {
	order, items := fixtureOrder()

	msg, err := BuildOrderMessage(fixtureCompany(), order, items)
	require.NoError(t, err)

	assert.Contains(t, msg, "*Order ZC-ABC12345 - Acme Snacks*")
	assert.Contains(t, msg, "2x Snack")
	assert.Contains(t, msg, "2x Water")
	assert.Contains(t, msg, "*Total:")

	// One line per item plus header and total.
	assert.Equal(t, 2, strings.Count(msg, "x "))
}

func TestBuildDeepLinkSanitizesNumber(t *testing.T) {
	order, items := fixtureOrder()

	link, err := BuildDeepLink(fixtureCompany(), order, items)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(link, "https://wa.me/5511999990000?text="), "link was %s", link)

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	text := parsed.Query().Get("text")
	assert.Contains(t, text, "ZC-ABC12345")
	assert.Contains(t, text, "2x Snack")
}

func TestBuildDeepLinkNoNumber(t *testing.T) {
	company := fixtureCompany()
	company.WhatsAppNumber = "not a number"
	order, items := fixtureOrder()

	_, err := BuildDeepLink(company, order, items)
	require.Error(t, err)
}

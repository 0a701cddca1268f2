// internal/whatsapp/message.go
package whatsapp

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/zapcatalog/zapcatalog-backend/internal/models"
)

// Order finalization is a one-way handoff: the customer opens a wa.me deep
// link pre-filled with the itemized order addressed to the company's
// contact number. Nothing here can verify the message was delivered.

const deepLinkBase = "https://wa.me/"

// FormatAmount renders a monetary amount with the company's locale and
// currency conventions.
func FormatAmount(locale, currencyCode string, amount decimal.Decimal) (string, error) {
	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		return "", fmt.Errorf("invalid currency code %q: %w", currencyCode, err)
	}

	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}

	p := message.NewPrinter(tag)
	return p.Sprint(currency.Symbol(unit.Amount(amount.InexactFloat64()))), nil
}

// BuildOrderMessage renders the itemized plain-text message for an order.
func BuildOrderMessage(company *models.Company, order *models.Order, items []models.OrderLineItem) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "*Order %s - %s*\n\n", order.OrderNumber, company.Name)

	for _, item := range items {
		name := item.ProductName
		if name == "" {
			name = item.Product.Name
		}

		unit, err := FormatAmount(company.Locale, company.Currency, item.UnitPrice)
		if err != nil {
			return "", err
		}
		subtotal, err := FormatAmount(company.Locale, company.Currency, item.Subtotal)
		if err != nil {
			return "", err
		}

		fmt.Fprintf(&b, "%dx %s - %s = %s\n", item.Quantity, name, unit, subtotal)
	}

	total, err := FormatAmount(company.Locale, company.Currency, order.Total)
	if err != nil {
		return "", err
	}
	fmt.Fprintf(&b, "\n*Total: %s*", total)

	return b.String(), nil
}

// BuildDeepLink returns the wa.me URL that opens a chat with the company's
// contact number, pre-filled with the order message.
func BuildDeepLink(company *models.Company, order *models.Order, items []models.OrderLineItem) (string, error) {
	text, err := BuildOrderMessage(company, order, items)
	if err != nil {
		return "", err
	}

	number := sanitizeNumber(company.WhatsAppNumber)
	if number == "" {
		return "", fmt.Errorf("company %s has no usable contact number", company.Slug)
	}

	return deepLinkBase + number + "?text=" + url.QueryEscape(text), nil
}

// sanitizeNumber keeps digits only; wa.me rejects +, spaces and punctuation.
func sanitizeNumber(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

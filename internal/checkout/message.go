package checkout

import (
	"fmt"
	"strings"

	"github.com/fjod/go_meals/internal/config"
	"github.com/fjod/go_meals/internal/domain"
	"github.com/fjod/go_meals/internal/money"
)

// OrderSummary renders the items as "Name xQty (N<subtotal>)" joined by ", ".
func OrderSummary(items []domain.LineItem, f money.Formatter) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%s x%d (%s)", item.Name, item.Quantity, f.Format(item.Subtotal())))
	}
	return strings.Join(parts, ", ")
}

// OrderMessage is the text handed to the messaging service for a submitted order.
func OrderMessage(shop config.Shop, form Form, rec domain.OrderRecord, f money.Formatter) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Hello! My name is %s and I would like to place an order from %s.\n\n", form.Name, shop.Name)

	b.WriteString("*Customer Information:*\n")
	fmt.Fprintf(&b, "- Name: %s\n", form.Name)
	fmt.Fprintf(&b, "- Email: %s\n", form.Email)
	fmt.Fprintf(&b, "- Phone: %s\n\n", form.Phone)

	b.WriteString("*Order Details:*\n")
	fmt.Fprintf(&b, "- Items: %s\n", OrderSummary(rec.Items, f))
	fmt.Fprintf(&b, "- Subtotal: %s\n", f.Format(rec.Total))
	fmt.Fprintf(&b, "- Order Option: %s", form.DeliveryOption)

	if form.DeliveryOption == domain.DeliveryDelivery && form.DeliveryAddress != "" && form.AdditionalPhone != "" {
		fmt.Fprintf(&b, "\n- Delivery Address: %s\n- Additional Contact: %s", form.DeliveryAddress, form.AdditionalPhone)
	}

	b.WriteString("\n\n*Please confirm my order and provide the total cost including delivery fee if applicable.*\n\n")

	if shop.BankAccountNumber != "" {
		b.WriteString("I will make the bank transfer to:\n")
		fmt.Fprintf(&b, "Bank: %s\n", shop.BankName)
		fmt.Fprintf(&b, "Account: %s\n", shop.BankAccountName)
		fmt.Fprintf(&b, "Account Number: %s\n\n", shop.BankAccountNumber)
	}

	b.WriteString("Thank you!")
	return b.String()
}

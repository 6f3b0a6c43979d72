package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type DeliveryOption string

const (
	DeliveryPickup   DeliveryOption = "pickup"
	DeliveryDelivery DeliveryOption = "delivery"
)

func (d DeliveryOption) IsValid() bool {
	return d == DeliveryPickup || d == DeliveryDelivery
}

// OrderRecord is the write-only audit entry kept for every submitted checkout.
// Field names follow the stored customerDatabase format.
type OrderRecord struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	Phone           string          `json:"phone"`
	OrderDate       time.Time       `json:"orderDate"`
	Items           []LineItem      `json:"orderItems"`
	Total           decimal.Decimal `json:"orderTotal"`
	DeliveryOption  DeliveryOption  `json:"deliveryOption"`
	DeliveryAddress *string         `json:"deliveryAddress"`
}

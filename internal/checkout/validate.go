package checkout

import (
	"regexp"
	"strings"

	"github.com/fjod/go_meals/internal/domain"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[0-9+\-\s()]{10,}$`)
)

// Form is the customer part of a checkout submission.
type Form struct {
	Name            string                `json:"name"`
	Email           string                `json:"email"`
	Phone           string                `json:"phone"`
	DeliveryOption  domain.DeliveryOption `json:"delivery_option"`
	DeliveryAddress string                `json:"delivery_address"`
	AdditionalPhone string                `json:"additional_phone"`
}

// Normalize trims every field and defaults the delivery option to pickup.
func (f Form) Normalize() Form {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.DeliveryAddress = strings.TrimSpace(f.DeliveryAddress)
	f.AdditionalPhone = strings.TrimSpace(f.AdditionalPhone)
	f.DeliveryOption = domain.DeliveryOption(strings.ToLower(strings.TrimSpace(string(f.DeliveryOption))))
	if f.DeliveryOption == "" {
		f.DeliveryOption = domain.DeliveryPickup
	}
	return f
}

// Validate checks a normalized form. The first failing rule wins.
func (f Form) Validate() error {
	if f.Name == "" || f.Email == "" || f.Phone == "" {
		return invalid(ErrMissingFields, "Please fill in all customer information fields.")
	}
	if !ValidEmail(f.Email) {
		return invalid(ErrInvalidEmail, "Please enter a valid email address.")
	}
	if !ValidPhone(f.Phone) {
		return invalid(ErrInvalidPhone, "Please enter a valid phone number.")
	}
	if !f.DeliveryOption.IsValid() {
		return invalid(ErrInvalidDeliveryOption, "Please choose pickup or delivery.")
	}
	if f.DeliveryOption == domain.DeliveryDelivery {
		if f.DeliveryAddress == "" {
			return invalid(ErrAddressRequired, "Please enter a delivery address.")
		}
		if f.AdditionalPhone == "" {
			return invalid(ErrDeliveryPhoneRequired, "Please enter a contact phone number for delivery.")
		}
	}
	return nil
}

// ValidEmail accepts local@domain where the domain has at least one dot.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ValidPhone accepts ten or more digits, spaces and + - ( ) characters.
func ValidPhone(s string) bool {
	return phonePattern.MatchString(s)
}

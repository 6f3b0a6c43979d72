package checkout

import "errors"

var (
	ErrEmptyCart             = errors.New("cart is empty, nothing to checkout")
	ErrIllegalTransition     = errors.New("illegal transition of checkout state")
	ErrMissingFields         = errors.New("required customer fields are missing")
	ErrInvalidEmail          = errors.New("invalid email address")
	ErrInvalidPhone          = errors.New("invalid phone number")
	ErrInvalidDeliveryOption = errors.New("invalid delivery option")
	ErrAddressRequired       = errors.New("delivery address is required")
	ErrDeliveryPhoneRequired = errors.New("delivery contact phone is required")
)

// ValidationError is a blocked submission with the message shown to the customer.
type ValidationError struct {
	Err     error
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(err error, message string) *ValidationError {
	return &ValidationError{Err: err, Message: message}
}

// EmptyCartMessage is shown when checkout is attempted with nothing in the cart.
const EmptyCartMessage = "Your cart is empty. Please add some products before checking out."

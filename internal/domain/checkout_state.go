package domain

type CheckoutState string

const (
	CheckoutStateEmpty     CheckoutState = "EMPTY"
	CheckoutStateReviewing CheckoutState = "REVIEWING"
	CheckoutStateSubmitted CheckoutState = "SUBMITTED"
)

func (s CheckoutState) IsTerminal() bool {
	return s == CheckoutStateSubmitted
}

// String representation (for logging)
func (s CheckoutState) String() string {
	return string(s)
}

// CheckoutStateOf derives the pre-submission state from the cart.
func CheckoutStateOf(c Cart) CheckoutState {
	if c.IsEmpty() {
		return CheckoutStateEmpty
	}
	return CheckoutStateReviewing
}

// CanTransition reports whether from -> to is a legal checkout step.
func CanTransition(from, to CheckoutState) bool {
	switch from {
	case CheckoutStateEmpty:
		return to == CheckoutStateReviewing
	case CheckoutStateReviewing:
		return to == CheckoutStateEmpty || to == CheckoutStateSubmitted
	default:
		return false
	}
}

package checkout

import (
	goerrors "errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/pkg/errors"
)

var (
	// Permissive international phone: optional +country-code, then 9-15
	// digits.
	phonePattern = regexp.MustCompile(`^\+?[0-9]{9,15}$`)
	// Syntactic local@domain check only; confirmation mail delivery is the
	// order service's problem.
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

	validate = validator.New()
)

// validateAddress checks the shipping address gate: every required field
// non-empty and a plausible phone number. Runs against whichever address was
// resolved, saved or freshly entered.
func validateAddress(addr domain.Address) error {
	if err := validate.Struct(addr); err != nil {
		var verrs validator.ValidationErrors
		if goerrors.As(err, &verrs) && len(verrs) > 0 {
			field := fieldJSONName(verrs[0].Field())
			return &errors.ErrValidation{Field: field, Message: field + " is required"}
		}
		return &errors.ErrValidation{Field: "address", Message: err.Error()}
	}

	phone := strings.ReplaceAll(addr.PhoneNumber, " ", "")
	phone = strings.ReplaceAll(phone, "-", "")
	if !phonePattern.MatchString(phone) {
		return &errors.ErrValidation{
			Field:   "phoneNumber",
			Message: "phone number must be 9 to 15 digits with an optional country code",
		}
	}
	return nil
}

// validateEmail checks the guest-checkout email gate.
func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return &errors.ErrValidation{Field: "email", Message: "email is required for guest checkout"}
	}
	if !emailPattern.MatchString(email) {
		return &errors.ErrValidation{Field: "email", Message: "email address is not valid"}
	}
	return nil
}

// fieldJSONName lowers the first rune so validator's struct field names line
// up with the JSON field names surfaced to callers.
func fieldJSONName(name string) string {
	if name == "" {
		return name
	}
	return strings.ToLower(name[:1]) + name[1:]
}

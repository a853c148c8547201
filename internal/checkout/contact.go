package checkout

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	nameMinLength    = 2
	nameMaxLength    = 30
	phoneMinLength   = 7
	phoneMaxLength   = 20
	addressMinLength = 6
	addressMaxLength = 70
)

// ContactInfo is copied onto the order as normalized.
type ContactInfo struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
}

// Normalize trims surrounding whitespace from every field. Checkout
// validates and stores the normalized form, so the limits checked are the
// limits persisted.
func (c ContactInfo) Normalize() ContactInfo {
	return ContactInfo{
		FirstName:   strings.TrimSpace(c.FirstName),
		LastName:    strings.TrimSpace(c.LastName),
		PhoneNumber: strings.TrimSpace(c.PhoneNumber),
		Address:     strings.TrimSpace(c.Address),
	}
}

// Validate bounds the stored length by the raw value and the minimum by
// the trimmed value, so blank fields fail and padding counts against the
// maximum. Call Normalize first to drop the padding.
func (c ContactInfo) Validate() error {
	if err := checkLength("first_name", c.FirstName, nameMinLength, nameMaxLength); err != nil {
		return err
	}
	if err := checkLength("last_name", c.LastName, nameMinLength, nameMaxLength); err != nil {
		return err
	}
	if err := checkLength("phone_number", c.PhoneNumber, phoneMinLength, phoneMaxLength); err != nil {
		return err
	}
	if !isPhone(c.PhoneNumber) {
		return fmt.Errorf("%w: phone_number has invalid characters", ErrInvalidContact)
	}
	return checkLength("address", c.Address, addressMinLength, addressMaxLength)
}

func checkLength(field, v string, lo, hi int) error {
	raw := utf8.RuneCountInString(v)
	trimmed := utf8.RuneCountInString(strings.TrimSpace(v))
	if trimmed < lo || raw > hi {
		return fmt.Errorf("%w: %s must be %d-%d characters", ErrInvalidContact, field, lo, hi)
	}
	return nil
}

func isPhone(v string) bool {
	digits := 0
	for _, r := range v {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case strings.ContainsRune("+-() .", r):
		default:
			return false
		}
	}
	return digits > 0
}

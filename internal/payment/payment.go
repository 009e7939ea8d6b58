// Package payment validates the card fields collected at checkout.
// No charge is made; submission only flips the cart's pending lines.
package payment

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	ErrCardNumber = errors.New("card number must have 16 digits")
	ErrExpiry     = errors.New("expiry must be MM/YY and not in a future year")
	ErrCVC        = errors.New("cvc must have 3 or 4 digits")
	ErrHolder     = errors.New("card holder is required")
)

type Card struct {
	Number string
	Expiry string
	CVC    string
	Holder string
}

var (
	expirySlash = regexp.MustCompile(`^(0[1-9]|1[0-2])/(\d{2})$`)
	expiryPlain = regexp.MustCompile(`^(0[1-9]|1[0-2])(\d{2})$`)
)

// Validator checks cards against a clock.
type Validator struct {
	Now func() time.Time
}

func NewValidator() *Validator {
	return &Validator{Now: time.Now}
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CardNumberValid ignores separators and requires exactly 16 digits.
func CardNumberValid(number string) bool {
	return len(digits(number)) == 16
}

// ExpiryValid accepts MM/YY or MMYY. The year reads as 20YY and may not be
// later than the current year.
func (v *Validator) ExpiryValid(expiry string) bool {
	s := strings.ReplaceAll(expiry, " ", "")
	m := expirySlash.FindStringSubmatch(s)
	if m == nil {
		m = expiryPlain.FindStringSubmatch(s)
	}
	if m == nil {
		return false
	}
	yy, err := strconv.Atoi(m[2])
	if err != nil {
		return false
	}
	return 2000+yy <= v.now().Year()
}

func CVCValid(cvc string) bool {
	n := len(digits(cvc))
	return n == 3 || n == 4
}

func HolderValid(holder string) bool {
	return strings.TrimSpace(holder) != ""
}

// Validate returns nil or every failed rule joined together.
func (v *Validator) Validate(c Card) error {
	var errs []error
	if !CardNumberValid(c.Number) {
		errs = append(errs, ErrCardNumber)
	}
	if !v.ExpiryValid(c.Expiry) {
		errs = append(errs, ErrExpiry)
	}
	if !CVCValid(c.CVC) {
		errs = append(errs, ErrCVC)
	}
	if !HolderValid(c.Holder) {
		errs = append(errs, ErrHolder)
	}
	return errors.Join(errs...)
}

func (v *Validator) now() time.Time {
	if v == nil || v.Now == nil {
		return time.Now()
	}
	return v.Now()
}

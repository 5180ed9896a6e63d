package service

import (
	"regexp"
	"strings"

	"supportly/internal/domain"
)

var nonDigits = regexp.MustCompile(`\D`)

// NormalizePhone returns a 12-digit MSISDN (256XXXXXXXXX) or ErrInvalidPhone.
func NormalizePhone(s string) (string, error) {
	s = nonDigits.ReplaceAllString(s, "")
	if s == "" {
		return "", domain.ErrInvalidPhone
	}
	if strings.HasPrefix(s, "0") {
		s = domain.CountryCode + s[1:]
	} else if !strings.HasPrefix(s, domain.CountryCode) {
		s = domain.CountryCode + s
	}
	if len(s) != 12 {
		return "", domain.ErrInvalidPhone
	}
	return s, nil
}

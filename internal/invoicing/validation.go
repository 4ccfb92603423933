package invoicing

import (
	"fmt"
	"strings"

	"github.com/ita-digital/backoffice/internal/platform/httpx"
)

// NormalizeCNPJ strips formatting characters, keeping only digits.
func NormalizeCNPJ(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidateCNPJ checks the normalized document against the official check
// digit algorithm.
func ValidateCNPJ(cnpj string) error {
	if len(cnpj) != 14 {
		return fmt.Errorf("%w: cnpj must have 14 digits", httpx.ErrValidation)
	}
	allSame := true
	for i := 1; i < len(cnpj); i++ {
		if cnpj[i] != cnpj[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return fmt.Errorf("%w: cnpj digits cannot be all identical", httpx.ErrValidation)
	}
	if cnpjCheckDigit(cnpj, 12) != int(cnpj[12]-'0') || cnpjCheckDigit(cnpj, 13) != int(cnpj[13]-'0') {
		return fmt.Errorf("%w: cnpj check digits do not match", httpx.ErrValidation)
	}
	return nil
}

func cnpjCheckDigit(cnpj string, length int) int {
	weight := length - 7
	sum := 0
	for i := 0; i < length; i++ {
		sum += int(cnpj[i]-'0') * weight
		weight--
		if weight < 2 {
			weight = 9
		}
	}
	rest := sum % 11
	if rest < 2 {
		return 0
	}
	return 11 - rest
}

func validateCompany(c Company) error {
	switch {
	case c.LegalName == "":
		return fmt.Errorf("%w: legal name is required", httpx.ErrValidation)
	case c.Email == "":
		return fmt.Errorf("%w: email is required", httpx.ErrValidation)
	case c.MunicipalRegistration == "":
		return fmt.Errorf("%w: municipal registration is required", httpx.ErrValidation)
	case c.Address.City == "" || c.Address.State == "":
		return fmt.Errorf("%w: address city and state are required", httpx.ErrValidation)
	}
	return ValidateCNPJ(c.CNPJ)
}

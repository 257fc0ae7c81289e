package service

import (
	"regexp"
	"strings"

	vaultDomain "github.com/sivd/piivault/internal/vault/domain"
)

var (
	emailValueRegex = regexp.MustCompile(`(?i)\b[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}\b`)
	phoneValueRegex = regexp.MustCompile(`\b\+?[0-9][0-9\-()\s]{6,}[0-9]\b`)
	ssnValueRegex   = regexp.MustCompile(`\b\d{3}-?\d{2}-?\d{4}\b`)
)

// defaultPIIFields is the field-name allowlist used when a request supplies no
// explicit list.
var defaultPIIFields = map[string]struct{}{
	"email": {}, "e-mail": {}, "mail": {},
	"phone": {}, "mobile": {}, "cell": {}, "telephone": {},
	"firstName": {}, "lastName": {}, "fullName": {}, "name": {},
	"ssn": {}, "nationalId": {}, "dni": {}, "cedula": {}, "passport": {},
	"address": {}, "street": {}, "city": {}, "zipcode": {}, "postalCode": {},
}

type fieldPolicy struct {
	explicit map[string]struct{}
}

// NewFieldPolicy creates the leaf selection policy for object traversal. With
// an explicit field list only those names are treated as PII; otherwise the
// default allowlist applies, backed up by value-shape sniffing for
// email/phone/SSN-looking strings under non-listed names.
func NewFieldPolicy(explicitFields []string) FieldPolicy {
	policy := &fieldPolicy{}
	if explicitFields != nil {
		policy.explicit = make(map[string]struct{}, len(explicitFields))
		for _, name := range explicitFields {
			policy.explicit[name] = struct{}{}
		}
	}
	return policy
}

// IsPIIField reports whether a field name selects its value for tokenization.
func (p *fieldPolicy) IsPIIField(name string) bool {
	if p.explicit != nil {
		_, ok := p.explicit[name]
		return ok
	}
	_, ok := defaultPIIFields[name]
	return ok
}

// IsPIIValue reports whether a string value looks like PII regardless of its
// field name. Value sniffing applies even under an explicit field list, so a
// request cannot leak an email sitting in an unlisted field.
func (p *fieldPolicy) IsPIIValue(value string) bool {
	trimmed := strings.TrimSpace(value)
	return emailValueRegex.MatchString(trimmed) ||
		phoneValueRegex.MatchString(trimmed) ||
		ssnValueRegex.MatchString(trimmed)
}

// Categorize picks the vault category for a selected leaf value. Values that
// look like neither an email nor a number run are filed as names.
func (p *fieldPolicy) Categorize(value string) vaultDomain.Category {
	trimmed := strings.TrimSpace(value)
	switch {
	case emailValueRegex.MatchString(trimmed):
		return vaultDomain.CategoryEmail
	case phoneValueRegex.MatchString(trimmed), ssnValueRegex.MatchString(trimmed):
		return vaultDomain.CategoryPhone
	default:
		return vaultDomain.CategoryName
	}
}

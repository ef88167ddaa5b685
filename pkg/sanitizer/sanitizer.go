package sanitizer

import "slotbook/pkg/model"

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

// SanitizeCustomer normalizes a contact block in place. Validation runs on
// the sanitized values, so "  Ada   Lovelace " and "Ada Lovelace" are the
// same customer.
func SanitizeCustomer(c *model.Customer) {
	c.Name = NormalizeName(c.Name)
	c.Email = NormalizeEmail(c.Email)
	if e164 := NormalizePhone(c.Phone); e164 != "" {
		c.Phone = e164
	}
}

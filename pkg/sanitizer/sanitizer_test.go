package sanitizer

import (
	"testing"

	"slotbook/pkg/model"
)

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "Ada Lovelace", want: "Ada Lovelace"},
		{name: "surrounding whitespace", input: "  Ada Lovelace  ", want: "Ada Lovelace"},
		{name: "internal runs collapse", input: "Ada   Lovelace", want: "Ada Lovelace"},
		{name: "tabs and newlines", input: "Ada\t\nLovelace", want: "Ada Lovelace"},
		{name: "empty", input: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimAndNormalize(tt.input); got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Ada@Example.COM "); got != "ada@example.com" {
		t.Errorf("NormalizeEmail = %q", got)
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "already E164", input: "+14155552671", want: "+14155552671"},
		{name: "prefixed with formatting", input: "+1 (415) 555-2671", want: "+14155552671"},
		{name: "bare US national", input: "(415) 555-2671", want: "+14155552671"},
		{name: "bare UK national", input: "020 7946 0958", want: "+442079460958"},
		{name: "unparseable", input: "not-a-number", want: ""},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizePhone(tt.input); got != tt.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDigitCount(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"+1 (415) 555-2671", 11},
		{"abc", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := DigitCount(tt.input); got != tt.want {
			t.Errorf("DigitCount(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestSanitizeCustomer(t *testing.T) {
	c := model.Customer{
		Name:  "  Ada   Lovelace ",
		Email: " Ada@Example.COM",
		Phone: "(415) 555-2671",
	}
	SanitizeCustomer(&c)

	if c.Name != "Ada Lovelace" {
		t.Errorf("Name = %q", c.Name)
	}
	if c.Email != "ada@example.com" {
		t.Errorf("Email = %q", c.Email)
	}
	if c.Phone != "+14155552671" {
		t.Errorf("Phone = %q", c.Phone)
	}
}

func TestSanitizeCustomerKeepsUnparseablePhone(t *testing.T) {
	c := model.Customer{Name: "Ada Lovelace", Email: "ada@example.com", Phone: "ext. 42"}
	SanitizeCustomer(&c)

	// Unparseable input is left for the validator to reject with a field
	// message instead of being silently blanked.
	if c.Phone != "ext. 42" {
		t.Errorf("Phone = %q, want original preserved", c.Phone)
	}
}

func TestPipelineApply(t *testing.T) {
	p := Pipeline{TrimAndNormalize, NormalizeEmail}
	if got := p.Apply("  Ada@Example.COM  "); got != "ada@example.com" {
		t.Errorf("Pipeline.Apply = %q", got)
	}
}

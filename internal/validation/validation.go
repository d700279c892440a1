package validation

import (
	"regexp"
	"strings"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

var (
	innRe   = regexp.MustCompile(`^(\d{10}|\d{12})$`)
	phoneRe = regexp.MustCompile(`^\+?\d{10,15}$`)
	emailRe = regexp.MustCompile(`^[\w\.-]+@[\w\.-]+\.\w+$`)
)

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func PositiveFloat(field string, val float64, v Violations) {
	if val <= 0 {
		v[field] = "must_be_positive"
	}
}

func RangeFloat(field string, val, minVal, maxVal float64, v Violations) {
	if val < minVal || val > maxVal {
		v[field] = "out_of_range"
	}
}

// INN validates a Russian tax id: exactly 10 or 12 digits.
func INN(field, value string, v Violations) {
	if !innRe.MatchString(value) {
		v[field] = "inn_must_be_10_or_12_digits"
	}
}

// Phone validates an optional phone number: 10 to 15 digits with an
// optional leading plus.
func Phone(field, value string, v Violations) {
	if value != "" && !phoneRe.MatchString(value) {
		v[field] = "phone_must_be_10_to_15_digits"
	}
}

// Email validates an optional email address.
func Email(field, value string, v Violations) {
	if value != "" && !emailRe.MatchString(value) {
		v[field] = "invalid_email"
	}
}

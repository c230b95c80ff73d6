package validator

import (
	"regexp"
	"unicode"

	"github.com/go-playground/validator/v10"
)

const (
	// TagUsername accepts letters, digits and underscores only.
	TagUsername = "username"
	// TagStrongPassword requires at least one upper case letter, one lower case letter and one digit.
	TagStrongPassword = "strong_password"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

func registerBuiltinRules(v *validator.Validate) {
	// Registration only fails on empty tags or nil funcs.
	_ = v.RegisterValidation(TagUsername, func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation(TagStrongPassword, func(fl validator.FieldLevel) bool {
		return IsStrongPassword(fl.Field().String())
	})
}

// IsStrongPassword reports whether value mixes upper case, lower case and digits.
func IsStrongPassword(value string) bool {
	var upper, lower, digit bool
	for _, r := range value {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

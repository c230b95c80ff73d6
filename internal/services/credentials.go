package services

import (
	"strings"

	"github.com/bazaarhq/bazaar/internal/models"
	appValidator "github.com/bazaarhq/bazaar/pkg/validator"
)

// RegistrationInput carries the raw sign-up form values.
type RegistrationInput struct {
	Username        string `json:"username" validate:"required,min=3,max=20,username"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8,strong_password"`
	ConfirmPassword string `json:"confirm_password" validate:"eqfield=Password"`
	Role            string `json:"role" validate:"required,oneof=customer vendor"`
}

var credentialMessages = map[string]string{
	"username":         "Username must be 3-20 characters and contain only letters, numbers, and underscores",
	"email":            "Invalid email format",
	"password":         "Password must be at least 8 characters and include an uppercase letter, a lowercase letter, and a number",
	"confirm_password": "Passwords do not match",
	"role":             "Invalid role selected",
}

// Normalise trims identifiers and lower-cases email and role. Passwords are left untouched.
func (in RegistrationInput) Normalise() RegistrationInput {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = normaliseEmail(in.Email)
	in.Role = string(models.ParseRole(in.Role))
	return in
}

// ValidateRegistration checks every field and returns one message per violated rule.
// An empty result means the input is acceptable.
func ValidateRegistration(in RegistrationInput) []string {
	err := appValidator.ValidateStruct(in)
	if err == nil {
		return nil
	}

	vErrs, ok := err.(appValidator.ValidationErrors)
	if !ok {
		return []string{"Invalid registration data"}
	}

	fields := vErrs.Fields()
	messages := make([]string, 0, len(fields))
	for _, field := range fields {
		if msg, ok := credentialMessages[field]; ok {
			messages = append(messages, msg)
		}
	}
	return messages
}

package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

type testPayload struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Age      int    `json:"age" validate:"gte=18"`
}

type credentialsPayload struct {
	Username string `json:"username" validate:"required,min=3,max=20,username"`
	Password string `json:"password" validate:"required,min=8,strong_password"`
}

func TestValidateStructSuccess(t *testing.T) {
	payload := testPayload{
		Username: "alice",
		Email:    "alice@example.com",
		Age:      20,
	}

	if err := ValidateStruct(payload); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidateStructFailures(t *testing.T) {
	payload := testPayload{
		Username: "",
		Email:    "invalid",
		Age:      10,
	}

	err := ValidateStruct(payload)
	if err == nil {
		t.Fatal("expected validation error")
	}

	vErrs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}

	if len(vErrs) != 3 {
		t.Fatalf("expected 3 validation errors, got %d", len(vErrs))
	}

	foundEmail := false
	for _, v := range vErrs {
		if v.Field == "email" {
			foundEmail = true
		}
	}

	if !foundEmail {
		t.Fatal("expected email field to be present in validation errors")
	}
}

func TestBuiltinCredentialRules(t *testing.T) {
	cases := []struct {
		name    string
		payload credentialsPayload
		fields  []string
	}{
		{"valid", credentialsPayload{Username: "market_user1", Password: "Secret123"}, nil},
		{"username with dash", credentialsPayload{Username: "bad-name", Password: "Secret123"}, []string{"username"}},
		{"password without digit", credentialsPayload{Username: "vendor", Password: "SecretPass"}, []string{"password"}},
		{"password without upper", credentialsPayload{Username: "vendor", Password: "secret123"}, []string{"password"}},
		{"both short", credentialsPayload{Username: "ab", Password: "short"}, []string{"username", "password"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateStruct(tc.payload)
			if tc.fields == nil {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}

			vErrs, ok := err.(ValidationErrors)
			if !ok {
				t.Fatalf("expected ValidationErrors, got %T", err)
			}
			got := vErrs.Fields()
			if len(got) != len(tc.fields) {
				t.Fatalf("expected fields %v, got %v", tc.fields, got)
			}
			for i := range got {
				if got[i] != tc.fields[i] {
					t.Fatalf("expected fields %v, got %v", tc.fields, got)
				}
			}
		})
	}
}

func TestRegisterValidation(t *testing.T) {
	err := RegisterValidation("bazaar", func(fl validator.FieldLevel) bool {
		return fl.Field().String() == "bazaar"
	})
	if err != nil {
		t.Fatalf("register validation: %v", err)
	}

	type custom struct {
		Value string `validate:"bazaar"`
	}

	if err := ValidateStruct(custom{Value: "bazaar"}); err != nil {
		t.Fatalf("expected validation to pass, got %v", err)
	}
	if err := ValidateStruct(custom{Value: "other"}); err == nil {
		t.Fatal("expected validation to fail for non-matching value")
	}
}

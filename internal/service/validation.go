package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/msomdec/store-rating/internal/domain"
)

// passwordSpecials are the characters that satisfy the special-character rule.
const passwordSpecials = `!@#$%^&*(),.?":{}|<>`

// Registration is the input for self-service sign-up.
type Registration struct {
	Name     string `json:"name" validate:"required,min=20,max=60"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=16,password"`
	Address  string `json:"address" validate:"required,min=4,max=400"`
}

// NewUser is the input for admin-initiated user creation.
type NewUser struct {
	Name     string      `json:"name" validate:"required,min=20,max=60"`
	Email    string      `json:"email" validate:"required,email,max=254"`
	Password string      `json:"password" validate:"required,min=8,max=16,password"`
	Address  string      `json:"address" validate:"required,min=4,max=400"`
	Role     domain.Role `json:"role" validate:"required,oneof=SYSTEM_ADMIN NORMAL_USER STORE_OWNER"`
}

// NewStore is the input for store creation.
type NewStore struct {
	Name       string `json:"name" validate:"required,min=20,max=60"`
	Email      string `json:"email" validate:"required,email,max=254"`
	Address    string `json:"address" validate:"max=400"`
	OwnerEmail string `json:"ownerEmail" validate:"required,email"`
}

// RatingInput is the raw input for a rating submission. The value is kept
// undecoded so that a wrong JSON type is reported against the rating field.
type RatingInput struct {
	Rating json.RawMessage `json:"rating"`
}

// PasswordChange is the input for changing the caller's own password.
type PasswordChange struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=16,password"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names so clients can map errors to inputs.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	if err := v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return isStrongPassword(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("register password validation: %v", err))
	}
	return v
}

func isStrongPassword(s string) bool {
	var upper, special bool
	for _, r := range s {
		if unicode.IsUpper(r) {
			upper = true
		}
		if strings.ContainsRune(passwordSpecials, r) {
			special = true
		}
	}
	return upper && special
}

// validateInput runs struct validation and converts failures into a
// domain.ValidationError naming every offending field.
func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate input: %w", err)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = fieldMessage(fe)
	}
	return &domain.ValidationError{Fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "password":
		return "must contain at least one uppercase letter and one special character"
	}
	return "is invalid"
}

// validateRating checks the rating value range.
func validateRating(value int) error {
	if value < domain.MinRating || value > domain.MaxRating {
		return domain.NewValidationError("rating",
			fmt.Sprintf("must be an integer between %d and %d", domain.MinRating, domain.MaxRating))
	}
	return nil
}

// parseRating decodes a raw rating into an integer in range. Missing, null,
// non-numeric and fractional values are all validation failures.
func parseRating(raw json.RawMessage) (int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, domain.NewValidationError("rating", "is required")
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil || v != math.Trunc(v) ||
		v < domain.MinRating || v > domain.MaxRating {
		return 0, validateRating(0)
	}
	return int(v), nil
}

// validateListing checks sort parameters against the allowed fields.
func validateListing(sortBy string, dir domain.SortDirection, allowed []string) *domain.ValidationError {
	fields := map[string]string{}
	if sortBy != "" && !slices.Contains(allowed, sortBy) {
		fields["sortBy"] = "must be one of " + strings.Join(allowed, ", ")
	}
	if dir != "" && dir != domain.SortAsc && dir != domain.SortDesc {
		fields["sortDirection"] = "must be asc or desc"
	}
	if len(fields) == 0 {
		return nil
	}
	return &domain.ValidationError{Fields: fields}
}

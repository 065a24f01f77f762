package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/osse101/IdleCultivation_Go/internal/domain"
)

// Validator checks request structs against their validate tags
type Validator struct {
	validate *validator.Validate
}

var (
	validatorOnce sync.Once
	shared        *Validator
)

// InitValidator builds the shared validator. Calling it again is a no-op.
func InitValidator() {
	validatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		// report fields by their JSON names
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
		mustRegister(v, "focus", validateFocus)
		mustRegister(v, "spiritual_root", validateSpiritualRoot)
		shared = &Validator{validate: v}
	})
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

func GetValidator() *Validator {
	InitValidator()
	return shared
}

func (v *Validator) ValidateStruct(s interface{}) error {
	return v.validate.Struct(s)
}

// fixed messages per tag; min and max add their parameter
var tagMessages = map[string]string{
	"required":       "This field is required",
	"focus":          "Unknown cultivation focus",
	"spiritual_root": "Unknown spiritual root",
	"uuid":           "Must be a UUID",
	"excludesall":    "Contains invalid characters",
}

// FormatValidationError maps each failing field, by JSON name, to a
// client-facing message
func FormatValidationError(err error) map[string]string {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"error": "Invalid request format"}
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		msg, ok := tagMessages[fe.Tag()]
		switch {
		case ok:
		case fe.Tag() == "min":
			msg = "Must be at least " + fe.Param()
		case fe.Tag() == "max":
			msg = "Must be at most " + fe.Param()
		default:
			msg = "Invalid value"
		}
		out[fe.Field()] = msg
	}
	return out
}

// Enum tags accept any letter case; handlers upper-case before use.

func validateFocus(fl validator.FieldLevel) bool {
	return domain.CultivationFocus(strings.ToUpper(fl.Field().String())).Valid()
}

// validateSpiritualRoot treats empty as "roll one"
func validateSpiritualRoot(fl validator.FieldLevel) bool {
	root := fl.Field().String()
	return root == "" || domain.SpiritualRoot(strings.ToUpper(root)).Valid()
}

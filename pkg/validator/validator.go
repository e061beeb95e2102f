package validator

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

const dateFormat = "2006-01-02"

// Validator wraps go-playground validation with the date rules the license
// forms need.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New()
	// date values arrive as plain YYYY-MM-DD strings
	_ = v.RegisterValidation("licdate", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(dateFormat, fl.Field().String())
		return err == nil
	})
	return &Validator{v: v}
}

func (val *Validator) Struct(s interface{}) error {
	if err := val.v.Struct(s); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// ParseDate parses a YYYY-MM-DD form value.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(dateFormat, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return t, nil
}

// Package validator wraps go-playground/validator with the custom tags used
// by the dispatch request forms.
package validator

import (
	"github.com/go-playground/validator/v10"
)

// ValidationRule registers one custom tag on the underlying validator.
type ValidationRule struct {
	Rule func(v *validator.Validate)
}

type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// Register applies rule sets cumulatively; later registrations add tags
// without discarding earlier ones.
func (v *Validator) Register(rules ...ValidationRule) {
	for _, r := range rules {
		r.Rule(v.validate)
	}
}

func (v *Validator) Struct(s any) error {
	return v.validate.Struct(s)
}

package validator

import "github.com/go-playground/validator/v10"

func registerFn(tag string, fn func(fl validator.FieldLevel) bool) func(v *validator.Validate) {
	return func(v *validator.Validate) {
		_ = v.RegisterValidation(tag, fn)
	}
}

func NewOfferValidationRules() []ValidationRule {
	return []ValidationRule{
		{
			Rule: registerFn("resource_id", uuidValidator),
		},
	}
}

func NewAvailabilityValidationRules() []ValidationRule {
	return []ValidationRule{
		{
			Rule: registerFn("service_date", dateValidator),
		},
		{
			Rule: registerFn("time_slot", timeSlotValidator),
		},
	}
}

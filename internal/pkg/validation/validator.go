package validation

import "github.com/go-playground/validator/v10"

// StructValidator plugs go-playground/validator into fiber's Bind pipeline,
// so request DTO `validate` tags are enforced on c.Bind().Body(...).
type StructValidator struct {
	validate *validator.Validate
}

func New() *StructValidator {
	return &StructValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

func (v *StructValidator) Validate(out any) error {
	return v.validate.Struct(out)
}

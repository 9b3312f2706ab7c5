package user

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/kistconnect/portal/core"
)

var (
	roleTag  = "role"
	roleText = "role must be either teacher or student"
)

// InitValidators registers the user validators. core.InitValidators must run first.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(roleTag, roleValidation)
	core.RegisterCustomTranslation(validate, translator, roleTag, roleText)
}

// Custom Validators

// roleValidation checks that the provided role is a portal role
func roleValidation(fl validator.FieldLevel) bool {
	return IsValidRole(fl.Field().String())
}

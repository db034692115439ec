package student

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/tempo/core"
)

var (
	classTypeTag  = "classtype"
	classTypeText = "choose one of: Hip-Hop, Salsa, Classical"
)

// InitValidators registers the student validation tags.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(classTypeTag, func(fl validator.FieldLevel) bool {
		return IsClassType(fl.Field().String())
	})
	core.RegisterCustomTranslation(validate, translator, classTypeTag, classTypeText)
}

func IsClassType(s string) bool {
	for _, ct := range ClassTypes {
		if s == ct {
			return true
		}
	}
	return false
}

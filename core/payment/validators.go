package payment

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/tempo/core"
)

var (
	statusTag  = "paymentstatus"
	statusText = "choose one of: paid, unpaid, partial"
)

// InitValidators registers the payment validation tags.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(statusTag, func(fl validator.FieldLevel) bool {
		return IsStatus(fl.Field().String())
	})
	core.RegisterCustomTranslation(validate, translator, statusTag, statusText)
}

func IsStatus(s string) bool {
	for _, st := range Statuses {
		if s == st {
			return true
		}
	}
	return false
}

// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"kopilka/internal/models"
)

// validCurrencySymbols is the set of display symbols a profile may use.
var validCurrencySymbols = map[string]bool{
	"₽": true, "$": true, "€": true, "£": true, "¥": true,
	"₴": true, "₸": true, "₺": true, "₩": true, "₹": true,
}

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("category_color", validateCategoryColor)
		_ = v.RegisterValidation("category_icon", validateCategoryIcon)
		_ = v.RegisterValidation("currency_symbol", validateCurrencySymbol)
	}
}

func validateCategoryColor(fl validator.FieldLevel) bool {
	return models.ValidCategoryColor(fl.Field().String())
}

func validateCategoryIcon(fl validator.FieldLevel) bool {
	return models.ValidCategoryIcon(fl.Field().String())
}

func validateCurrencySymbol(fl validator.FieldLevel) bool {
	return validCurrencySymbols[fl.Field().String()]
}

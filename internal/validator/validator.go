// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"stocks/internal/models"
)

// tickerRegex matches exchange symbols such as AAPL, BRK.B or RDS-A.
var tickerRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9.\-]{0,9}$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterOn(v)
	}
}

// RegisterOn registers the custom validators on v.
func RegisterOn(v *validator.Validate) {
	_ = v.RegisterValidation("ticker", validateTicker)
	_ = v.RegisterValidation("price_type", validatePriceType)
}

func validateTicker(fl validator.FieldLevel) bool {
	return tickerRegex.MatchString(fl.Field().String())
}

func validatePriceType(fl validator.FieldLevel) bool {
	_, err := models.ParsePriceType(fl.Field().String())
	return err == nil
}

// IsTicker reports whether s looks like a ticker symbol.
func IsTicker(s string) bool {
	return tickerRegex.MatchString(s)
}

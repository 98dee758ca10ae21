package dto

import (
	"reflect"

	"github.com/SscSPs/ebank_backoffice/internal/core/domain"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// RegisterValidators installs the decimal type adapter and the custom tags used by request DTOs.
func RegisterValidators(v *validator.Validate) error {
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	if err := v.RegisterValidation("positive_decimal", positiveDecimal); err != nil {
		return err
	}
	if err := v.RegisterValidation("non_negative_decimal", nonNegativeDecimal); err != nil {
		return err
	}
	return v.RegisterValidation("crypto_symbol", cryptoSymbol)
}

func parseDecimalField(fl validator.FieldLevel) (decimal.Decimal, bool) {
	s, ok := fl.Field().Interface().(string)
	if !ok {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func positiveDecimal(fl validator.FieldLevel) bool {
	d, ok := parseDecimalField(fl)
	return ok && d.IsPositive()
}

func nonNegativeDecimal(fl validator.FieldLevel) bool {
	d, ok := parseDecimalField(fl)
	return ok && !d.IsNegative()
}

func cryptoSymbol(fl validator.FieldLevel) bool {
	return domain.IsSupportedAsset(fl.Field().String())
}

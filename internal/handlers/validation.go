package handlers

import (
	"errors"
	"strings"
	"sync"

	"github.com/SscSPs/billed/internal/core/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var registerValidatorsOnce sync.Once

// RegisterValidators adds the bill form rules to gin's validator engine.
func RegisterValidators() error {
	var err error
	registerValidatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = errors.New("gin validator engine is not go-playground/validator")
			return
		}
		if err = v.RegisterValidation("billdate", validateBillDate); err != nil {
			return
		}
		err = v.RegisterValidation("nonnegative", validateNonNegative)
	})
	return err
}

// validateBillDate accepts the date formats a stored bill may carry.
func validateBillDate(fl validator.FieldLevel) bool {
	_, err := domain.ParseBillDate(fl.Field().String())
	return err == nil
}

// validateNonNegative accepts decimal numbers >= 0, with a dot or comma separator.
func validateNonNegative(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(strings.Replace(strings.TrimSpace(fl.Field().String()), ",", ".", 1))
	return err == nil && !d.IsNegative()
}

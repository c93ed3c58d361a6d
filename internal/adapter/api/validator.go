package api

import (
	"github.com/go-playground/validator/v10"

	"github.com/Elmalamb/vdm/internal/domain/entity"
)

type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterValidation("postalcode", func(fl validator.FieldLevel) bool {
		return entity.ValidPostalCode(fl.Field().String())
	})
	return &CustomValidator{validator: v}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

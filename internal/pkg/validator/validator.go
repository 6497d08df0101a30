package validator

import (
	stderrors "errors"

	"github.com/go-playground/validator/v10"
	"github.com/landmark-guide/internal/domain"
	"github.com/landmark-guide/internal/pkg/errors"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("mode", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseMode(fl.Field().String())
		return err == nil
	})
	_ = validate.RegisterValidation("permission_kind", func(fl validator.FieldLevel) bool {
		_, err := domain.ParsePermissionKind(fl.Field().String())
		return err == nil
	})
}

// Validate - валидация структуры. Field errors come back as ErrInvalidRequest
// with one detail entry per failed field.
func Validate(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return err
	}

	details := make(map[string]interface{}, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Field()] = fe.Tag()
	}
	return errors.ErrInvalidRequest.WithDetails(details)
}

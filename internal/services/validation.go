package services

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// validateStruct runs the struct tags of input and reports failures as a
// *ValidationError keyed by JSON field name.
func validateStruct(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err
	}

	messages := make(map[string]string, len(fieldErrors))
	for _, fieldErr := range fieldErrors {
		switch fieldErr.Tag() {
		case "required":
			messages[fieldErr.Field()] = "is required"
		case "min", "gte":
			messages[fieldErr.Field()] = "must be at least " + fieldErr.Param()
		case "max", "lte":
			messages[fieldErr.Field()] = "must be at most " + fieldErr.Param()
		case "oneof":
			messages[fieldErr.Field()] = "must be one of " + fieldErr.Param()
		default:
			messages[fieldErr.Field()] = "is invalid"
		}
	}
	return &ValidationError{Fields: messages}
}

package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	validate.RegisterTagNameFunc(fieldName)
	validate.RegisterValidation("identity_key", validateIdentityKey)
	validate.RegisterValidation("course_key", validateCourseKey)
	validate.RegisterValidation("ymd_date", validateDate)
	validate.RegisterValidation("display_name", validateDisplayName)
}

type Validator struct{}

func (v *Validator) ValidateStruct(payload interface{}) *[]error {
	return validateStruct(payload)
}

func (v *Validator) ValidateValue(value any, rules string) error {
	return validateField(value, rules)
}

var ValidatorInstance = Validator{}

func validateStruct(payload interface{}) *[]error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return &[]error{err}
	}
	errs := make([]error, 0, len(validationErrs))
	for _, fieldErr := range validationErrs {
		errs = append(errs, errors.New(message(fieldErr)))
	}
	return &errs
}

func validateField(value any, rules string) error {
	err := validate.Var(value, rules)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		return errors.New(message(validationErrs[0]))
	}
	return err
}

// fieldName reports fields by the name the client sent them under.
func fieldName(field reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.Split(field.Tag.Get(tag), ",")[0]
		if name != "" && name != "-" {
			return name
		}
	}
	return field.Name
}

func message(fieldErr validator.FieldError) string {
	field := fieldErr.Field()
	if field == "" {
		field = "value"
	}
	switch fieldErr.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s long", field, fieldErr.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s long", field, fieldErr.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", field, fieldErr.Param())
	case "identity_key", "course_key":
		return fmt.Sprintf("%s may not be blank, contain '.' or start with '$'", field)
	case "ymd_date":
		return fmt.Sprintf("%s must be a YYYY-MM-DD date", field)
	case "display_name":
		return fmt.Sprintf("%s may not be blank", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fieldErr.Tag())
	}
}

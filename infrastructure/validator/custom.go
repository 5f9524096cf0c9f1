package validator

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"rollcall.io/application/utils"
)

// identity ids become map keys and document ids, so mongo path characters are out.
func validateIdentityKey(fl validator.FieldLevel) bool {
	return utils.IsStorageKey(utils.NormalizeID(fl.Field().String()))
}

func validateCourseKey(fl validator.FieldLevel) bool {
	return utils.IsStorageKey(utils.NormalizeCourse(fl.Field().String()))
}

func validateDate(fl validator.FieldLevel) bool {
	return utils.IsDate(fl.Field().String())
}

func validateDisplayName(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

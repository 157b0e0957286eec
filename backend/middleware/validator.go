package middleware

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct is called by handlers on parsed request bodies.
func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

package serverutils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"ai-docqa-be/pkg/apperr"
)

var validate = validator.New()

// ValidateRequest runs struct-tag validation and folds violations into a
// single ValidationError so the error handler maps them to 400.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var violations validator.ValidationErrors
	if !errors.As(err, &violations) {
		return apperr.NewValidation(err.Error())
	}

	messages := make([]string, 0, len(violations))
	for _, v := range violations {
		messages = append(messages, fmt.Sprintf("field '%s' failed on '%s'", v.Field(), v.Tag()))
	}
	return apperr.NewValidation(strings.Join(messages, "; "))
}

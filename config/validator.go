package config

import (
	"fmt"
	"strings"

	"trooba-http-transport/application/util"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// protocols accepted by the client. A trailing colon is tolerated.
var protocols = map[string]bool{"http": true, "https": true}

func validateProtocol(fl validator.FieldLevel) bool {
	p := strings.TrimSuffix(strings.ToLower(fl.Field().String()), ":")
	return protocols[p]
}

func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("protocol", validateProtocol); err != nil {
		return errors.Wrap(err, "registering protocol rule")
	}
	if err := v.RegisterValidation("token", func(fl validator.FieldLevel) bool {
		return util.IsToken(fl.Field().String())
	}); err != nil {
		return errors.Wrap(err, "registering token rule")
	}

	if err := v.Struct(c); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func formatValidationErrors(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	messages := make([]string, 0, len(verrs))
	for _, e := range verrs {
		messages = append(messages, formatFieldError(e))
	}
	return errors.New(strings.Join(messages, "; "))
}

func formatFieldError(e validator.FieldError) string {
	field := e.Namespace()

	switch e.Tag() {
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "protocol":
		return fmt.Sprintf("%s must be http or https", field)
	case "token":
		return fmt.Sprintf("%s must be a valid header name", field)
	default:
		return fmt.Sprintf("%s failed validation: %s", field, e.Tag())
	}
}

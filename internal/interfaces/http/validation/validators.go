// Package validation registers the custom binding tags used by request DTOs.
package validation

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/connecthub/connecthub/internal/domain/platform"
)

// TagPlatformKey accepts only keys present in the platform registry.
const TagPlatformKey = "platform_key"

// Register installs the custom validators on gin's default validator engine.
func Register(registry *platform.Registry) error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return RegisterOn(v, registry)
}

func RegisterOn(v *validator.Validate, registry *platform.Registry) error {
	return v.RegisterValidation(TagPlatformKey, func(fl validator.FieldLevel) bool {
		key := fl.Field().String()
		if key == "" {
			return false
		}
		_, err := registry.Get(key)
		return err == nil
	})
}

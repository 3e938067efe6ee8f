package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connecthub/connecthub/internal/domain/credential"
	"github.com/connecthub/connecthub/internal/domain/platform"
)

type usageRequest struct {
	Platform string `validate:"required,platform_key"`
}

func TestPlatformKey(t *testing.T) {
	registry := platform.NewRegistry([]*platform.Platform{
		{Key: "stripe", Name: "Stripe", Category: platform.CategoryPayments, AuthTypes: []credential.Type{credential.TypeAPIKey}},
	})
	v := validator.New()
	require.NoError(t, RegisterOn(v, registry))

	tests := []struct {
		name  string
		key   string
		valid bool
	}{
		{"known", "stripe", true},
		{"case insensitive", "Stripe", true},
		{"unknown", "myspace", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(usageRequest{Platform: tt.key})
			assert.Equal(t, tt.valid, err == nil, "error: %v", err)
		})
	}
}

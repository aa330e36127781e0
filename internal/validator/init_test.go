package validator

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Kind string `json:"kind" validate:"required,oneof=a b"`
}

func TestGetValidator_UsesJSONNames(t *testing.T) {
	err := GetValidator().Struct(sample{Kind: "c"})
	require.Error(t, err)

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "kind", verrs[0].Field())
	assert.Equal(t, "oneof", verrs[0].Tag())
}

func TestGetValidator_Accepts(t *testing.T) {
	assert.NoError(t, GetValidator().Struct(sample{Kind: "a"}))
}

package serverutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-docqa-be/pkg/apperr"
)

type askPayload struct {
	Question  string `validate:"required,min=1,max=20"`
	SessionId string
}

func TestValidateRequest(t *testing.T) {
	t.Run("valid payload passes", func(t *testing.T) {
		assert.NoError(t, ValidateRequest(askPayload{Question: "hi"}))
	})

	t.Run("missing required field is a validation error", func(t *testing.T) {
		err := ValidateRequest(askPayload{})
		require.Error(t, err)
		assert.True(t, apperr.IsValidation(err))
		assert.Contains(t, err.Error(), "Question")
		assert.Contains(t, err.Error(), "required")
	})

	t.Run("multiple violations are folded into one message", func(t *testing.T) {
		type pair struct {
			A string `validate:"required"`
			B string `validate:"required"`
		}
		err := ValidateRequest(pair{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "A")
		assert.Contains(t, err.Error(), "B")
	})
}

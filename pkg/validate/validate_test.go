package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/jutjub/pkg/apperror"
)

type form struct {
	Name  string `json:"name" validate:"required,min=3"`
	Email string `json:"email" validate:"omitempty,email"`
	Bio   string `validate:"max=5"`
}

func TestStruct(t *testing.T) {
	assert.NoError(t, Struct(form{Name: "ana"}))

	err := Struct(form{Name: "", Email: "bad", Bio: "too long"})
	require.ErrorIs(t, err, apperror.ErrInvalidInput)
	assert.Equal(t, "bio must be at most 5 characters; email must be a valid email; name is required", apperror.UserMessage(err))
}

func TestStruct_NotAStruct(t *testing.T) {
	err := Struct(42)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

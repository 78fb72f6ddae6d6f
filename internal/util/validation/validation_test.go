package validation

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signUpPayload struct {
	Username string `validate:"required,username"`
	Query    string `validate:"omitempty,mention_query"`
}

func Test_Register_WithCustomTags_ValidatesUsernameAndQuery(t *testing.T) {
	engine := validator.New()
	require.NoError(t, Register(engine))

	assert.NoError(t, engine.Struct(signUpPayload{Username: "alice_01", Query: "al"}))
	assert.Error(t, engine.Struct(signUpPayload{Username: "al"}))
	assert.Error(t, engine.Struct(signUpPayload{Username: "alice!"}))
	assert.Error(t, engine.Struct(signUpPayload{Username: "alice", Query: "a b"}))
}

func Test_FormatValidationError_WithUsernameFailure_ReturnsReadableMessage(t *testing.T) {
	engine := validator.New()
	require.NoError(t, Register(engine))

	err := engine.Struct(signUpPayload{Username: "a"})

	assert.Equal(t, "Username must be 3-32 characters of letters, digits, '_' or '-'", FormatValidationError(err))
}

func Test_FormatValidationError_WithNonValidationError_ReturnsGenericMessage(t *testing.T) {
	assert.Equal(t, "Invalid request format", FormatValidationError(errors.New("EOF")))
}

func Test_IsValidMentionQuery_WithBoundaries_ReturnsExpected(t *testing.T) {
	assert.True(t, IsValidMentionQuery("a"))
	assert.True(t, IsValidMentionQuery("abcdefghijabcdefghijabcdefghij12"))
	assert.False(t, IsValidMentionQuery(""))
	assert.False(t, IsValidMentionQuery("abcdefghijabcdefghijabcdefghij123"))
	assert.False(t, IsValidMentionQuery("al@"))
}

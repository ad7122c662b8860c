package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tokenPayload struct {
	Token string `json:"token" validate:"required,expotoken"`
}

type profilePayload struct {
	Name  string `json:"name" validate:"required,max=10"`
	Email string `json:"email" validate:"required,email"`
}

func TestValidateStructAcceptsValidInput(t *testing.T) {
	err := ValidateStruct(&profilePayload{Name: "Ada", Email: "ada@example.com"})
	assert.NoError(t, err)
}

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	bad := &profilePayload{Name: "", Email: "nope"}
	require.Error(t, ValidateStruct(bad))

	fields := FieldErrors(bad)
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "email")
}

func TestFieldErrorsNilForValidStruct(t *testing.T) {
	assert.Nil(t, FieldErrors(&profilePayload{Name: "Ada", Email: "ada@example.com"}))
}

func TestExpoTokenTag(t *testing.T) {
	valid := &tokenPayload{Token: "ExponentPushToken[xxxxxxxxxxxxxxxxxxxxxx]"}
	assert.NoError(t, ValidateStruct(valid))

	for _, token := range []string{
		"",
		"not-a-token",
		"ExponentPushToken[unterminated",
		"prefixExponentPushToken[x]",
	} {
		err := ValidateStruct(&tokenPayload{Token: token})
		assert.Error(t, err, "token %q should be rejected", token)
	}
}

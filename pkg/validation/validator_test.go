package validation

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Name     string `json:"name" binding:"omitempty,max=10"`
}

func TestToDetails_UsesJSONFieldNames(t *testing.T) {
	Init()

	err := binding.Validator.ValidateStruct(sampleRequest{Email: "not-an-email", Password: "longenough"})
	require.Error(t, err)

	details := ToDetails(err)
	assert.Equal(t, "must be a valid email", details["email"])
	assert.NotContains(t, details, "Email")
}

func TestToDetails_RequiredAndLength(t *testing.T) {
	Init()

	err := binding.Validator.ValidateStruct(sampleRequest{Name: "waaaaay too long"})
	require.Error(t, err)

	details := ToDetails(err)
	assert.Equal(t, "is required", details["email"])
	assert.Equal(t, "is required", details["password"])
	assert.Equal(t, "must be at most 10 characters long", details["name"])
}

func TestToDetails_PasswordAlias(t *testing.T) {
	Init()

	err := binding.Validator.ValidateStruct(sampleRequest{Email: "a@b.co", Password: "short"})
	require.Error(t, err)

	details := ToDetails(err)
	require.Contains(t, details, "password")
	assert.NotEmpty(t, details["password"])
}

func TestToDetails_JSONErrors(t *testing.T) {
	var dst sampleRequest
	err := json.Unmarshal([]byte(`{"email":`), &dst)
	require.Error(t, err)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(err))

	err = json.Unmarshal([]byte(`{"email": 42}`), &dst)
	require.Error(t, err)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(err))
}

func TestToDetails_NilAndUnknown(t *testing.T) {
	assert.Nil(t, ToDetails(nil))
	assert.Equal(t, map[string]string{"payload": "invalid payload"}, ToDetails(errors.New("boom")))
}

package user

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/kitobai/kitob/core"
	appfs "github.com/kitobai/kitob/fs"
)

func TestPasswordPolicy(t *testing.T) {
	validate, translator := core.NewValidator()
	InitValidators(validate, translator)
	LoadCommonPasswords(appfs.FS, core.NopLogger{})

	tests := []struct {
		name    string
		pwd     string
		wantTag string
	}{
		{name: "too short", pwd: "ab1", wantTag: pwdMinLenTag},
		{name: "whitespace", pwd: "abcd 1234", wantTag: pwdNoSpaceTag},
		{name: "all numeric", pwd: "98127364", wantTag: pwdNotAllNumTag},
		{name: "no digit", pwd: "kitobxonlar", wantTag: pwdComplexityTag},
		{name: "similar to name", pwd: "Valiyev7", wantTag: pwdAttrSimTag},
		{name: "common", pwd: "password123", wantTag: pwdNoCommonTag},
		{name: "valid", pwd: "Qalam-2024x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nu := NewUser{Name: "Valiyev", Email: "ali@test.uz", Password: tt.pwd}
			err := validate.Struct(nu)
			if tt.wantTag == "" {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) {
				verrs := err.(validator.ValidationErrors)
				assert.Equal(t, tt.wantTag, verrs[0].Tag())
				assert.Equal(t, "password", verrs[0].Field())
			}
		})
	}
}

func TestResetPasswordConfirm(t *testing.T) {
	validate, translator := core.NewValidator()
	InitValidators(validate, translator)

	err := ResetUserPassword{Token: "t", UID: "u", Password: "Qalam-2024x", PasswordConfirm: "other"}.Validate(validate)
	assert.Error(t, err)

	err = ResetUserPassword{Token: "t", UID: "u", Password: "Qalam-2024x", PasswordConfirm: "Qalam-2024x"}.Validate(validate)
	assert.NoError(t, err)
}

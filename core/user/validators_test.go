package user

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SinghVishwajeet09/Student-Smart-Hub/core"
)

type stubRepo struct {
	Repository
	uniquenessErr error
}

func (r stubRepo) CheckUsernameUniqueness(context.Context, string, string, ...User) error {
	return r.uniquenessErr
}

func newTestValidator(t *testing.T) (*validator.Validate, func(error) map[string]string) {
	t.Helper()
	validate, translator := core.NewValidator()
	RegisterValidators(validate, translator)

	fieldErrs := func(err error) map[string]string {
		vErrs, ok := err.(validator.ValidationErrors)
		require.True(t, ok, "expected validator.ValidationErrors, got %v", err)
		return core.TranslateValidationErrors(vErrs, translator)
	}
	return validate, fieldErrs
}

func validNewUser() NewUser {
	return NewUser{
		Name:            "Awe Kid",
		Username:        "awe",
		Email:           "awe@test.cd",
		Password:        "LordMuseveni",
		PasswordConfirm: "LordMuseveni",
	}
}

func TestNewUser_Validate(t *testing.T) {
	validate, fieldErrs := newTestValidator(t)
	svc := NewService(stubRepo{}, nil, nil)

	t.Run("valid", func(t *testing.T) {
		nu := validNewUser()
		assert.NoError(t, nu.Validate(validate, svc))
	})

	t.Run("username and email are lowercased", func(t *testing.T) {
		nu := validNewUser()
		nu.Username = "  AWE "
		nu.Email = "AWE@Test.CD"
		require.NoError(t, nu.Validate(validate, svc))
		assert.Equal(t, "awe", nu.Username)
		assert.Equal(t, "awe@test.cd", nu.Email)
	})

	t.Run("password confirmation must match", func(t *testing.T) {
		nu := validNewUser()
		nu.PasswordConfirm = "Something3lse"
		err := nu.Validate(validate, svc)
		require.Error(t, err)
		assert.Contains(t, fieldErrs(err), "password_confirm")
	})

	t.Run("unknown role", func(t *testing.T) {
		nu := validNewUser()
		nu.Roles = []string{RoleStudent, "superhero"}
		err := nu.Validate(validate, svc)
		require.Error(t, err)
		assert.Equal(t, "invalid roles", fieldErrs(err)["roles"])
	})

	t.Run("duplicate username", func(t *testing.T) {
		nu := validNewUser()
		dupSvc := NewService(stubRepo{uniquenessErr: ErrUsernameExists}, nil, nil)
		err := nu.Validate(validate, dupSvc)
		require.Error(t, err)

		var vErr *core.ValidationError
		require.ErrorAs(t, err, &vErr)
		require.Len(t, vErr.Fields, 1)
		assert.Equal(t, "username", vErr.Fields[0].Field)
	})
}

func TestNewUser_passwordPolicy(t *testing.T) {
	validate, fieldErrs := newTestValidator(t)
	svc := NewService(stubRepo{}, nil, nil)

	tests := []struct {
		name    string
		pwd     string
		wantMsg string
	}{
		{"too short", "Ab3def!", "password must contain at least 8 characters"},
		{"contains whitespace", "Lord Museveni", "password must not contain whitespace"},
		{"all numeric", "90872671", "password cannot be entirely numeric"},
		{"similar to username", "awe@test.cd", "password cannot be similar to user attributes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nu := validNewUser()
			nu.Password = tt.pwd
			nu.PasswordConfirm = tt.pwd

			err := nu.Validate(validate, svc)
			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, fieldErrs(err)["password"])
		})
	}
}

func TestUser_roles(t *testing.T) {
	usr := User{Roles: []string{RoleStudent}}
	assert.True(t, usr.IsStudent())
	assert.False(t, usr.IsTeacher())
	assert.False(t, usr.IsAdmin())

	usr.Roles = AllRoles
	assert.True(t, usr.IsAdmin())
	assert.True(t, usr.IsTeacher())
}

func TestUser_password(t *testing.T) {
	var usr User
	require.NoError(t, usr.SetPassword("LordMuseveni"))
	assert.NoError(t, usr.CheckPassword("LordMuseveni"))
	assert.Error(t, usr.CheckPassword("lordmuseveni"))
}

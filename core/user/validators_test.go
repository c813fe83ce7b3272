package user

import (
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/mafunzo/core"
)

func newValidator() *validator.Validate {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)
	return validate
}

func TestNewUser_validation(t *testing.T) {
	validate := newValidator()
	longPwd := strings.Repeat("xy7", 27) // 81 bytes
	maxPwd := strings.Repeat("xy7", 24)  // 72 bytes

	tests := []struct {
		name    string
		nu      NewUser
		wantTag string // first failing tag, "" when valid
	}{
		{name: "valid", nu: NewUser{Username: "learner", Password: "s3cure-pass", PasswordConfirm: "s3cure-pass"}},
		{name: "username required", nu: NewUser{Password: "s3cure-pass", PasswordConfirm: "s3cure-pass"}, wantTag: "required"},
		{name: "username too short", nu: NewUser{Username: "ab", Password: "s3cure-pass", PasswordConfirm: "s3cure-pass"}, wantTag: "min"},
		{name: "username charset", nu: NewUser{Username: "no spaces", Password: "s3cure-pass", PasswordConfirm: "s3cure-pass"}, wantTag: "alphanum_"},
		{name: "confirmation mismatch", nu: NewUser{Username: "learner", Password: "s3cure-pass", PasswordConfirm: "other-pass"}, wantTag: "eqfield"},
		{name: "password too short", nu: NewUser{Username: "learner", Password: "short", PasswordConfirm: "short"}, wantTag: pwdMinLenTag},
		{name: "password too long", nu: NewUser{Username: "learner", Password: longPwd, PasswordConfirm: longPwd}, wantTag: pwdMaxBytesTag},
		{name: "password at byte limit", nu: NewUser{Username: "learner", Password: maxPwd, PasswordConfirm: maxPwd}},
		{name: "password with space", nu: NewUser{Username: "learner", Password: "has space in", PasswordConfirm: "has space in"}, wantTag: pwdNoSpaceTag},
		{name: "password all numeric", nu: NewUser{Username: "learner", Password: "1234567890", PasswordConfirm: "1234567890"}, wantTag: pwdNotAllNumTag},
		{name: "password like username", nu: NewUser{Username: "learner01", Password: "Learner01!", PasswordConfirm: "Learner01!"}, wantTag: pwdAttrSimTag},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.nu)
			if tt.wantTag == "" {
				assert.NoError(t, err)
				return
			}

			var vErrs validator.ValidationErrors
			if assert.ErrorAs(t, err, &vErrs) {
				tags := make([]string, 0, len(vErrs))
				for _, fe := range vErrs {
					tags = append(tags, fe.Tag())
				}
				assert.Contains(t, tags, tt.wantTag)
			}
		})
	}
}

func TestUser_Password(t *testing.T) {
	var usr User
	assert.NoError(t, usr.SetPassword("s3cure-pass"))
	assert.NotEqual(t, []byte("s3cure-pass"), usr.PasswordHash)
	assert.NoError(t, usr.CheckPassword("s3cure-pass"))
	assert.Error(t, usr.CheckPassword("S3cure-pass"))
}

func TestPasswordPolicy_fitsBcrypt(t *testing.T) {
	var usr User
	assert.NoError(t, usr.SetPassword(strings.Repeat("é", pwdMaxBytes/2)))
	assert.Error(t, usr.SetPassword(strings.Repeat("é", pwdMaxBytes/2+1)), "bcrypt rejects what the policy rejects")
}

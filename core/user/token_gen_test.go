package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMakeVerifyToken(t *testing.T) {
	secretKey = []byte("secret")
	passwordResetTimeoutDelta = 3 * 24 * time.Hour

	now := time.Now()
	usr := User{
		ID:        "9b2b3c1e-07c4-4d0b-8a52-5be4c1f1a001",
		Name:      "Ali Valiyev",
		Email:     "ali@test.uz",
		Role:      RoleStudent,
		CreatedAt: now,
		UpdatedAt: now,
		LastLogin: &now,
	}
	_ = usr.SetPassword("pwd")

	validToken := makeToken(usr)

	// generate an expired token
	dayLate := passwordResetTimeoutDelta + (24 * time.Hour)
	nowFunc = func() time.Time { return time.Now().Add(-dayLate) }
	expiredToken := makeToken(usr)
	nowFunc = time.Now // reset

	// a token made before the last login is no longer valid
	later := now.Add(time.Minute)
	loggedInAgain := usr
	loggedInAgain.LastLogin = &later

	tests := []struct {
		name    string
		usr     User
		token   string
		wantErr error
	}{
		{name: "no token", usr: usr, wantErr: errInvalidToken},
		{name: "invalid parts len", usr: usr, token: "lmaooolol", wantErr: errInvalidToken},
		{name: "invalid base32", usr: usr, token: "hahaha-sigsig-sig", wantErr: errInvalidToken},
		{name: "invalid timestamp", usr: usr, token: "NRXWY-sigsig-sig", wantErr: errInvalidToken},
		{name: "invalid token", usr: usr, token: "HE4TS-sigsig-sig", wantErr: errInvalidToken},
		{name: "expired token", usr: usr, token: expiredToken, wantErr: errTokenExpired},
		{name: "logged in since", usr: loggedInAgain, token: validToken, wantErr: errInvalidToken},
		{name: "valid token", usr: usr, token: validToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantErr, verifyToken(tt.usr, tt.token))
		})
	}
}

func TestEncodeDecodeUID(t *testing.T) {
	usr := User{ID: "9b2b3c1e-07c4-4d0b-8a52-5be4c1f1a001"}
	id, err := decodeUID(EncodeUID(usr))
	assert.NoError(t, err)
	assert.Equal(t, usr.ID, id)

	_, err = decodeUID("%%%")
	assert.Error(t, err)
}

func TestRedirectPath(t *testing.T) {
	tests := []struct {
		role string
		want string
	}{
		{role: "", want: AdminPanel},
		{role: RoleAdmin, want: AdminPanel},
		{role: "Manager", want: AdminPanel},
		{role: "Kutubxonachi", want: AdminPanel},
		{role: RoleTeacher, want: TeacherPanel},
		{role: RoleStudent, want: StudentPanel},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			assert.Equal(t, tt.want, RedirectPath(tt.role))
		})
	}

	assert.True(t, (&User{Role: "administrator"}).IsAdmin())
	assert.False(t, (&User{Role: "employee"}).IsAdmin())
	assert.True(t, (&User{Role: "employee"}).IsStaff())
	assert.False(t, (&User{Role: RoleTeacher}).IsStaff())
}

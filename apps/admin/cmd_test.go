package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitobai/kitob/core"
	"github.com/kitobai/kitob/core/user"
	inmemdb "github.com/kitobai/kitob/storage/database/inmem"
	testutil "github.com/kitobai/kitob/tests"
)

var usrRepo user.Repository

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	usrRepo = inmemdb.NewUserRepository(inmemdb.Open())

	out := new(bytes.Buffer)
	return &commandLine{usrRepo: usrRepo, out: out}, out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func (tt cliTest) check(t *testing.T, err error) {
	t.Helper()
	switch {
	case tt.wantErr != nil:
		assert.Equal(t, tt.wantErr, err)
	case tt.wantErrStr != "":
		if assert.Error(t, err) {
			assert.Contains(t, err.Error(), tt.wantErrStr)
		}
	default:
		assert.NoError(t, err)
	}
}

func mockPassword(t *testing.T, pwd string) {
	readPassword := readPasswordFunc
	readPasswordFunc = func(fd int) ([]byte, error) { return []byte(pwd), nil }
	t.Cleanup(func() { readPasswordFunc = readPassword })
}

func Test_commandLine_root(t *testing.T) {
	cli, out := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErrStr: `unknown command "lol" for "admin"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(append([]string{"admin"}, tt.args...)))
		})
	}
	assert.Contains(t, out.String(), "set-admin")
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	var ran []string
	runMigrationFunc = func(command string, db *sql.DB, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		ran = append(ran, command)
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "create", args: []string{"migrate", "create", "feedbacks", "sql"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(append([]string{"admin"}, tt.args...)))
		})
	}
	assert.Equal(t, []string{"up", "up-to", "down", "down-to", "status", "create"}, ran)
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli, _ := setup(t)
	usr := testutil.CreateUser(t, usrRepo, "Ali Valiyev", "ali@kitob.uz", "eskiparol", user.RoleTeacher, core.StatusActive)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no email", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-e", "ali@kitob.uz"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-e", "lol@kitob.uz"}, extra: extra{pwd: "lol"}, wantErr: user.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "-e", "Ali@Kitob.uz"}, extra: extra{pwd: "yangiparol"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pwd := ""
			if ex, ok := tt.extra.(extra); ok {
				pwd = ex.pwd
			}
			mockPassword(t, pwd)

			err := cli.run(append([]string{"admin"}, tt.args...))
			tt.check(t, err)
			if err != nil {
				return
			}
			refreshed, err := usrRepo.GetUserByID(context.Background(), usr.ID)
			require.NoError(t, err)
			assert.NoError(t, refreshed.CheckPassword(pwd))
			assert.Error(t, refreshed.CheckPassword("eskiparol"))
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli, _ := setup(t)
	ctx := context.Background()
	testutil.CreateUser(t, usrRepo, "Vali Aliyev", "vali@kitob.uz", "eskiparol", user.RoleTeacher, core.StatusInactive)

	tests := []struct {
		cliTest
		pwd      string
		email    string
		wantName string
		wantRole string
	}{
		{cliTest: cliTest{name: "no email", args: []string{"adduser", "-n", "Ali"}, wantErr: errHelp}},
		{cliTest: cliTest{name: "no password", args: []string{"adduser", "-e", "ali@kitob.uz"}, wantErr: errHelp}},
		{
			cliTest: cliTest{name: "create", args: []string{"adduser", "-e", "ali@kitob.uz"}},
			pwd:     "parol123", email: "ali@kitob.uz", wantName: "ali", wantRole: user.RoleStudent,
		},
		{
			cliTest: cliTest{name: "create admin", args: []string{"adduser", "-e", "Admin@Kitob.uz", "-n", " Kitob Admin ", "--admin"}},
			pwd:     "parol123", email: "admin@kitob.uz", wantName: "Kitob Admin", wantRole: user.RoleAdmin,
		},
		{
			cliTest: cliTest{name: "update existing", args: []string{"adduser", "-e", "vali@kitob.uz", "--admin"}},
			pwd:     "yangiparol", email: "vali@kitob.uz", wantName: "Vali Aliyev", wantRole: user.RoleAdmin,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockPassword(t, tt.pwd)

			err := cli.run(append([]string{"admin"}, tt.args...))
			tt.check(t, err)
			if err != nil {
				return
			}
			usr, err := usrRepo.GetUserByEmail(ctx, tt.email)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, usr.Name)
			assert.Equal(t, tt.wantRole, usr.Role)
			assert.True(t, usr.IsActive())
			assert.NoError(t, usr.CheckPassword(tt.pwd))
		})
	}

	count, err := usrRepo.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func Test_commandLine_setAdmin(t *testing.T) {
	cli, out := setup(t)
	usr := testutil.CreateUser(t, usrRepo, "Ali Valiyev", "ali@kitob.uz", "", user.RoleTeacher, core.StatusActive)

	tests := []cliTest{
		{name: "no email", args: []string{"set-admin"}, wantErrStr: "accepts 1 arg(s), received 0"},
		{name: "user not found", args: []string{"set-admin", "lol@kitob.uz"}, wantErr: user.ErrNotFound},
		{name: "promote", args: []string{"set-admin", "ALI@kitob.uz"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(append([]string{"admin"}, tt.args...)))
		})
	}

	refreshed, err := usrRepo.GetUserByID(context.Background(), usr.ID)
	require.NoError(t, err)
	assert.True(t, refreshed.IsAdmin())
	assert.Contains(t, out.String(), "ali@kitob.uz is now an admin")
}

func Test_commandLine_users(t *testing.T) {
	cli, out := setup(t)
	testutil.CreateUser(t, usrRepo, "Ali Valiyev", "ali@kitob.uz", "", user.RoleTeacher, core.StatusActive)
	testutil.CreateUser(t, usrRepo, "Sardor Karimov", "sardor@kitob.uz", "", user.RoleStudent, core.StatusActive)

	require.NoError(t, cli.run([]string{"admin", "users"}))
	assert.Contains(t, out.String(), "ali@kitob.uz")
	assert.Contains(t, out.String(), "sardor@kitob.uz")
	assert.Contains(t, out.String(), "TOTAL")

	out.Reset()
	require.NoError(t, cli.run([]string{"admin", "users", "--role", user.RoleStudent}))
	assert.NotContains(t, out.String(), "Ali Valiyev")
	assert.Contains(t, out.String(), "Sardor Karimov")
}

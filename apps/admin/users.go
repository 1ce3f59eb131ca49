package main

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/kitobai/kitob/core"
	"github.com/kitobai/kitob/core/user"
)

func (cli *commandLine) setAdminCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-admin EMAIL",
		Short: "Give the admin role to the user with the given email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			usr, err := cli.setRole(args[0], user.RoleAdmin)
			if err != nil {
				return err
			}
			cmd.Printf("%s is now an admin\n", usr.Email)
			return nil
		},
	}
}

func (cli *commandLine) addUserCommand() *cobra.Command {
	var email, name string
	var isAdmin bool
	cmd := &cobra.Command{
		Use:   "adduser",
		Short: "Create or update a user. The password is prompted next",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if email == "" {
				_ = cmd.Usage()
				return errHelp
			}
			pwd, err := cli.promptPassword(cmd)
			if err != nil {
				return err
			}
			return cli.addUser(name, email, pwd, isAdmin)
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "The user's email")
	cmd.Flags().StringVarP(&name, "name", "n", "", "The user's name")
	cmd.Flags().BoolVar(&isAdmin, "admin", false, "Give the user the admin role")
	return cmd
}

func (cli *commandLine) resetPasswordCommand() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "resetpassword",
		Short: "Reset a user's password. The password is prompted next",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if email == "" {
				_ = cmd.Usage()
				return errHelp
			}
			pwd, err := cli.promptPassword(cmd)
			if err != nil {
				return err
			}
			return cli.resetPassword(email, pwd)
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "The user's email")
	return cmd
}

func (cli *commandLine) usersCommand() *cobra.Command {
	var roles []string
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List the users",
		RunE: func(cmd *cobra.Command, _ []string) error {
			users, err := cli.usrRepo.FilterUsers(context.Background(), user.QueryFilter{Roles: roles})
			if err != nil {
				return errors.Wrap(err, "listing users")
			}
			cmd.Println(renderUsers(users))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&roles, "role", nil, "Only list the users with these roles")
	return cmd
}

func renderUsers(users []user.User) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"ID", "Name", "Email", "Role", "Status", "Last login"})
	for _, u := range users {
		lastLogin := "-"
		if u.LastLogin != nil {
			lastLogin = u.LastLogin.Format("2006-01-02 15:04")
		}
		tw.AppendRow(table.Row{u.ID, u.Name, u.Email, u.Role, u.Status, lastLogin})
	}
	tw.AppendFooter(table.Row{"", "", "", "", "Total", len(users)})
	return tw.Render()
}

// addUser updates or creates a user.User
func (cli *commandLine) addUser(name, email, pwd string, isAdmin bool) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)
	name = core.CleanString(name)

	now := core.NowFunc()
	usr, err := cli.usrRepo.GetUserByEmail(ctx, email)
	found := err == nil
	if err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			return err
		}
		usr = user.User{ID: uuid.NewString(), Email: email, Role: user.RoleStudent, CreatedAt: now}
	}
	if name != "" {
		usr.Name = name
	} else if usr.Name == "" {
		usr.Name = strings.SplitN(email, "@", 2)[0]
	}
	if isAdmin {
		usr.Role = user.RoleAdmin
	}
	usr.Status = core.StatusActive
	usr.UpdatedAt = now
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}

	if found {
		_, err = cli.usrRepo.UpdateUser(ctx, usr)
	} else {
		_, err = cli.usrRepo.CreateUser(ctx, usr)
	}
	return err
}

func (cli *commandLine) resetPassword(email, pwd string) error {
	ctx := context.Background()
	usr, err := cli.usrRepo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		return err
	}
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}
	usr.UpdatedAt = core.NowFunc()
	_, err = cli.usrRepo.UpdateUser(ctx, usr)
	return err
}

func (cli *commandLine) setRole(email, role string) (user.User, error) {
	ctx := context.Background()
	usr, err := cli.usrRepo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		return user.User{}, err
	}
	usr.Role = role
	usr.UpdatedAt = core.NowFunc()
	return cli.usrRepo.UpdateUser(ctx, usr)
}

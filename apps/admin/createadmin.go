package main

import (
	"context"

	"github.com/trezcool/tempo/core"
	"github.com/trezcool/tempo/core/user"
)

// createAdmin creates an admin user; the username or email being taken is a core.ConflictError.
func (cli *commandLine) createAdmin(uname, email, pwd string) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	if err := user.ValidatePassword(pwd, uname, email); err != nil {
		return err
	}
	if err := cli.usrSvc.CheckUniqueness(ctx, uname, email); err != nil {
		return err
	}
	_, err := cli.usrSvc.Create(ctx, user.NewUser{
		Username: uname,
		Email:    email,
		Role:     user.RoleAdmin,
		Password: pwd,
	})
	return err
}

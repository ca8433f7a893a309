package main

import (
	"context"
	"time"

	"github.com/trezcool/dizimo/core"
	"github.com/trezcool/dizimo/core/user"
)

func (cli *commandLine) resetPassword(uname, pwd string) error {
	if _, err := cli.connect(); err != nil {
		return err
	}

	ctx := context.Background()
	usr, err := cli.usrRepo.GetUserByUsernameOrEmail(ctx, core.CleanString(uname, true /* lower */))
	if err != nil {
		return err
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	if _, err := cli.usrRepo.UpdateUser(ctx, user.User{ID: usr.ID, PasswordHash: usr.PasswordHash, UpdatedAt: time.Now().UTC()}, nil); err != nil {
		return err
	}
	return nil
}

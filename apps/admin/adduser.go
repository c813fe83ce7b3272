package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/mafunzo/core"
	"github.com/trezcool/mafunzo/core/user"
)

// addUser updates or creates a user.User
func (cmd *commandLine) addUser(ctx context.Context, uname, pwd string, isAdmin bool) error {
	uname = core.CleanString(uname, true /* lower */)
	if uname == "" {
		return errHelp
	}

	usr, err := cmd.usrSvc.GetByUsername(ctx, uname)
	switch {
	case err == nil:
		if usr, err = cmd.usrSvc.SetPassword(ctx, uname, pwd); err != nil {
			return err
		}
		if usr.IsAdmin != isAdmin {
			if _, err = cmd.usrSvc.SetAdmin(ctx, usr, isAdmin); err != nil {
				return err
			}
		}
	case errors.Is(err, user.ErrNotFound):
		if _, err = cmd.usrSvc.Create(ctx, user.User{Username: uname, IsAdmin: isAdmin}, pwd); err != nil {
			return err
		}
	default:
		return err
	}

	// a new learner gets a pending record for every module
	_, err = cmd.trainSvc.Reconcile(ctx)
	return err
}

package main

import "context"

func (cmd *commandLine) resetPassword(ctx context.Context, uname, pwd string) error {
	_, err := cmd.usrSvc.SetPassword(ctx, uname, pwd)
	return err
}

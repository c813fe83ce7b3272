package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/trezcool/mafunzo/core/seed"
	"github.com/trezcool/mafunzo/core/training"
	"github.com/trezcool/mafunzo/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp         = errors.New("help provided")
	errNotConfirmed = errors.New("refusing to reset the database without --yes")
)

type commandLine struct {
	db       *sqlx.DB
	usrSvc   *user.Service
	trainSvc *training.Service
	seedSvc  *seed.Service
	out      io.Writer
}

func (cmd *commandLine) app() *cli.App {
	return &cli.App{
		Name:           "admin",
		Usage:          "Mafunzo administration",
		Writer:         cmd.out,
		ErrWriter:      cmd.out,
		ExitErrHandler: func(*cli.Context, error) {}, // errors are handled by main
		Action: func(c *cli.Context) error {
			_ = cli.ShowAppHelp(c)
			return errHelp
		},
		Commands: []*cli.Command{
			{
				Name:      "migrate",
				Usage:     "run database migrations (up, up-by-one, up-to, down, down-to, redo, reset, status, version)",
				ArgsUsage: "COMMAND [ARGS...]",
				Action: func(c *cli.Context) error {
					if c.NArg() == 0 {
						_ = cli.ShowSubcommandHelp(c)
						return errHelp
					}
					return cmd.migrate(c.Context, c.Args().Slice())
				},
			},
			{
				Name:  "adduser",
				Usage: "create a user or update an existing one. The password is prompted next",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Usage: "the user's username", Required: true},
					&cli.BoolFlag{Name: "admin", Usage: "grant admin rights"},
				},
				Action: func(c *cli.Context) error {
					pwd, err := cmd.promptPassword()
					if err != nil {
						return err
					}
					return cmd.addUser(c.Context, c.String("username"), pwd, c.Bool("admin"))
				},
			},
			{
				Name:  "resetpassword",
				Usage: "reset a user's password. The password is prompted next",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Usage: "the user's username", Required: true},
				},
				Action: func(c *cli.Context) error {
					pwd, err := cmd.promptPassword()
					if err != nil {
						return err
					}
					return cmd.resetPassword(c.Context, c.String("username"), pwd)
				},
			},
			{
				Name:  "seed",
				Usage: "create the default accounts and modules when missing",
				Action: func(c *cli.Context) error {
					return cmd.seedSvc.Seed(c.Context)
				},
			},
			{
				Name:  "resetdb",
				Usage: "delete ALL users, modules and progress, then write the default dataset again",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Usage: "confirm the reset"},
				},
				Action: func(c *cli.Context) error {
					if !c.Bool("yes") {
						return errNotConfirmed
					}
					if err := cmd.seedSvc.ResetAll(c.Context); err != nil {
						return err
					}
					_, _ = fmt.Fprintln(cmd.out, "database reset; restart the API server to drop its sessions")
					return nil
				},
			},
		},
	}
}

func (cmd *commandLine) run(args []string) error {
	return cmd.app().RunContext(context.Background(), args)
}

func (cmd *commandLine) promptPassword() (string, error) {
	_, _ = fmt.Fprint(cmd.out, "Enter password:")
	pwd, err := readPasswordFunc(int(os.Stdin.Fd()))
	_, _ = fmt.Fprintln(cmd.out)
	if err != nil {
		return "", errors.Wrap(err, "reading password")
	}
	if len(pwd) == 0 {
		return "", errHelp
	}
	return string(pwd), nil
}

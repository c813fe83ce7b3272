// Package seed writes the default dataset and resets the database to it.
package seed

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/mafunzo/core"
	"github.com/trezcool/mafunzo/core/training"
	"github.com/trezcool/mafunzo/core/user"
)

type (
	// Truncater deletes every user, module and progress record.
	Truncater interface {
		TruncateAll(ctx context.Context, exec ...core.DBExecutor) error
	}

	// Account is a seeded login.
	Account struct {
		Username string
		Password string
		IsAdmin  bool
	}

	Data struct {
		Accounts []Account
		Modules  []training.NewModule
	}

	Service struct {
		db       core.DB
		data     Data
		usrSvc   *user.Service
		trainSvc *training.Service
		trunc    Truncater
		logger   core.Logger
	}
)

// DataFromConfig builds the default dataset from conf.Seed.
func DataFromConfig(conf *core.Config) Data {
	accounts := make([]Account, 0, len(conf.Seed.Users)+1)
	accounts = append(accounts, Account{
		Username: conf.Seed.AdminUsername,
		Password: conf.Seed.AdminPassword,
		IsAdmin:  true,
	})
	for _, acc := range conf.Seed.Users {
		accounts = append(accounts, Account{Username: acc.Username, Password: acc.Password})
	}

	mod := conf.Seed.Module
	return Data{
		Accounts: accounts,
		Modules: []training.NewModule{{
			Title:    mod.Title,
			Duration: mod.Duration,
			Question: mod.Question,
			Answer:   mod.Answer,
		}},
	}
}

func NewService(
	db core.DB,
	data Data,
	usrSvc *user.Service,
	trainSvc *training.Service,
	trunc Truncater,
	logger core.Logger,
) *Service {
	return &Service{
		db:       db,
		data:     data,
		usrSvc:   usrSvc,
		trainSvc: trainSvc,
		trunc:    trunc,
		logger:   logger,
	}
}

// Seed creates the missing seed accounts, the seed modules when the catalog is empty, then reconciles progress.
// It is safe to call on every start.
func (svc *Service) Seed(ctx context.Context, exec ...core.DBExecutor) error {
	return core.InTx(ctx, svc.db, exec, func(tx core.DBExecutor) error {
		for _, acc := range svc.data.Accounts {
			_, err := svc.usrSvc.GetByUsername(ctx, acc.Username, tx)
			if err == nil {
				continue
			}
			if !errors.Is(err, user.ErrNotFound) {
				return errors.Wrapf(err, "finding seed user %q", acc.Username)
			}
			if _, err = svc.usrSvc.Create(ctx, user.User{Username: acc.Username, IsAdmin: acc.IsAdmin}, acc.Password, tx); err != nil {
				return errors.Wrapf(err, "creating seed user %q", acc.Username)
			}
		}

		mods, err := svc.trainSvc.ListModules(ctx, tx)
		if err != nil {
			return errors.Wrap(err, "querying modules")
		}
		if len(mods) == 0 {
			for _, nm := range svc.data.Modules {
				if _, err = svc.trainSvc.AddModule(ctx, nm, tx); err != nil {
					return errors.Wrapf(err, "creating seed module %q", nm.Title)
				}
			}
		}

		_, err = svc.trainSvc.Reconcile(ctx, tx)
		return err
	})
}

// ResetAll discards every user, module and progress record and writes the default dataset again.
func (svc *Service) ResetAll(ctx context.Context) error {
	err := core.InTx(ctx, svc.db, nil, func(tx core.DBExecutor) error {
		if err := svc.trunc.TruncateAll(ctx, tx); err != nil {
			return errors.Wrap(err, "truncating tables")
		}
		return svc.Seed(ctx, tx)
	})
	if err != nil {
		return err
	}
	svc.logger.Info("database reset to default dataset")
	return nil
}

package training

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/mafunzo/core"
)

var (
	// errors
	ErrNotFound        = errors.New("training module not found")
	ErrTitleExists     = errors.New("a module with this title already exists")
	ErrIncorrectAnswer = errors.New("incorrect answer, please try again")
)

type (
	Repository interface {
		CheckTitleUniqueness(ctx context.Context, title string, exec ...core.DBExecutor) error
		CreateModule(ctx context.Context, mod Module, exec ...core.DBExecutor) (Module, error)
		// QueryModules returns all modules in creation order.
		QueryModules(ctx context.Context, exec ...core.DBExecutor) ([]Module, error)
		GetModule(ctx context.Context, id int, exec ...core.DBExecutor) (Module, error)
		// ReconcileProgress inserts a pending Progress for every missing (non-admin user, module) pair.
		ReconcileProgress(ctx context.Context, exec ...core.DBExecutor) (int64, error)
		// QueryProgress reads the effective progress view: modules LEFT JOIN the user's progress.
		QueryProgress(ctx context.Context, filter ProgressFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]ModuleProgress, error)
		GetProgress(ctx context.Context, userID, moduleID int, exec ...core.DBExecutor) (Progress, error)
		// CompleteProgress marks the (user, module) Progress as completed at `at`, creating it if needed.
		CompleteProgress(ctx context.Context, userID, moduleID int, at time.Time, exec ...core.DBExecutor) (Progress, error)
	}

	Service struct {
		db     core.DB
		repo   Repository
		logger core.Logger
	}
)

var nowFunc = time.Now // mockable

var (
	completedTrue  = true
	completedFalse = false

	incompleteOrdering = []core.DBOrdering{{Field: "created_at", Ascending: true}}
	completedOrdering  = []core.DBOrdering{{Field: "completed_at", Ascending: true}}
)

func NewService(db core.DB, repo Repository, logger core.Logger) *Service {
	return &Service{db: db, repo: repo, logger: logger}
}

func (svc *Service) CheckUniqueness(ctx context.Context, title string, exec ...core.DBExecutor) error {
	if err := svc.repo.CheckTitleUniqueness(ctx, title, exec...); err != nil {
		if errors.Is(err, ErrTitleExists) {
			return core.NewValidationError(err, core.FieldError{Field: "title", Error: err.Error()})
		}
		return err
	}
	return nil
}

// AddModule creates a Module from a validated NewModule and gives every learner a pending Progress for it.
func (svc *Service) AddModule(ctx context.Context, nm NewModule, exec ...core.DBExecutor) (Module, error) {
	if !ValidDuration(nm.Duration) {
		return Module{}, core.NewValidationError(nil, core.FieldError{
			Field: "duration",
			Error: "invalid duration format, use 'number unit' (e.g. '10 minutes')",
		})
	}

	var mod Module
	err := core.InTx(ctx, svc.db, exec, func(tx core.DBExecutor) error {
		var err error
		mod, err = svc.repo.CreateModule(ctx, Module{
			Title:     nm.Title,
			Duration:  nm.Duration,
			Question:  nm.Question,
			Answer:    nm.Answer,
			CreatedAt: nowFunc().UTC(),
		}, tx)
		if err != nil {
			if errors.Is(err, ErrTitleExists) {
				return core.NewValidationError(err, core.FieldError{Field: "title", Error: err.Error()})
			}
			return errors.Wrap(err, "creating module")
		}

		_, err = svc.Reconcile(ctx, tx)
		return err
	})
	if err != nil {
		return Module{}, err
	}
	return mod, nil
}

// ListModules returns the catalog in creation order.
func (svc *Service) ListModules(ctx context.Context, exec ...core.DBExecutor) ([]Module, error) {
	return svc.repo.QueryModules(ctx, exec...)
}

func (svc *Service) GetModule(ctx context.Context, id int, exec ...core.DBExecutor) (Module, error) {
	return svc.repo.GetModule(ctx, id, exec...)
}

// GetProgress returns the stored Progress of the (user, module) pair.
func (svc *Service) GetProgress(ctx context.Context, userID, moduleID int) (Progress, error) {
	return svc.repo.GetProgress(ctx, userID, moduleID)
}

// Reconcile makes sure a Progress exists for every current (learner, module) pair.
// It is idempotent and returns the number of created records.
func (svc *Service) Reconcile(ctx context.Context, exec ...core.DBExecutor) (int64, error) {
	n, err := svc.repo.ReconcileProgress(ctx, exec...)
	if err != nil {
		return 0, errors.Wrap(err, "reconciling progress")
	}
	if n > 0 {
		svc.logger.Debug("progress reconciled", map[string]interface{}{"created": n})
	}
	return n, nil
}

// GetDashboard splits the user's modules into incomplete (by module creation) and completed (by completion time).
func (svc *Service) GetDashboard(ctx context.Context, userID int) (Dashboard, error) {
	if _, err := svc.Reconcile(ctx); err != nil {
		return Dashboard{}, err
	}

	incomplete, err := svc.repo.QueryProgress(ctx, ProgressFilter{UserID: userID, Completed: &completedFalse}, incompleteOrdering)
	if err != nil {
		return Dashboard{}, errors.Wrap(err, "querying incomplete modules")
	}
	completed, err := svc.repo.QueryProgress(ctx, ProgressFilter{UserID: userID, Completed: &completedTrue}, completedOrdering)
	if err != nil {
		return Dashboard{}, errors.Wrap(err, "querying completed modules")
	}
	return Dashboard{Incomplete: incomplete, Completed: completed}, nil
}

// SubmitAnswer grades answer against the module's quiz.
// A correct answer completes (or re-stamps) the Progress; a wrong one returns an *IncorrectAnswerError and changes nothing.
func (svc *Service) SubmitAnswer(ctx context.Context, userID, moduleID int, answer string) (Progress, error) {
	mod, err := svc.repo.GetModule(ctx, moduleID)
	if err != nil {
		return Progress{}, err
	}
	if !mod.CheckAnswer(answer) {
		return Progress{}, &IncorrectAnswerError{Module: mod}
	}

	prog, err := svc.repo.CompleteProgress(ctx, userID, moduleID, nowFunc().UTC())
	if err != nil {
		return Progress{}, errors.Wrap(err, "completing progress")
	}
	return prog, nil
}

// GetUserReport returns the user's completed and/or incomplete modules depending on view.
// ordering overrides the default dashboard ordering of both lists. Orderings on unknown fields are ignored.
func (svc *Service) GetUserReport(ctx context.Context, userID int, view ReportView, ordering []core.DBOrdering) (Report, error) {
	ordering = knownOrdering(ordering)
	report := Report{
		UserID:     userID,
		View:       view,
		Completed:  []ModuleProgress{},
		Incomplete: []ModuleProgress{},
	}

	var err error
	if view.IncludesCompleted() {
		ord := completedOrdering
		if len(ordering) > 0 {
			ord = ordering
		}
		report.Completed, err = svc.repo.QueryProgress(ctx, ProgressFilter{UserID: userID, Completed: &completedTrue}, ord)
		if err != nil {
			return Report{}, errors.Wrap(err, "querying completed modules")
		}
	}
	if view.IncludesIncomplete() {
		ord := incompleteOrdering
		if len(ordering) > 0 {
			ord = ordering
		}
		report.Incomplete, err = svc.repo.QueryProgress(ctx, ProgressFilter{UserID: userID, Completed: &completedFalse}, ord)
		if err != nil {
			return Report{}, errors.Wrap(err, "querying incomplete modules")
		}
	}
	return report, nil
}

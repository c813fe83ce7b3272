package training

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mafunzo/core"
)

// Module is a training unit gated by a single-question quiz.
type Module struct {
	ID        int       `db:"id"`
	Title     string    `db:"title"`
	Duration  string    `db:"duration"`
	Question  string    `db:"quiz_question"`
	Answer    string    `db:"quiz_answer"`
	CreatedAt time.Time `db:"created_at"` // UTC
}

// CheckAnswer compares answer to the stored one, ignoring case and surrounding whitespace.
func (m Module) CheckAnswer(answer string) bool {
	return core.CleanString(answer, true /* lower */) == core.CleanString(m.Answer, true /* lower */)
}

// NewModule contains information needed to create a new Module.
type NewModule struct {
	Title    string `form:"title" validate:"required,max=200"`
	Duration string `form:"duration" validate:"required,duration"`
	Question string `form:"question" validate:"required"`
	Answer   string `form:"answer" validate:"required"`
}

func (nm *NewModule) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	nm.Title = core.CleanString(nm.Title)
	nm.Duration = core.CleanString(nm.Duration)
	nm.Question = core.CleanString(nm.Question)
	nm.Answer = core.CleanString(nm.Answer)

	if err := validate.Struct(nm); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, nm.Title)
}

// Progress is the completion state of one module for one user.
// Pending: Completed=false, CompletedAt=null. Completed: Completed=true, CompletedAt set.
type Progress struct {
	UserID      int       `db:"user_id"`
	ModuleID    int       `db:"module_id"`
	Completed   bool      `db:"completed"`
	CompletedAt null.Time `db:"completed_at"` // UTC
}

// ModuleProgress is a Module joined with a user's effective Progress.
type ModuleProgress struct {
	Module
	Completed   bool      `db:"completed"`
	CompletedAt null.Time `db:"completed_at"` // UTC
}

type Dashboard struct {
	Incomplete []ModuleProgress
	Completed  []ModuleProgress
}

type ReportView string

const (
	ViewIncomplete ReportView = "incomplete"
	ViewCompleted  ReportView = "completed"
	ViewAll        ReportView = "all"
)

// ParseReportView maps s to a ReportView. Unknown values fall back to ViewIncomplete.
func ParseReportView(s string) ReportView {
	switch v := ReportView(core.CleanString(s, true /* lower */)); v {
	case ViewCompleted, ViewAll:
		return v
	default:
		return ViewIncomplete
	}
}

func (v ReportView) IncludesCompleted() bool  { return v == ViewCompleted || v == ViewAll }
func (v ReportView) IncludesIncomplete() bool { return v == ViewIncomplete || v == ViewAll }

type Report struct {
	UserID     int
	View       ReportView
	Completed  []ModuleProgress
	Incomplete []ModuleProgress
}

// ProgressFilter selects rows of the effective progress view.
type ProgressFilter struct {
	UserID    int
	Completed *bool
}

// IncorrectAnswerError is returned by Service.SubmitAnswer when the answer does not match.
// It carries the Module so the quiz can be shown again.
type IncorrectAnswerError struct {
	Module Module
}

func (err *IncorrectAnswerError) Error() string {
	return ErrIncorrectAnswer.Error()
}

func (err *IncorrectAnswerError) Unwrap() error {
	return ErrIncorrectAnswer
}

// orderable fields of the effective progress view
var progressOrderFields = map[string]string{
	"title":        "m.title",
	"created_at":   "m.created_at",
	"completed_at": "p.completed_at",
}

// knownOrdering drops orderings on unknown fields, leaving the field names unqualified.
func knownOrdering(ordering []core.DBOrdering) []core.DBOrdering {
	known := make([]core.DBOrdering, 0, len(ordering))
	for _, ord := range ordering {
		field := strings.ToLower(ord.Field)
		if _, ok := progressOrderFields[field]; ok {
			known = append(known, core.DBOrdering{Field: field, Ascending: ord.Ascending})
		}
	}
	return known
}

// CleanOrdering drops orderings on unknown fields and qualifies the known ones.
func CleanOrdering(ordering []core.DBOrdering) []core.DBOrdering {
	cleaned := make([]core.DBOrdering, 0, len(ordering))
	for _, ord := range ordering {
		if col, ok := progressOrderFields[strings.ToLower(ord.Field)]; ok {
			cleaned = append(cleaned, core.DBOrdering{Field: col, Ascending: ord.Ascending})
		}
	}
	return cleaned
}

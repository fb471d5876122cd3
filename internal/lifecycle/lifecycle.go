// Package lifecycle validates and applies task changes. Any status may move
// to any other status; what is controlled is the pair of completion fields,
// which must be present exactly when the task is completed.
//
// Every Apply function works on a copy and only writes the task back when
// all checks pass.
package lifecycle

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"task-management/internal/apperror"
	"task-management/internal/models"
)

const (
	FieldTitle            = "title"
	FieldDescription      = "description"
	FieldAssignedTo       = "assigned_to"
	FieldDueDate          = "due_date"
	FieldStatus           = "status"
	FieldCompletionReport = "completion_report"
	FieldWorkedHours      = "worked_hours"
)

// Worked hours are stored as NUMERIC(5,2).
var maxWorkedHours = decimal.RequireFromString("999.99")

// ErrReportNotAvailable is returned when a report is requested for a task
// that is not completed.
var ErrReportNotAvailable = apperror.NewInvalidState("Task report is only available for completed tasks.")

// UserUpdate is everything a user may change on their own task. Nil fields
// are left as they are.
type UserUpdate struct {
	Status           *models.Status
	CompletionReport *string
	WorkedHours      *decimal.Decimal
}

// AdminUpdate is everything an admin may change on a task in their scope.
// The completion fields are only consulted when the resulting status is
// completed.
type AdminUpdate struct {
	Title            *string
	Description      *string
	AssignedTo       *int64
	DueDate          *models.Date
	Status           *models.Status
	CompletionReport *string
	WorkedHours      *decimal.Decimal
}

type fieldErrors map[string]string

func (fe fieldErrors) err() error {
	if len(fe) == 0 {
		return nil
	}
	return apperror.NewValidation(fe)
}

// ApplyUserUpdate applies a user's update to task.
func ApplyUserUpdate(task *models.Task, u UserUpdate) error {
	next := *task
	errs := fieldErrors{}
	checkStatus(errs, u.Status)
	if len(errs) == 0 {
		resolveCompletion(errs, &next, u.Status, u.CompletionReport, u.WorkedHours)
	}
	if err := errs.err(); err != nil {
		return err
	}
	*task = next
	return nil
}

// ApplyAdminUpdate applies an admin's edit to task. A new assignee must have
// been checked with CheckAssignee beforehand.
func ApplyAdminUpdate(task *models.Task, u AdminUpdate) error {
	next := *task
	errs := fieldErrors{}
	if u.Title != nil {
		if strings.TrimSpace(*u.Title) == "" {
			errs[FieldTitle] = "This field may not be blank."
		} else {
			next.Title = *u.Title
		}
	}
	if u.Description != nil {
		if strings.TrimSpace(*u.Description) == "" {
			errs[FieldDescription] = "This field may not be blank."
		} else {
			next.Description = *u.Description
		}
	}
	if u.AssignedTo != nil {
		if next.AssignedTo != *u.AssignedTo {
			next.AssignedToUsername = ""
			next.AssigneeAdminID = nil
		}
		next.AssignedTo = *u.AssignedTo
	}
	if u.DueDate != nil {
		if u.DueDate.IsZero() {
			errs[FieldDueDate] = "This field is required."
		} else {
			next.DueDate = *u.DueDate
		}
	}
	checkStatus(errs, u.Status)
	if _, bad := errs[FieldStatus]; !bad {
		resolveCompletion(errs, &next, u.Status, u.CompletionReport, u.WorkedHours)
	}
	if err := errs.err(); err != nil {
		return err
	}
	*task = next
	return nil
}

// NewTask builds a task created by creator from an admin's input. Title,
// description, assignee and due date are required; status defaults to
// pending.
func NewTask(creator *models.Account, u AdminUpdate) (*models.Task, error) {
	errs := fieldErrors{}
	if u.Title == nil {
		errs[FieldTitle] = "This field is required."
	}
	if u.Description == nil {
		errs[FieldDescription] = "This field is required."
	}
	if u.AssignedTo == nil {
		errs[FieldAssignedTo] = "This field is required."
	}
	if u.DueDate == nil {
		errs[FieldDueDate] = "This field is required."
	}
	task := &models.Task{Status: models.StatusPending}
	if creator != nil {
		task.CreatedBy = &creator.ID
	}
	if err := ApplyAdminUpdate(task, u); err != nil {
		for k, v := range apperror.Fields(err) {
			if _, ok := errs[k]; !ok {
				errs[k] = v
			}
		}
	}
	if err := errs.err(); err != nil {
		return nil, err
	}
	return task, nil
}

// CheckAssignee rejects candidates that are not users assigned to admin.
func CheckAssignee(admin, candidate *models.Account) error {
	if candidate == nil || !candidate.IsUser() || admin == nil ||
		candidate.AssignedToAdmin == nil || *candidate.AssignedToAdmin != admin.ID {
		return apperror.FieldError(FieldAssignedTo, "Select a valid user assigned to you.")
	}
	return nil
}

// Report returns the completion report of task. assignee supplies the
// contact fields and may be nil.
func Report(task *models.Task, assignee *models.Account) (*models.TaskReport, error) {
	if task.Status != models.StatusCompleted || task.CompletionReport == nil || task.WorkedHours == nil {
		return nil, ErrReportNotAvailable
	}
	r := &models.TaskReport{
		ID:                 task.ID,
		Title:              task.Title,
		Description:        task.Description,
		AssignedToUsername: task.AssignedToUsername,
		DueDate:            task.DueDate,
		Status:             task.Status,
		CompletionReport:   *task.CompletionReport,
		WorkedHours:        *task.WorkedHours,
		CreatedAt:          task.CreatedAt,
		UpdatedAt:          task.UpdatedAt,
	}
	if assignee != nil {
		r.AssignedToUsername = assignee.Username
		r.AssignedToEmail = assignee.Email
	}
	return r, nil
}

// Consistent reports whether the completion fields of t agree with its
// status.
func Consistent(t *models.Task) bool {
	hasArtifacts := t.CompletionReport != nil && strings.TrimSpace(*t.CompletionReport) != "" &&
		t.WorkedHours != nil && t.WorkedHours.IsPositive()
	if t.Status == models.StatusCompleted {
		return hasArtifacts
	}
	return t.CompletionReport == nil && t.WorkedHours == nil
}

func checkStatus(errs fieldErrors, s *models.Status) {
	if s != nil && !s.Valid() {
		errs[FieldStatus] = fmt.Sprintf("%q is not a valid choice.", string(*s))
	}
}

// resolveCompletion settles the completion fields of next for the resulting
// status. Values supplied for a non-completed result are discarded.
func resolveCompletion(errs fieldErrors, next *models.Task, status *models.Status, report *string, hours *decimal.Decimal) {
	if status != nil {
		next.Status = *status
	}
	if next.Status != models.StatusCompleted {
		next.CompletionReport = nil
		next.WorkedHours = nil
		return
	}
	if report != nil {
		next.CompletionReport = report
	}
	if hours != nil {
		next.WorkedHours = hours
	}
	if next.CompletionReport == nil || strings.TrimSpace(*next.CompletionReport) == "" {
		errs[FieldCompletionReport] = "Completion report is required when marking task as completed."
	}
	switch h := next.WorkedHours; {
	case h == nil:
		errs[FieldWorkedHours] = "Worked hours are required when marking task as completed."
	case !h.IsPositive():
		errs[FieldWorkedHours] = "Worked hours must be greater than 0."
	case h.GreaterThan(maxWorkedHours):
		errs[FieldWorkedHours] = "Ensure that there are no more than 5 digits in total."
	case h.Exponent() < -2 && !h.Equal(h.Round(2)):
		errs[FieldWorkedHours] = "Ensure that there are no more than 2 decimal places."
	}
}

package services

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domainagg "github.com/gcfisi/coursehub-backend/internal/domain/aggregates"
)

var (
	ErrStructureExists    = domainagg.Sentinel(domainagg.CodeConflict, "structure_exists", "course already has a structure")
	ErrDuplicateStructure = domainagg.Sentinel(domainagg.CodeConflict, "duplicate_structure", "structure was created concurrently")
	ErrResetNotConverged  = domainagg.Sentinel(domainagg.CodePreconditionFailed, "reset_not_converged", "structure still present after repeated deletes; manual cleanup required")
	ErrResetInProgress    = domainagg.Sentinel(domainagg.CodeConflict, "reset_in_progress", "another structure reset is running for this course")
	ErrInvalidTransition  = domainagg.Sentinel(domainagg.CodeInvariantViolation, "invalid_transition", "resource has already been reviewed")
	ErrResourcesAttached  = domainagg.Sentinel(domainagg.CodeConflict, "resources_attached", "structure node still has resources attached")
	ErrCourseCodeTaken    = domainagg.Sentinel(domainagg.CodeConflict, "course_code_taken", "a course with this code already exists")
)

func storeErr(op string, err error) error {
	return domainagg.Wrap(domainagg.CodeRetryable, op, err)
}

func validationErr(op, msg string) error {
	return domainagg.NewError(domainagg.CodeValidation, op, msg, nil)
}

func notFoundErr(op, msg string) error {
	return domainagg.NewError(domainagg.CodeNotFound, op, msg, nil)
}

func forbiddenErr(op, msg string) error {
	return domainagg.NewError(domainagg.CodeForbidden, op, msg, nil)
}

// isUniqueViolation recognizes duplicate-key failures from either store driver,
// falling back to the error text for wrapped or untranslated errors.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}

// outcomeOf labels an operation result for metrics.
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case domainagg.ReasonOf(err) != "":
		return domainagg.ReasonOf(err)
	case domainagg.CodeOf(err) != "":
		return string(domainagg.CodeOf(err))
	}
	return "error"
}

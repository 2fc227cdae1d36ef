package school

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/sqoolify/sqoolify/core"
	"github.com/sqoolify/sqoolify/core/importer"
)

var (
	// errors
	ErrStudentExists = errors.New("a student with this email or admission number already exists")
	ErrTeacherExists = errors.New("a teacher with this email already exists")
	ErrGuardianExists = errors.New("a guardian with this email already exists")
	ErrClassExists   = errors.New("a class with this name and section already exists")
	ErrSubjectExists = errors.New("a subject with this code already exists")
)

type (
	Repository interface {
		CreateStudent(s Student) (Student, error)
		CreateTeacher(t Teacher) (Teacher, error)
		CreateGuardian(g Guardian) (Guardian, error)
		CreateClass(c Class) (Class, error)
		CreateSubject(s Subject) (Subject, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Acceptor returns the batch acceptor for an import type. Rows are
// applied one by one; a row that the repository rejects counts as a
// failure in the outcome and never aborts the rest of the batch.
func (svc *Service) Acceptor(typ ImportType) (importer.Acceptor, error) {
	switch typ {
	case ImportStudents:
		return importer.AcceptorFunc(svc.submitStudents), nil
	case ImportTeachers:
		return importer.AcceptorFunc(svc.submitTeachers), nil
	case ImportGuardians:
		return importer.AcceptorFunc(svc.submitGuardians), nil
	case ImportClasses:
		return importer.AcceptorFunc(svc.submitClasses), nil
	case ImportSubjects:
		return importer.AcceptorFunc(svc.submitSubjects), nil
	}
	return nil, ErrUnknownImportType
}

func (svc *Service) submitStudents(ctx context.Context, rows []importer.Row) (importer.Outcome, error) {
	return submitRows(ctx, rows, func(r importer.Row, now time.Time) error {
		_, err := svc.repo.CreateStudent(Student{
			ID:            uuid.New().String(),
			FirstName:     core.CleanString(r["first_name"]),
			LastName:      core.CleanString(r["last_name"]),
			Email:         core.CleanString(r["email"], true /* lower */),
			AdmissionNo:   core.CleanString(r["admission_no"]),
			ClassName:     core.CleanString(r["class_name"]),
			GuardianEmail: core.CleanString(r["guardian_email"], true /* lower */),
			CreatedAt:     now,
		})
		return err
	})
}

func (svc *Service) submitTeachers(ctx context.Context, rows []importer.Row) (importer.Outcome, error) {
	return submitRows(ctx, rows, func(r importer.Row, now time.Time) error {
		_, err := svc.repo.CreateTeacher(Teacher{
			ID:        uuid.New().String(),
			FirstName: core.CleanString(r["first_name"]),
			LastName:  core.CleanString(r["last_name"]),
			Email:     core.CleanString(r["email"], true /* lower */),
			Phone:     core.CleanString(r["phone"]),
			Subject:   core.CleanString(r["subject"]),
			CreatedAt: now,
		})
		return err
	})
}

func (svc *Service) submitGuardians(ctx context.Context, rows []importer.Row) (importer.Outcome, error) {
	return submitRows(ctx, rows, func(r importer.Row, now time.Time) error {
		_, err := svc.repo.CreateGuardian(Guardian{
			ID:        uuid.New().String(),
			FirstName: core.CleanString(r["first_name"]),
			LastName:  core.CleanString(r["last_name"]),
			Email:     core.CleanString(r["email"], true /* lower */),
			Phone:     core.CleanString(r["phone"]),
			CreatedAt: now,
		})
		return err
	})
}

func (svc *Service) submitClasses(ctx context.Context, rows []importer.Row) (importer.Outcome, error) {
	return submitRows(ctx, rows, func(r importer.Row, now time.Time) error {
		_, err := svc.repo.CreateClass(Class{
			ID:        uuid.New().String(),
			Name:      core.CleanString(r["name"]),
			Section:   core.CleanString(r["section"]),
			CreatedAt: now,
		})
		return err
	})
}

func (svc *Service) submitSubjects(ctx context.Context, rows []importer.Row) (importer.Outcome, error) {
	return submitRows(ctx, rows, func(r importer.Row, now time.Time) error {
		_, err := svc.repo.CreateSubject(Subject{
			ID:        uuid.New().String(),
			Name:      core.CleanString(r["name"]),
			Code:      core.CleanString(r["code"]),
			CreatedAt: now,
		})
		return err
	})
}

// submitRows applies a batch row by row, accumulating the aggregate
// outcome. Only a context cancellation aborts the loop.
func submitRows(ctx context.Context, rows []importer.Row, apply func(importer.Row, time.Time) error) (importer.Outcome, error) {
	var outcome importer.Outcome
	now := time.Now().UTC()
	for i, r := range rows {
		if err := ctx.Err(); err != nil {
			return importer.Outcome{}, err
		}
		if err := apply(r, now); err != nil {
			outcome.FailureCount++
			outcome.Errors = append(outcome.Errors, fmt.Sprintf("row %d: %v", importer.FileRowNum(i), err))
			continue
		}
		outcome.SuccessCount++
	}
	return outcome, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/rci-portal-api/internal/dto"
	"github.com/noah-isme/rci-portal-api/internal/models"
	"github.com/noah-isme/rci-portal-api/internal/repository"
	"github.com/noah-isme/rci-portal-api/internal/testutil"
)

type enrollmentFixture struct {
	db      *gorm.DB
	svc     EnrollmentService
	program *models.Program
	curr    *models.Curriculum
}

func newEnrollmentFixture(t *testing.T) enrollmentFixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svc := NewEnrollmentService(
		repository.NewEnrollmentRepository(db),
		repository.NewSectionRepository(db),
		repository.NewSubjectRepository(db),
		repository.NewGradeRepository(db),
		repository.NewStudentRepository(db),
		testValidator(),
		testLogger(),
	)
	program := testutil.CreateProgram(t, db)
	return enrollmentFixture{db: db, svc: svc, program: program, curr: testutil.CreateCurriculum(t, db, program)}
}

func requireEnrollmentRejection(t *testing.T, err error, reason, message string) {
	t.Helper()
	var validationErr *EnrollmentValidationError
	require.True(t, errors.As(err, &validationErr), "expected EnrollmentValidationError, got %v", err)
	require.Equal(t, reason, validationErr.Reason)
	require.Equal(t, message, validationErr.Error())
}

func TestEnrollmentServicePrerequisitesThenDuplicate(t *testing.T) {
	f := newEnrollmentFixture(t)
	ctx := context.Background()
	registrar := Actor{ID: "registrar-1", Role: models.RoleRegistrar}

	cs100 := testutil.CreateSubject(t, f.db, f.curr, "CS100")
	math100 := testutil.CreateSubject(t, f.db, f.curr, "MATH100")
	is101 := testutil.CreateSubject(t, f.db, f.curr, "IS101", cs100.ID, math100.ID)
	section := testutil.CreateSection(t, f.db, is101, "2024-1", nil)
	student := testutil.CreateStudent(t, f.db, f.program)

	req := dto.EnrollmentRequest{StudentID: student.ID, SectionID: section.ID, Term: "2024-1"}

	_, err := f.svc.Enroll(ctx, registrar, req)
	requireEnrollmentRejection(t, err, RejectPrerequisite, "Prerequisite not met: CS100 - Subject CS100")

	csSection := testutil.CreateSection(t, f.db, cs100, "2023-2", nil)
	testutil.CreateGrade(t, f.db, student, csSection, models.GradeStatusPassed)

	_, err = f.svc.Enroll(ctx, registrar, req)
	requireEnrollmentRejection(t, err, RejectPrerequisite, "Prerequisite not met: MATH100 - Subject MATH100")

	mathSection := testutil.CreateSection(t, f.db, math100, "2023-2", nil)
	testutil.CreateGrade(t, f.db, student, mathSection, models.GradeStatusPassed)

	created, err := f.svc.Enroll(ctx, registrar, req)
	require.NoError(t, err)
	require.Equal(t, models.EnrollmentStatusPending, created.Status)
	require.Equal(t, "2024-1", created.Term)
	require.NotEmpty(t, created.ID)

	_, err = f.svc.Enroll(ctx, registrar, req)
	requireEnrollmentRejection(t, err, RejectDuplicate, DuplicateEnrollmentMessage)

	req.Term = "2024-2"
	other, err := f.svc.Enroll(ctx, registrar, req)
	require.NoError(t, err)
	require.NotEqual(t, created.ID, other.ID)

	var count int64
	require.NoError(t, f.db.Model(&models.Enrollment{}).Where("student_id = ?", student.ID).Count(&count).Error)
	require.Equal(t, int64(2), count)
}

func TestEnrollmentServiceFailedOrIncompleteGradeDoesNotSatisfyPrerequisite(t *testing.T) {
	f := newEnrollmentFixture(t)
	ctx := context.Background()

	base := testutil.CreateSubject(t, f.db, f.curr, "ENG100")
	advanced := testutil.CreateSubject(t, f.db, f.curr, "ENG200", base.ID)
	section := testutil.CreateSection(t, f.db, advanced, "2024-1", nil)
	student := testutil.CreateStudent(t, f.db, f.program)

	first := testutil.CreateSection(t, f.db, base, "2023-1", nil)
	second := testutil.CreateSection(t, f.db, base, "2023-2", nil)
	testutil.CreateGrade(t, f.db, student, first, models.GradeStatusFailed)
	testutil.CreateGrade(t, f.db, student, second, models.GradeStatusIncomplete)

	err := f.svc.Validate(ctx, student.ID, section.ID, "2024-1")
	requireEnrollmentRejection(t, err, RejectPrerequisite, "Prerequisite not met: ENG100 - Subject ENG100")

	third := testutil.CreateSection(t, f.db, base, "2024-0", nil)
	testutil.CreateGrade(t, f.db, student, third, models.GradeStatusPassed)
	require.NoError(t, f.svc.Validate(ctx, student.ID, section.ID, "2024-1"))
}

func TestEnrollmentServiceKeepsSuppliedStatus(t *testing.T) {
	f := newEnrollmentFixture(t)
	subject := testutil.CreateSubject(t, f.db, f.curr, "PE101")
	section := testutil.CreateSection(t, f.db, subject, "2024-1", nil)
	student := testutil.CreateStudent(t, f.db, f.program)

	created, err := f.svc.Enroll(context.Background(), Actor{ID: "admin", Role: models.RoleAdmin}, dto.EnrollmentRequest{
		StudentID: student.ID,
		SectionID: section.ID,
		Term:      "2024-1",
		Status:    models.EnrollmentStatusEnrolled,
	})
	require.NoError(t, err)
	require.Equal(t, models.EnrollmentStatusEnrolled, created.Status)
}

func TestEnrollmentServiceStudentsOnlyEnrollThemselves(t *testing.T) {
	f := newEnrollmentFixture(t)
	ctx := context.Background()
	subject := testutil.CreateSubject(t, f.db, f.curr, "NSTP1")
	section := testutil.CreateSection(t, f.db, subject, "2024-1", nil)
	me := testutil.CreateStudent(t, f.db, f.program)
	someoneElse := testutil.CreateStudent(t, f.db, f.program)

	actor := Actor{ID: me.UserID, Role: models.RoleStudent}
	_, err := f.svc.Enroll(ctx, actor, dto.EnrollmentRequest{StudentID: someoneElse.ID, SectionID: section.ID, Term: "2024-1"})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Enroll(ctx, actor, dto.EnrollmentRequest{StudentID: me.ID, SectionID: section.ID, Term: "2024-1"})
	require.NoError(t, err)

	list, err := f.svc.List(ctx, actor, dto.EnrollmentListRequest{StudentID: someoneElse.ID})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	require.Equal(t, me.ID, list.Items[0].StudentID)
}

func TestEnrollmentServiceUnknownSection(t *testing.T) {
	f := newEnrollmentFixture(t)
	student := testutil.CreateStudent(t, f.db, f.program)

	_, err := f.svc.Enroll(context.Background(), Actor{Role: models.RoleAdmin}, dto.EnrollmentRequest{
		StudentID: student.ID,
		SectionID: "0b9c7c58-0f5e-4a4e-9d7e-1f1f1f1f1f1f",
		Term:      "2024-1",
	})
	require.ErrorIs(t, err, ErrSectionNotFound)
}

// racingEnrollments reports no existing enrollment, as a concurrent request
// that checked before the competing insert committed would see.
type racingEnrollments struct {
	repository.EnrollmentRepository
	createErr error
}

func (r racingEnrollments) Exists(context.Context, string, string, string) (bool, error) {
	return false, nil
}

func (r racingEnrollments) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if r.createErr != nil {
		return r.createErr
	}
	return r.EnrollmentRepository.Create(ctx, enrollment)
}

func TestEnrollmentServiceUniqueViolationReportsDuplicate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	program := testutil.CreateProgram(t, db)
	curriculum := testutil.CreateCurriculum(t, db, program)
	section := testutil.CreateSection(t, db, testutil.CreateSubject(t, db, curriculum, "IT101"), "2024-1", nil)
	student := testutil.CreateStudent(t, db, program)
	registrar := Actor{ID: "registrar-1", Role: models.RoleRegistrar}
	req := dto.EnrollmentRequest{StudentID: student.ID, SectionID: section.ID, Term: "2024-1"}

	newService := func(enrollments repository.EnrollmentRepository) EnrollmentService {
		return NewEnrollmentService(
			enrollments,
			repository.NewSectionRepository(db),
			repository.NewSubjectRepository(db),
			repository.NewGradeRepository(db),
			repository.NewStudentRepository(db),
			testValidator(),
			testLogger(),
		)
	}

	t.Run("translated driver error", func(t *testing.T) {
		svc := newService(racingEnrollments{createErr: fmt.Errorf("insert enrollment: %w", gorm.ErrDuplicatedKey)})
		_, err := svc.Enroll(context.Background(), registrar, req)
		requireEnrollmentRejection(t, err, RejectDuplicate, DuplicateEnrollmentMessage)
	})

	t.Run("unique index", func(t *testing.T) {
		enrollments := repository.NewEnrollmentRepository(db)
		_, err := newService(enrollments).Enroll(context.Background(), registrar, req)
		require.NoError(t, err)

		_, err = newService(racingEnrollments{EnrollmentRepository: enrollments}).Enroll(context.Background(), registrar, req)
		requireEnrollmentRejection(t, err, RejectDuplicate, DuplicateEnrollmentMessage)

		var count int64
		require.NoError(t, db.Model(&models.Enrollment{}).Count(&count).Error)
		require.EqualValues(t, 1, count)
	})
}

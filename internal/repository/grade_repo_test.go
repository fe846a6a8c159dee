package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/rci-portal-api/internal/models"
	"github.com/noah-isme/rci-portal-api/internal/testutil"
)

func TestGradeRepositoryHasPassed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewGradeRepository(db)
	ctx := context.Background()

	program := testutil.CreateProgram(t, db)
	curriculum := testutil.CreateCurriculum(t, db, program)
	passedSubject := testutil.CreateSubject(t, db, curriculum, "MATH1")
	failedSubject := testutil.CreateSubject(t, db, curriculum, "MATH2")
	passedSection := testutil.CreateSection(t, db, passedSubject, "2023-2", nil)
	failedSection := testutil.CreateSection(t, db, failedSubject, "2023-2", nil)
	student := testutil.CreateStudent(t, db, program)

	testutil.CreateGrade(t, db, student, passedSection, models.GradeStatusPassed)
	testutil.CreateGrade(t, db, student, failedSection, models.GradeStatusFailed)

	ok, err := repo.HasPassed(ctx, student.ID, passedSubject.ID)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.HasPassed(ctx, student.ID, failedSubject.ID)
	require.NoError(t, err)
	require.False(t, ok)

	grades, total, err := repo.List(ctx, GradeFilter{StudentID: student.ID, Status: models.GradeStatusFailed})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "MATH2", grades[0].Subject.Code)
}

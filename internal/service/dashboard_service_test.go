package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/rci-portal-api/internal/dto"
	"github.com/noah-isme/rci-portal-api/internal/models"
	"github.com/noah-isme/rci-portal-api/internal/repository"
	"github.com/noah-isme/rci-portal-api/internal/testutil"
)

func TestDashboardServiceCaching(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	db := testutil.SetupTestDB(t)
	program := testutil.CreateProgram(t, db)
	curriculum := testutil.CreateCurriculum(t, db, program)
	subject := testutil.CreateSubject(t, db, curriculum, "IT101")
	section := testutil.CreateSection(t, db, subject, "2024-1", nil)
	first := testutil.CreateStudent(t, db, program)
	second := testutil.CreateStudent(t, db, program)
	require.NoError(t, db.Model(&models.Student{}).Where("id = ?", second.ID).Update("status", models.StudentStatusGraduated).Error)
	require.NoError(t, db.Create(&models.Enrollment{StudentID: first.ID, SectionID: section.ID, Term: "2024-1"}).Error)
	require.NoError(t, db.Create(&models.Application{ApplicantName: "Ana", Email: "ana@rci.test", ProgramID: program.ID}).Error)

	svc := NewDashboardService(
		repository.NewStudentRepository(db),
		repository.NewEnrollmentRepository(db),
		repository.NewApplicationRepository(db),
		client,
		time.Minute,
		testLogger(),
	)

	summary, err := svc.Summary(context.Background(), dto.DashboardSummaryRequest{Term: "2024-1"})
	require.NoError(t, err)
	require.False(t, summary.CacheHit)
	require.Equal(t, int64(2), summary.TotalStudents)
	require.Equal(t, int64(1), summary.StudentsByStatus[models.StudentStatusGraduated])
	require.Equal(t, int64(0), summary.StudentsByStatus[models.StudentStatusDropped])
	require.Equal(t, int64(1), summary.EnrollmentsByStatus[models.EnrollmentStatusPending])
	require.Equal(t, int64(1), summary.PendingApplications)
	require.True(t, server.Exists("dashboard:summary:2024-1"))

	cached, err := svc.Summary(context.Background(), dto.DashboardSummaryRequest{Term: "2024-1"})
	require.NoError(t, err)
	require.True(t, cached.CacheHit)
	require.Equal(t, summary.TotalStudents, cached.TotalStudents)

	other, err := svc.Summary(context.Background(), dto.DashboardSummaryRequest{Term: "2024-2"})
	require.NoError(t, err)
	require.False(t, other.CacheHit)
	require.Equal(t, int64(0), other.EnrollmentsByStatus[models.EnrollmentStatusPending])
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/rci-portal-api/internal/dto"
	"github.com/noah-isme/rci-portal-api/internal/models"
	"github.com/noah-isme/rci-portal-api/internal/observability"
	"github.com/noah-isme/rci-portal-api/internal/repository"
)

// DashboardService aggregates registrar dashboard figures.
type DashboardService interface {
	Summary(ctx context.Context, req dto.DashboardSummaryRequest) (dto.DashboardSummaryResponse, error)
}

type dashboardService struct {
	students     repository.StudentRepository
	enrollments  repository.EnrollmentRepository
	applications repository.ApplicationRepository
	cache        *redis.Client
	cacheTTL     time.Duration
	logger       zerolog.Logger
	now          func() time.Time
}

// NewDashboardService constructs the dashboard service. cache may be nil.
func NewDashboardService(
	students repository.StudentRepository,
	enrollments repository.EnrollmentRepository,
	applications repository.ApplicationRepository,
	cache *redis.Client,
	ttl time.Duration,
	logger zerolog.Logger,
) DashboardService {
	return &dashboardService{
		students:     students,
		enrollments:  enrollments,
		applications: applications,
		cache:        cache,
		cacheTTL:     ttl,
		logger:       logger.With().Str("component", "dashboard_service").Logger(),
		now:          time.Now,
	}
}

func dashboardCacheKey(term string) string {
	if term == "" {
		return "dashboard:summary:all"
	}
	return "dashboard:summary:" + term
}

func (s *dashboardService) Summary(ctx context.Context, req dto.DashboardSummaryRequest) (dto.DashboardSummaryResponse, error) {
	term := strings.TrimSpace(req.Term)
	cacheKey := dashboardCacheKey(term)
	tracer := otel.Tracer("github.com/noah-isme/rci-portal-api/internal/service/dashboard")
	ctx, span := tracer.Start(ctx, "dashboard.aggregate")
	span.SetAttributes(attribute.String("dashboard.cache_key", cacheKey))
	defer span.End()

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey).Result()
		if err == nil {
			var response dto.DashboardSummaryResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				observability.DashboardCacheLookups().WithLabelValues("hit").Inc()
				span.SetAttributes(attribute.Bool("dashboard.cache_hit", true))
				return response, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
			span.RecordError(err)
		}
		observability.DashboardCacheLookups().WithLabelValues("miss").Inc()
	}

	students, err := s.students.CountByStatus(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count_students_failed")
		return dto.DashboardSummaryResponse{}, err
	}

	enrollments, err := s.enrollments.CountByStatus(ctx, term)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count_enrollments_failed")
		return dto.DashboardSummaryResponse{}, err
	}

	pending, err := s.applications.CountByStatus(ctx, models.ApplicationStatusPending)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count_applications_failed")
		return dto.DashboardSummaryResponse{}, err
	}

	summary := dto.DashboardSummaryResponse{
		Term:                term,
		StudentsByStatus:    withStatuses(students, models.StudentStatusEnrolled, models.StudentStatusGraduated, models.StudentStatusDropped, models.StudentStatusLeaveOfAbsence),
		EnrollmentsByStatus: withStatuses(enrollments, models.EnrollmentStatusPending, models.EnrollmentStatusEnrolled, models.EnrollmentStatusDropped),
		PendingApplications: pending,
		GeneratedAt:         s.now().UTC(),
	}
	for _, count := range summary.StudentsByStatus {
		summary.TotalStudents += count
	}
	span.SetAttributes(attribute.Int64("dashboard.total_students", summary.TotalStudents))

	if s.cache != nil {
		payload, err := json.Marshal(summary)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
				span.RecordError(err)
			}
		}
	}

	return summary, nil
}

// withStatuses makes sure every known status appears in the breakdown.
func withStatuses(counts map[string]int64, statuses ...string) map[string]int64 {
	result := make(map[string]int64, len(statuses))
	for _, status := range statuses {
		result[status] = 0
	}
	for status, count := range counts {
		result[status] = count
	}
	return result
}

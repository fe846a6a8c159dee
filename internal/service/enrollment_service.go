package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/rci-portal-api/internal/dto"
	"github.com/noah-isme/rci-portal-api/internal/models"
	"github.com/noah-isme/rci-portal-api/internal/observability"
	"github.com/noah-isme/rci-portal-api/internal/repository"
)

// DuplicateEnrollmentMessage is reported when the (student, section, term) slot is taken.
const DuplicateEnrollmentMessage = "Student is already enrolled in this section for this term"

// Enrollment rejection reasons.
const (
	RejectPrerequisite = "prerequisite"
	RejectDuplicate    = "duplicate"
)

// EnrollmentValidationError is the single error kind for rejected enrollments.
// Reason tells the cases apart; Message is the client-facing text.
type EnrollmentValidationError struct {
	Reason  string
	Message string
}

func (e *EnrollmentValidationError) Error() string {
	return e.Message
}

func prerequisiteNotMet(subject models.Subject) *EnrollmentValidationError {
	return &EnrollmentValidationError{
		Reason:  RejectPrerequisite,
		Message: fmt.Sprintf("Prerequisite not met: %s - %s", subject.Code, subject.Title),
	}
}

func duplicateEnrollment() *EnrollmentValidationError {
	return &EnrollmentValidationError{Reason: RejectDuplicate, Message: DuplicateEnrollmentMessage}
}

// EnrollmentService validates and manages enrollments.
type EnrollmentService interface {
	Validate(ctx context.Context, studentID, sectionID, term string) error
	Enroll(ctx context.Context, actor Actor, payload dto.EnrollmentRequest) (dto.EnrollmentResponse, error)
	List(ctx context.Context, actor Actor, req dto.EnrollmentListRequest) (dto.ListResponse[dto.EnrollmentResponse], error)
	Get(ctx context.Context, actor Actor, id string) (dto.EnrollmentResponse, error)
	Update(ctx context.Context, id string, payload dto.EnrollmentUpdateRequest) (dto.EnrollmentResponse, error)
	Delete(ctx context.Context, id string) error
}

type enrollmentService struct {
	enrollments repository.EnrollmentRepository
	sections    repository.SectionRepository
	subjects    repository.SubjectRepository
	grades      repository.GradeRepository
	students    repository.StudentRepository
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
}

// NewEnrollmentService constructs the enrollment service.
func NewEnrollmentService(
	enrollments repository.EnrollmentRepository,
	sections repository.SectionRepository,
	subjects repository.SubjectRepository,
	grades repository.GradeRepository,
	students repository.StudentRepository,
	validator *validator.Validate,
	logger zerolog.Logger,
) EnrollmentService {
	return &enrollmentService{
		enrollments: enrollments,
		sections:    sections,
		subjects:    subjects,
		grades:      grades,
		students:    students,
		validator:   validator,
		logger:      logger.With().Str("component", "enrollment_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/rci-portal-api/internal/service/enrollment"),
	}
}

// Validate runs the prerequisite check and then the duplicate check. Prerequisites
// are checked in declared order and the first unmet one is reported.
func (s *enrollmentService) Validate(ctx context.Context, studentID, sectionID, term string) error {
	section, err := s.sections.GetByID(ctx, sectionID)
	if err != nil {
		return translateNotFound(err, ErrSectionNotFound)
	}
	return s.validate(ctx, studentID, section, term)
}

func (s *enrollmentService) validate(ctx context.Context, studentID string, section models.Section, term string) error {
	prerequisites := section.Subject.PrerequisiteIDs()
	if len(prerequisites) > 0 {
		known, err := s.subjects.GetByIDs(ctx, prerequisites)
		if err != nil {
			return err
		}
		for _, id := range prerequisites {
			passed, err := s.grades.HasPassed(ctx, studentID, id)
			if err != nil {
				return err
			}
			if passed {
				continue
			}
			subject, ok := known[id]
			if !ok {
				return &EnrollmentValidationError{Reason: RejectPrerequisite, Message: "Prerequisite not met: " + id}
			}
			return prerequisiteNotMet(subject)
		}
	}

	exists, err := s.enrollments.Exists(ctx, studentID, section.ID, term)
	if err != nil {
		return err
	}
	if exists {
		return duplicateEnrollment()
	}
	return nil
}

func (s *enrollmentService) Enroll(ctx context.Context, actor Actor, payload dto.EnrollmentRequest) (dto.EnrollmentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "enrollment.create")
	defer span.End()
	span.SetAttributes(
		attribute.String("enrollment.student_id", payload.StudentID),
		attribute.String("enrollment.section_id", payload.SectionID),
		attribute.String("enrollment.term", payload.Term),
	)

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid payload")
		return dto.EnrollmentResponse{}, err
	}

	student, err := s.students.GetByID(ctx, payload.StudentID)
	if err != nil {
		return dto.EnrollmentResponse{}, translateNotFound(err, ErrStudentNotFound)
	}
	if actor.Is(models.RoleStudent) && student.UserID != actor.ID {
		span.SetStatus(codes.Error, "forbidden")
		return dto.EnrollmentResponse{}, ErrForbidden
	}

	section, err := s.sections.GetByID(ctx, payload.SectionID)
	if err != nil {
		return dto.EnrollmentResponse{}, translateNotFound(err, ErrSectionNotFound)
	}

	term := strings.TrimSpace(payload.Term)
	if err := s.validate(ctx, student.ID, section, term); err != nil {
		s.reject(span, err)
		return dto.EnrollmentResponse{}, err
	}

	enrollment := models.Enrollment{
		StudentID: student.ID,
		SectionID: section.ID,
		Term:      term,
		Status:    payload.Status,
	}
	if enrollment.Status == "" {
		enrollment.Status = models.EnrollmentStatusPending
	}

	if err := s.enrollments.Create(ctx, &enrollment); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			dup := duplicateEnrollment()
			s.reject(span, dup)
			return dto.EnrollmentResponse{}, dup
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		return dto.EnrollmentResponse{}, err
	}

	enrollment.Student = student
	enrollment.Section = section
	span.SetStatus(codes.Ok, "enrolled")
	s.logger.Info().
		Str("enrollment_id", enrollment.ID).
		Str("student_id", student.ID).
		Str("section_id", section.ID).
		Str("term", term).
		Msg("enrollment created")

	return dto.NewEnrollmentResponse(enrollment), nil
}

func (s *enrollmentService) reject(span trace.Span, err error) {
	var validationErr *EnrollmentValidationError
	if errors.As(err, &validationErr) {
		observability.EnrollmentRejections().WithLabelValues(validationErr.Reason).Inc()
		span.SetAttributes(attribute.String("enrollment.rejection", validationErr.Reason))
		span.SetStatus(codes.Error, validationErr.Message)
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, "validation failed")
}

func (s *enrollmentService) List(ctx context.Context, actor Actor, req dto.EnrollmentListRequest) (dto.ListResponse[dto.EnrollmentResponse], error) {
	filter := repository.EnrollmentFilter{
		Page:      req.Page,
		PageSize:  req.PageSize,
		StudentID: strings.TrimSpace(req.StudentID),
		Term:      strings.TrimSpace(req.Term),
		Status:    strings.TrimSpace(req.Status),
	}

	switch {
	case actor.Is(models.RoleStudent):
		student, err := s.students.GetByUserID(ctx, actor.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return emptyList[dto.EnrollmentResponse](req.Page, req.PageSize), nil
			}
			return dto.ListResponse[dto.EnrollmentResponse]{}, err
		}
		filter.StudentID = student.ID
	case actor.Is(models.RoleProfessor):
		filter.ProfessorID = actor.ID
	}

	enrollments, total, err := s.enrollments.List(ctx, filter)
	if err != nil {
		return dto.ListResponse[dto.EnrollmentResponse]{}, err
	}

	items := make([]dto.EnrollmentResponse, 0, len(enrollments))
	for _, enrollment := range enrollments {
		items = append(items, dto.NewEnrollmentResponse(enrollment))
	}

	return dto.ListResponse[dto.EnrollmentResponse]{
		Items:      items,
		Pagination: dto.NewPaginationMeta(req.Page, req.PageSize, total),
	}, nil
}

func (s *enrollmentService) Get(ctx context.Context, actor Actor, id string) (dto.EnrollmentResponse, error) {
	enrollment, err := s.enrollments.GetByID(ctx, id)
	if err != nil {
		return dto.EnrollmentResponse{}, translateNotFound(err, ErrEnrollmentNotFound)
	}
	if actor.Is(models.RoleStudent) && enrollment.Student.UserID != actor.ID {
		return dto.EnrollmentResponse{}, ErrEnrollmentNotFound
	}
	return dto.NewEnrollmentResponse(enrollment), nil
}

func (s *enrollmentService) Update(ctx context.Context, id string, payload dto.EnrollmentUpdateRequest) (dto.EnrollmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.EnrollmentResponse{}, err
	}

	updates := make(map[string]interface{})
	if payload.Status != nil {
		updates["status"] = strings.ToLower(strings.TrimSpace(*payload.Status))
	}

	if _, err := s.enrollments.GetByID(ctx, id); err != nil {
		return dto.EnrollmentResponse{}, translateNotFound(err, ErrEnrollmentNotFound)
	}
	enrollment, err := s.enrollments.Update(ctx, id, updates)
	if err != nil {
		return dto.EnrollmentResponse{}, translateNotFound(err, ErrEnrollmentNotFound)
	}
	return dto.NewEnrollmentResponse(enrollment), nil
}

func (s *enrollmentService) Delete(ctx context.Context, id string) error {
	if err := s.enrollments.Delete(ctx, id); err != nil {
		return translateNotFound(err, ErrEnrollmentNotFound)
	}
	return nil
}

package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/rci-portal-api/internal/dto"
	"github.com/noah-isme/rci-portal-api/internal/models"
	"github.com/noah-isme/rci-portal-api/internal/repository"
)

// ErrUnknownPrerequisite indicates a prerequisite id that matches no subject.
var ErrUnknownPrerequisite = errors.New("prerequisite subject does not exist")

// SubjectService manages subjects and their section offerings.
type SubjectService interface {
	ListSubjects(ctx context.Context, req dto.AcademicListRequest) (dto.ListResponse[dto.SubjectResponse], error)
	GetSubject(ctx context.Context, id string) (dto.SubjectResponse, error)
	CreateSubject(ctx context.Context, payload dto.SubjectRequest) (dto.SubjectResponse, error)
	UpdateSubject(ctx context.Context, id string, payload dto.SubjectUpdateRequest) (dto.SubjectResponse, error)
	DeleteSubject(ctx context.Context, id string) error

	ListSections(ctx context.Context, actor Actor, req dto.AcademicListRequest) (dto.ListResponse[dto.SectionResponse], error)
	GetSection(ctx context.Context, id string) (dto.SectionResponse, error)
	CreateSection(ctx context.Context, payload dto.SectionRequest) (dto.SectionResponse, error)
	UpdateSection(ctx context.Context, id string, payload dto.SectionUpdateRequest) (dto.SectionResponse, error)
	DeleteSection(ctx context.Context, id string) error
}

type subjectService struct {
	subjects  repository.SubjectRepository
	sections  repository.SectionRepository
	curricula repository.CurriculumRepository
	users     repository.UserRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewSubjectService constructs the subject service.
func NewSubjectService(
	subjects repository.SubjectRepository,
	sections repository.SectionRepository,
	curricula repository.CurriculumRepository,
	users repository.UserRepository,
	validator *validator.Validate,
	logger zerolog.Logger,
) SubjectService {
	return &subjectService{
		subjects:  subjects,
		sections:  sections,
		curricula: curricula,
		users:     users,
		validator: validator,
		logger:    logger.With().Str("component", "subject_service").Logger(),
	}
}

func (s *subjectService) ListSubjects(ctx context.Context, req dto.AcademicListRequest) (dto.ListResponse[dto.SubjectResponse], error) {
	subjects, total, err := s.subjects.List(ctx, repository.SubjectFilter{
		Page:         req.Page,
		PageSize:     req.PageSize,
		CurriculumID: strings.TrimSpace(req.CurriculumID),
		Code:         strings.TrimSpace(req.Code),
	})
	if err != nil {
		return dto.ListResponse[dto.SubjectResponse]{}, err
	}

	items := make([]dto.SubjectResponse, 0, len(subjects))
	for _, subject := range subjects {
		items = append(items, dto.NewSubjectResponse(subject))
	}
	return dto.ListResponse[dto.SubjectResponse]{Items: items, Pagination: dto.NewPaginationMeta(req.Page, req.PageSize, total)}, nil
}

func (s *subjectService) GetSubject(ctx context.Context, id string) (dto.SubjectResponse, error) {
	subject, err := s.subjects.GetByID(ctx, id)
	if err != nil {
		return dto.SubjectResponse{}, translateNotFound(err, ErrSubjectNotFound)
	}
	return dto.NewSubjectResponse(subject), nil
}

func (s *subjectService) CreateSubject(ctx context.Context, payload dto.SubjectRequest) (dto.SubjectResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubjectResponse{}, err
	}
	if _, err := s.curricula.GetByID(ctx, payload.CurriculumID); err != nil {
		return dto.SubjectResponse{}, translateNotFound(err, ErrCurriculumNotFound)
	}
	prerequisites, err := s.checkPrerequisites(ctx, "", payload.Prerequisites)
	if err != nil {
		return dto.SubjectResponse{}, err
	}

	subject := models.Subject{
		Code:          strings.ToUpper(strings.TrimSpace(payload.Code)),
		Title:         sanitizeText(payload.Title),
		Units:         payload.Units,
		Prerequisites: prerequisites,
		SyllabusURL:   strings.TrimSpace(payload.SyllabusURL),
		CurriculumID:  payload.CurriculumID,
		Summary:       sanitizeText(payload.Summary),
	}
	if err := s.subjects.Create(ctx, &subject); err != nil {
		return dto.SubjectResponse{}, translateNotFound(err, ErrSubjectNotFound)
	}
	return s.GetSubject(ctx, subject.ID)
}

func (s *subjectService) UpdateSubject(ctx context.Context, id string, payload dto.SubjectUpdateRequest) (dto.SubjectResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubjectResponse{}, err
	}
	if _, err := s.subjects.GetByID(ctx, id); err != nil {
		return dto.SubjectResponse{}, translateNotFound(err, ErrSubjectNotFound)
	}

	updates := make(map[string]interface{})
	if payload.Code != nil {
		updates["code"] = strings.ToUpper(strings.TrimSpace(*payload.Code))
	}
	if payload.Title != nil {
		updates["title"] = sanitizeText(*payload.Title)
	}
	if payload.Units != nil {
		updates["units"] = *payload.Units
	}
	if payload.Prerequisites != nil {
		prerequisites, err := s.checkPrerequisites(ctx, id, *payload.Prerequisites)
		if err != nil {
			return dto.SubjectResponse{}, err
		}
		updates["prerequisites"] = prerequisites
	}
	if payload.SyllabusURL != nil {
		updates["syllabus_url"] = strings.TrimSpace(*payload.SyllabusURL)
	}
	if payload.Summary != nil {
		updates["summary"] = sanitizeText(*payload.Summary)
	}

	subject, err := s.subjects.Update(ctx, id, updates)
	if err != nil {
		return dto.SubjectResponse{}, translateNotFound(err, ErrSubjectNotFound)
	}
	return dto.NewSubjectResponse(subject), nil
}

func (s *subjectService) DeleteSubject(ctx context.Context, id string) error {
	if err := s.subjects.Delete(ctx, id); err != nil {
		return translateNotFound(err, ErrSubjectNotFound)
	}
	return nil
}

// checkPrerequisites keeps the declared order, drops repeats and rejects unknown or self references.
func (s *subjectService) checkPrerequisites(ctx context.Context, self string, ids []string) (datatypes.JSONSlice[string], error) {
	ordered := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || id == self {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ordered = append(ordered, id)
	}

	known, err := s.subjects.GetByIDs(ctx, ordered)
	if err != nil {
		return nil, err
	}
	for _, id := range ordered {
		if _, ok := known[id]; !ok {
			return nil, ErrUnknownPrerequisite
		}
	}
	return datatypes.JSONSlice[string](ordered), nil
}

func (s *subjectService) ListSections(ctx context.Context, actor Actor, req dto.AcademicListRequest) (dto.ListResponse[dto.SectionResponse], error) {
	filter := repository.SectionFilter{
		Page:        req.Page,
		PageSize:    req.PageSize,
		Term:        strings.TrimSpace(req.Term),
		ProfessorID: strings.TrimSpace(req.ProfessorID),
		SubjectID:   strings.TrimSpace(req.SubjectID),
	}
	if actor.Is(models.RoleProfessor) {
		filter.ProfessorID = actor.ID
	}

	sections, total, err := s.sections.List(ctx, filter)
	if err != nil {
		return dto.ListResponse[dto.SectionResponse]{}, err
	}

	ids := make([]string, 0, len(sections))
	for _, section := range sections {
		ids = append(ids, section.ID)
	}
	counts, err := s.sections.CountEnrolled(ctx, ids)
	if err != nil {
		return dto.ListResponse[dto.SectionResponse]{}, err
	}

	items := make([]dto.SectionResponse, 0, len(sections))
	for _, section := range sections {
		items = append(items, dto.NewSectionResponse(section, counts[section.ID]))
	}
	return dto.ListResponse[dto.SectionResponse]{Items: items, Pagination: dto.NewPaginationMeta(req.Page, req.PageSize, total)}, nil
}

func (s *subjectService) GetSection(ctx context.Context, id string) (dto.SectionResponse, error) {
	section, err := s.sections.GetByID(ctx, id)
	if err != nil {
		return dto.SectionResponse{}, translateNotFound(err, ErrSectionNotFound)
	}
	counts, err := s.sections.CountEnrolled(ctx, []string{section.ID})
	if err != nil {
		return dto.SectionResponse{}, err
	}
	return dto.NewSectionResponse(section, counts[section.ID]), nil
}

func (s *subjectService) CreateSection(ctx context.Context, payload dto.SectionRequest) (dto.SectionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SectionResponse{}, err
	}
	if _, err := s.subjects.GetByID(ctx, payload.SubjectID); err != nil {
		return dto.SectionResponse{}, translateNotFound(err, ErrSubjectNotFound)
	}
	if err := s.checkProfessor(ctx, payload.ProfessorID); err != nil {
		return dto.SectionResponse{}, err
	}

	section := models.Section{
		Name:        sanitizeText(payload.Name),
		SubjectID:   payload.SubjectID,
		Term:        strings.TrimSpace(payload.Term),
		Schedule:    sanitizeText(payload.Schedule),
		Room:        sanitizeText(payload.Room),
		ProfessorID: payload.ProfessorID,
	}
	if err := s.sections.Create(ctx, &section); err != nil {
		return dto.SectionResponse{}, translateNotFound(err, ErrSectionNotFound)
	}
	return s.GetSection(ctx, section.ID)
}

func (s *subjectService) UpdateSection(ctx context.Context, id string, payload dto.SectionUpdateRequest) (dto.SectionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SectionResponse{}, err
	}
	if _, err := s.sections.GetByID(ctx, id); err != nil {
		return dto.SectionResponse{}, translateNotFound(err, ErrSectionNotFound)
	}

	updates := make(map[string]interface{})
	if payload.Name != nil {
		updates["name"] = sanitizeText(*payload.Name)
	}
	if payload.Term != nil {
		updates["term"] = strings.TrimSpace(*payload.Term)
	}
	if payload.Schedule != nil {
		updates["schedule"] = sanitizeText(*payload.Schedule)
	}
	if payload.Room != nil {
		updates["room"] = sanitizeText(*payload.Room)
	}
	if payload.ProfessorID != nil {
		if err := s.checkProfessor(ctx, payload.ProfessorID); err != nil {
			return dto.SectionResponse{}, err
		}
		updates["professor_id"] = *payload.ProfessorID
	}

	if _, err := s.sections.Update(ctx, id, updates); err != nil {
		return dto.SectionResponse{}, translateNotFound(err, ErrSectionNotFound)
	}
	return s.GetSection(ctx, id)
}

func (s *subjectService) DeleteSection(ctx context.Context, id string) error {
	if err := s.sections.Delete(ctx, id); err != nil {
		return translateNotFound(err, ErrSectionNotFound)
	}
	return nil
}

func (s *subjectService) checkProfessor(ctx context.Context, id *string) error {
	if id == nil || *id == "" {
		return nil
	}
	user, err := s.users.GetByID(ctx, *id)
	if err != nil {
		return translateNotFound(err, ErrUserNotFound)
	}
	if !user.HasRole(models.RoleProfessor) {
		return ErrNotProfessor
	}
	return nil
}

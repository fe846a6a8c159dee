package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/rci-portal-api/internal/audit"
	"github.com/noah-isme/rci-portal-api/internal/dto"
	"github.com/noah-isme/rci-portal-api/internal/models"
	"github.com/noah-isme/rci-portal-api/internal/repository"
)

const maskedValue = "***"

// EventPublisher fans recorded events out to subscribers. *nats.Conn satisfies it.
type EventPublisher interface {
	Publish(subject string, data []byte) error
}

// AuditService persists and exposes the change audit trail.
type AuditService interface {
	audit.Recorder
	List(ctx context.Context, req dto.AuditLogListRequest) (dto.ListResponse[dto.AuditLogResponse], error)
	Get(ctx context.Context, id string) (dto.AuditLogResponse, error)
	Delete(ctx context.Context, id string) error
}

type auditService struct {
	repo      repository.AuditLogRepository
	publisher EventPublisher
	subject   string
	logger    zerolog.Logger
}

// NewAuditService constructs the audit service. publisher may be nil.
func NewAuditService(repo repository.AuditLogRepository, publisher EventPublisher, subject string, logger zerolog.Logger) AuditService {
	return &auditService{
		repo:      repo,
		publisher: publisher,
		subject:   subject,
		logger:    logger.With().Str("component", "audit_service").Logger(),
	}
}

// Record stores one audit entry. Publication of the stored entry is best-effort.
func (s *auditService) Record(ctx context.Context, entry audit.Entry) (models.AuditLog, error) {
	if strings.TrimSpace(entry.Entity) == "" {
		return models.AuditLog{}, errors.New("entity is required")
	}
	if !models.IsAuditAction(entry.Action) {
		return models.AuditLog{}, errors.New("unsupported audit action")
	}

	log := models.AuditLog{
		Entity:  entry.Entity,
		Action:  entry.Action,
		UserID:  entry.ActorID,
		Details: datatypes.JSONMap(maskSecrets(entry.Details)),
	}
	if err := s.repo.Create(ctx, &log); err != nil {
		return models.AuditLog{}, err
	}

	s.publish(log, entry.CorrelationID)
	return log, nil
}

// auditEvent is the message published for every stored entry.
type auditEvent struct {
	dto.AuditLogResponse
	CorrelationID string `json:"correlation_id,omitempty"`
}

func (s *auditService) publish(log models.AuditLog, correlationID string) {
	if s.publisher == nil || s.subject == "" {
		return
	}
	payload, err := json.Marshal(auditEvent{AuditLogResponse: dto.NewAuditLogResponse(log), CorrelationID: correlationID})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode audit event")
		return
	}
	if err := s.publisher.Publish(s.subject, payload); err != nil {
		s.logger.Warn().Err(err).Str("subject", s.subject).Msg("failed to publish audit event")
	}
}

func (s *auditService) List(ctx context.Context, req dto.AuditLogListRequest) (dto.ListResponse[dto.AuditLogResponse], error) {
	filter := repository.AuditLogFilter{
		Page:     req.Page,
		PageSize: req.PageSize,
		Entity:   strings.TrimSpace(req.Entity),
		Action:   strings.ToLower(strings.TrimSpace(req.Action)),
		UserID:   strings.TrimSpace(req.UserID),
	}

	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.ListResponse[dto.AuditLogResponse]{}, err
	}

	items := make([]dto.AuditLogResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.NewAuditLogResponse(entry))
	}

	return dto.ListResponse[dto.AuditLogResponse]{
		Items:      items,
		Pagination: dto.NewPaginationMeta(req.Page, req.PageSize, total),
	}, nil
}

func (s *auditService) Get(ctx context.Context, id string) (dto.AuditLogResponse, error) {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.AuditLogResponse{}, translateNotFound(err, ErrAuditLogNotFound)
	}
	return dto.NewAuditLogResponse(entry), nil
}

func (s *auditService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return translateNotFound(err, ErrAuditLogNotFound)
	}
	return nil
}

// maskSecrets replaces password and token values at any depth.
func maskSecrets(details map[string]interface{}) map[string]interface{} {
	if details == nil {
		return map[string]interface{}{}
	}
	masked := make(map[string]interface{}, len(details))
	for key, value := range details {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "password") || strings.Contains(lower, "token") || lower == "refresh" {
			masked[key] = maskedValue
			continue
		}
		masked[key] = maskValue(value)
	}
	return masked
}

func maskValue(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		return maskSecrets(v)
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = maskValue(item)
		}
		return out
	default:
		return value
	}
}

package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/rci-portal-api/internal/dto"
	"github.com/noah-isme/rci-portal-api/internal/models"
	"github.com/noah-isme/rci-portal-api/internal/observability"
	"github.com/noah-isme/rci-portal-api/internal/repository"
)

var (
	// ErrUploadMissing indicates the multipart request carried no file.
	ErrUploadMissing = errors.New("file is required")
	// ErrUploadTooLarge indicates the payload exceeded the configured limit.
	ErrUploadTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrUploadTypeNotAllowed indicates the MIME type is not permitted.
	ErrUploadTypeNotAllowed = errors.New("file type not allowed")
)

// FileStorage abstracts document destinations.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
	Delete(ctx context.Context, fileURL string) error
}

// DocumentService validates, stores and manages student documents.
type DocumentService interface {
	Upload(ctx context.Context, actor Actor, form dto.DocumentUploadRequest, file *multipart.FileHeader) (dto.DocumentResponse, error)
	List(ctx context.Context, req dto.DocumentListRequest) (dto.ListResponse[dto.DocumentResponse], error)
	Get(ctx context.Context, id string) (dto.DocumentResponse, error)
	Update(ctx context.Context, id string, payload dto.DocumentUpdateRequest) (dto.DocumentResponse, error)
	Delete(ctx context.Context, id string) error
}

type documentService struct {
	storage   FileStorage
	repo      repository.DocumentRepository
	students  repository.StudentRepository
	validator *validator.Validate
	logger    zerolog.Logger
	maxSize   int64
	tracer    trace.Tracer
}

// NewDocumentService constructs the document service.
func NewDocumentService(storage FileStorage, repo repository.DocumentRepository, students repository.StudentRepository, maxSizeMB int, validator *validator.Validate, logger zerolog.Logger) DocumentService {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	return &documentService{
		storage:   storage,
		repo:      repo,
		students:  students,
		validator: validator,
		logger:    logger.With().Str("component", "document_service").Logger(),
		maxSize:   int64(maxSizeMB) * 1024 * 1024,
		tracer:    otel.Tracer("github.com/noah-isme/rci-portal-api/internal/service/document"),
	}
}

func (s *documentService) Upload(ctx context.Context, actor Actor, form dto.DocumentUploadRequest, file *multipart.FileHeader) (dto.DocumentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "document.store")
	defer span.End()

	span.SetAttributes(attribute.Int64("upload.max_bytes", s.maxSize), attribute.String("document.type", form.DocType))
	if file != nil {
		span.SetAttributes(
			attribute.String("upload.original_name", strings.TrimSpace(file.Filename)),
			attribute.Int64("upload.request_size", file.Size),
		)
	}

	start := time.Now()
	defer func() {
		observability.UploadLatency().Observe(time.Since(start).Seconds())
	}()

	if err := s.validator.Struct(form); err != nil {
		span.SetStatus(codes.Error, "validation failed")
		return dto.DocumentResponse{}, err
	}
	if file == nil {
		span.RecordError(ErrUploadMissing)
		span.SetStatus(codes.Error, "validation failed")
		return dto.DocumentResponse{}, ErrUploadMissing
	}
	if form.StudentID != nil && *form.StudentID != "" {
		if _, err := s.students.GetByID(ctx, *form.StudentID); err != nil {
			return dto.DocumentResponse{}, translateNotFound(err, ErrStudentNotFound)
		}
	}

	if file.Size > s.maxSize {
		return dto.DocumentResponse{}, s.rejectUpload(span, "size", ErrUploadTooLarge)
	}

	handle, err := file.Open()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "open failed")
		return dto.DocumentResponse{}, err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, s.maxSize+1)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		return dto.DocumentResponse{}, err
	}
	if int64(buf.Len()) > s.maxSize {
		return dto.DocumentResponse{}, s.rejectUpload(span, "size", ErrUploadTooLarge)
	}

	detected := mimetype.Detect(buf.Bytes())
	fileType := normalizeMime(detected.String())
	span.SetAttributes(attribute.String("upload.detected_mime", fileType))
	if !isAllowedType(fileType) {
		return dto.DocumentResponse{}, s.rejectUpload(span, "type", ErrUploadTypeNotAllowed)
	}

	checksum := sha256.Sum256(buf.Bytes())
	name := sanitizeFileName(file.Filename, detected.Extension())
	span.SetAttributes(
		attribute.String("upload.sanitized_name", name),
		attribute.Int64("upload.size_bytes", int64(buf.Len())),
	)

	url, err := s.storage.Upload(ctx, name, bytes.NewReader(buf.Bytes()))
	if err != nil {
		return dto.DocumentResponse{}, s.rejectUpload(span, "storage", err)
	}

	document := models.Document{
		StudentID: form.StudentID,
		DocType:   form.DocType,
		FileURL:   url,
		FileName:  name,
		MimeType:  detected.String(),
		SizeBytes: int64(buf.Len()),
		Checksum:  hex.EncodeToString(checksum[:]),
	}
	if actor.ID != "" {
		uploader := actor.ID
		document.UploadedByID = &uploader
	}

	if err := s.repo.Create(ctx, &document); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		return dto.DocumentResponse{}, err
	}

	observability.UploadRequests().WithLabelValues(form.DocType).Inc()
	span.SetStatus(codes.Ok, "stored")
	return dto.NewDocumentResponse(document), nil
}

func (s *documentService) rejectUpload(span trace.Span, reason string, err error) error {
	observability.UploadRejected().WithLabelValues(reason).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, reason)
	return err
}

func (s *documentService) List(ctx context.Context, req dto.DocumentListRequest) (dto.ListResponse[dto.DocumentResponse], error) {
	documents, total, err := s.repo.List(ctx, repository.DocumentFilter{
		Page:      req.Page,
		PageSize:  req.PageSize,
		StudentID: strings.TrimSpace(req.StudentID),
		DocType:   strings.ToLower(strings.TrimSpace(req.DocType)),
	})
	if err != nil {
		return dto.ListResponse[dto.DocumentResponse]{}, err
	}

	items := make([]dto.DocumentResponse, 0, len(documents))
	for _, document := range documents {
		items = append(items, dto.NewDocumentResponse(document))
	}
	return dto.ListResponse[dto.DocumentResponse]{Items: items, Pagination: dto.NewPaginationMeta(req.Page, req.PageSize, total)}, nil
}

func (s *documentService) Get(ctx context.Context, id string) (dto.DocumentResponse, error) {
	document, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.DocumentResponse{}, translateNotFound(err, ErrDocumentNotFound)
	}
	return dto.NewDocumentResponse(document), nil
}

func (s *documentService) Update(ctx context.Context, id string, payload dto.DocumentUpdateRequest) (dto.DocumentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.DocumentResponse{}, err
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return dto.DocumentResponse{}, translateNotFound(err, ErrDocumentNotFound)
	}

	updates := make(map[string]interface{})
	if payload.StudentID != nil {
		if _, err := s.students.GetByID(ctx, *payload.StudentID); err != nil {
			return dto.DocumentResponse{}, translateNotFound(err, ErrStudentNotFound)
		}
		updates["student_id"] = *payload.StudentID
	}
	if payload.DocType != nil {
		updates["doc_type"] = *payload.DocType
	}

	document, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return dto.DocumentResponse{}, translateNotFound(err, ErrDocumentNotFound)
	}
	return dto.NewDocumentResponse(document), nil
}

// Delete removes the record; failure to remove the stored file is only logged.
func (s *documentService) Delete(ctx context.Context, id string) error {
	document, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return translateNotFound(err, ErrDocumentNotFound)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return translateNotFound(err, ErrDocumentNotFound)
	}
	if s.storage != nil {
		if err := s.storage.Delete(ctx, document.FileURL); err != nil {
			s.logger.Warn().Err(err).Str("document_id", id).Msg("failed to remove stored document")
		}
	}
	return nil
}

func sanitizeFileName(name, detectedExt string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.ToLower(base)
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		if r == '-' || r == '_' {
			return r
		}
		return '-'
	}, base)
	base = strings.Trim(base, "-")
	if base == "" {
		base = fmt.Sprintf("document-%d", time.Now().Unix())
	}
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		ext = detectedExt
	}
	if ext == "" {
		ext = ".bin"
	}
	return base + ext
}

func normalizeMime(m string) string {
	lower := strings.ToLower(strings.TrimSpace(m))
	if strings.HasPrefix(lower, "image/") {
		return "image"
	}
	return lower
}

func isAllowedType(m string) bool {
	return m == "image" || m == "application/pdf"
}

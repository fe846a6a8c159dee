package cloudinary

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog"
)

// DefaultFolder is used when Config.Folder is empty.
const DefaultFolder = "rci/documents"

// Config contains credentials required to talk to Cloudinary.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Storage keeps student documents in Cloudinary.
type Storage struct {
	client *cloudinary.Cloudinary
	folder string
	logger zerolog.Logger
}

// New constructs a Cloudinary document store.
func New(cfg Config, logger zerolog.Logger) (*Storage, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials must be provided")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	folder := strings.Trim(cfg.Folder, "/")
	if folder == "" {
		folder = DefaultFolder
	}

	return &Storage{
		client: cld,
		folder: folder,
		logger: logger.With().Str("component", "cloudinary").Logger(),
	}, nil
}

// Upload sends the document to Cloudinary and returns its secure URL.
func (s *Storage) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	params := uploader.UploadParams{
		Folder:       s.folder,
		PublicID:     buildPublicID(name, time.Now()),
		ResourceType: "auto",
	}

	result, err := s.client.Upload.Upload(ctx, reader, params)
	if err != nil {
		return "", fmt.Errorf("failed to upload document: %w", err)
	}

	s.logger.Info().Str("public_id", result.PublicID).Msg("document uploaded to cloudinary")
	return result.SecureURL, nil
}

// Delete removes the asset behind a URL previously returned by Upload.
func (s *Storage) Delete(ctx context.Context, fileURL string) error {
	publicID := PublicIDFromURL(fileURL)
	if publicID == "" {
		return fmt.Errorf("cannot derive public id from %q", fileURL)
	}

	result, err := s.client.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID, ResourceType: "image"})
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	s.logger.Info().Str("public_id", publicID).Str("result", result.Result).Msg("document removed from cloudinary")
	return nil
}

var versionSegment = regexp.MustCompile(`^v\d+/`)

// PublicIDFromURL extracts the public id from a Cloudinary delivery URL:
// everything after "/upload/", without the version segment and extension.
func PublicIDFromURL(fileURL string) string {
	_, rest, found := strings.Cut(fileURL, "/upload/")
	if !found {
		return ""
	}
	rest = versionSegment.ReplaceAllString(rest, "")
	return strings.TrimSuffix(rest, filepath.Ext(rest))
}

func buildPublicID(name string, now time.Time) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '-'
	}, base)

	base = strings.Trim(base, "-")
	if base == "" {
		base = "document"
	}

	return fmt.Sprintf("%s-%d", base, now.Unix())
}

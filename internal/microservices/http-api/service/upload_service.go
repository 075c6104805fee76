package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"eventhub/internal/media"
	"eventhub/internal/microservices/http-api/dto"
	"eventhub/internal/microservices/http-api/models"
	"eventhub/internal/microservices/http-api/repository"

	"github.com/rs/zerolog"
)

type UploadService interface {
	Upload(ctx context.Context, caller *models.User, kind string, data []byte) (*dto.UploadResult, error)
	Delete(ctx context.Context, caller *models.User, req dto.DeleteImageRequest) error
}

type uploadService struct {
	host  media.Host
	store repository.Store
	log   zerolog.Logger
}

// NewUploadService creates the service. A nil host disables uploads.
func NewUploadService(host media.Host, store repository.Store, log zerolog.Logger) UploadService {
	return &uploadService{host: host, store: store, log: log}
}

// Upload resizes the image for its kind and stores it on the media host.
func (s *uploadService) Upload(ctx context.Context, caller *models.User, kind string, data []byte) (*dto.UploadResult, error) {
	if caller == nil {
		return nil, ErrNoToken
	}
	if s.host == nil {
		return nil, ErrMediaDisabled
	}

	preset := media.PresetFor(kind)
	img, err := media.Process(data, preset)
	if err != nil {
		if errors.Is(err, media.ErrUnsupportedFormat) {
			return nil, ErrInvalidImageType
		}
		return nil, invalid("Could not process image")
	}

	uploaded, err := s.host.Upload(ctx, bytes.NewReader(img.Data), preset.Folder)
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}

	s.log.Info().
		Str("user_id", caller.ID).
		Str("kind", kind).
		Str("public_id", uploaded.PublicID).
		Msg("image uploaded")
	return &dto.UploadResult{
		URL:      uploaded.URL,
		PublicID: uploaded.PublicID,
		Width:    img.Width,
		Height:   img.Height,
	}, nil
}

func (s *uploadService) Delete(ctx context.Context, caller *models.User, req dto.DeleteImageRequest) error {
	if caller == nil {
		return ErrNoToken
	}
	if s.host == nil {
		return ErrMediaDisabled
	}

	publicID := strings.TrimSpace(req.PublicID)
	url := strings.TrimSpace(req.ImageURL)
	if publicID == "" && url == "" {
		return ErrNoImage
	}
	if publicID == "" {
		publicID = media.ExtractPublicID(url)
		if publicID == "" {
			return ErrNoPublicID
		}
	}
	if !strings.HasPrefix(publicID, media.RootFolder+"/") {
		return ErrForeignImage
	}
	if err := s.authorizeDelete(ctx, caller, publicID); err != nil {
		return err
	}

	if err := s.host.Destroy(ctx, publicID); err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	s.log.Info().Str("user_id", caller.ID).Str("public_id", publicID).Msg("image deleted")
	return nil
}

// authorizeDelete lets the caller remove an image only when every avatar and banner
// that still references it belongs to them.
func (s *uploadService) authorizeDelete(ctx context.Context, caller *models.User, publicID string) error {
	if caller.IsAdmin() {
		return nil
	}
	users, err := s.store.Users().AvatarOwners(ctx, publicID)
	if err != nil {
		return err
	}
	owners, err := s.store.Events().BannerOwners(ctx, publicID)
	if err != nil {
		return err
	}
	for _, owner := range append(users, owners...) {
		if err := Authorize(caller, owner, ActionImageDelete); err != nil {
			return err
		}
	}
	return nil
}

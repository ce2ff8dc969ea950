package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

var (
	avatarExtensions   = map[string]struct{}{".png": {}, ".jpg": {}, ".jpeg": {}}
	avatarContentTypes = map[string]struct{}{"image/png": {}, "image/jpeg": {}}
)

// AvatarService manages the caller's profile picture.
type AvatarService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       AvatarStore
	maxSize     int64
	logger      logging.Logger
}

func NewAvatarService(db *sql.DB, m repomanager.RepositoryManager, store AvatarStore, maxSize int64, logger logging.Logger) *AvatarService {
	return &AvatarService{
		db:          db,
		repomanager: m,
		store:       store,
		maxSize:     maxSize,
		logger:      logger.With("module", "avatars"),
	}
}

// MaxSize is the largest accepted upload, in bytes.
func (s *AvatarService) MaxSize() int64 {
	return s.maxSize
}

// Upload replaces the caller's avatar. The file name must end in .png,
// .jpg or .jpeg and the content must sniff as PNG or JPEG.
func (s *AvatarService) Upload(ctx context.Context, p *models.Principal, filename string, data []byte) error {
	if int64(len(data)) > s.maxSize {
		return common.NewValidationError("avatar", "must be at most %d bytes", s.maxSize)
	}
	if _, ok := avatarExtensions[strings.ToLower(path.Ext(filename))]; !ok {
		return common.NewValidationError("avatar", "please upload an image")
	}
	contentType := http.DetectContentType(data)
	if _, ok := avatarContentTypes[contentType]; !ok {
		return common.NewValidationError("avatar", "please upload an image")
	}

	key := fmt.Sprintf("avatars/%s/%s", p.User.ID, uuid.NewString())
	if err := s.store.Put(ctx, key, contentType, data); err != nil {
		return fmt.Errorf("error storing avatar: %w", err)
	}

	if err := s.repomanager.Users(s.db).SetAvatar(ctx, p.User.ID, key, contentType); err != nil {
		s.discard(ctx, key)
		return fmt.Errorf("error saving avatar: %w", err)
	}

	if p.User.HasAvatar() {
		s.discard(ctx, p.User.AvatarKey)
	}
	p.User.AvatarKey, p.User.AvatarContentType = key, contentType

	return nil
}

// Remove clears the caller's avatar. Removing when none is set succeeds.
func (s *AvatarService) Remove(ctx context.Context, p *models.Principal) error {
	if !p.User.HasAvatar() {
		return nil
	}
	if err := s.repomanager.Users(s.db).SetAvatar(ctx, p.User.ID, "", ""); err != nil {
		return fmt.Errorf("error clearing avatar: %w", err)
	}
	s.discard(ctx, p.User.AvatarKey)
	p.User.AvatarKey, p.User.AvatarContentType = "", ""
	return nil
}

// Get returns the avatar bytes and content type of any user. A malformed
// id, an unknown user and a user without avatar all yield
// common.ErrorNotFound.
func (s *AvatarService) Get(ctx context.Context, userID string) ([]byte, string, error) {
	if !isUUID(userID) {
		return nil, "", common.ErrorNotFound
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	if !user.HasAvatar() {
		return nil, "", common.ErrorNotFound
	}

	data, err := s.store.Get(ctx, user.AvatarKey)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, "", common.ErrorNotFound
		}
		return nil, "", fmt.Errorf("error loading avatar: %w", err)
	}
	return data, user.AvatarContentType, nil
}

// discard deletes an object that is no longer referenced. Failures only
// leave an orphan behind, so they are logged and swallowed.
func (s *AvatarService) discard(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		s.logger.Warn(ctx, "failed to delete avatar object", "key", key, "error", err)
	}
}

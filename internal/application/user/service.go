package user

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/expertteam/expert/internal/domain"
)

// Default configuration values.
const (
	DefaultUploadURLExpiry   = 10 * time.Minute
	DefaultDownloadURLExpiry = 10 * time.Minute
	ProfileImagePrefix       = "profile-images/"
)

// Config holds configuration for the Service.
type Config struct {
	UploadURLExpiry   time.Duration
	DownloadURLExpiry time.Duration
}

// ImageUpload is a profile image received from a client.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// PresignedUpload is a signed URL a client can PUT an image to directly.
type PresignedUpload struct {
	URL string
	Key string
}

// Service provides account management and profile image operations.
type Service struct {
	repo      Repository
	passwords PasswordHasher
	images    ObjectStore
	config    Config
}

// NewService creates a new user service.
// Applies defaults for zero or negative expiries.
func NewService(repo Repository, passwords PasswordHasher, images ObjectStore, config Config) *Service {
	if config.UploadURLExpiry <= 0 {
		config.UploadURLExpiry = DefaultUploadURLExpiry
	}
	if config.DownloadURLExpiry <= 0 {
		config.DownloadURLExpiry = DefaultDownloadURLExpiry
	}
	return &Service{
		repo:      repo,
		passwords: passwords,
		images:    images,
		config:    config,
	}
}

// GetUser returns a user's public profile.
func (s *Service) GetUser(ctx context.Context, id string) (*domain.User, error) {
	if id == "" {
		return nil, domain.ErrUserNotFound
	}
	return s.repo.FindUserByID(ctx, id)
}

// ChangePassword replaces the caller's password after verifying the current one.
func (s *Service) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if err := domain.ValidatePassword(newPassword); err != nil {
		return err
	}
	if oldPassword == newPassword {
		return domain.ErrSamePassword
	}

	u, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.passwords.Compare(u.PasswordHash, oldPassword); err != nil {
		return domain.ErrInvalidCredentials
	}

	hash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.repo.UpdatePassword(ctx, userID, hash, time.Now().UTC())
}

// ChangeRole sets another user's role. Callers must enforce the admin requirement.
func (s *Service) ChangeRole(ctx context.Context, userID, roleStr string) error {
	role, err := domain.NewUserRole(roleStr)
	if err != nil {
		return err
	}
	if _, err := s.repo.FindUserByID(ctx, userID); err != nil {
		return err
	}
	return s.repo.UpdateRole(ctx, userID, role, time.Now().UTC())
}

// SearchByNickname returns users whose nickname matches exactly.
// A blank nickname yields an empty result.
func (s *Service) SearchByNickname(ctx context.Context, nickname string) ([]domain.User, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return []domain.User{}, nil
	}
	users, err := s.repo.FindUsersByNickname(ctx, nickname)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return users, nil
}

// UploadProfileImage stores the image and records its key on the user.
// A previously stored image is removed on a best-effort basis.
// Returns a signed download URL for the new image.
func (s *Service) UploadProfileImage(ctx context.Context, userID string, upload ImageUpload) (string, error) {
	if upload.Body == nil || upload.Size <= 0 || !strings.HasPrefix(upload.ContentType, "image/") {
		return "", domain.ErrInvalidImage
	}

	u, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		return "", err
	}

	key, err := newObjectKey(upload.Filename)
	if err != nil {
		return "", err
	}

	if err := s.images.Put(ctx, key, upload.ContentType, upload.Body); err != nil {
		return "", fmt.Errorf("failed to store profile image: %w", err)
	}

	if err := s.repo.UpdateProfileImageKey(ctx, userID, key, time.Now().UTC()); err != nil {
		if delErr := s.images.Delete(ctx, key); delErr != nil {
			slog.WarnContext(ctx, "failed to remove orphaned profile image",
				"key", key,
				"error", delErr)
		}
		return "", err
	}

	if u.ProfileImageKey != nil && *u.ProfileImageKey != key {
		if err := s.images.Delete(ctx, *u.ProfileImageKey); err != nil {
			slog.WarnContext(ctx, "failed to remove previous profile image",
				"key", *u.ProfileImageKey,
				"error", err)
		}
	}

	return s.images.SignedURL(ctx, key, http.MethodGet, s.config.DownloadURLExpiry)
}

// ProfileImageURL returns a signed download URL for the user's profile image.
func (s *Service) ProfileImageURL(ctx context.Context, userID string) (string, error) {
	u, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if u.ProfileImageKey == nil || *u.ProfileImageKey == "" {
		return "", domain.ErrProfileImageNotFound
	}
	return s.images.SignedURL(ctx, *u.ProfileImageKey, http.MethodGet, s.config.DownloadURLExpiry)
}

// PresignProfileImageUpload returns a signed PUT URL for a new profile image object.
func (s *Service) PresignProfileImageUpload(ctx context.Context, filename string) (*PresignedUpload, error) {
	key, err := newObjectKey(filename)
	if err != nil {
		return nil, err
	}

	url, err := s.images.SignedURL(ctx, key, http.MethodPut, s.config.UploadURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to sign upload url: %w", err)
	}

	return &PresignedUpload{URL: url, Key: key}, nil
}

// newObjectKey builds "profile-images/<uuid>_<basename>".
func newObjectKey(filename string) (string, error) {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), "\\", "/"))
	if base == "" || base == "." || base == "/" {
		return "", domain.ErrFilenameRequired
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate object key: %w", err)
	}
	return ProfileImagePrefix + id.String() + "_" + base, nil
}


package services

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/Varial17/studyfin-jobboard-sub000/internal/models"
	pgrepo "github.com/Varial17/studyfin-jobboard-sub000/internal/repositories/postgres"
	"github.com/Varial17/studyfin-jobboard-sub000/internal/storage"
	"github.com/Varial17/studyfin-jobboard-sub000/internal/utils"
)

type ProfileService interface {
	// GetMe returns the caller's profile, creating a blank applicant profile on first access.
	GetMe(ctx context.Context, userID, email string) (*models.Profile, error)
	UpdateDetails(ctx context.Context, userID string, patch models.ProfileDetailsPatch) (*models.Profile, error)
	UpdateEducation(ctx context.Context, userID string, patch models.ProfileEducationPatch) (*models.Profile, error)
	// ChangeRole is the settings-save gate: employer only with an active subscription.
	ChangeRole(ctx context.Context, userID string, role models.ProfileRole) (*models.Profile, error)
	UploadCV(ctx context.Context, userID, contentType string, size int64, r io.Reader) (*models.Profile, error)
}

type profileService struct {
	profiles pgrepo.ProfileRepository
	uploader storage.Uploader
}

func NewProfileService(profiles pgrepo.ProfileRepository, uploader storage.Uploader) ProfileService {
	return &profileService{profiles: profiles, uploader: uploader}
}

func (s *profileService) GetMe(ctx context.Context, userID, email string) (*models.Profile, error) {
	const op = "ProfileService.GetMe"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}

	p, err := s.profiles.GetByUserID(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeInternal, op, "failed to get profile", err)
	}

	now := time.Now().UTC()
	blank := &models.Profile{
		UserID:    userID,
		Email:     email,
		Role:      models.RoleApplicant,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.profiles.CreateIfMissing(ctx, blank); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create profile", err)
	}
	return s.get(ctx, op, userID)
}

func (s *profileService) UpdateDetails(ctx context.Context, userID string, patch models.ProfileDetailsPatch) (*models.Profile, error) {
	const op = "ProfileService.UpdateDetails"

	if err := s.profiles.ApplyDetails(ctx, userID, patch); err != nil {
		return nil, mapProfileErr(op, err)
	}
	return s.get(ctx, op, userID)
}

func (s *profileService) UpdateEducation(ctx context.Context, userID string, patch models.ProfileEducationPatch) (*models.Profile, error) {
	const op = "ProfileService.UpdateEducation"

	if err := s.profiles.ApplyEducation(ctx, userID, patch); err != nil {
		return nil, mapProfileErr(op, err)
	}
	return s.get(ctx, op, userID)
}

func (s *profileService) ChangeRole(ctx context.Context, userID string, role models.ProfileRole) (*models.Profile, error) {
	const op = "ProfileService.ChangeRole"

	if !role.Valid() {
		return nil, utils.E(utils.CodeInvalidArgument, op, "role must be applicant or employer", nil)
	}

	p, err := s.get(ctx, op, userID)
	if err != nil {
		return nil, err
	}
	if p.Role == role {
		return p, nil
	}
	if role == models.RoleEmployer && !p.HasActiveSubscription() {
		return nil, utils.E(utils.CodeForbidden, op, "an active subscription is required to become an employer", nil)
	}

	if err := s.profiles.SetRole(ctx, userID, role); err != nil {
		return nil, mapProfileErr(op, err)
	}
	return s.get(ctx, op, userID)
}

func (s *profileService) UploadCV(ctx context.Context, userID, contentType string, size int64, r io.Reader) (*models.Profile, error) {
	const op = "ProfileService.UploadCV"

	if s.uploader == nil {
		return nil, utils.E(utils.CodeUnavailable, op, "uploads are not configured", nil)
	}
	ext, ok := storage.CVExtension(contentType)
	if !ok {
		return nil, utils.E(utils.CodeInvalidArgument, op, "cv must be a PDF", nil)
	}
	if size <= 0 || size > storage.MaxCVBytes {
		return nil, utils.E(utils.CodeInvalidArgument, op, "cv must be between 1 byte and 10MB", nil)
	}

	url, err := s.uploader.Upload(ctx, storage.CVObjectName(userID, ext), contentType, r)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to upload cv", err)
	}
	if err := s.profiles.SetCVURL(ctx, userID, url); err != nil {
		return nil, mapProfileErr(op, err)
	}
	return s.get(ctx, op, userID)
}

func (s *profileService) get(ctx context.Context, op, userID string) (*models.Profile, error) {
	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, mapProfileErr(op, err)
	}
	return p, nil
}

func mapProfileErr(op string, err error) error {
	if errors.Is(err, utils.ErrNotFound) {
		return utils.E(utils.CodeNotFound, op, "profile not found", err)
	}
	return utils.E(utils.CodeInternal, op, "profile store failed", err)
}

package services

import (
	"context"
	"errors"
	"time"

	"github.com/Varial17/studyfin-jobboard-sub000/internal/models"
	pgrepo "github.com/Varial17/studyfin-jobboard-sub000/internal/repositories/postgres"
	"github.com/Varial17/studyfin-jobboard-sub000/internal/utils"
	"github.com/google/uuid"
)

// ResumeService manages the education, experience and skill rows of the caller's profile.
type ResumeService interface {
	ListEducation(ctx context.Context, userID string) ([]models.Education, error)
	AddEducation(ctx context.Context, userID string, e models.Education) (*models.Education, error)
	UpdateEducation(ctx context.Context, userID, id string, e models.Education) (*models.Education, error)
	DeleteEducation(ctx context.Context, userID, id string) error

	ListExperiences(ctx context.Context, userID string) ([]models.Experience, error)
	AddExperience(ctx context.Context, userID string, e models.Experience) (*models.Experience, error)
	UpdateExperience(ctx context.Context, userID, id string, e models.Experience) (*models.Experience, error)
	DeleteExperience(ctx context.Context, userID, id string) error

	ListSkills(ctx context.Context, userID string) ([]models.Skill, error)
	AddSkill(ctx context.Context, userID string, sk models.Skill) (*models.Skill, error)
	UpdateSkill(ctx context.Context, userID, id string, sk models.Skill) (*models.Skill, error)
	DeleteSkill(ctx context.Context, userID, id string) error
}

type resumeService struct {
	repo pgrepo.ResumeRepository
}

func NewResumeService(repo pgrepo.ResumeRepository) ResumeService {
	return &resumeService{repo: repo}
}

func (s *resumeService) ListEducation(ctx context.Context, userID string) ([]models.Education, error) {
	rows, err := s.repo.ListEducation(ctx, userID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, "ResumeService.ListEducation", "failed to list education", err)
	}
	return rows, nil
}

func (s *resumeService) AddEducation(ctx context.Context, userID string, e models.Education) (*models.Education, error) {
	const op = "ResumeService.AddEducation"

	if err := checkDates(op, e.StartDate, e.EndDate); err != nil {
		return nil, err
	}
	e.ID = uuid.NewString()
	e.ProfileID = userID
	e.CreatedAt = time.Now().UTC()
	if err := s.repo.InsertEducation(ctx, &e); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to add education", err)
	}
	return &e, nil
}

func (s *resumeService) UpdateEducation(ctx context.Context, userID, id string, e models.Education) (*models.Education, error) {
	const op = "ResumeService.UpdateEducation"

	if err := checkDates(op, e.StartDate, e.EndDate); err != nil {
		return nil, err
	}
	e.ID = id
	e.ProfileID = userID
	if err := s.repo.UpdateEducation(ctx, &e); err != nil {
		return nil, mapOwnedErr(op, "education entry", err)
	}
	return &e, nil
}

func (s *resumeService) DeleteEducation(ctx context.Context, userID, id string) error {
	return mapOwnedErr("ResumeService.DeleteEducation", "education entry", s.repo.DeleteEducation(ctx, userID, id))
}

func (s *resumeService) ListExperiences(ctx context.Context, userID string) ([]models.Experience, error) {
	rows, err := s.repo.ListExperiences(ctx, userID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, "ResumeService.ListExperiences", "failed to list experiences", err)
	}
	return rows, nil
}

func (s *resumeService) AddExperience(ctx context.Context, userID string, e models.Experience) (*models.Experience, error) {
	const op = "ResumeService.AddExperience"

	if err := checkDates(op, e.StartDate, e.EndDate); err != nil {
		return nil, err
	}
	if e.Current {
		e.EndDate = nil
	}
	e.ID = uuid.NewString()
	e.ProfileID = userID
	e.CreatedAt = time.Now().UTC()
	if err := s.repo.InsertExperience(ctx, &e); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to add experience", err)
	}
	return &e, nil
}

func (s *resumeService) UpdateExperience(ctx context.Context, userID, id string, e models.Experience) (*models.Experience, error) {
	const op = "ResumeService.UpdateExperience"

	if err := checkDates(op, e.StartDate, e.EndDate); err != nil {
		return nil, err
	}
	if e.Current {
		e.EndDate = nil
	}
	e.ID = id
	e.ProfileID = userID
	if err := s.repo.UpdateExperience(ctx, &e); err != nil {
		return nil, mapOwnedErr(op, "experience", err)
	}
	return &e, nil
}

func (s *resumeService) DeleteExperience(ctx context.Context, userID, id string) error {
	return mapOwnedErr("ResumeService.DeleteExperience", "experience", s.repo.DeleteExperience(ctx, userID, id))
}

func (s *resumeService) ListSkills(ctx context.Context, userID string) ([]models.Skill, error) {
	rows, err := s.repo.ListSkills(ctx, userID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, "ResumeService.ListSkills", "failed to list skills", err)
	}
	return rows, nil
}

func (s *resumeService) AddSkill(ctx context.Context, userID string, sk models.Skill) (*models.Skill, error) {
	sk.ID = uuid.NewString()
	sk.ProfileID = userID
	sk.CreatedAt = time.Now().UTC()
	if err := s.repo.InsertSkill(ctx, &sk); err != nil {
		return nil, utils.E(utils.CodeInternal, "ResumeService.AddSkill", "failed to add skill", err)
	}
	return &sk, nil
}

func (s *resumeService) UpdateSkill(ctx context.Context, userID, id string, sk models.Skill) (*models.Skill, error) {
	sk.ID = id
	sk.ProfileID = userID
	if err := s.repo.UpdateSkill(ctx, &sk); err != nil {
		return nil, mapOwnedErr("ResumeService.UpdateSkill", "skill", err)
	}
	return &sk, nil
}

func (s *resumeService) DeleteSkill(ctx context.Context, userID, id string) error {
	return mapOwnedErr("ResumeService.DeleteSkill", "skill", s.repo.DeleteSkill(ctx, userID, id))
}

func checkDates(op string, start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return utils.E(utils.CodeInvalidArgument, op, "end_date is before start_date", nil)
	}
	return nil
}

// mapOwnedErr treats a missing row and a row owned by someone else the same way.
func mapOwnedErr(op, what string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, utils.ErrNotFound) {
		return utils.E(utils.CodeNotFound, op, what+" not found", err)
	}
	return utils.E(utils.CodeInternal, op, "failed to update "+what, err)
}

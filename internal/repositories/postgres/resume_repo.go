package postgres

import (
	"context"

	"github.com/Varial17/studyfin-jobboard-sub000/internal/models"
	"github.com/Varial17/studyfin-jobboard-sub000/internal/utils"
	"gorm.io/gorm"
)

// ResumeRepository stores the education, experience and skill rows owned by a profile.
// Every mutation is scoped by profile_id so a caller can only touch their own rows.
type ResumeRepository interface {
	ListEducation(ctx context.Context, profileID string) ([]models.Education, error)
	InsertEducation(ctx context.Context, e *models.Education) error
	UpdateEducation(ctx context.Context, e *models.Education) error
	DeleteEducation(ctx context.Context, profileID, id string) error

	ListExperiences(ctx context.Context, profileID string) ([]models.Experience, error)
	InsertExperience(ctx context.Context, e *models.Experience) error
	UpdateExperience(ctx context.Context, e *models.Experience) error
	DeleteExperience(ctx context.Context, profileID, id string) error

	ListSkills(ctx context.Context, profileID string) ([]models.Skill, error)
	InsertSkill(ctx context.Context, s *models.Skill) error
	UpdateSkill(ctx context.Context, s *models.Skill) error
	DeleteSkill(ctx context.Context, profileID, id string) error
}

type resumeRepo struct {
	db *gorm.DB
}

func NewResumeRepo(db *gorm.DB) ResumeRepository {
	return &resumeRepo{db: db}
}

func (r *resumeRepo) ListEducation(ctx context.Context, profileID string) ([]models.Education, error) {
	var rows []models.Education
	err := r.db.WithContext(ctx).Where("profile_id = ?", profileID).Order("start_date DESC NULLS LAST").Find(&rows).Error
	return rows, err
}

func (r *resumeRepo) InsertEducation(ctx context.Context, e *models.Education) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *resumeRepo) UpdateEducation(ctx context.Context, e *models.Education) error {
	return r.updateOwned(ctx, &models.Education{}, e.ProfileID, e.ID, map[string]any{
		"institution":    e.Institution,
		"degree":         e.Degree,
		"field_of_study": e.FieldOfStudy,
		"start_date":     e.StartDate,
		"end_date":       e.EndDate,
		"description":    e.Description,
	})
}

func (r *resumeRepo) DeleteEducation(ctx context.Context, profileID, id string) error {
	return r.deleteOwned(ctx, &models.Education{}, profileID, id)
}

func (r *resumeRepo) ListExperiences(ctx context.Context, profileID string) ([]models.Experience, error) {
	var rows []models.Experience
	err := r.db.WithContext(ctx).Where("profile_id = ?", profileID).Order("start_date DESC NULLS LAST").Find(&rows).Error
	return rows, err
}

func (r *resumeRepo) InsertExperience(ctx context.Context, e *models.Experience) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *resumeRepo) UpdateExperience(ctx context.Context, e *models.Experience) error {
	return r.updateOwned(ctx, &models.Experience{}, e.ProfileID, e.ID, map[string]any{
		"company":     e.Company,
		"position":    e.Position,
		"location":    e.Location,
		"start_date":  e.StartDate,
		"end_date":    e.EndDate,
		"current":     e.Current,
		"description": e.Description,
	})
}

func (r *resumeRepo) DeleteExperience(ctx context.Context, profileID, id string) error {
	return r.deleteOwned(ctx, &models.Experience{}, profileID, id)
}

func (r *resumeRepo) ListSkills(ctx context.Context, profileID string) ([]models.Skill, error) {
	var rows []models.Skill
	err := r.db.WithContext(ctx).Where("profile_id = ?", profileID).Order("name ASC").Find(&rows).Error
	return rows, err
}

func (r *resumeRepo) InsertSkill(ctx context.Context, s *models.Skill) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *resumeRepo) UpdateSkill(ctx context.Context, s *models.Skill) error {
	return r.updateOwned(ctx, &models.Skill{}, s.ProfileID, s.ID, map[string]any{
		"name":  s.Name,
		"level": s.Level,
	})
}

func (r *resumeRepo) DeleteSkill(ctx context.Context, profileID, id string) error {
	return r.deleteOwned(ctx, &models.Skill{}, profileID, id)
}

func (r *resumeRepo) updateOwned(ctx context.Context, model any, profileID, id string, cols map[string]any) error {
	res := r.db.WithContext(ctx).Model(model).
		Where("id = ? AND profile_id = ?", id, profileID).
		Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *resumeRepo) deleteOwned(ctx context.Context, model any, profileID, id string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND profile_id = ?", id, profileID).
		Delete(model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}

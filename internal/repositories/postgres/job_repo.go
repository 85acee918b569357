package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Varial17/studyfin-jobboard-sub000/internal/models"
	"github.com/Varial17/studyfin-jobboard-sub000/internal/utils"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type JobRepository interface {
	Insert(ctx context.Context, j *models.Job) error
	GetByID(ctx context.Context, id string) (*models.Job, error)
	List(ctx context.Context, f models.JobFilter) ([]models.Job, error)
	ListByEmployer(ctx context.Context, employerID string) ([]models.Job, error)
	Apply(ctx context.Context, id string, patch models.JobPatch) error
}

type jobRepo struct {
	db *gorm.DB
}

func NewJobRepo(db *gorm.DB) JobRepository {
	return &jobRepo{db: db}
}

func (r *jobRepo) Insert(ctx context.Context, j *models.Job) error {
	return r.db.WithContext(ctx).Create(j).Error
}

func (r *jobRepo) GetByID(ctx context.Context, id string) (*models.Job, error) {
	var j models.Job
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&j).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &j, err
}

func (r *jobRepo) List(ctx context.Context, f models.JobFilter) ([]models.Job, error) {
	if f.Limit <= 0 {
		f.Limit = 20
	}

	q := r.db.WithContext(ctx).
		Where("status = ?", models.JobOpen)

	if s := strings.TrimSpace(f.Query); s != "" {
		like := "%" + s + "%"
		q = q.Where("(title ILIKE ? OR company ILIKE ? OR description ILIKE ?)", like, like, like)
	}
	if s := strings.TrimSpace(f.Location); s != "" {
		q = q.Where("location ILIKE ?", "%"+s+"%")
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.VisaSponsorship != nil {
		q = q.Where("visa_sponsorship = ?", *f.VisaSponsorship)
	}

	var rows []models.Job
	err := q.Order("created_at DESC").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&rows).Error
	return rows, err
}

func (r *jobRepo) ListByEmployer(ctx context.Context, employerID string) ([]models.Job, error) {
	var rows []models.Job
	err := r.db.WithContext(ctx).
		Where("employer_id = ?", employerID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *jobRepo) Apply(ctx context.Context, id string, patch models.JobPatch) error {
	cols := map[string]any{}
	if patch.Title != nil {
		cols["title"] = *patch.Title
	}
	if patch.Company != nil {
		cols["company"] = *patch.Company
	}
	if patch.Location != nil {
		cols["location"] = *patch.Location
	}
	if patch.Type != nil {
		cols["type"] = *patch.Type
	}
	if patch.Description != nil {
		cols["description"] = *patch.Description
	}
	if patch.Requirements != nil {
		cols["requirements"] = pq.StringArray(*patch.Requirements)
	}
	if patch.SalaryMin != nil {
		cols["salary_min"] = *patch.SalaryMin
	}
	if patch.SalaryMax != nil {
		cols["salary_max"] = *patch.SalaryMax
	}
	if patch.SalaryCurrency != nil {
		cols["salary_currency"] = *patch.SalaryCurrency
	}
	if patch.VisaSponsorship != nil {
		cols["visa_sponsorship"] = *patch.VisaSponsorship
	}
	if patch.Status != nil {
		cols["status"] = *patch.Status
	}
	if len(cols) == 0 {
		return nil
	}
	cols["updated_at"] = time.Now().UTC()

	res := r.db.WithContext(ctx).Model(&models.Job{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}

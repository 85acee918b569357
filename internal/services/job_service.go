package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Varial17/studyfin-jobboard-sub000/internal/cache"
	"github.com/Varial17/studyfin-jobboard-sub000/internal/models"
	pgrepo "github.com/Varial17/studyfin-jobboard-sub000/internal/repositories/postgres"
	"github.com/Varial17/studyfin-jobboard-sub000/internal/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type JobService interface {
	List(ctx context.Context, f models.JobFilter) ([]models.Job, error)
	Get(ctx context.Context, id string) (*models.Job, error)
	// Create re-reads the poster's profile and requires the employer role.
	Create(ctx context.Context, employerID string, j models.Job) (*models.Job, error)
	Update(ctx context.Context, employerID, id string, patch models.JobPatch) (*models.Job, error)
	ListByEmployer(ctx context.Context, employerID string) ([]models.Job, error)
}

type jobService struct {
	jobs     pgrepo.JobRepository
	profiles pgrepo.ProfileRepository
	cache    cache.Cache
	log      *logrus.Logger
}

func NewJobService(jobs pgrepo.JobRepository, profiles pgrepo.ProfileRepository, c cache.Cache, log *logrus.Logger) JobService {
	return &jobService{jobs: jobs, profiles: profiles, cache: c, log: log}
}

func (s *jobService) List(ctx context.Context, f models.JobFilter) ([]models.Job, error) {
	const op = "JobService.List"

	if f.Limit > 100 {
		f.Limit = 100
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.Type != "" && !f.Type.Valid() {
		return nil, utils.E(utils.CodeInvalidArgument, op, "unknown job type", nil)
	}

	rows, err := s.jobs.List(ctx, f)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list jobs", err)
	}
	return rows, nil
}

func (s *jobService) Get(ctx context.Context, id string) (*models.Job, error) {
	const op = "JobService.Get"

	if id == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "job id is required", nil)
	}

	if s.cache != nil {
		var cached models.Job
		hit, err := s.cache.GetJSON(ctx, cache.JobKey(id), &cached)
		if err != nil {
			s.log.WithError(err).WithField("job_id", id).Warn("job cache read failed")
		}
		if hit {
			return &cached, nil
		}
	}

	j, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "job not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get job", err)
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cache.JobKey(id), j, cache.JobTTL); err != nil {
			s.log.WithError(err).WithField("job_id", id).Warn("job cache write failed")
		}
	}
	return j, nil
}

func (s *jobService) Create(ctx context.Context, employerID string, j models.Job) (*models.Job, error) {
	const op = "JobService.Create"

	p, err := s.profiles.GetByUserID(ctx, employerID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeForbidden, op, "only employers can post jobs", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to read profile", err)
	}
	if p.Role != models.RoleEmployer {
		return nil, utils.E(utils.CodeForbidden, op, "only employers can post jobs", nil)
	}

	j.Title = strings.TrimSpace(j.Title)
	if j.Title == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "title is required", nil)
	}
	if !j.Type.Valid() {
		return nil, utils.E(utils.CodeInvalidArgument, op, "unknown job type", nil)
	}
	if j.Status == "" {
		j.Status = models.JobOpen
	}
	if !j.Status.Valid() {
		return nil, utils.E(utils.CodeInvalidArgument, op, "unknown job status", nil)
	}
	if j.SalaryMin != nil && j.SalaryMax != nil && *j.SalaryMax < *j.SalaryMin {
		return nil, utils.E(utils.CodeInvalidArgument, op, "salary_max is below salary_min", nil)
	}

	now := time.Now().UTC()
	j.ID = uuid.NewString()
	j.EmployerID = employerID
	j.CreatedAt = now
	j.UpdatedAt = now

	if err := s.jobs.Insert(ctx, &j); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create job", err)
	}
	return &j, nil
}

func (s *jobService) Update(ctx context.Context, employerID, id string, patch models.JobPatch) (*models.Job, error) {
	const op = "JobService.Update"

	j, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "job not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get job", err)
	}
	if j.EmployerID != employerID {
		return nil, utils.E(utils.CodeForbidden, op, "not the owner of this job", nil)
	}
	if patch.Type != nil && !patch.Type.Valid() {
		return nil, utils.E(utils.CodeInvalidArgument, op, "unknown job type", nil)
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, utils.E(utils.CodeInvalidArgument, op, "unknown job status", nil)
	}

	if err := s.jobs.Apply(ctx, id, patch); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to update job", err)
	}
	if s.cache != nil {
		if err := s.cache.Del(ctx, cache.JobKey(id)); err != nil {
			s.log.WithError(err).WithField("job_id", id).Warn("job cache invalidation failed")
		}
	}

	out, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to reload job", err)
	}
	return out, nil
}

func (s *jobService) ListByEmployer(ctx context.Context, employerID string) ([]models.Job, error) {
	rows, err := s.jobs.ListByEmployer(ctx, employerID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, "JobService.ListByEmployer", "failed to list jobs", err)
	}
	return rows, nil
}

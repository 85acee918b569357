package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Varial17/studyfin-jobboard-sub000/internal/models"
	pgrepo "github.com/Varial17/studyfin-jobboard-sub000/internal/repositories/postgres"
	"github.com/Varial17/studyfin-jobboard-sub000/internal/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// LeadSyncQueue hands an application over to the CRM sync workers.
type LeadSyncQueue interface {
	Enqueue(ctx context.Context, applicationID string) error
}

type ApplicationService interface {
	Submit(ctx context.Context, applicantID, jobID, coverLetter string) (*models.Application, error)
	ListMine(ctx context.Context, applicantID string) ([]models.Application, error)
	ListForJob(ctx context.Context, employerID, jobID string) ([]models.Application, error)
	ChangeStatus(ctx context.Context, employerID, applicationID string, next models.ApplicationStatus) (*models.Application, error)
	ApplicantDetail(ctx context.Context, employerID, applicationID string) (*models.ApplicantDetail, error)
}

type applicationService struct {
	apps     pgrepo.ApplicationRepository
	jobs     pgrepo.JobRepository
	profiles pgrepo.ProfileRepository
	resume   pgrepo.ResumeRepository
	queue    LeadSyncQueue
	log      *logrus.Logger
}

func NewApplicationService(
	apps pgrepo.ApplicationRepository,
	jobs pgrepo.JobRepository,
	profiles pgrepo.ProfileRepository,
	resume pgrepo.ResumeRepository,
	queue LeadSyncQueue,
	log *logrus.Logger,
) ApplicationService {
	return &applicationService{
		apps:     apps,
		jobs:     jobs,
		profiles: profiles,
		resume:   resume,
		queue:    queue,
		log:      log,
	}
}

func (s *applicationService) Submit(ctx context.Context, applicantID, jobID, coverLetter string) (*models.Application, error) {
	const op = "ApplicationService.Submit"

	if applicantID == "" || jobID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "applicant_id and job_id are required", nil)
	}

	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "job not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get job", err)
	}
	if job.Status != models.JobOpen {
		return nil, utils.E(utils.CodeInvalidArgument, op, "job is not accepting applications", nil)
	}
	if job.EmployerID == applicantID {
		return nil, utils.E(utils.CodeInvalidArgument, op, "cannot apply to your own job", nil)
	}

	// pre-check only; two concurrent submits can both pass it
	exists, err := s.apps.Exists(ctx, jobID, applicantID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to check existing application", err)
	}
	if exists {
		return nil, utils.E(utils.CodeConflict, op, "already applied to this job", nil)
	}

	now := time.Now().UTC()
	app := &models.Application{
		ID:          uuid.NewString(),
		JobID:       jobID,
		ApplicantID: applicantID,
		CoverLetter: strings.TrimSpace(coverLetter),
		Status:      models.StatusNew,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.apps.Insert(ctx, app); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to submit application", err)
	}

	s.enqueueLeadSync(ctx, job, app.ID)
	return app, nil
}

// enqueueLeadSync never fails the submission.
func (s *applicationService) enqueueLeadSync(ctx context.Context, job *models.Job, applicationID string) {
	if s.queue == nil {
		return
	}
	log := s.log.WithFields(logrus.Fields{"application_id": applicationID, "employer_id": job.EmployerID})

	employer, err := s.profiles.GetByUserID(ctx, job.EmployerID)
	if err != nil {
		log.WithError(err).Warn("crm sync skipped: employer profile unavailable")
		return
	}
	if !employer.ZohoConnected {
		return
	}
	if err := s.queue.Enqueue(ctx, applicationID); err != nil {
		log.WithError(err).Warn("crm sync enqueue failed")
	}
}

func (s *applicationService) ListMine(ctx context.Context, applicantID string) ([]models.Application, error) {
	rows, err := s.apps.ListByApplicant(ctx, applicantID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, "ApplicationService.ListMine", "failed to list applications", err)
	}
	return rows, nil
}

func (s *applicationService) ListForJob(ctx context.Context, employerID, jobID string) ([]models.Application, error) {
	const op = "ApplicationService.ListForJob"

	if _, err := s.ownedJob(ctx, op, employerID, jobID); err != nil {
		return nil, err
	}
	rows, err := s.apps.ListByJob(ctx, jobID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list applications", err)
	}
	return rows, nil
}

func (s *applicationService) ChangeStatus(ctx context.Context, employerID, applicationID string, next models.ApplicationStatus) (*models.Application, error) {
	const op = "ApplicationService.ChangeStatus"

	if !next.Valid() {
		return nil, utils.E(utils.CodeInvalidArgument, op, "unknown application status", nil)
	}

	app, err := s.ownedApplication(ctx, op, employerID, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status == next {
		return app, nil
	}
	if !app.Status.CanTransition(next) {
		return nil, utils.E(utils.CodeConflict, op, "cannot move application from "+string(app.Status)+" to "+string(next), nil)
	}

	if err := s.apps.SetStatus(ctx, app.ID, next); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to update status", err)
	}
	app.Status = next
	app.UpdatedAt = time.Now().UTC()
	return app, nil
}

func (s *applicationService) ApplicantDetail(ctx context.Context, employerID, applicationID string) (*models.ApplicantDetail, error) {
	const op = "ApplicationService.ApplicantDetail"

	app, err := s.ownedApplication(ctx, op, employerID, applicationID)
	if err != nil {
		return nil, err
	}

	out := &models.ApplicantDetail{Application: *app}
	out.Profile, err = s.profiles.GetByUserID(ctx, app.ApplicantID)
	if err != nil && !errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeInternal, op, "failed to get applicant profile", err)
	}
	if out.Education, err = s.resume.ListEducation(ctx, app.ApplicantID); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list education", err)
	}
	if out.Experiences, err = s.resume.ListExperiences(ctx, app.ApplicantID); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list experiences", err)
	}
	if out.Skills, err = s.resume.ListSkills(ctx, app.ApplicantID); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list skills", err)
	}
	return out, nil
}

func (s *applicationService) ownedJob(ctx context.Context, op, employerID, jobID string) (*models.Job, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "job not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get job", err)
	}
	if job.EmployerID != employerID {
		return nil, utils.E(utils.CodeForbidden, op, "not the owner of this job", nil)
	}
	return job, nil
}

func (s *applicationService) ownedApplication(ctx context.Context, op, employerID, applicationID string) (*models.Application, error) {
	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "application not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get application", err)
	}
	if _, err := s.ownedJob(ctx, op, employerID, app.JobID); err != nil {
		return nil, err
	}
	return app, nil
}

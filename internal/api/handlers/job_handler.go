package handlers

import (
	"net/http"
	"strconv"

	"github.com/Varial17/studyfin-jobboard-sub000/internal/models"
	"github.com/Varial17/studyfin-jobboard-sub000/internal/services"
	"github.com/Varial17/studyfin-jobboard-sub000/internal/utils"
	"github.com/gin-gonic/gin"
)

type JobHandler struct {
	jobs services.JobService
	apps services.ApplicationService
}

func NewJobHandler(jobs services.JobService, apps services.ApplicationService) *JobHandler {
	return &JobHandler{jobs: jobs, apps: apps}
}

func (h *JobHandler) List(c *gin.Context) {
	const op = "JobHandler.List"

	f := models.JobFilter{
		Query:    c.Query("q"),
		Location: c.Query("location"),
		Type:     models.JobType(c.Query("type")),
	}
	if v := c.Query("visa_sponsorship"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(c, utils.E(utils.CodeInvalidArgument, op, "visa_sponsorship must be a boolean", err))
			return
		}
		f.VisaSponsorship = &b
	}
	var err error
	if f.Limit, err = intQuery(c, "limit", 20); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "limit must be a number", err))
		return
	}
	if f.Offset, err = intQuery(c, "offset", 0); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "offset must be a number", err))
		return
	}

	rows, err := h.jobs.List(c.Request.Context(), f)
	respond(c, http.StatusOK, rows, err)
}

func (h *JobHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	j, err := h.jobs.Get(c.Request.Context(), id)
	respond(c, http.StatusOK, j, err)
}

type createJobRequest struct {
	Title           string           `json:"title" binding:"required,max=200"`
	Company         string           `json:"company" binding:"required,max=200"`
	Location        string           `json:"location" binding:"max=200"`
	Type            models.JobType   `json:"type" binding:"required,oneof=full_time part_time contract internship temporary"`
	Description     string           `json:"description" binding:"required"`
	Requirements    []string         `json:"requirements"`
	SalaryMin       *int             `json:"salary_min" binding:"omitempty,min=0"`
	SalaryMax       *int             `json:"salary_max" binding:"omitempty,min=0"`
	SalaryCurrency  string           `json:"salary_currency" binding:"omitempty,len=3"`
	VisaSponsorship bool             `json:"visa_sponsorship"`
	Status          models.JobStatus `json:"status" binding:"omitempty,oneof=open closed draft"`
}

func (h *JobHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req createJobRequest
	if !bindJSON(c, "JobHandler.Create", &req) {
		return
	}
	j, err := h.jobs.Create(c.Request.Context(), userID, models.Job{
		Title:           req.Title,
		Company:         req.Company,
		Location:        req.Location,
		Type:            req.Type,
		Description:     req.Description,
		Requirements:    req.Requirements,
		SalaryMin:       req.SalaryMin,
		SalaryMax:       req.SalaryMax,
		SalaryCurrency:  req.SalaryCurrency,
		VisaSponsorship: req.VisaSponsorship,
		Status:          req.Status,
	})
	respond(c, http.StatusCreated, j, err)
}

func (h *JobHandler) Update(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req models.JobPatch
	if !bindJSON(c, "JobHandler.Update", &req) {
		return
	}
	j, err := h.jobs.Update(c.Request.Context(), userID, id, req)
	respond(c, http.StatusOK, j, err)
}

func (h *JobHandler) ListMine(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	rows, err := h.jobs.ListByEmployer(c.Request.Context(), userID)
	respond(c, http.StatusOK, rows, err)
}

func (h *JobHandler) ListApplications(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	rows, err := h.apps.ListForJob(c.Request.Context(), userID, id)
	respond(c, http.StatusOK, rows, err)
}

func intQuery(c *gin.Context, key string, def int) (int, error) {
	v := c.Query(key)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

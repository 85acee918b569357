package models

import (
	"time"

	"github.com/lib/pq"
)

type JobType string

const (
	JobFullTime   JobType = "full_time"
	JobPartTime   JobType = "part_time"
	JobContract   JobType = "contract"
	JobInternship JobType = "internship"
	JobTemporary  JobType = "temporary"
)

func (t JobType) Valid() bool {
	switch t {
	case JobFullTime, JobPartTime, JobContract, JobInternship, JobTemporary:
		return true
	}
	return false
}

type JobStatus string

const (
	JobOpen   JobStatus = "open"
	JobClosed JobStatus = "closed"
	JobDraft  JobStatus = "draft"
)

func (s JobStatus) Valid() bool {
	return s == JobOpen || s == JobClosed || s == JobDraft
}

type Job struct {
	ID          string  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	EmployerID  string  `gorm:"column:employer_id;type:uuid;index" json:"employer_id"`
	Title       string  `gorm:"column:title;type:text" json:"title"`
	Company     string  `gorm:"column:company;type:text" json:"company"`
	Location    string  `gorm:"column:location;type:text" json:"location"`
	Type        JobType `gorm:"column:type;type:text" json:"type"`
	Description string  `gorm:"column:description;type:text" json:"description"`

	Requirements pq.StringArray `gorm:"column:requirements;type:text[]" json:"requirements"`

	SalaryMin      *int   `gorm:"column:salary_min;type:integer" json:"salary_min,omitempty"`
	SalaryMax      *int   `gorm:"column:salary_max;type:integer" json:"salary_max,omitempty"`
	SalaryCurrency string `gorm:"column:salary_currency;type:text" json:"salary_currency,omitempty"`

	VisaSponsorship bool      `gorm:"column:visa_sponsorship;default:false" json:"visa_sponsorship"`
	Status          JobStatus `gorm:"column:status;type:text;index" json:"status"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (Job) TableName() string { return "jobs" }

type JobFilter struct {
	Query           string
	Location        string
	Type            JobType
	VisaSponsorship *bool
	Limit           int
	Offset          int
}

// JobPatch overwrites only the provided fields.
type JobPatch struct {
	Title           *string    `json:"title,omitempty" binding:"omitempty,min=1,max=200"`
	Company         *string    `json:"company,omitempty" binding:"omitempty,min=1,max=200"`
	Location        *string    `json:"location,omitempty" binding:"omitempty,max=200"`
	Type            *JobType   `json:"type,omitempty" binding:"omitempty,oneof=full_time part_time contract internship temporary"`
	Description     *string    `json:"description,omitempty"`
	Requirements    *[]string  `json:"requirements,omitempty"`
	SalaryMin       *int       `json:"salary_min,omitempty" binding:"omitempty,min=0"`
	SalaryMax       *int       `json:"salary_max,omitempty" binding:"omitempty,min=0"`
	SalaryCurrency  *string    `json:"salary_currency,omitempty" binding:"omitempty,len=3"`
	VisaSponsorship *bool      `json:"visa_sponsorship,omitempty"`
	Status          *JobStatus `json:"status,omitempty" binding:"omitempty,oneof=open closed draft"`
}

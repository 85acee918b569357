package models

import "time"

type ApplicationStatus string

const (
	StatusNew         ApplicationStatus = "new"
	StatusReviewing   ApplicationStatus = "reviewing"
	StatusShortlisted ApplicationStatus = "shortlisted"
	StatusInterview   ApplicationStatus = "interview"
	StatusOffer       ApplicationStatus = "offer"
	StatusHired       ApplicationStatus = "hired"
	StatusRejected    ApplicationStatus = "rejected"
)

// pipeline order; rejected sits outside it.
var pipeline = []ApplicationStatus{
	StatusNew,
	StatusReviewing,
	StatusShortlisted,
	StatusInterview,
	StatusOffer,
	StatusHired,
}

var allowedTransitions = buildTransitions()

// buildTransitions allows any forward move along the pipeline (stages may be
// skipped) and a move to rejected from every non-terminal stage.
func buildTransitions() map[ApplicationStatus]map[ApplicationStatus]struct{} {
	out := make(map[ApplicationStatus]map[ApplicationStatus]struct{}, len(pipeline)+1)
	for i, from := range pipeline {
		next := map[ApplicationStatus]struct{}{}
		for _, to := range pipeline[i+1:] {
			next[to] = struct{}{}
		}
		if from != StatusHired {
			next[StatusRejected] = struct{}{}
		}
		out[from] = next
	}
	out[StatusRejected] = map[ApplicationStatus]struct{}{}
	return out
}

func (s ApplicationStatus) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

func (s ApplicationStatus) Terminal() bool {
	return s == StatusHired || s == StatusRejected
}

// CanTransition reports whether an application in status s may move to next.
// Setting the current status again is not a transition and returns false.
func (s ApplicationStatus) CanTransition(next ApplicationStatus) bool {
	targets, ok := allowedTransitions[s]
	if !ok {
		return false
	}
	_, ok = targets[next]
	return ok
}

type Application struct {
	ID          string            `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	JobID       string            `gorm:"column:job_id;type:uuid;index" json:"job_id"`
	ApplicantID string            `gorm:"column:applicant_id;type:uuid;index" json:"applicant_id"`
	CoverLetter string            `gorm:"column:cover_letter;type:text" json:"cover_letter"`
	Status      ApplicationStatus `gorm:"column:status;type:text" json:"status"`
	ZohoSynced  bool              `gorm:"column:zoho_synced;default:false" json:"zoho_synced"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`

	Job *Job `gorm:"foreignKey:JobID;references:ID" json:"job,omitempty"`
}

func (Application) TableName() string { return "applications" }

// ApplicantDetail is what an employer sees on the applicant page.
type ApplicantDetail struct {
	Application Application  `json:"application"`
	Profile     *Profile     `json:"profile"`
	Education   []Education  `json:"education"`
	Experiences []Experience `json:"experiences"`
	Skills      []Skill      `json:"skills"`
}

package models

import (
	"time"

	"gorm.io/datatypes"
)

type ProfileRole string

const (
	RoleApplicant ProfileRole = "applicant"
	RoleEmployer  ProfileRole = "employer"
)

func (r ProfileRole) Valid() bool {
	return r == RoleApplicant || r == RoleEmployer
}

// Subscription statuses as reported by the payment provider. Only "active" grants
// the employer role; every other value (including unknown ones) maps to applicant.
const (
	SubscriptionActive   = "active"
	SubscriptionCanceled = "canceled"
	SubscriptionUnpaid   = "unpaid"
	SubscriptionPastDue  = "past_due"
)

type Profile struct {
	UserID   string `gorm:"column:user_id;type:uuid;primaryKey" json:"user_id"`
	FullName string `gorm:"column:full_name;type:text" json:"full_name"`
	Title    string `gorm:"column:title;type:text" json:"title"`
	Bio      string `gorm:"column:bio;type:text" json:"bio"`
	Location string `gorm:"column:location;type:text" json:"location"`
	Phone    string `gorm:"column:phone;type:text" json:"phone"`
	Email    string `gorm:"column:email;type:text" json:"email"`

	// JSONB: {"linkedin": "...", "github": "...", "website": "..."}
	Links datatypes.JSON `gorm:"column:links;type:jsonb" json:"links"`

	University     string `gorm:"column:university;type:text" json:"university"`
	Degree         string `gorm:"column:degree;type:text" json:"degree"`
	FieldOfStudy   string `gorm:"column:field_of_study;type:text" json:"field_of_study"`
	GraduationYear *int   `gorm:"column:graduation_year;type:integer" json:"graduation_year,omitempty"`

	CVURL string `gorm:"column:cv_url;type:text" json:"cv_url"`

	Role               ProfileRole `gorm:"column:role;type:text;default:applicant" json:"role"`
	SubscriptionStatus *string     `gorm:"column:subscription_status;type:text" json:"subscription_status"`
	SubscriptionID     string      `gorm:"column:subscription_id;type:text" json:"subscription_id"`
	StripeCustomerID   string      `gorm:"column:stripe_customer_id;type:text;index" json:"-"`
	ZohoConnected      bool        `gorm:"column:zoho_connected;default:false" json:"zoho_connected"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (Profile) TableName() string { return "profiles" }

// HasActiveSubscription reports whether the stored status is "active".
func (p *Profile) HasActiveSubscription() bool {
	return p.SubscriptionStatus != nil && *p.SubscriptionStatus == SubscriptionActive
}

type ProfileLinks struct {
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`
	Website  string `json:"website,omitempty"`
}

// ProfileDetailsPatch is the "about me" form section. Nil fields are left untouched.
type ProfileDetailsPatch struct {
	FullName *string       `json:"full_name,omitempty" binding:"omitempty,max=200"`
	Title    *string       `json:"title,omitempty" binding:"omitempty,max=200"`
	Bio      *string       `json:"bio,omitempty" binding:"omitempty,max=5000"`
	Location *string       `json:"location,omitempty" binding:"omitempty,max=200"`
	Phone    *string       `json:"phone,omitempty" binding:"omitempty,max=50"`
	Links    *ProfileLinks `json:"links,omitempty"`
}

// ProfileEducationPatch is the education form section stored on the profile row.
type ProfileEducationPatch struct {
	University     *string `json:"university,omitempty" binding:"omitempty,max=200"`
	Degree         *string `json:"degree,omitempty" binding:"omitempty,max=200"`
	FieldOfStudy   *string `json:"field_of_study,omitempty" binding:"omitempty,max=200"`
	GraduationYear *int    `json:"graduation_year,omitempty" binding:"omitempty,min=1900,max=2100"`
}

// SubscriptionPatch is written only by the reconciler.
type SubscriptionPatch struct {
	Role               ProfileRole
	SubscriptionStatus string
	SubscriptionID     string
	StripeCustomerID   string
}

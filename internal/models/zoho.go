package models

import "time"

type ZohoCredentials struct {
	UserID       string    `gorm:"column:user_id;type:uuid;primaryKey" json:"user_id"`
	AccessToken  string    `gorm:"column:access_token;type:text" json:"-"`
	RefreshToken string    `gorm:"column:refresh_token;type:text" json:"-"`
	APIDomain    string    `gorm:"column:api_domain;type:text" json:"api_domain"`
	ExpiresAt    time.Time `gorm:"column:expires_at;type:timestamptz" json:"expires_at"`
	CreatedAt    time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

// ZohoStateAudience marks OAuth state tokens; they are never valid as access tokens.
const ZohoStateAudience = "zoho-connect"

func (ZohoCredentials) TableName() string { return "zoho_credentials" }

// Expired reports whether the access token can no longer be used at now.
func (c *ZohoCredentials) Expired(now time.Time) bool {
	return !c.ExpiresAt.After(now)
}

type ZohoStatus struct {
	Connected bool       `json:"connected"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Lead is the CRM-side record built from a profile or application.
type Lead struct {
	FirstName   string `json:"First_Name,omitempty"`
	LastName    string `json:"Last_Name"`
	Email       string `json:"Email,omitempty"`
	Phone       string `json:"Phone,omitempty"`
	Company     string `json:"Company,omitempty"`
	Designation string `json:"Designation,omitempty"`
	City        string `json:"City,omitempty"`
	LeadSource  string `json:"Lead_Source,omitempty"`
	Description string `json:"Description,omitempty"`
}

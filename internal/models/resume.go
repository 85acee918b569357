package models

import "time"

type Education struct {
	ID           string     `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ProfileID    string     `gorm:"column:profile_id;type:uuid;index" json:"profile_id"`
	Institution  string     `gorm:"column:institution;type:text" json:"institution" binding:"required,max=200"`
	Degree       string     `gorm:"column:degree;type:text" json:"degree" binding:"max=200"`
	FieldOfStudy string     `gorm:"column:field_of_study;type:text" json:"field_of_study" binding:"max=200"`
	StartDate    *time.Time `gorm:"column:start_date;type:date" json:"start_date,omitempty"`
	EndDate      *time.Time `gorm:"column:end_date;type:date" json:"end_date,omitempty"`
	Description  string     `gorm:"column:description;type:text" json:"description"`
	CreatedAt    time.Time  `gorm:"column:created_at;type:timestamptz" json:"created_at"`
}

func (Education) TableName() string { return "education" }

type Experience struct {
	ID          string     `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ProfileID   string     `gorm:"column:profile_id;type:uuid;index" json:"profile_id"`
	Company     string     `gorm:"column:company;type:text" json:"company" binding:"required,max=200"`
	Position    string     `gorm:"column:position;type:text" json:"position" binding:"required,max=200"`
	Location    string     `gorm:"column:location;type:text" json:"location" binding:"max=200"`
	StartDate   *time.Time `gorm:"column:start_date;type:date" json:"start_date,omitempty"`
	EndDate     *time.Time `gorm:"column:end_date;type:date" json:"end_date,omitempty"`
	Current     bool       `gorm:"column:current;default:false" json:"current"`
	Description string     `gorm:"column:description;type:text" json:"description"`
	CreatedAt   time.Time  `gorm:"column:created_at;type:timestamptz" json:"created_at"`
}

func (Experience) TableName() string { return "experiences" }

type Skill struct {
	ID        string    `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ProfileID string    `gorm:"column:profile_id;type:uuid;index" json:"profile_id"`
	Name      string    `gorm:"column:name;type:text" json:"name" binding:"required,max=100"`
	Level     string    `gorm:"column:level;type:text" json:"level" binding:"omitempty,oneof=beginner intermediate advanced expert"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
}

func (Skill) TableName() string { return "skills" }

package models

// UserRole is the app_metadata role in the access token, separate from ProfileRole.
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

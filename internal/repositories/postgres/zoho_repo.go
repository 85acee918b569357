package postgres

import (
	"context"
	"errors"

	"github.com/Varial17/studyfin-jobboard-sub000/internal/models"
	"github.com/Varial17/studyfin-jobboard-sub000/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ZohoCredentialRepository interface {
	Get(ctx context.Context, userID string) (*models.ZohoCredentials, error)
	Save(ctx context.Context, c *models.ZohoCredentials) error
	Delete(ctx context.Context, userID string) error
}

type zohoCredentialRepo struct {
	db *gorm.DB
}

func NewZohoCredentialRepo(db *gorm.DB) ZohoCredentialRepository {
	return &zohoCredentialRepo{db: db}
}

func (r *zohoCredentialRepo) Get(ctx context.Context, userID string) (*models.ZohoCredentials, error) {
	var c models.ZohoCredentials
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &c, err
}

func (r *zohoCredentialRepo) Save(ctx context.Context, c *models.ZohoCredentials) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"access_token", "refresh_token", "api_domain", "expires_at", "updated_at"}),
		}).
		Create(c).Error
}

// Delete is a hard delete; deleting a missing row is not an error.
func (r *zohoCredentialRepo) Delete(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.ZohoCredentials{}).Error
}

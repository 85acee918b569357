package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Varial17/studyfin-jobboard-sub000/internal/models"
	"github.com/Varial17/studyfin-jobboard-sub000/internal/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.Profile, error)
	GetByStripeCustomerID(ctx context.Context, customerID string) (*models.Profile, error)
	CreateIfMissing(ctx context.Context, p *models.Profile) error
	ApplyDetails(ctx context.Context, userID string, patch models.ProfileDetailsPatch) error
	ApplyEducation(ctx context.Context, userID string, patch models.ProfileEducationPatch) error
	SetCVURL(ctx context.Context, userID, url string) error
	SetRole(ctx context.Context, userID string, role models.ProfileRole) error
	ApplySubscription(ctx context.Context, userID string, patch models.SubscriptionPatch) error
	SetStripeCustomerID(ctx context.Context, userID, customerID string) error
	SetZohoConnected(ctx context.Context, userID string, connected bool) error
	// ListAfter pages profiles by user_id; pass "" to start.
	ListAfter(ctx context.Context, afterUserID string, limit int) ([]models.Profile, error)
}

type profileRepo struct {
	db *gorm.DB
}

func NewProfileRepo(db *gorm.DB) ProfileRepository {
	return &profileRepo{db: db}
}

func (r *profileRepo) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	var p models.Profile
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &p, err
}

func (r *profileRepo) GetByStripeCustomerID(ctx context.Context, customerID string) (*models.Profile, error) {
	var p models.Profile
	err := r.db.WithContext(ctx).
		Where("stripe_customer_id = ?", customerID).
		Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &p, err
}

func (r *profileRepo) CreateIfMissing(ctx context.Context, p *models.Profile) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(p).Error
}

func (r *profileRepo) ApplyDetails(ctx context.Context, userID string, patch models.ProfileDetailsPatch) error {
	cols := map[string]any{}
	if patch.FullName != nil {
		cols["full_name"] = *patch.FullName
	}
	if patch.Title != nil {
		cols["title"] = *patch.Title
	}
	if patch.Bio != nil {
		cols["bio"] = *patch.Bio
	}
	if patch.Location != nil {
		cols["location"] = *patch.Location
	}
	if patch.Phone != nil {
		cols["phone"] = *patch.Phone
	}
	if patch.Links != nil {
		b, err := json.Marshal(patch.Links)
		if err != nil {
			return err
		}
		cols["links"] = datatypes.JSON(b)
	}
	return r.update(ctx, userID, cols)
}

func (r *profileRepo) ApplyEducation(ctx context.Context, userID string, patch models.ProfileEducationPatch) error {
	cols := map[string]any{}
	if patch.University != nil {
		cols["university"] = *patch.University
	}
	if patch.Degree != nil {
		cols["degree"] = *patch.Degree
	}
	if patch.FieldOfStudy != nil {
		cols["field_of_study"] = *patch.FieldOfStudy
	}
	if patch.GraduationYear != nil {
		cols["graduation_year"] = *patch.GraduationYear
	}
	return r.update(ctx, userID, cols)
}

func (r *profileRepo) SetCVURL(ctx context.Context, userID, url string) error {
	return r.update(ctx, userID, map[string]any{"cv_url": url})
}

func (r *profileRepo) SetRole(ctx context.Context, userID string, role models.ProfileRole) error {
	return r.update(ctx, userID, map[string]any{"role": role})
}

func (r *profileRepo) ApplySubscription(ctx context.Context, userID string, patch models.SubscriptionPatch) error {
	cols := map[string]any{
		"role":                patch.Role,
		"subscription_status": patch.SubscriptionStatus,
	}
	if patch.SubscriptionID != "" {
		cols["subscription_id"] = patch.SubscriptionID
	}
	if patch.StripeCustomerID != "" {
		cols["stripe_customer_id"] = patch.StripeCustomerID
	}
	return r.update(ctx, userID, cols)
}

func (r *profileRepo) SetStripeCustomerID(ctx context.Context, userID, customerID string) error {
	return r.update(ctx, userID, map[string]any{"stripe_customer_id": customerID})
}

func (r *profileRepo) SetZohoConnected(ctx context.Context, userID string, connected bool) error {
	return r.update(ctx, userID, map[string]any{"zoho_connected": connected})
}

func (r *profileRepo) ListAfter(ctx context.Context, afterUserID string, limit int) ([]models.Profile, error) {
	if limit <= 0 {
		limit = 100
	}
	q := r.db.WithContext(ctx).Order("user_id ASC").Limit(limit)
	if afterUserID != "" {
		q = q.Where("user_id > ?", afterUserID)
	}
	var rows []models.Profile
	err := q.Find(&rows).Error
	return rows, err
}

// update writes only cols; an empty patch is a no-op.
func (r *profileRepo) update(ctx context.Context, userID string, cols map[string]any) error {
	if len(cols) == 0 {
		return nil
	}
	cols["updated_at"] = time.Now().UTC()

	res := r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("user_id = ?", userID).
		Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/Varial17/studyfin-jobboard-sub000/internal/models"
	"github.com/Varial17/studyfin-jobboard-sub000/internal/utils"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory database with the tables the
// sqlite dialect can create from the postgres tags.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1) // every connection would get its own :memory: db
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.Profile{},
		&models.ZohoCredentials{},
		&models.Education{},
		&models.Experience{},
		&models.Skill{},
	))
	return db
}

func seedProfile(t *testing.T, repo ProfileRepository, p models.Profile) {
	t.Helper()
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	if p.Role == "" {
		p.Role = models.RoleApplicant
	}
	require.NoError(t, repo.CreateIfMissing(context.Background(), &p))
}

func TestProfileRepo_ApplySubscriptionKeepsIDsOnEmpty(t *testing.T) {
	repo := NewProfileRepo(newTestDB(t))
	ctx := context.Background()
	seedProfile(t, repo, models.Profile{UserID: "u1"})

	require.NoError(t, repo.ApplySubscription(ctx, "u1", models.SubscriptionPatch{
		Role:               models.RoleEmployer,
		SubscriptionStatus: "active",
		SubscriptionID:     "sub_1",
		StripeCustomerID:   "cus_1",
	}))

	// a later event without ids only moves role and status
	require.NoError(t, repo.ApplySubscription(ctx, "u1", models.SubscriptionPatch{
		Role:               models.RoleApplicant,
		SubscriptionStatus: "canceled",
	}))

	p, err := repo.GetByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleApplicant, p.Role)
	require.NotNil(t, p.SubscriptionStatus)
	assert.Equal(t, "canceled", *p.SubscriptionStatus)
	assert.Equal(t, "sub_1", p.SubscriptionID)
	assert.Equal(t, "cus_1", p.StripeCustomerID)

	byCustomer, err := repo.GetByStripeCustomerID(ctx, "cus_1")
	require.NoError(t, err)
	assert.Equal(t, "u1", byCustomer.UserID)
}

func TestProfileRepo_MissingRowIsNotFound(t *testing.T) {
	repo := NewProfileRepo(newTestDB(t))
	ctx := context.Background()

	_, err := repo.GetByUserID(ctx, "ghost")
	assert.ErrorIs(t, err, utils.ErrNotFound)

	err = repo.ApplySubscription(ctx, "ghost", models.SubscriptionPatch{Role: models.RoleEmployer, SubscriptionStatus: "active"})
	assert.ErrorIs(t, err, utils.ErrNotFound)
	assert.ErrorIs(t, repo.SetRole(ctx, "ghost", models.RoleEmployer), utils.ErrNotFound)

	_, err = repo.GetByStripeCustomerID(ctx, "cus_none")
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestProfileRepo_CreateIfMissingKeepsExisting(t *testing.T) {
	repo := NewProfileRepo(newTestDB(t))
	ctx := context.Background()
	seedProfile(t, repo, models.Profile{UserID: "u1", FullName: "Ada"})
	seedProfile(t, repo, models.Profile{UserID: "u1", FullName: "Overwritten"})

	p, err := repo.GetByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", p.FullName)
}

func TestProfileRepo_ClosedPatches(t *testing.T) {
	repo := NewProfileRepo(newTestDB(t))
	ctx := context.Background()
	seedProfile(t, repo, models.Profile{UserID: "u1", FullName: "Ada", Bio: "kept"})

	title := "Engineer"
	require.NoError(t, repo.ApplyDetails(ctx, "u1", models.ProfileDetailsPatch{Title: &title}))
	// empty patch writes nothing, even for a missing row
	require.NoError(t, repo.ApplyDetails(ctx, "ghost", models.ProfileDetailsPatch{}))

	p, err := repo.GetByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Engineer", p.Title)
	assert.Equal(t, "Ada", p.FullName)
	assert.Equal(t, "kept", p.Bio)
}

func TestProfileRepo_ListAfterPages(t *testing.T) {
	repo := NewProfileRepo(newTestDB(t))
	ctx := context.Background()
	for _, id := range []string{"c", "a", "e", "b", "d"} {
		seedProfile(t, repo, models.Profile{UserID: id})
	}

	var seen []string
	after := ""
	for {
		page, err := repo.ListAfter(ctx, after, 2)
		require.NoError(t, err)
		if len(page) == 0 {
			break
		}
		for _, p := range page {
			seen = append(seen, p.UserID)
		}
		after = page[len(page)-1].UserID
	}
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, seen)
}

func TestZohoCredentialRepo_SaveUpsertsAndDeleteIsIdempotent(t *testing.T) {
	repo := NewZohoCredentialRepo(newTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, repo.Save(ctx, &models.ZohoCredentials{
		UserID: "emp", AccessToken: "at-1", RefreshToken: "rt-1", ExpiresAt: now, CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, repo.Save(ctx, &models.ZohoCredentials{
		UserID: "emp", AccessToken: "at-2", RefreshToken: "rt-1", ExpiresAt: now.Add(time.Hour), CreatedAt: now, UpdatedAt: now,
	}))

	c, err := repo.Get(ctx, "emp")
	require.NoError(t, err)
	assert.Equal(t, "at-2", c.AccessToken)
	assert.True(t, c.ExpiresAt.After(now))

	require.NoError(t, repo.Delete(ctx, "emp"))
	require.NoError(t, repo.Delete(ctx, "emp"))
	_, err = repo.Get(ctx, "emp")
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestResumeRepo_OwnerScoped(t *testing.T) {
	repo := NewResumeRepo(newTestDB(t))
	ctx := context.Background()

	sk := &models.Skill{ID: "s1", ProfileID: "owner", Name: "Go", Level: "expert", CreatedAt: time.Now().UTC()}
	require.NoError(t, repo.InsertSkill(ctx, sk))

	other := *sk
	other.ProfileID = "intruder"
	other.Name = "Hijacked"
	assert.ErrorIs(t, repo.UpdateSkill(ctx, &other), utils.ErrNotFound)
	assert.ErrorIs(t, repo.DeleteSkill(ctx, "intruder", "s1"), utils.ErrNotFound)

	rows, err := repo.ListSkills(ctx, "owner")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Go", rows[0].Name)

	require.NoError(t, repo.DeleteSkill(ctx, "owner", "s1"))
	assert.ErrorIs(t, repo.DeleteSkill(ctx, "owner", "s1"), utils.ErrNotFound)
}

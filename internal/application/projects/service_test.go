package projects

import (
	"context"
	"testing"
	"time"

	"charity-fund/internal/domain"
	"charity-fund/internal/infrastructure/database"
	"charity-fund/internal/infrastructure/lock"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func strp(s string) *string { return &s }
func intp(n int64) *int64   { return &n }

type clock struct{ t time.Time }

func (c *clock) now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

func setup(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := database.OpenMigrated("sqlite://:memory:")
	require.NoError(t, err)
	c := &clock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	return &Service{DB: db, Locker: lock.NewLocal(), Now: c.now}, db
}

func seedDonation(t *testing.T, db *gorm.DB, full, invested int64, at time.Time) *domain.Donation {
	t.Helper()
	f, err := domain.NewFunding(full, invested, at)
	require.NoError(t, err)
	d := &domain.Donation{Funding: f}
	require.NoError(t, db.Create(d).Error)
	return d
}

func TestCreate_NoDonations(t *testing.T) {
	svc, _ := setup(t)
	p, err := svc.Create(context.Background(), CreateInput{Name: strp("Cats"), Description: strp("food"), FullAmount: intp(100)})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.Equal(t, int64(0), p.InvestedAmount)
	assert.False(t, p.FullyInvested)
	assert.Nil(t, p.CloseDate)
}

func TestCreate_ConsumesDonationsOldestFirst(t *testing.T) {
	svc, db := setup(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	old := seedDonation(t, db, 30, 0, base)
	mid := seedDonation(t, db, 50, 10, base.Add(time.Hour))
	young := seedDonation(t, db, 100, 0, base.Add(2*time.Hour))

	p, err := svc.Create(context.Background(), CreateInput{Name: strp("Cats"), Description: strp("food"), FullAmount: intp(60)})
	require.NoError(t, err)
	assert.True(t, p.FullyInvested)
	assert.Equal(t, int64(60), p.InvestedAmount)
	require.NotNil(t, p.CloseDate)

	var got domain.Donation
	require.NoError(t, db.First(&got, "id = ?", old.ID).Error)
	assert.True(t, got.FullyInvested)
	assert.Equal(t, int64(30), got.InvestedAmount)

	require.NoError(t, db.First(&got, "id = ?", mid.ID).Error)
	assert.True(t, got.FullyInvested)
	assert.Equal(t, int64(50), got.InvestedAmount)

	require.NoError(t, db.First(&got, "id = ?", young.ID).Error)
	assert.False(t, got.FullyInvested)
	assert.Equal(t, int64(0), got.InvestedAmount)

	rows, err := svc.Allocations(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	var total int64
	for _, r := range rows {
		total += r.Amount
	}
	assert.Equal(t, int64(60), total)
}

func TestCreate_Validation(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Description: strp("d"), FullAmount: intp(1)})
	assert.ErrorIs(t, err, ErrEmptyField)
	_, err = svc.Create(ctx, CreateInput{Name: strp("123"), Description: strp("d"), FullAmount: intp(1)})
	assert.ErrorIs(t, err, ErrInvalidName)
	_, err = svc.Create(ctx, CreateInput{Name: strp("ok"), Description: strp(" "), FullAmount: intp(1)})
	assert.ErrorIs(t, err, ErrInvalidDescription)
	_, err = svc.Create(ctx, CreateInput{Name: strp("ok"), Description: strp("d"), FullAmount: intp(0)})
	assert.ErrorIs(t, err, ErrInvalidFullAmount)
}

func TestCreate_DuplicateName(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, CreateInput{Name: strp("Cats"), Description: strp("d"), FullAmount: intp(5)})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{Name: strp("Cats"), Description: strp("other"), FullAmount: intp(7)})
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestCreate_LockBusy(t *testing.T) {
	svc, _ := setup(t)
	svc.LockTimeout = 20 * time.Millisecond
	release, err := svc.Locker.Lock(context.Background())
	require.NoError(t, err)
	defer release()

	_, err = svc.Create(context.Background(), CreateInput{Name: strp("Cats"), Description: strp("d"), FullAmount: intp(5)})
	assert.ErrorIs(t, err, lock.ErrNotAcquired)
}

func TestUpdate(t *testing.T) {
	svc, db := setup(t)
	ctx := context.Background()
	seedDonation(t, db, 40, 0, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	p, err := svc.Create(ctx, CreateInput{Name: strp("Cats"), Description: strp("d"), FullAmount: intp(100)})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{Name: strp("Dogs"), Description: strp("d"), FullAmount: intp(10)})
	require.NoError(t, err)

	_, err = svc.Update(ctx, uuid.New(), UpdateInput{Description: strp("x")})
	assert.ErrorIs(t, err, ErrProjectNotFound)

	_, err = svc.Update(ctx, p.ID, UpdateInput{Name: strp("Dogs")})
	assert.ErrorIs(t, err, ErrDuplicateName)

	_, err = svc.Update(ctx, p.ID, UpdateInput{FullAmount: intp(39)})
	assert.ErrorIs(t, err, ErrFullBelowInvested)

	_, err = svc.Update(ctx, p.ID, UpdateInput{Name: strp("")})
	assert.ErrorIs(t, err, ErrInvalidName)

	updated, err := svc.Update(ctx, p.ID, UpdateInput{Name: strp("Kittens"), Description: strp("milk")})
	require.NoError(t, err)
	assert.Equal(t, "Kittens", updated.Name)
	assert.Equal(t, "milk", updated.Description)
	assert.False(t, updated.FullyInvested)

	closed, err := svc.Update(ctx, p.ID, UpdateInput{FullAmount: intp(40)})
	require.NoError(t, err)
	assert.True(t, closed.FullyInvested)
	assert.NotNil(t, closed.CloseDate)
	require.NoError(t, closed.Validate())

	_, err = svc.Update(ctx, p.ID, UpdateInput{Description: strp("again")})
	assert.ErrorIs(t, err, ErrProjectClosed)
}

func TestDelete(t *testing.T) {
	svc, db := setup(t)
	ctx := context.Background()

	empty, err := svc.Create(ctx, CreateInput{Name: strp("Empty"), Description: strp("d"), FullAmount: intp(10)})
	require.NoError(t, err)
	deleted, err := svc.Delete(ctx, empty.ID)
	require.NoError(t, err)
	assert.Equal(t, empty.ID, deleted.ID)
	_, err = svc.Get(ctx, empty.ID)
	assert.ErrorIs(t, err, ErrProjectNotFound)

	seedDonation(t, db, 5, 0, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	funded, err := svc.Create(ctx, CreateInput{Name: strp("Funded"), Description: strp("d"), FullAmount: intp(10)})
	require.NoError(t, err)
	_, err = svc.Delete(ctx, funded.ID)
	assert.ErrorIs(t, err, ErrProjectHasFunds)

	_, err = svc.Delete(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestList(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	for _, name := range []string{"A project", "B project"} {
		_, err := svc.Create(ctx, CreateInput{Name: strp(name), Description: strp("d"), FullAmount: intp(10)})
		require.NoError(t, err)
	}
	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "A project", list[0].Name)
}

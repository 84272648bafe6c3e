package auth

import (
	"context"
	"testing"

	"charity-fund/internal/domain"
	"charity-fund/internal/infrastructure/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestVerifyUser_Nil(t *testing.T) {
	u, err := VerifyUser(nil)
	assert.Nil(t, u)
	assert.Equal(t, ErrNotAuthenticated, err)
}

func TestVerifyUser_NoUserID(t *testing.T) {
	u, err := VerifyUser(map[string]interface{}{"email": "a@b.com"})
	assert.Nil(t, u)
	assert.Equal(t, ErrNotAuthenticated, err)
}

func TestVerifyUser_Valid(t *testing.T) {
	u, err := VerifyUser(map[string]interface{}{
		"user_id":      "550e8400-e29b-41d4-a716-446655440000",
		"email":        "root@example.com",
		"is_superuser": true,
	})
	require.NoError(t, err)
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", u.UserID)
	assert.Equal(t, "superuser", u.Role)
	assert.True(t, u.IsSuperuser)
}

func TestLoginUser(t *testing.T) {
	db, err := database.OpenMigrated("sqlite://:memory:")
	require.NoError(t, err)
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&domain.User{Email: "donor@example.com", PasswordHash: string(hash), IsActive: true}).Error)
	require.NoError(t, db.Create(&domain.User{Email: "gone@example.com", PasswordHash: string(hash)}).Error)
	require.NoError(t, db.Model(&domain.User{}).Where("email = ?", "gone@example.com").Update("is_active", false).Error)

	_, err = LoginUser(db, LoginInput{})
	assert.Equal(t, ErrEmailPasswordRequired, err)

	_, err = LoginUser(db, LoginInput{Email: "nobody@example.com", Password: "x"})
	assert.Equal(t, ErrInvalidEmail, err)

	_, err = LoginUser(db, LoginInput{Email: "donor@example.com", Password: "wrong"})
	assert.Equal(t, ErrIncorrectPassword, err)

	_, err = LoginUser(db, LoginInput{Email: "gone@example.com", Password: "s3cret"})
	assert.Equal(t, ErrInactiveUser, err)

	finder := &GormUserFinder{DB: db}
	u, err := finder.FindByEmailAndPassword(context.Background(), "Donor@Example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "donor@example.com", u.Email)
}

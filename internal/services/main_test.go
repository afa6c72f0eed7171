package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/example/threadline/internal/database"
	"github.com/example/threadline/internal/models"
	"github.com/example/threadline/internal/utils"
)

// newTestDB opens a private in-memory database with the full schema,
// including the partial unique indexes the cart invariants rely on.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := &models.User{FirstName: "Nami", LastName: "Tester", Email: email, PasswordHash: "x"}
	require.NoError(t, db.Create(user).Error)
	require.NoError(t, db.Create(&models.UserProfile{UserID: user.ID}).Error)
	return user
}

func createTestItem(t *testing.T, db *gorm.DB, title string, price int64, discount *int64) *models.Item {
	t.Helper()

	item := &models.Item{
		Title:    title,
		Price:    price,
		Category: models.CategoryShirt,
		Slug:     utils.Slugify(models.CategoryShirt, title),
	}
	item.DiscountPrice = discount
	require.NoError(t, db.Create(item).Error)
	return item
}

func createTestCoupon(t *testing.T, db *gorm.DB, code string, amount int64) *models.Coupon {
	t.Helper()

	coupon := &models.Coupon{Code: code, Amount: amount}
	require.NoError(t, db.Create(coupon).Error)
	return coupon
}

func int64ptr(v int64) *int64 { return &v }

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&User{}, &Property{}, &PropertyImage{}, &PropertyVideo{}, &Favorite{}))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return db
}

func TestFavoriteUniquePerUserAndProperty(t *testing.T) {
	db := openTestDB(t)

	fav := Favorite{UserID: 1, PropertyID: 42}
	require.NoError(t, db.Create(&fav).Error)

	dup := Favorite{UserID: 1, PropertyID: 42}
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&dup)
	require.NoError(t, res.Error)
	assert.Equal(t, int64(0), res.RowsAffected)

	var count int64
	db.Model(&Favorite{}).Where("user_id = ? AND property_id = ?", 1, 42).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestFavoriteDifferentPropertiesAllowed(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.Create(&Favorite{UserID: 1, PropertyID: 42}).Error)
	require.NoError(t, db.Create(&Favorite{UserID: 1, PropertyID: 43}).Error)
	require.NoError(t, db.Create(&Favorite{UserID: 2, PropertyID: 42}).Error)

	var count int64
	db.Model(&Favorite{}).Count(&count)
	assert.Equal(t, int64(3), count)
}

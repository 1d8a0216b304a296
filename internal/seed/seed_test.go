package seed

import (
	"fmt"
	"testing"

	"talkshalk/internal/credential"
	"talkshalk/internal/database"
	"talkshalk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func TestSeeder_Run(t *testing.T) {
	db := setupDB(t)
	s := NewSeeder(db, credential.NewBcrypt(4))

	summary, err := s.Run(t.Context(), Options{Users: 4, PostsPerUser: 2, CommentsPerPost: 2, RandSeed: 42})
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Users)
	assert.Equal(t, 8, summary.Posts)
	assert.GreaterOrEqual(t, summary.Comments, 16)

	var users, posts, comments, likes int64
	db.Model(&models.User{}).Count(&users)
	db.Model(&models.Post{}).Count(&posts)
	db.Model(&models.Comment{}).Count(&comments)
	db.Model(&models.Like{}).Count(&likes)
	assert.EqualValues(t, summary.Users, users)
	assert.EqualValues(t, summary.Posts, posts)
	assert.EqualValues(t, summary.Comments, comments)
	assert.EqualValues(t, summary.Likes, likes)

	// Seeded users can sign in with the demo password.
	var first models.User
	require.NoError(t, db.Order("id").First(&first).Error)
	assert.True(t, credential.NewBcrypt(4).Matches(DemoPassword, first.Password))

	var withoutBio int64
	require.NoError(t, db.Model(&models.User{}).Where("bio = ''").Count(&withoutBio).Error)
	assert.Zero(t, withoutBio)

	// Replies only ever hang off top-level comments.
	var nested int64
	db.Table("comments AS c").
		Joins("JOIN comments AS p ON p.id = c.parent_id").
		Where("p.parent_id IS NOT NULL").
		Count(&nested)
	assert.Zero(t, nested)
}

func TestSeeder_ClearAll(t *testing.T) {
	db := setupDB(t)
	s := NewSeeder(db, credential.NewBcrypt(4))

	_, err := s.Run(t.Context(), Options{Users: 2, PostsPerUser: 1, CommentsPerPost: 1, RandSeed: 7})
	require.NoError(t, err)
	require.NoError(t, s.ClearAll(t.Context()))

	for _, model := range []interface{}{&models.User{}, &models.Post{}, &models.Comment{}, &models.Like{}} {
		var n int64
		require.NoError(t, db.Unscoped().Model(model).Count(&n).Error)
		assert.Zero(t, n, "%T", model)
	}
}

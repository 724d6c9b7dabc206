package database

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"vibblo-api/models"
)

func Initialize(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// Needed so unique index violations surface as
		// gorm.ErrDuplicatedKey instead of driver errors.
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Friendship{},
		&models.FriendRequest{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := addDatabaseConstraints(db); err != nil {
		return fmt.Errorf("failed to add database constraints: %w", err)
	}

	return nil
}

func addDatabaseConstraints(db *gorm.DB) error {
	// The unique pair indexes come from the model tags; these check
	// constraints keep self-edges out even if application guards are
	// bypassed.
	if err := db.Exec("ALTER TABLE friend_requests ADD CONSTRAINT ck_friend_requests_no_self CHECK (sender_id != receiver_id)").Error; err != nil {
		fmt.Printf("Warning: Could not add check constraint for friend_requests: %v\n", err)
	}

	if err := db.Exec("ALTER TABLE friendships ADD CONSTRAINT ck_friendships_no_self CHECK (user_id != friend_id)").Error; err != nil {
		fmt.Printf("Warning: Could not add check constraint for friendships: %v\n", err)
	}

	return nil
}

// SeedData populates the database with a couple of users for
// development and manual testing.
func SeedData(db *gorm.DB) error {
	var userCount int64
	db.Model(&models.User{}).Count(&userCount)

	if userCount > 0 {
		fmt.Println("Database already has data, skipping seed")
		return nil
	}

	testUsers := []models.User{
		{
			ID:             "user-1",
			Username:       "john_doe",
			FullName:       "John Doe",
			Email:          "john@example.com",
			Password:       "$2a$10$dummy", // placeholder hash, dev only
			EmailVerified:  true,
			ProfilePicture: models.DefaultProfilePicture,
			CoverImage:     models.DefaultCoverImage,
		},
		{
			ID:             "user-2",
			Username:       "jane_smith",
			FullName:       "Jane Smith",
			Email:          "jane@example.com",
			Password:       "$2a$10$dummy",
			EmailVerified:  true,
			ProfilePicture: models.DefaultProfilePicture,
			CoverImage:     models.DefaultCoverImage,
		},
	}

	for _, user := range testUsers {
		if err := db.Create(&user).Error; err != nil {
			fmt.Printf("Warning: Could not create test user %s: %v\n", user.Username, err)
		}
	}

	fmt.Println("Database seeded with test users")
	return nil
}

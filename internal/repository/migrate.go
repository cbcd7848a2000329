package repository

import "gorm.io/gorm"

// AutoMigrate creates or updates the users, campaigns and media_files tables
// with their indexes.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&userModel{}, &campaignModel{}, &mediaModel{})
}

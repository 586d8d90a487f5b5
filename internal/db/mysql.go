package db

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"asha/internal/model"
)

// NewMySQL connects to MySQL, migrates the users table and makes sure the
// signup lock row exists.
func NewMySQL(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.SignupLock{}); err != nil {
		return nil, fmt.Errorf("migrate users: %w", err)
	}
	if err := db.FirstOrCreate(&model.SignupLock{}, model.SignupLock{ID: model.SignupLockID}).Error; err != nil {
		return nil, fmt.Errorf("create signup lock row: %w", err)
	}
	return db, nil
}

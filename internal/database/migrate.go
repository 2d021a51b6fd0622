package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smartbites/backend/internal/models"
)

// Tables lists every model managed by auto-migration, parents first
var Tables = []any{
	&models.User{},
	&models.UserProfile{},
	&models.SavedRecipe{},
}

// RunMigrations brings the schema up to date
func RunMigrations(db *gorm.DB, log *zap.Logger) error {
	log.Info("running auto-migration", zap.String("dialect", db.Dialector.Name()))
	if err := db.AutoMigrate(Tables...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// DropAll removes every managed table, children first
func DropAll(db *gorm.DB, log *zap.Logger) error {
	for i := len(Tables) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(Tables[i]); err != nil {
			return fmt.Errorf("failed to drop table: %w", err)
		}
	}
	log.Warn("dropped all tables")
	return nil
}

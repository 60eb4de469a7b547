package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk/internal/models"
)

type envRunner func(run func(cmd *cobra.Command, e *env) error) func(*cobra.Command, []string) error

func newMigrateCommand(withEnv envRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update all tables",
		RunE: withEnv(func(cmd *cobra.Command, e *env) error {
			if err := Migrate(cmd.Context(), e.db, e.log); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migration completed")
			return nil
		}),
	}
}

// Migrate 迁移全部模型
func Migrate(ctx context.Context, db *gorm.DB, log *zap.Logger) error {
	all := models.AllModels()
	log.Info("migrating tables", zap.Int("models", len(all)))
	if err := db.WithContext(ctx).AutoMigrate(all...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Package commands 维护工具子命令
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk/internal/common/config"
	"github.com/dumeirei/hotel-frontdesk/internal/common/database"
	"github.com/dumeirei/hotel-frontdesk/internal/common/logger"
)

const (
	appName    = "frontdesk-utils"
	appVersion = "1.0.0"
)

// env 子命令运行环境
type env struct {
	cfg *config.Config
	db  *gorm.DB
	log *zap.Logger
}

// opener 打开运行环境，测试中可替换
type opener func(configPath string) (*env, func(), error)

func openEnv(configPath string) (*env, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(&cfg.Logger); err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	db, err := database.Init(&cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	cleanup := func() {
		_ = database.Close()
		_ = logger.Sync()
	}
	return &env{cfg: cfg, db: db, log: logger.GetLogger()}, cleanup, nil
}

// NewRootCommand 创建根命令
func NewRootCommand() *cobra.Command {
	return newRootCommand(openEnv)
}

func newRootCommand(open opener) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           appName,
		Short:         "Hotel front-desk maintenance commands",
		Version:       appVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ./configs/config.yaml)")

	// 包装：每个子命令独立打开并释放运行环境
	withEnv := func(run func(cmd *cobra.Command, e *env) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			e, cleanup, err := open(configPath)
			if err != nil {
				return err
			}
			defer cleanup()
			return run(cmd, e)
		}
	}

	root.AddCommand(
		newMigrateCommand(withEnv),
		newSeedCommand(withEnv),
		newExportCommand(withEnv),
	)
	return root
}

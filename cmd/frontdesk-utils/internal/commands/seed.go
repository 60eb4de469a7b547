package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk/internal/common/config"
	"github.com/dumeirei/hotel-frontdesk/internal/repository"
	"github.com/dumeirei/hotel-frontdesk/internal/service/audit"
	catalogService "github.com/dumeirei/hotel-frontdesk/internal/service/catalog"
	roomService "github.com/dumeirei/hotel-frontdesk/internal/service/room"
	staffService "github.com/dumeirei/hotel-frontdesk/internal/service/staff"
)

// SeedResult 初始化结果
type SeedResult struct {
	Rooms    int
	Admin    bool
	Products int
}

func newSeedCommand(withEnv envRunner) *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate rooms, bootstrap admin and sample products on empty tables",
		RunE: withEnv(func(cmd *cobra.Command, e *env) error {
			if migrate {
				if err := Migrate(cmd.Context(), e.db, e.log); err != nil {
					return err
				}
			}
			res, err := Seed(cmd.Context(), e.db, e.cfg, e.log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rooms: %d, admin created: %t, products: %d\n", res.Rooms, res.Admin, res.Products)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "run migrate before seeding")
	return cmd
}

// Seed 空表时写入初始数据，已有数据的表跳过
func Seed(ctx context.Context, db *gorm.DB, cfg *config.Config, log *zap.Logger) (*SeedResult, error) {
	activity := audit.NewActivityService(repository.NewActivityRepository(db), nil)

	rooms := roomService.NewRoomService(repository.NewRoomRepository(db), repository.NewStayRepository(db), &cfg.Business.FrontDesk)
	staff := staffService.NewStaffService(repository.NewEmployeeRepository(db), nil, activity, cfg.Crypto.BcryptCost)
	products := catalogService.NewProductService(repository.NewProductRepository(db), activity)

	var res SeedResult
	var err error
	if res.Rooms, err = rooms.Generate(ctx); err != nil {
		return nil, fmt.Errorf("generate rooms: %w", err)
	}
	if res.Admin, err = staff.Bootstrap(ctx, &cfg.Business.Bootstrap); err != nil {
		return nil, fmt.Errorf("bootstrap admin: %w", err)
	}
	if res.Products, err = products.Seed(ctx); err != nil {
		return nil, fmt.Errorf("seed products: %w", err)
	}

	log.Info("seed completed",
		zap.Int("rooms", res.Rooms),
		zap.Bool("admin", res.Admin),
		zap.Int("products", res.Products),
	)
	return &res, nil
}

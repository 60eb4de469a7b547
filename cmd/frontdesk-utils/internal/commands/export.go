package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk/internal/common/config"
	"github.com/dumeirei/hotel-frontdesk/internal/common/database"
	"github.com/dumeirei/hotel-frontdesk/internal/repository"
	"github.com/dumeirei/hotel-frontdesk/internal/service/audit"
	"github.com/dumeirei/hotel-frontdesk/internal/service/finance"
	maintenanceService "github.com/dumeirei/hotel-frontdesk/internal/service/maintenance"
	reportService "github.com/dumeirei/hotel-frontdesk/internal/service/report"
	roomService "github.com/dumeirei/hotel-frontdesk/internal/service/room"
	"github.com/dumeirei/hotel-frontdesk/internal/service/stay"
)

const dateLayout = "2006-01-02"

func newExportCommand(withEnv envRunner) *cobra.Command {
	var from, to, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export activity and finance workbook (xlsx) for a date range",
		RunE: withEnv(func(cmd *cobra.Command, e *env) error {
			start, end, err := parseRange(from, to, time.Now())
			if err != nil {
				return err
			}
			path, err := Export(cmd.Context(), e.db, e.cfg, e.log, start, end, out)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		}),
	}
	cmd.Flags().StringVar(&from, "from", "", "start date YYYY-MM-DD (default first day of this month)")
	cmd.Flags().StringVar(&to, "to", "", "end date YYYY-MM-DD, inclusive (default today)")
	cmd.Flags().StringVarP(&out, "out", "o", ".", "output directory or .xlsx file path")
	return cmd
}

// parseRange 解析日期范围，结束日期包含当天
func parseRange(from, to string, now time.Time) (time.Time, time.Time, error) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := now
	if from != "" {
		t, err := time.ParseInLocation(dateLayout, from, now.Location())
		if err != nil {
			return start, end, fmt.Errorf("invalid --from %q: %w", from, err)
		}
		start = t
	}
	if to != "" {
		t, err := time.ParseInLocation(dateLayout, to, now.Location())
		if err != nil {
			return start, end, fmt.Errorf("invalid --to %q: %w", to, err)
		}
		end = t.Add(24*time.Hour - time.Second)
	}
	if end.Before(start) {
		return start, end, fmt.Errorf("--to is before --from")
	}
	return start, end, nil
}

// Export 生成 xlsx 并写入 out，返回文件路径
// out 为目录时使用报表默认文件名
func Export(ctx context.Context, db *gorm.DB, cfg *config.Config, log *zap.Logger, from, to time.Time, out string) (string, error) {
	reports := newReportService(db, cfg)

	data, name, err := reports.ExportXLSX(ctx, from, to)
	if err != nil {
		return "", fmt.Errorf("build workbook: %w", err)
	}

	path := out
	if info, err := os.Stat(out); err == nil && info.IsDir() {
		path = filepath.Join(out, name)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}

	log.Info("report exported", zap.String("path", path), zap.Int("bytes", len(data)))
	return path, nil
}

func newReportService(db *gorm.DB, cfg *config.Config) *reportService.ReportService {
	tx := database.NewTransactor(db)
	activity := audit.NewActivityService(repository.NewActivityRepository(db), nil)
	transactions := finance.NewTransactionService(repository.NewTransactionRepository(db))

	roomRepo := repository.NewRoomRepository(db)
	stayRepo := repository.NewStayRepository(db)
	rooms := roomService.NewRoomService(roomRepo, stayRepo, &cfg.Business.FrontDesk)
	ledger := stay.NewLedgerService(stayRepo, roomRepo, tx, transactions)
	tickets := maintenanceService.NewTicketService(repository.NewTicketRepository(db), rooms, tx, activity)

	return reportService.NewReportService(rooms, ledger, tickets, activity, transactions)
}

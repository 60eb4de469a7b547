// Package report 提供看板、营收统计与报表导出
package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/dumeirei/hotel-frontdesk/internal/common/crypto"
	"github.com/dumeirei/hotel-frontdesk/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk/internal/common/logger"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
	"github.com/dumeirei/hotel-frontdesk/internal/repository"
	"github.com/dumeirei/hotel-frontdesk/internal/service/stay"
)

// 导出上限
const maxExportRows = 10000

const (
	sheetActivity = "Atividades"
	sheetFinance  = "Financeiro"
)

// RoomCounter 房态统计
type RoomCounter interface {
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// StayLister 在住账单
type StayLister interface {
	ListActive(ctx context.Context) ([]*stay.Statement, error)
}

// ActivityLister 审计日志
type ActivityLister interface {
	List(ctx context.Context, filter *repository.ActivityFilter, offset, limit int) ([]*models.ActivityLog, int64, error)
}

// TransactionLister 收支流水
type TransactionLister interface {
	ListAll(ctx context.Context, filter *repository.TransactionFilter) ([]*models.Transaction, error)
}

// TicketCounter 工单统计
type TicketCounter interface {
	Counts(ctx context.Context) (map[string]int64, error)
}

// ReportService 报表服务
type ReportService struct {
	rooms        RoomCounter
	stays        StayLister
	tickets      TicketCounter
	activities   ActivityLister
	transactions TransactionLister
	now          func() time.Time
	log          *zap.Logger
}

// NewReportService 创建报表服务
func NewReportService(rooms RoomCounter, stays StayLister, tickets TicketCounter, activities ActivityLister, transactions TransactionLister) *ReportService {
	return &ReportService{
		rooms:        rooms,
		stays:        stays,
		tickets:      tickets,
		activities:   activities,
		transactions: transactions,
		now:          time.Now,
		log:          logger.Named("report"),
	}
}

// BoardStay 看板上的一条在住
type BoardStay struct {
	RoomNumber       string          `json:"room_number"`
	GuestName        string          `json:"guest_name"`
	Document         string          `json:"document"`
	CheckInDate      string          `json:"check_in_date"`
	ExpectedCheckout string          `json:"expected_checkout"`
	Balance          decimal.Decimal `json:"balance"`
	WakeUpEnabled    bool            `json:"wake_up_enabled"`
}

// Board 前台看板
type Board struct {
	Counts        map[string]int64 `json:"counts"`
	TotalRooms    int64            `json:"total_rooms"`
	OccupancyRate float64          `json:"occupancy_rate"`
	Tickets       map[string]int64 `json:"tickets"`
	Stays         []*BoardStay     `json:"stays"`
	OpenBalance   decimal.Decimal  `json:"open_balance"`
}

// OccupancyRate 入住率（百分比，保留一位小数），不含封房
func OccupancyRate(counts map[string]int64) float64 {
	var sellable int64
	for status, n := range counts {
		if status != models.RoomStatusBlocked {
			sellable += n
		}
	}
	if sellable == 0 {
		return 0
	}
	rate := decimal.NewFromInt(counts[models.RoomStatusOccupied] * 100).Div(decimal.NewFromInt(sellable)).Round(1)
	f, _ := rate.Float64()
	return f
}

// Board 看板：各房态数量、入住率与在住账单，证件号脱敏
func (s *ReportService) Board(ctx context.Context) (*Board, error) {
	counts, err := s.rooms.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	tickets, err := s.tickets.Counts(ctx)
	if err != nil {
		return nil, err
	}
	statements, err := s.stays.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	b := &Board{Counts: counts, Tickets: tickets, OccupancyRate: OccupancyRate(counts), Stays: make([]*BoardStay, 0, len(statements))}
	for _, n := range counts {
		b.TotalRooms += n
	}
	for _, st := range statements {
		b.Stays = append(b.Stays, &BoardStay{
			RoomNumber:       st.RoomNumber,
			GuestName:        st.Stay.GuestName,
			Document:         crypto.MaskDocument(st.Stay.Document),
			CheckInDate:      st.Stay.CheckInDate,
			ExpectedCheckout: st.Stay.ExpectedCheckout,
			Balance:          st.Totals.Balance,
			WakeUpEnabled:    st.Stay.WakeUpEnabled,
		})
		b.OpenBalance = b.OpenBalance.Add(st.Totals.Balance)
	}
	return b, nil
}

// Activity 审计日志
func (s *ReportService) Activity(ctx context.Context, filter *repository.ActivityFilter, offset, limit int) ([]*models.ActivityLog, int64, error) {
	return s.activities.List(ctx, filter, offset, limit)
}

// Revenue 区间营收
type Revenue struct {
	From       time.Time                  `json:"from"`
	To         time.Time                  `json:"to"`
	Income     decimal.Decimal            `json:"income"`
	Expense    decimal.Decimal            `json:"expense"`
	Net        decimal.Decimal            `json:"net"`
	ByCategory map[string]decimal.Decimal `json:"by_category"`
	ByMethod   map[string]decimal.Decimal `json:"by_method"`
	Count      int                        `json:"count"`
}

// Revenue 区间内收入按分类和支付方式汇总
func (s *ReportService) Revenue(ctx context.Context, from, to time.Time) (*Revenue, error) {
	txs, err := s.transactions.ListAll(ctx, &repository.TransactionFilter{StartDate: &from, EndDate: &to})
	if err != nil {
		return nil, err
	}

	r := &Revenue{
		From:       from,
		To:         to,
		ByCategory: make(map[string]decimal.Decimal),
		ByMethod:   make(map[string]decimal.Decimal),
		Count:      len(txs),
	}
	for _, tx := range txs {
		if tx.Type == models.TransactionTypeExpense {
			r.Expense = r.Expense.Add(tx.Amount)
			continue
		}
		r.Income = r.Income.Add(tx.Amount)
		r.ByCategory[tx.Category] = r.ByCategory[tx.Category].Add(tx.Amount)
		method := tx.PaymentMethod
		if method == "" {
			method = models.PaymentMethodCash
		}
		r.ByMethod[method] = r.ByMethod[method].Add(tx.Amount)
	}
	r.Net = r.Income.Sub(r.Expense)
	return r, nil
}

func activityRow(l *models.ActivityLog) []string {
	return []string{
		l.CreatedAt.Format("2006-01-02 15:04:05"),
		l.Type,
		l.Action,
		l.Description,
		l.Actor,
	}
}

func transactionRow(tx *models.Transaction) []string {
	room := ""
	if tx.RoomID != nil {
		room = fmt.Sprintf("%d", *tx.RoomID)
	}
	return []string{
		tx.CreatedAt.Format("2006-01-02 15:04:05"),
		tx.Type,
		tx.Category,
		tx.Description,
		tx.PaymentMethod,
		tx.Amount.StringFixed(2),
		room,
	}
}

var (
	activityHeader    = []string{"Data", "Tipo", "Ação", "Descrição", "Usuário"}
	transactionHeader = []string{"Data", "Tipo", "Categoria", "Descrição", "Forma de Pagamento", "Valor", "Quarto"}
)

// writeCSV 写入带 UTF-8 BOM 的 CSV，便于 Excel 直接打开
func writeCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write([]byte{0xEF, 0xBB, 0xBF})

	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *ReportService) activityRows(ctx context.Context, filter *repository.ActivityFilter) ([]*models.ActivityLog, error) {
	logs, _, err := s.activities.List(ctx, filter, 0, maxExportRows)
	return logs, err
}

// ExportActivityCSV 导出审计日志
func (s *ReportService) ExportActivityCSV(ctx context.Context, filter *repository.ActivityFilter) ([]byte, string, error) {
	logs, err := s.activityRows(ctx, filter)
	if err != nil {
		return nil, "", err
	}
	rows := make([][]string, 0, len(logs))
	for _, l := range logs {
		rows = append(rows, activityRow(l))
	}
	data, err := writeCSV(activityHeader, rows)
	if err != nil {
		return nil, "", errors.ErrExportFailed.WithError(err)
	}
	return data, fmt.Sprintf("atividades_%s.csv", s.now().Format("20060102150405")), nil
}

// ExportTransactionsCSV 导出区间流水
func (s *ReportService) ExportTransactionsCSV(ctx context.Context, from, to time.Time) ([]byte, string, error) {
	txs, err := s.transactions.ListAll(ctx, &repository.TransactionFilter{StartDate: &from, EndDate: &to})
	if err != nil {
		return nil, "", err
	}
	rows := make([][]string, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, transactionRow(tx))
	}
	data, err := writeCSV(transactionHeader, rows)
	if err != nil {
		return nil, "", errors.ErrExportFailed.WithError(err)
	}
	return data, fmt.Sprintf("transacoes_%s.csv", s.now().Format("20060102150405")), nil
}

func fillSheet(f *excelize.File, sheet string, header []string, rows [][]string) error {
	for i, h := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// ExportXLSX 导出区间报表，包含审计与财务两个工作表
func (s *ReportService) ExportXLSX(ctx context.Context, from, to time.Time) ([]byte, string, error) {
	logs, err := s.activityRows(ctx, &repository.ActivityFilter{StartDate: &from, EndDate: &to})
	if err != nil {
		return nil, "", err
	}
	revenue, err := s.Revenue(ctx, from, to)
	if err != nil {
		return nil, "", err
	}
	txs, err := s.transactions.ListAll(ctx, &repository.TransactionFilter{StartDate: &from, EndDate: &to})
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.log.Warn("close workbook failed", zap.Error(err))
		}
	}()

	if err := f.SetSheetName("Sheet1", sheetActivity); err != nil {
		return nil, "", errors.ErrExportFailed.WithError(err)
	}
	if _, err := f.NewSheet(sheetFinance); err != nil {
		return nil, "", errors.ErrExportFailed.WithError(err)
	}

	activity := make([][]string, 0, len(logs))
	for _, l := range logs {
		activity = append(activity, activityRow(l))
	}
	finance := make([][]string, 0, len(txs)+4)
	for _, tx := range txs {
		finance = append(finance, transactionRow(tx))
	}
	finance = append(finance,
		[]string{},
		[]string{"Total Entradas", "", "", "", "", revenue.Income.StringFixed(2)},
		[]string{"Total Saídas", "", "", "", "", revenue.Expense.StringFixed(2)},
		[]string{"Saldo", "", "", "", "", revenue.Net.StringFixed(2)},
	)

	if err := fillSheet(f, sheetActivity, activityHeader, activity); err != nil {
		return nil, "", errors.ErrExportFailed.WithError(err)
	}
	if err := fillSheet(f, sheetFinance, transactionHeader, finance); err != nil {
		return nil, "", errors.ErrExportFailed.WithError(err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", errors.ErrExportFailed.WithError(err)
	}
	filename := fmt.Sprintf("relatorio_%s_%s.xlsx", from.Format("20060102"), to.Format("20060102"))
	return buf.Bytes(), filename, nil
}

// SortedKeys 按字典序返回 map 的键，导出和展示时保持稳定顺序
func SortedKeys(m map[string]decimal.Decimal) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

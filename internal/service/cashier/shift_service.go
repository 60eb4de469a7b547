// Package cashier 提供收银班次服务
package cashier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/dumeirei/hotel-frontdesk/internal/common/config"
	"github.com/dumeirei/hotel-frontdesk/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk/internal/common/logger"
	"github.com/dumeirei/hotel-frontdesk/internal/common/metrics"
	"github.com/dumeirei/hotel-frontdesk/internal/common/tracing"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
	"github.com/dumeirei/hotel-frontdesk/internal/repository"
	"github.com/dumeirei/hotel-frontdesk/internal/service/audit"
	"github.com/dumeirei/hotel-frontdesk/internal/service/finance"
)

// 班次名称
const (
	ShiftMorning = "Turno 1" // 07-15
	ShiftEvening = "Turno 2" // 15-23
	ShiftNight   = "Turno 3" // 23-07
)

var defaultTolerance = decimal.NewFromInt(10)

// consumptionCategories 计入消费小计的分类
var consumptionCategories = map[string]bool{
	models.TransactionCategoryConsumption: true,
	"Frigobar":                            true,
	"Restaurante":                         true,
}

// DetectShiftLabel 按当前时间推断班次
// 交班时点后半小时内仍算上一班
func DetectShiftLabel(now time.Time) string {
	hour, early := now.Hour(), now.Minute() < 30
	switch {
	case hour >= 7 && hour < 15:
		if hour == 7 && early {
			return ShiftNight
		}
		return ShiftMorning
	case hour >= 15 && hour < 23:
		if hour == 15 && early {
			return ShiftMorning
		}
		return ShiftEvening
	default:
		if hour == 23 && early {
			return ShiftEvening
		}
		return ShiftNight
	}
}

func isValidLabel(label string) bool {
	return label == ShiftMorning || label == ShiftEvening || label == ShiftNight
}

// Operators 收银员查询
type Operators interface {
	Operator(ctx context.Context, id int64) (*models.Employee, error)
}

// Totals 班次内的系统合计
type Totals struct {
	Cash          decimal.Decimal `json:"cash"`
	Credit        decimal.Decimal `json:"credit"`
	Debit         decimal.Decimal `json:"debit"`
	Pix           decimal.Decimal `json:"pix"`
	Expenses      decimal.Decimal `json:"expenses"`
	CashInDrawer  decimal.Decimal `json:"cash_in_drawer"`
	Balance       decimal.Decimal `json:"balance"`
	Accommodation decimal.Decimal `json:"accommodation"`
	Consumption   decimal.Decimal `json:"consumption"`
}

// ComputeTotals 汇总流水；未填支付方式的收入按现金计
// 钱箱 = 备用金 + 现金收入 - 支出
func ComputeTotals(startingFloat decimal.Decimal, txs []*models.Transaction) Totals {
	var t Totals
	for _, tx := range txs {
		if tx.Type == models.TransactionTypeExpense {
			t.Expenses = t.Expenses.Add(tx.Amount)
			continue
		}
		switch tx.PaymentMethod {
		case models.PaymentMethodCredit:
			t.Credit = t.Credit.Add(tx.Amount)
		case models.PaymentMethodDebit:
			t.Debit = t.Debit.Add(tx.Amount)
		case models.PaymentMethodPix:
			t.Pix = t.Pix.Add(tx.Amount)
		default:
			t.Cash = t.Cash.Add(tx.Amount)
		}
		if tx.Category == models.TransactionCategoryLodging {
			t.Accommodation = t.Accommodation.Add(tx.Amount)
		} else if consumptionCategories[tx.Category] {
			t.Consumption = t.Consumption.Add(tx.Amount)
		}
	}
	t.CashInDrawer = startingFloat.Add(t.Cash).Sub(t.Expenses)
	t.Balance = t.CashInDrawer.Add(t.Credit).Add(t.Debit).Add(t.Pix)
	return t
}

// ShiftView 班次与实时合计
type ShiftView struct {
	Shift  *models.CashShift `json:"shift"`
	Totals Totals            `json:"totals"`
}

// Declared 交班时清点的金额
type Declared struct {
	Cash   decimal.Decimal `json:"cash"`
	Credit decimal.Decimal `json:"credit"`
	Debit  decimal.Decimal `json:"debit"`
	Pix    decimal.Decimal `json:"pix"`
}

// Differences 清点与系统的差额，正数为长款
type Differences struct {
	Cash   decimal.Decimal `json:"cash"`
	Credit decimal.Decimal `json:"credit"`
	Debit  decimal.Decimal `json:"debit"`
	Pix    decimal.Decimal `json:"pix"`
	Total  decimal.Decimal `json:"total"`
}

// Compare 计算各支付方式差额
func Compare(declared Declared, t Totals) Differences {
	d := Differences{
		Cash:   declared.Cash.Sub(t.CashInDrawer),
		Credit: declared.Credit.Sub(t.Credit),
		Debit:  declared.Debit.Sub(t.Debit),
		Pix:    declared.Pix.Sub(t.Pix),
	}
	d.Total = d.Cash.Add(d.Credit).Add(d.Debit).Add(d.Pix)
	return d
}

// Closing 交班结果
type Closing struct {
	Shift       *models.CashShift `json:"shift"`
	Totals      Totals            `json:"totals"`
	Differences Differences       `json:"differences"`
}

// ShiftService 收银班次服务
type ShiftService struct {
	repo         *repository.ShiftRepository
	transactions *finance.TransactionService
	operators    Operators
	audit        audit.Recorder
	tolerance    decimal.Decimal
	now          func() time.Time
	log          *zap.Logger
}

// NewShiftService 创建收银班次服务
func NewShiftService(
	repo *repository.ShiftRepository,
	transactions *finance.TransactionService,
	operators Operators,
	recorder audit.Recorder,
	cfg *config.CashierConfig,
) *ShiftService {
	tolerance := defaultTolerance
	if cfg != nil && cfg.Tolerance > 0 {
		tolerance = decimal.NewFromFloat(cfg.Tolerance)
	}
	return &ShiftService{
		repo:         repo,
		transactions: transactions,
		operators:    operators,
		audit:        recorder,
		tolerance:    tolerance,
		now:          time.Now,
		log:          logger.Named("cashier"),
	}
}

func (s *ShiftService) open(ctx context.Context) (*models.CashShift, error) {
	shift, err := s.repo.GetOpen(ctx)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errors.ErrShiftClosed
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return shift, nil
}

// OpenShift 开班
func (s *ShiftService) OpenShift(ctx context.Context, operatorID int64, startingFloat decimal.Decimal, label string) (*models.CashShift, error) {
	if startingFloat.IsNegative() {
		return nil, errors.ErrInvalidAmount
	}
	label = strings.TrimSpace(label)
	if label == "" {
		label = DetectShiftLabel(s.now())
	}
	if !isValidLabel(label) {
		return nil, errors.ErrInvalidParams.WithMessage("无效的班次")
	}

	op, err := s.operators.Operator(ctx, operatorID)
	if err != nil {
		return nil, err
	}

	if _, err := s.open(ctx); err == nil {
		return nil, errors.ErrShiftAlreadyOpen
	} else if !errors.IsCode(err, errors.ErrShiftClosed) {
		return nil, err
	}

	shift := &models.CashShift{
		OperatorID:    op.ID,
		OperatorName:  op.Name,
		Label:         label,
		StartingFloat: startingFloat.Round(2),
		Status:        models.ShiftStatusOpen,
		OpenedAt:      s.now(),
	}
	if err := s.repo.Create(ctx, shift); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	metrics.GetMetrics().RecordCashierEvent("open")
	s.audit.Append(ctx, audit.Entry{
		Type:        models.ActivityFinancial,
		Action:      audit.ActionShiftOpened,
		Description: fmt.Sprintf("Caixa aberto por %s (%s) com fundo de R$ %s", op.Name, label, shift.StartingFloat.StringFixed(2)),
		Actor:       op.Name,
	})
	s.log.Info("shift opened", logger.ShiftID(shift.ID), logger.StaffID(op.ID), zap.String("label", label))
	return shift, nil
}

// Totals 班次开启以来的系统合计
func (s *ShiftService) Totals(ctx context.Context, shift *models.CashShift) (Totals, error) {
	filter := &repository.TransactionFilter{StartDate: &shift.OpenedAt}
	if shift.ClosedAt != nil {
		filter.EndDate = shift.ClosedAt
	}
	txs, err := s.transactions.ListAll(ctx, filter)
	if err != nil {
		return Totals{}, err
	}
	return ComputeTotals(shift.StartingFloat, txs), nil
}

// Current 当前班次
func (s *ShiftService) Current(ctx context.Context) (*ShiftView, error) {
	shift, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	totals, err := s.Totals(ctx, shift)
	if err != nil {
		return nil, err
	}
	return &ShiftView{Shift: shift, Totals: totals}, nil
}

// RecordEntry 手工收支，必须在开班期间，按现金记账
func (s *ShiftService) RecordEntry(ctx context.Context, entryType string, amount decimal.Decimal, description string) (*models.Transaction, error) {
	if entryType != models.TransactionTypeIncome && entryType != models.TransactionTypeExpense {
		return nil, errors.ErrInvalidEntryType
	}
	shift, err := s.open(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := s.transactions.Record(ctx, finance.Entry{
		Type:          entryType,
		Amount:        amount,
		Description:   strings.TrimSpace(description),
		Category:      models.TransactionCategoryManual,
		PaymentMethod: models.PaymentMethodCash,
	})
	if err != nil {
		return nil, err
	}

	action, label := audit.ActionCashIn, "Entrada"
	if entryType == models.TransactionTypeExpense {
		action, label = audit.ActionCashOut, "Saída"
	}
	metrics.GetMetrics().RecordCashierEvent(entryType)
	s.audit.Append(ctx, audit.Entry{
		Type:        models.ActivityFinancial,
		Action:      action,
		Description: fmt.Sprintf("%s de R$ %s - %s", label, tx.Amount.StringFixed(2), tx.Description),
		Actor:       shift.OperatorName,
	})
	return tx, nil
}

// CloseShift 交班对账
// 总差额超出容差时必须填写说明
func (s *ShiftService) CloseShift(ctx context.Context, declared Declared, observations string) (*Closing, error) {
	ctx, span := tracing.Start(ctx, "cashier.CloseShift", tracing.WithOperation("close_shift"))
	defer span.End()

	shift, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(tracing.WithShiftID(shift.ID), tracing.WithStaffID(shift.OperatorID))
	totals, err := s.Totals(ctx, shift)
	if err != nil {
		return nil, err
	}

	diff := Compare(declared, totals)
	observations = strings.TrimSpace(observations)
	if diff.Total.Abs().GreaterThan(s.tolerance) && observations == "" {
		return nil, errors.ErrObservationsRequired
	}

	closedAt := s.now()
	shift.Status = models.ShiftStatusClosed
	shift.ClosedAt = &closedAt
	shift.ExpectedCash = totals.CashInDrawer
	shift.ExpectedCredit = totals.Credit
	shift.ExpectedDebit = totals.Debit
	shift.ExpectedPix = totals.Pix
	shift.DeclaredCash = declared.Cash.Round(2)
	shift.DeclaredCredit = declared.Credit.Round(2)
	shift.DeclaredDebit = declared.Debit.Round(2)
	shift.DeclaredPix = declared.Pix.Round(2)
	shift.Difference = diff.Total.Round(2)
	shift.Observations = observations
	if err := s.repo.Update(ctx, shift); err != nil {
		tracing.SetError(ctx, err)
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	metrics.GetMetrics().RecordCashierEvent("close")
	s.audit.Append(ctx, audit.Entry{
		Type:        models.ActivityFinancial,
		Action:      audit.ActionShiftClosed,
		Description: fmt.Sprintf("Caixa fechado (%s). Operador: %s", shift.Label, shift.OperatorName),
		Actor:       shift.OperatorName,
		Details:     models.JSON{"difference": shift.Difference.StringFixed(2)},
	})
	if !diff.Total.IsZero() {
		s.log.Warn("shift closed with difference", logger.ShiftID(shift.ID), zap.String("difference", diff.Total.StringFixed(2)))
	}
	return &Closing{Shift: shift, Totals: totals, Differences: diff}, nil
}

// History 班次历史
func (s *ShiftService) History(ctx context.Context, offset, limit int) ([]*models.CashShift, int64, error) {
	list, total, err := s.repo.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	return list, total, nil
}

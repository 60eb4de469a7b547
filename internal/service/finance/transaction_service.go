// Package finance 提供收支流水服务
package finance

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/dumeirei/hotel-frontdesk/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
	"github.com/dumeirei/hotel-frontdesk/internal/repository"
)

// Entry 一笔流水
type Entry struct {
	Type          string
	Amount        decimal.Decimal
	Description   string
	Category      string
	PaymentMethod string
	RoomID        *int64
}

// TransactionService 收支流水服务
type TransactionService struct {
	repo *repository.TransactionRepository
}

// NewTransactionService 创建收支流水服务
func NewTransactionService(repo *repository.TransactionRepository) *TransactionService {
	return &TransactionService{repo: repo}
}

// Record 记录一笔收支
func (s *TransactionService) Record(ctx context.Context, e Entry) (*models.Transaction, error) {
	if e.Type != models.TransactionTypeIncome && e.Type != models.TransactionTypeExpense {
		return nil, errors.ErrInvalidEntryType
	}
	if !e.Amount.IsPositive() {
		return nil, errors.ErrInvalidAmount
	}
	if e.PaymentMethod != "" && !models.IsValidPaymentMethod(e.PaymentMethod) {
		return nil, errors.ErrInvalidMethod
	}

	tx := &models.Transaction{
		Type:          e.Type,
		Amount:        e.Amount.Round(2),
		Description:   e.Description,
		Category:      e.Category,
		PaymentMethod: e.PaymentMethod,
		RoomID:        e.RoomID,
	}
	if err := s.repo.Create(ctx, tx); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return tx, nil
}

// List 分页查询流水
func (s *TransactionService) List(ctx context.Context, filter *repository.TransactionFilter, offset, limit int) ([]*models.Transaction, int64, error) {
	txs, total, err := s.repo.List(ctx, filter, offset, limit)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	return txs, total, nil
}

// ListAll 查询全部满足条件的流水，按时间正序
func (s *TransactionService) ListAll(ctx context.Context, filter *repository.TransactionFilter) ([]*models.Transaction, error) {
	txs, err := s.repo.ListAll(ctx, filter)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return txs, nil
}

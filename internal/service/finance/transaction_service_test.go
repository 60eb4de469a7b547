package finance

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumeirei/hotel-frontdesk/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk/internal/common/utils"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
	"github.com/dumeirei/hotel-frontdesk/internal/repository"
	"github.com/dumeirei/hotel-frontdesk/internal/testutil"
)

func newTestService(t *testing.T) *TransactionService {
	return NewTransactionService(repository.NewTransactionRepository(testutil.NewDB(t)))
}

func TestTransactionService_Record(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tx, err := svc.Record(ctx, Entry{
		Type:          models.TransactionTypeIncome,
		Amount:        decimal.RequireFromString("100.004"),
		Description:   "Adiantamento - Quarto 25 (Ana)",
		Category:      models.TransactionCategoryLodging,
		PaymentMethod: models.PaymentMethodPix,
		RoomID:        utils.Int64Ptr(1),
	})
	require.NoError(t, err)
	assert.True(t, tx.Amount.Equal(decimal.NewFromInt(100)))
	assert.NotZero(t, tx.ID)

	list, total, err := svc.List(ctx, &repository.TransactionFilter{Category: models.TransactionCategoryLodging}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Adiantamento - Quarto 25 (Ana)", list[0].Description)
}

func TestTransactionService_RecordValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		entry Entry
		want  *errors.AppError
	}{
		{"类型无效", Entry{Type: "refund", Amount: decimal.NewFromInt(1)}, errors.ErrInvalidEntryType},
		{"金额为零", Entry{Type: models.TransactionTypeIncome, Amount: decimal.Zero}, errors.ErrInvalidAmount},
		{"金额为负", Entry{Type: models.TransactionTypeExpense, Amount: decimal.NewFromInt(-5)}, errors.ErrInvalidAmount},
		{"支付方式无效", Entry{Type: models.TransactionTypeIncome, Amount: decimal.NewFromInt(1), PaymentMethod: "bitcoin"}, errors.ErrInvalidMethod},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Record(ctx, tt.entry)
			assert.True(t, errors.IsCode(err, tt.want))
		})
	}

	all, err := svc.ListAll(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, all)
}

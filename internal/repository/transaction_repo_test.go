// Package repository 收支流水与审计日志仓储单元测试
package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumeirei/hotel-frontdesk/internal/models"
)

func TestTransactionRepository_Filters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTransactionRepository(db)
	ctx := context.Background()

	roomID := int64(1)
	require.NoError(t, repo.Create(ctx, &models.Transaction{Type: models.TransactionTypeIncome, Amount: decimal.NewFromInt(100), Description: "a", Category: models.TransactionCategoryLodging, PaymentMethod: models.PaymentMethodPix, RoomID: &roomID}))
	require.NoError(t, repo.Create(ctx, &models.Transaction{Type: models.TransactionTypeExpense, Amount: decimal.NewFromInt(20), Description: "b", Category: models.TransactionCategoryManual, PaymentMethod: models.PaymentMethodCash}))

	list, total, err := repo.List(ctx, &TransactionFilter{Type: models.TransactionTypeIncome}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "a", list[0].Description)

	list, _, err = repo.List(ctx, &TransactionFilter{RoomID: &roomID}, 0, 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	future := time.Now().Add(time.Hour)
	all, err := repo.ListAll(ctx, &TransactionFilter{StartDate: &future})
	require.NoError(t, err)
	assert.Empty(t, all)

	all, err = repo.ListAll(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].Description)
}

func TestActivityRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewActivityRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.ActivityLog{Type: models.ActivityCheckIn, Action: "CHECK_IN", Description: "Check-in Ana no quarto 25", Actor: "Recepção"}))
	require.NoError(t, repo.Create(ctx, &models.ActivityLog{Type: models.ActivityCleaning, Action: "LIMPEZA", Description: "Quarto 26 liberado", Actor: "Maria", Details: models.JSON{"room": "26"}}))

	logs, total, err := repo.List(ctx, &ActivityFilter{Type: models.ActivityCleaning}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "26", logs[0].Details["room"])

	logs, _, err = repo.List(ctx, &ActivityFilter{Keyword: "Ana"}, 0, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.ActivityCheckIn, logs[0].Type)

	logs, total, err = repo.List(ctx, nil, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, models.ActivityCleaning, logs[0].Type)
}

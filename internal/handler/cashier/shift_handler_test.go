package cashier

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumeirei/hotel-frontdesk/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk/internal/common/response"
	"github.com/dumeirei/hotel-frontdesk/internal/middleware"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
	cashierService "github.com/dumeirei/hotel-frontdesk/internal/service/cashier"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeShifts struct {
	open         *models.CashShift
	declared     cashierService.Declared
	observations string
	entryType    string
	entryAmount  decimal.Decimal
}

func (f *fakeShifts) OpenShift(_ context.Context, operatorID int64, float decimal.Decimal, label string) (*models.CashShift, error) {
	if f.open != nil {
		return nil, errors.ErrShiftAlreadyOpen
	}
	f.open = &models.CashShift{OperatorID: operatorID, StartingFloat: float, Label: label}
	return f.open, nil
}

func (f *fakeShifts) Current(context.Context) (*cashierService.ShiftView, error) {
	if f.open == nil {
		return nil, errors.ErrShiftClosed
	}
	return &cashierService.ShiftView{Shift: f.open}, nil
}

func (f *fakeShifts) RecordEntry(_ context.Context, entryType string, amount decimal.Decimal, _ string) (*models.Transaction, error) {
	f.entryType, f.entryAmount = entryType, amount
	return &models.Transaction{Type: entryType, Amount: amount}, nil
}

func (f *fakeShifts) CloseShift(_ context.Context, declared cashierService.Declared, observations string) (*cashierService.Closing, error) {
	f.declared, f.observations = declared, observations
	return &cashierService.Closing{Shift: f.open}, nil
}

func (f *fakeShifts) History(context.Context, int, int) ([]*models.CashShift, int64, error) {
	return []*models.CashShift{}, 0, nil
}

func setup() (*gin.Engine, *fakeShifts) {
	shifts := &fakeShifts{}
	h := NewHandler(shifts)
	h.now = func() time.Time { return time.Date(2026, 3, 10, 15, 10, 0, 0, time.Local) }

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextKeyStaffID, int64(2))
		c.Set(middleware.ContextKeyName, "João")
		c.Next()
	})
	r.GET("/shift-label", h.ShiftLabel)
	r.GET("/shift", h.Current)
	r.POST("/shift/open", h.Open)
	r.POST("/entries", h.RecordEntry)
	r.POST("/shift/close", h.Close)
	r.GET("/shifts", h.History)
	return r, shifts
}

func call(r *gin.Engine, method, path string, body interface{}) response.Response {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, &buf))
	var resp response.Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func TestShiftLabel_EarlyRule(t *testing.T) {
	r, _ := setup()
	resp := call(r, http.MethodGet, "/shift-label", nil)
	assert.Equal(t, cashierService.ShiftMorning, resp.Data.(map[string]interface{})["label"])
}

func TestShiftFlow(t *testing.T) {
	r, shifts := setup()

	resp := call(r, http.MethodGet, "/shift", nil)
	assert.Equal(t, errors.ErrShiftClosed.Code, resp.Code)

	resp = call(r, http.MethodPost, "/shift/open", map[string]interface{}{"operator_id": 2, "starting_float": "100.00"})
	require.Equal(t, 0, resp.Code)
	assert.True(t, shifts.open.StartingFloat.Equal(decimal.NewFromInt(100)))

	resp = call(r, http.MethodPost, "/shift/open", map[string]interface{}{"operator_id": 2})
	assert.Equal(t, errors.ErrShiftAlreadyOpen.Code, resp.Code)

	resp = call(r, http.MethodPost, "/entries", map[string]interface{}{"type": models.TransactionTypeExpense, "amount": "20", "description": "Gelo"})
	require.Equal(t, 0, resp.Code)
	assert.Equal(t, models.TransactionTypeExpense, shifts.entryType)

	resp = call(r, http.MethodPost, "/shift/close", map[string]interface{}{
		"declared":     map[string]string{"cash": "80", "pix": "0"},
		"observations": "ok",
	})
	require.Equal(t, 0, resp.Code)
	assert.Equal(t, "80.00", shifts.declared.Cash.StringFixed(2))
	assert.Equal(t, "ok", shifts.observations)
}

func TestOpen_RequiresOperator(t *testing.T) {
	r, _ := setup()
	resp := call(r, http.MethodPost, "/shift/open", map[string]interface{}{"starting_float": "100"})
	assert.Equal(t, 400, resp.Code)
}

func TestHistory_Paged(t *testing.T) {
	r, _ := setup()
	resp := call(r, http.MethodGet, "/shifts?page=3", nil)
	require.Equal(t, 0, resp.Code)
	assert.Equal(t, float64(3), resp.Data.(map[string]interface{})["page"])
}

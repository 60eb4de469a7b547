// Package stay 提供入住账本服务：合同信息、消费、收款与结算
package stay

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dumeirei/hotel-frontdesk/internal/common/database"
	"github.com/dumeirei/hotel-frontdesk/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
	"github.com/dumeirei/hotel-frontdesk/internal/repository"
	"github.com/dumeirei/hotel-frontdesk/internal/service/finance"
)

// 日期与时间格式
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// TransactionRecorder 收支流水记录
type TransactionRecorder interface {
	Record(ctx context.Context, e finance.Entry) (*models.Transaction, error)
}

// Contract 入住登记信息
type Contract struct {
	GuestName        string          `json:"guest_name"`
	DocumentType     string          `json:"document_type"`
	Document         string          `json:"document"`
	Phone            string          `json:"phone"`
	Email            string          `json:"email"`
	GuestsCount      int             `json:"guests_count"`
	VehicleModel     string          `json:"vehicle_model"`
	VehicleColor     string          `json:"vehicle_color"`
	VehiclePlate     string          `json:"vehicle_plate"`
	CheckInDate      string          `json:"check_in_date"`
	CheckInTime      string          `json:"check_in_time"`
	ExpectedCheckout string          `json:"expected_checkout"`
	DailyRate        decimal.Decimal `json:"daily_rate"`
	WakeUpEnabled    bool            `json:"wake_up_enabled"`
	WakeUpDate       string          `json:"wake_up_date"`
	WakeUpCall       string          `json:"wake_up_call"`
	Notes            string          `json:"notes"`
	InitialPayment   decimal.Decimal `json:"initial_payment"`
	PaymentMethod    string          `json:"payment_method"`
}

// Patch 入住期间可修改的字段，nil 表示不修改
type Patch struct {
	Phone            *string          `json:"phone"`
	Email            *string          `json:"email"`
	GuestsCount      *int             `json:"guests_count"`
	VehicleModel     *string          `json:"vehicle_model"`
	VehicleColor     *string          `json:"vehicle_color"`
	VehiclePlate     *string          `json:"vehicle_plate"`
	ExpectedCheckout *string          `json:"expected_checkout"`
	DailyRate        *decimal.Decimal `json:"daily_rate"`
	WakeUpEnabled    *bool            `json:"wake_up_enabled"`
	WakeUpDate       *string          `json:"wake_up_date"`
	WakeUpCall       *string          `json:"wake_up_call"`
	Notes            *string          `json:"notes"`
}

// Totals 账单汇总，每次读取时重新计算
type Totals struct {
	Nights           int             `json:"nights"`
	RoomTotal        decimal.Decimal `json:"room_total"`
	ConsumptionTotal decimal.Decimal `json:"consumption_total"`
	PaidTotal        decimal.Decimal `json:"paid_total"`
	Balance          decimal.Decimal `json:"balance"`
}

// Statement 账单视图
type Statement struct {
	RoomNumber string       `json:"room_number"`
	Stay       *models.Stay `json:"stay"`
	Totals     Totals       `json:"totals"`
}

// LedgerService 入住账本服务
type LedgerService struct {
	stayRepo *repository.StayRepository
	roomRepo *repository.RoomRepository
	tx       *database.Transactor
	recorder TransactionRecorder
	now      func() time.Time
}

// NewLedgerService 创建入住账本服务
func NewLedgerService(
	stayRepo *repository.StayRepository,
	roomRepo *repository.RoomRepository,
	tx *database.Transactor,
	recorder TransactionRecorder,
) *LedgerService {
	return &LedgerService{
		stayRepo: stayRepo,
		roomRepo: roomRepo,
		tx:       tx,
		recorder: recorder,
		now:      time.Now,
	}
}

// Nights 计费晚数：日期差向上取整，至少 1 晚
// 日期无法解析时按 1 晚计
func Nights(checkIn, checkout string) int {
	in, err1 := time.Parse(DateLayout, checkIn)
	out, err2 := time.Parse(DateLayout, checkout)
	if err1 != nil || err2 != nil {
		return 1
	}
	days := int(math.Ceil(math.Abs(out.Sub(in).Hours()) / 24))
	if days < 1 {
		return 1
	}
	return days
}

// ComputeTotals 计算账单
// balance = 晚数 × 房价 + 消费 − 已付，不做截断
func ComputeTotals(s *models.Stay) Totals {
	nights := Nights(s.CheckInDate, s.ExpectedCheckout)
	roomTotal := s.DailyRate.Mul(decimal.NewFromInt(int64(nights)))

	consumption := decimal.Zero
	for _, c := range s.Consumption {
		consumption = consumption.Add(c.TotalPrice)
	}
	paid := decimal.Zero
	for _, p := range s.Payments {
		paid = paid.Add(p.Amount)
	}

	return Totals{
		Nights:           nights,
		RoomTotal:        roomTotal,
		ConsumptionTotal: consumption,
		PaidTotal:        paid,
		Balance:          roomTotal.Add(consumption).Sub(paid),
	}
}

func validDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

func validClock(s string) bool {
	_, err := time.Parse(TimeLayout, s)
	return err == nil
}

func (c *Contract) normalize(now time.Time) error {
	c.GuestName = strings.TrimSpace(c.GuestName)
	c.Document = strings.TrimSpace(c.Document)
	if c.GuestName == "" {
		return errors.ErrGuestNameRequired
	}
	if c.Document == "" {
		return errors.ErrDocumentRequired
	}
	if c.DailyRate.IsNegative() {
		return errors.ErrInvalidRate
	}
	if c.DocumentType == "" {
		c.DocumentType = models.DocumentTypeRG
	}
	if c.GuestsCount < 1 {
		c.GuestsCount = 1
	}
	if c.CheckInDate == "" {
		c.CheckInDate = now.Format(DateLayout)
	}
	if c.CheckInTime == "" {
		c.CheckInTime = now.Format(TimeLayout)
	}
	if c.ExpectedCheckout == "" {
		c.ExpectedCheckout = now.AddDate(0, 0, 1).Format(DateLayout)
	}
	if !validDate(c.CheckInDate) || !validDate(c.ExpectedCheckout) || !validClock(c.CheckInTime) {
		return errors.ErrInvalidParams.WithMessage("日期或时间格式无效")
	}
	if c.WakeUpEnabled && (!validDate(c.WakeUpDate) || !validClock(c.WakeUpCall)) {
		return errors.ErrInvalidParams.WithMessage("叫醒日期或时间格式无效")
	}
	if c.InitialPayment.IsNegative() {
		return errors.ErrInvalidAmount
	}
	if c.InitialPayment.IsPositive() {
		if c.PaymentMethod == "" {
			c.PaymentMethod = models.PaymentMethodCash
		}
		if !models.IsValidPaymentMethod(c.PaymentMethod) {
			return errors.ErrInvalidMethod
		}
	}
	return nil
}

func (s *LedgerService) roomNumber(ctx context.Context, roomID int64) string {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return fmt.Sprintf("#%d", roomID)
	}
	return room.Number
}

func (s *LedgerService) load(ctx context.Context, roomID int64) (*models.Stay, error) {
	st, err := s.stayRepo.GetByRoomID(ctx, roomID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errors.ErrStayNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return st, nil
}

// OpenStay 为房间创建入住记录
// 有首付时同时写入收款和一笔住宿收入流水
func (s *LedgerService) OpenStay(ctx context.Context, roomID int64, c Contract, actor string) (*models.Stay, error) {
	now := s.now()
	if err := c.normalize(now); err != nil {
		return nil, err
	}

	record := &models.Stay{
		RoomID:           roomID,
		GuestName:        c.GuestName,
		DocumentType:     c.DocumentType,
		Document:         c.Document,
		Phone:            strings.TrimSpace(c.Phone),
		Email:            strings.TrimSpace(c.Email),
		GuestsCount:      c.GuestsCount,
		VehicleModel:     c.VehicleModel,
		VehicleColor:     c.VehicleColor,
		VehiclePlate:     strings.ToUpper(strings.TrimSpace(c.VehiclePlate)),
		CheckInDate:      c.CheckInDate,
		CheckInTime:      c.CheckInTime,
		ExpectedCheckout: c.ExpectedCheckout,
		DailyRate:        c.DailyRate.Round(2),
		WakeUpEnabled:    c.WakeUpEnabled,
		WakeUpDate:       c.WakeUpDate,
		WakeUpCall:       c.WakeUpCall,
		Notes:            c.Notes,
		CreatedBy:        actor,
		Consumption:      []models.ConsumptionItem{},
		Payments:         []models.PaymentEntry{},
	}
	if c.InitialPayment.IsPositive() {
		record.Payments = append(record.Payments, models.PaymentEntry{
			Amount:    c.InitialPayment.Round(2),
			Method:    c.PaymentMethod,
			CreatedAt: now,
		})
	}

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		exists, err := s.stayRepo.ExistsForRoom(ctx, roomID)
		if err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		if exists {
			return errors.ErrStayExists
		}
		if err := s.stayRepo.Create(ctx, record); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		if c.InitialPayment.IsPositive() {
			_, err := s.recorder.Record(ctx, finance.Entry{
				Type:          models.TransactionTypeIncome,
				Amount:        c.InitialPayment,
				Description:   fmt.Sprintf("Adiantamento Check-in - Quarto %s (%s)", s.roomNumber(ctx, roomID), record.GuestName),
				Category:      models.TransactionCategoryLodging,
				PaymentMethod: c.PaymentMethod,
				RoomID:        &roomID,
			})
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// AddConsumption 追加消费，数量为 0 时按 1 计
func (s *LedgerService) AddConsumption(ctx context.Context, roomID int64, item string, unitPrice decimal.Decimal, quantity int) (*models.ConsumptionItem, error) {
	item = strings.TrimSpace(item)
	if item == "" {
		return nil, errors.ErrItemRequired
	}
	if !unitPrice.IsPositive() {
		return nil, errors.ErrInvalidAmount
	}
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return nil, errors.ErrInvalidQuantity
	}

	st, err := s.load(ctx, roomID)
	if err != nil {
		return nil, err
	}

	unitPrice = unitPrice.Round(2)
	line := &models.ConsumptionItem{
		StayID:     st.ID,
		Item:       item,
		UnitPrice:  unitPrice,
		Quantity:   quantity,
		TotalPrice: unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
		CreatedAt:  s.now(),
	}
	if err := s.stayRepo.AddConsumption(ctx, line); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return line, nil
}

// AddPayment 追加收款并记一笔住宿收入
func (s *LedgerService) AddPayment(ctx context.Context, roomID int64, amount decimal.Decimal, method string) (*models.PaymentEntry, error) {
	if !amount.IsPositive() {
		return nil, errors.ErrInvalidAmount
	}
	if !models.IsValidPaymentMethod(method) {
		return nil, errors.ErrInvalidMethod
	}

	payment := &models.PaymentEntry{
		Amount:    amount.Round(2),
		Method:    method,
		CreatedAt: s.now(),
	}
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		st, err := s.load(ctx, roomID)
		if err != nil {
			return err
		}
		payment.StayID = st.ID
		if err := s.stayRepo.AddPayment(ctx, payment); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		_, err = s.recorder.Record(ctx, finance.Entry{
			Type:          models.TransactionTypeIncome,
			Amount:        payment.Amount,
			Description:   fmt.Sprintf("Adiantamento - Quarto %s (%s)", s.roomNumber(ctx, roomID), st.GuestName),
			Category:      models.TransactionCategoryLodging,
			PaymentMethod: method,
			RoomID:        &roomID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// Totals 重新计算房间当前账单
func (s *LedgerService) Totals(ctx context.Context, roomID int64) (Totals, error) {
	st, err := s.load(ctx, roomID)
	if err != nil {
		return Totals{}, err
	}
	return ComputeTotals(st), nil
}

// Statement 账单视图：入住信息、明细与汇总
func (s *LedgerService) Statement(ctx context.Context, roomID int64) (*Statement, error) {
	st, err := s.load(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return &Statement{
		RoomNumber: s.roomNumber(ctx, roomID),
		Stay:       st,
		Totals:     ComputeTotals(st),
	}, nil
}

// ListActive 全部在住账单
func (s *LedgerService) ListActive(ctx context.Context) ([]*Statement, error) {
	stays, err := s.stayRepo.ListActive(ctx)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	result := make([]*Statement, 0, len(stays))
	for _, st := range stays {
		number := ""
		if st.Room != nil {
			number = st.Room.Number
		}
		result = append(result, &Statement{RoomNumber: number, Stay: st, Totals: ComputeTotals(st)})
	}
	return result, nil
}

// UpdateStay 修改入住信息，退房前均可修改
// 叫醒时间变化后允许重新响铃
func (s *LedgerService) UpdateStay(ctx context.Context, roomID int64, p Patch) (*Statement, error) {
	st, err := s.load(ctx, roomID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	setString := func(col string, v *string) {
		if v != nil {
			fields[col] = strings.TrimSpace(*v)
		}
	}
	setString("phone", p.Phone)
	setString("email", p.Email)
	setString("vehicle_model", p.VehicleModel)
	setString("vehicle_color", p.VehicleColor)
	if p.VehiclePlate != nil {
		fields["vehicle_plate"] = strings.ToUpper(strings.TrimSpace(*p.VehiclePlate))
	}
	setString("notes", p.Notes)

	if p.GuestsCount != nil {
		if *p.GuestsCount < 1 {
			return nil, errors.ErrInvalidParams.WithMessage("入住人数至少为 1")
		}
		fields["guests_count"] = *p.GuestsCount
	}
	if p.ExpectedCheckout != nil {
		if !validDate(*p.ExpectedCheckout) {
			return nil, errors.ErrInvalidParams.WithMessage("退房日期格式无效")
		}
		fields["expected_checkout"] = *p.ExpectedCheckout
	}
	if p.DailyRate != nil {
		if p.DailyRate.IsNegative() {
			return nil, errors.ErrInvalidRate
		}
		fields["daily_rate"] = p.DailyRate.Round(2)
	}

	wakeEnabled, wakeDate, wakeCall := st.WakeUpEnabled, st.WakeUpDate, st.WakeUpCall
	if p.WakeUpEnabled != nil {
		wakeEnabled = *p.WakeUpEnabled
	}
	if p.WakeUpDate != nil {
		wakeDate = *p.WakeUpDate
	}
	if p.WakeUpCall != nil {
		wakeCall = *p.WakeUpCall
	}
	if wakeEnabled && (!validDate(wakeDate) || !validClock(wakeCall)) {
		return nil, errors.ErrInvalidParams.WithMessage("叫醒日期或时间格式无效")
	}
	if p.WakeUpEnabled != nil || p.WakeUpDate != nil || p.WakeUpCall != nil {
		fields["wake_up_enabled"] = wakeEnabled
		fields["wake_up_date"] = wakeDate
		fields["wake_up_call"] = wakeCall
		if wakeDate+" "+wakeCall != st.WakeUpSchedule() {
			fields["wake_up_fired_for"] = ""
		}
	}

	if len(fields) > 0 {
		if err := s.stayRepo.UpdateFields(ctx, st.ID, fields); err != nil {
			return nil, errors.ErrDatabaseError.WithError(err)
		}
	}
	return s.Statement(ctx, roomID)
}

// CloseStay 结算并删除入住记录，返回结算前的账单
func (s *LedgerService) CloseStay(ctx context.Context, roomID int64) (*Statement, error) {
	var final *Statement
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		st, err := s.Statement(ctx, roomID)
		if err != nil {
			return err
		}
		if err := s.stayRepo.Delete(ctx, st.Stay.ID); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		final = st
		return nil
	})
	if err != nil {
		return nil, err
	}
	return final, nil
}

// HasStay 房间是否有入住记录
func (s *LedgerService) HasStay(ctx context.Context, roomID int64) (bool, error) {
	ok, err := s.stayRepo.ExistsForRoom(ctx, roomID)
	if err != nil {
		return false, errors.ErrDatabaseError.WithError(err)
	}
	return ok, nil
}

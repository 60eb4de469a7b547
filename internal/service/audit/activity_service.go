// Package audit 提供操作审计日志服务
package audit

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dumeirei/hotel-frontdesk/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk/internal/common/logger"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
	"github.com/dumeirei/hotel-frontdesk/internal/repository"
)

// 审计动作
const (
	ActionCheckIn            = "CHECK_IN_REALIZADO"
	ActionCheckOut           = "CHECK_OUT_REALIZADO"
	ActionCleaningDone       = "LIMPEZA_CONCLUIDA"
	ActionMaintenanceDone    = "MANUTENCAO_CONCLUIDA"
	ActionTicketOpened       = "ABERTURA_CHAMADO"
	ActionTicketClosed       = "CONCLUSAO_CHAMADO"
	ActionRoomBlocked        = "QUARTO_BLOQUEADO"
	ActionRoomUnblocked      = "QUARTO_DESBLOQUEADO"
	ActionCashIn             = "REGISTRO_ENTRADA"
	ActionCashOut            = "REGISTRO_SAIDA"
	ActionShiftOpened        = "ABERTURA_CAIXA"
	ActionShiftClosed        = "FECHAMENTO_CAIXA"
	ActionReservationCreated = "NOVA_RESERVA"
	ActionReservationUpdated = "ATUALIZACAO_RESERVA"
	ActionReservationDeleted = "EXCLUSAO_RESERVA"
	ActionLogin              = "LOGIN_REALIZADO"
	ActionEmployeeCreated    = "NOVO_FUNCIONARIO"
	ActionProductCreated     = "NOVO_PRODUTO"
	ActionWakeUpSnoozed      = "DESPERTADOR_ADIADO"
	ActionWakeUpDismissed    = "DESPERTADOR_DESLIGADO"
)

// Entry 一条待记录的审计
type Entry struct {
	Type        string
	Action      string
	Description string
	Actor       string
	Details     models.JSON
}

// Event 发布到事件总线的审计消息
type Event struct {
	ID          int64       `json:"id"`
	Type        string      `json:"type"`
	Action      string      `json:"action"`
	Description string      `json:"description"`
	Actor       string      `json:"actor"`
	Details     models.JSON `json:"details,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
}

// Publisher 审计事件发布（NATS）
type Publisher interface {
	Publish(ctx context.Context, name string, event interface{}) error
}

// Recorder 供其他服务依赖的审计写入接口
type Recorder interface {
	Append(ctx context.Context, e Entry)
}

// ActivityService 审计日志服务
type ActivityService struct {
	repo      *repository.ActivityRepository
	publisher Publisher
	log       *zap.Logger
}

// NewActivityService 创建审计日志服务，publisher 可为 nil
func NewActivityService(repo *repository.ActivityRepository, publisher Publisher) *ActivityService {
	return &ActivityService{
		repo:      repo,
		publisher: publisher,
		log:       logger.Named("audit"),
	}
}

// Append 写入审计日志
// 写入失败只记录日志，不影响业务操作
func (s *ActivityService) Append(ctx context.Context, e Entry) {
	if e.Actor == "" {
		e.Actor = models.SystemActor
	}
	record := &models.ActivityLog{
		Type:        e.Type,
		Action:      e.Action,
		Description: e.Description,
		Actor:       e.Actor,
		Details:     e.Details,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		s.log.Error("append activity failed",
			logger.Action(e.Action),
			zap.String("type", e.Type),
			zap.Error(err),
		)
		return
	}

	if s.publisher == nil {
		return
	}
	event := &Event{
		ID:          record.ID,
		Type:        record.Type,
		Action:      record.Action,
		Description: record.Description,
		Actor:       record.Actor,
		Details:     record.Details,
		Timestamp:   record.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, record.Type, event); err != nil {
		s.log.Warn("publish activity failed", logger.Action(e.Action), zap.Error(err))
	}
}

// List 分页查询审计日志，新记录在前
func (s *ActivityService) List(ctx context.Context, filter *repository.ActivityFilter, offset, limit int) ([]*models.ActivityLog, int64, error) {
	logs, total, err := s.repo.List(ctx, filter, offset, limit)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	return logs, total, nil
}

// Package assistant 前台问答助手
// 把当前房态与未完成工单整理成文本交给文本生成服务，只读不写
package assistant

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dumeirei/hotel-frontdesk/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk/internal/common/logger"
	"github.com/dumeirei/hotel-frontdesk/internal/common/metrics"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
	"github.com/dumeirei/hotel-frontdesk/internal/repository"
	"github.com/dumeirei/hotel-frontdesk/internal/service/room"
	"github.com/dumeirei/hotel-frontdesk/pkg/genai"
)

// 固定回复
const (
	FallbackMessage = "Ocorreu um erro ao conectar com o assistente inteligente. Verifique sua conexão ou chave de API."
	EmptyMessage    = "Desculpe, não consegui processar sua solicitação no momento."
)

const baseInstruction = `Você é o assistente virtual da recepção do hotel.
Seu objetivo é ajudar a equipe (recepcionistas, gerentes) com a gestão operacional.

REGRAS DE COMPORTAMENTO:
1. Você tem acesso aos dados em tempo real do hotel fornecidos abaixo. Use-os para responder.
2. Seja profissional, prestativo e direto.
3. Sobre disponibilidade, consulte a lista de quartos disponíveis.
4. Sobre hóspedes, consulte a lista de quartos ocupados.
5. Sobre manutenção, liste as ocorrências ativas.

IMPORTANTE: Você não pode alterar o banco de dados. Para check-ins ou fechamento de contas, oriente o usuário a usar a tela de Suítes.`

// Generator 文本生成
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// RoomLister 房态看板
type RoomLister interface {
	List(ctx context.Context, filter *repository.RoomFilter) ([]*room.RoomView, error)
}

// TicketLister 未完成工单
type TicketLister interface {
	ListActive(ctx context.Context) ([]*models.MaintenanceTicket, error)
}

// Answer 助手回复
type Answer struct {
	Text     string `json:"text"`
	Fallback bool   `json:"fallback"`
}

// AssistantService 助手服务
type AssistantService struct {
	generator Generator
	rooms     RoomLister
	tickets   TicketLister
	now       func() time.Time
	log       *zap.Logger
}

// NewAssistantService 创建助手服务，generator 为 nil 时助手不可用
func NewAssistantService(generator Generator, rooms RoomLister, tickets TicketLister) *AssistantService {
	return &AssistantService{
		generator: generator,
		rooms:     rooms,
		tickets:   tickets,
		now:       time.Now,
		log:       logger.Named("assistant"),
	}
}

var categoryLabels = map[string]string{
	models.RoomCategoryStandard: "Standard",
	models.RoomCategoryLuxury:   "Luxo",
	models.RoomCategoryMaster:   "Master",
}

var priorityLabels = map[string]string{
	models.TicketPriorityLow:    "Baixa",
	models.TicketPriorityMedium: "Média",
	models.TicketPriorityHigh:   "Alta",
}

var ticketStatusLabels = map[string]string{
	models.TicketStatusPending:    "Pendente",
	models.TicketStatusInProgress: "Em Andamento",
	models.TicketStatusDone:       "Concluído",
}

func orNone(items []string, sep string) string {
	if len(items) == 0 {
		return "Nenhum"
	}
	return strings.Join(items, sep)
}

// Snapshot 当前房态与工单的文本快照
func (s *AssistantService) Snapshot(ctx context.Context) (string, error) {
	rooms, err := s.rooms.List(ctx, nil)
	if err != nil {
		return "", err
	}
	tickets, err := s.tickets.ListActive(ctx)
	if err != nil {
		return "", err
	}

	var available, occupied, dirty, maintenance []string
	for _, r := range rooms {
		switch r.Status {
		case models.RoomStatusAvailable:
			available = append(available, fmt.Sprintf("Quarto %s (%s)", r.Number, categoryLabels[r.Category]))
		case models.RoomStatusOccupied:
			guest := r.GuestName
			if guest == "" {
				guest = "Desconhecido"
			}
			occupied = append(occupied, fmt.Sprintf("Quarto %s (%s): Hóspede %s", r.Number, categoryLabels[r.Category], guest))
		case models.RoomStatusDirty:
			dirty = append(dirty, "Quarto "+r.Number)
		case models.RoomStatusMaintenance:
			maintenance = append(maintenance, "Quarto "+r.Number)
		}
	}

	var b strings.Builder
	b.WriteString("--- STATUS ATUAL DOS QUARTOS ---\n")
	fmt.Fprintf(&b, "DISPONÍVEIS (%d): %s\n", len(available), orNone(available, ", "))
	fmt.Fprintf(&b, "OCUPADOS (%d): %s\n", len(occupied), orNone(occupied, " | "))
	fmt.Fprintf(&b, "EM LIMPEZA (%d): %s\n", len(dirty), orNone(dirty, ", "))
	fmt.Fprintf(&b, "EM MANUTENÇÃO (%d): %s\n", len(maintenance), orNone(maintenance, ", "))

	b.WriteString("\n--- OCORRÊNCIAS DE MANUTENÇÃO ATIVAS ---\n")
	if len(tickets) == 0 {
		b.WriteString("Nenhuma ocorrência ativa.")
	}
	for i, t := range tickets {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "- Quarto %s: %s (Prioridade: %s, Status: %s)",
			t.RoomNumber, t.Issue, priorityLabels[t.Priority], ticketStatusLabels[t.Status])
	}
	return b.String(), nil
}

// Ask 提问；生成失败返回固定的兜底回复
func (s *AssistantService) Ask(ctx context.Context, question string) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, errors.ErrQuestionRequired
	}
	if s.generator == nil {
		metrics.GetMetrics().RecordAssistant("unavailable")
		return nil, errors.ErrAssistantUnavailable
	}

	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		s.log.Error("build snapshot failed", zap.Error(err))
		metrics.GetMetrics().RecordAssistant("error")
		return &Answer{Text: FallbackMessage, Fallback: true}, nil
	}

	system := fmt.Sprintf("%s\n\n=== DADOS EM TEMPO REAL DO HOTEL (%s) ===\n%s\n=====================================",
		baseInstruction, s.now().Format("02/01/2006 15:04:05"), snapshot)

	text, err := s.generator.Generate(ctx, system, question)
	switch {
	case stderrors.Is(err, genai.ErrEmptyResponse):
		metrics.GetMetrics().RecordAssistant("empty")
		return &Answer{Text: EmptyMessage, Fallback: true}, nil
	case err != nil:
		s.log.Warn("generate answer failed", zap.Error(err))
		metrics.GetMetrics().RecordAssistant("error")
		return &Answer{Text: FallbackMessage, Fallback: true}, nil
	case strings.TrimSpace(text) == "":
		metrics.GetMetrics().RecordAssistant("empty")
		return &Answer{Text: EmptyMessage, Fallback: true}, nil
	}
	metrics.GetMetrics().RecordAssistant("ok")
	return &Answer{Text: text}, nil
}

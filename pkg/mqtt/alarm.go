package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 主题模板，前缀来自配置（默认 hotel/）
const (
	topicWakeUp    = "rooms/%s/wakeup"
	topicWakeUpAck = "rooms/+/wakeup/ack"
)

// AlarmEvent 叫醒事件类型
const (
	AlarmEventRinging = "ringing"
	AlarmEventCleared = "cleared"
)

// AckAction 客房面板按键动作
const (
	AckActionSnooze  = "snooze"
	AckActionDismiss = "dismiss"
)

// AlarmMessage 下发到客房终端的叫醒消息
type AlarmMessage struct {
	MessageID string `json:"message_id"`
	Room      string `json:"room"`
	Event     string `json:"event"`
	Schedule  string `json:"schedule,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// AckMessage 客房终端上报的按键消息
type AckMessage struct {
	Action    string `json:"action"`
	Timestamp int64  `json:"timestamp"`
}

// AckHandler 处理客房终端按键
type AckHandler func(ctx context.Context, roomNumber, action string)

// AlarmPublisher 叫醒提醒推送
type AlarmPublisher struct {
	client *Client
	prefix string
	now    func() time.Time
}

// NewAlarmPublisher 创建叫醒提醒推送
func NewAlarmPublisher(client *Client, topicPrefix string) *AlarmPublisher {
	if topicPrefix != "" && !strings.HasSuffix(topicPrefix, "/") {
		topicPrefix += "/"
	}
	return &AlarmPublisher{client: client, prefix: topicPrefix, now: time.Now}
}

// Topic 房间叫醒主题
func (p *AlarmPublisher) Topic(roomNumber string) string {
	return p.prefix + fmt.Sprintf(topicWakeUp, roomNumber)
}

// PublishAlarm 推送响铃
func (p *AlarmPublisher) PublishAlarm(ctx context.Context, roomNumber, schedule string) error {
	return p.client.Publish(ctx, p.Topic(roomNumber), &AlarmMessage{
		MessageID: uuid.NewString(),
		Room:      roomNumber,
		Event:     AlarmEventRinging,
		Schedule:  schedule,
		Timestamp: p.now().Unix(),
	})
}

// PublishCleared 推送停止响铃
func (p *AlarmPublisher) PublishCleared(ctx context.Context, roomNumber, reason string) error {
	return p.client.Publish(ctx, p.Topic(roomNumber), &AlarmMessage{
		MessageID: uuid.NewString(),
		Room:      roomNumber,
		Event:     AlarmEventCleared,
		Reason:    reason,
		Timestamp: p.now().Unix(),
	})
}

// SubscribeAcks 订阅客房面板的稍后提醒 / 关闭按键
func (p *AlarmPublisher) SubscribeAcks(ctx context.Context, handler AckHandler) error {
	return p.client.Subscribe(p.prefix+topicWakeUpAck, func(topic string, payload []byte) {
		room := roomFromAckTopic(strings.TrimPrefix(topic, p.prefix))
		if room == "" {
			return
		}
		var ack AckMessage
		if err := json.Unmarshal(payload, &ack); err != nil {
			p.client.log.Warn("invalid wakeup ack payload", zap.String("topic", topic), zap.Error(err))
			return
		}
		if ack.Action != AckActionSnooze && ack.Action != AckActionDismiss {
			p.client.log.Warn("unknown wakeup ack action", zap.String("topic", topic), zap.String("action", ack.Action))
			return
		}
		handler(ctx, room, ack.Action)
	})
}

// roomFromAckTopic 从 rooms/{number}/wakeup/ack 中取房号
func roomFromAckTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) != 4 || parts[0] != "rooms" || parts[2] != "wakeup" || parts[3] != "ack" {
		return ""
	}
	return parts[1]
}

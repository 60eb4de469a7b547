// Package natsbus 提供基于 NATS 的事件发布
package natsbus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

// conn 为 *nats.Conn 的最小子集
type conn interface {
	Publish(subj string, data []byte) error
	Close()
}

// Publisher NATS 事件发布器
type Publisher struct {
	conn   conn
	prefix string
}

// Connect 连接 NATS 并创建发布器
func Connect(url, subjectPrefix, clientName string) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.Name(clientName),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return newPublisher(nc, subjectPrefix), nil
}

func newPublisher(c conn, prefix string) *Publisher {
	return &Publisher{conn: c, prefix: strings.TrimSuffix(prefix, ".")}
}

// Subject 拼接主题，如 frontdesk.activity.check_in
func (p *Publisher) Subject(name string) string {
	name = strings.ToLower(name)
	if p.prefix == "" {
		return name
	}
	return p.prefix + "." + name
}

// Publish 以 JSON 发布事件
func (p *Publisher) Publish(ctx context.Context, name string, event interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return p.conn.Publish(p.Subject(name), data)
}

// Close 关闭连接
func (p *Publisher) Close() error {
	p.conn.Close()
	return nil
}

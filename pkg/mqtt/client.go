// Package mqtt 提供 MQTT 客户端封装，用于向客房终端推送叫醒提醒
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// Config MQTT 配置
type Config struct {
	Broker         string // 完整地址，如 tcp://localhost:1883
	ClientID       string
	Username       string
	Password       string
	QoS            byte
	Retained       bool
	KeepAlive      int
	AutoReconnect  bool
	ConnectTimeout int
	Logger         *zap.Logger
}

// Client MQTT 客户端
type Client struct {
	config   *Config
	client   mqtt.Client
	log      *zap.Logger
	handlers map[string]MessageHandler
	mu       sync.RWMutex
}

// MessageHandler 消息处理器
type MessageHandler func(topic string, payload []byte)

// NewClient 创建 MQTT 客户端
func NewClient(config *Config) *Client {
	log := config.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		config:   config,
		log:      log.Named("mqtt"),
		handlers: make(map[string]MessageHandler),
	}
}

// Connect 连接 MQTT Broker
func (c *Client) Connect() error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(c.config.Broker)
	opts.SetClientID(c.config.ClientID)
	opts.SetUsername(c.config.Username)
	opts.SetPassword(c.config.Password)
	opts.SetCleanSession(true)
	opts.SetKeepAlive(time.Duration(c.config.KeepAlive) * time.Second)
	opts.SetAutoReconnect(c.config.AutoReconnect)
	if c.config.ConnectTimeout > 0 {
		opts.SetConnectTimeout(time.Duration(c.config.ConnectTimeout) * time.Second)
	}
	opts.SetConnectionLostHandler(c.onConnectionLost)
	opts.SetOnConnectHandler(c.onConnect)
	opts.SetReconnectingHandler(c.onReconnecting)

	c.client = mqtt.NewClient(opts)

	if token := c.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect error: %w", token.Error())
	}

	c.log.Info("connected to broker", zap.String("broker", c.config.Broker))
	return nil
}

// Disconnect 断开连接
func (c *Client) Disconnect() {
	if c.client != nil && c.client.IsConnected() {
		c.client.Disconnect(250)
		c.log.Info("disconnected from broker")
	}
}

// IsConnected 检查是否已连接
func (c *Client) IsConnected() bool {
	return c.client != nil && c.client.IsConnected()
}

func (c *Client) dispatch(_ mqtt.Client, msg mqtt.Message) {
	c.mu.RLock()
	h, ok := c.handlers[msg.Topic()]
	if !ok {
		// 通配订阅按过滤器匹配
		for filter, handler := range c.handlers {
			if topicMatches(filter, msg.Topic()) {
				h, ok = handler, true
				break
			}
		}
	}
	c.mu.RUnlock()
	if ok {
		h(msg.Topic(), msg.Payload())
	}
}

// Subscribe 订阅主题，支持 + 和 # 通配
func (c *Client) Subscribe(topic string, handler MessageHandler) error {
	if c.client == nil {
		return fmt.Errorf("mqtt subscribe error: not connected")
	}

	c.mu.Lock()
	c.handlers[topic] = handler
	c.mu.Unlock()

	token := c.client.Subscribe(topic, c.config.QoS, c.dispatch)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt subscribe error: %w", token.Error())
	}

	c.log.Info("subscribed", zap.String("topic", topic))
	return nil
}

// Unsubscribe 取消订阅
func (c *Client) Unsubscribe(topics ...string) error {
	if c.client == nil {
		return nil
	}
	token := c.client.Unsubscribe(topics...)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt unsubscribe error: %w", token.Error())
	}

	c.mu.Lock()
	for _, topic := range topics {
		delete(c.handlers, topic)
	}
	c.mu.Unlock()
	return nil
}

func encodePayload(payload interface{}) ([]byte, error) {
	switch v := payload.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("mqtt marshal payload error: %w", err)
		}
		return data, nil
	}
}

// Publish 发布消息（带超时）
func (c *Client) Publish(ctx context.Context, topic string, payload interface{}) error {
	if c.client == nil {
		return fmt.Errorf("mqtt publish error: not connected")
	}
	data, err := encodePayload(payload)
	if err != nil {
		return err
	}

	token := c.client.Publish(topic, c.config.QoS, c.config.Retained, data)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-token.Done():
		if token.Error() != nil {
			return fmt.Errorf("mqtt publish error: %w", token.Error())
		}
		return nil
	}
}

// onConnect 连接成功回调，重新订阅所有主题
func (c *Client) onConnect(client mqtt.Client) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for topic := range c.handlers {
		if token := client.Subscribe(topic, c.config.QoS, c.dispatch); token.Wait() && token.Error() != nil {
			c.log.Warn("resubscribe failed", zap.String("topic", topic), zap.Error(token.Error()))
		}
	}
}

func (c *Client) onConnectionLost(_ mqtt.Client, err error) {
	c.log.Warn("connection lost", zap.Error(err))
}

func (c *Client) onReconnecting(_ mqtt.Client, _ *mqtt.ClientOptions) {
	c.log.Info("reconnecting to broker")
}

// topicMatches 判断主题是否匹配订阅过滤器
func topicMatches(filter, topic string) bool {
	fi, ti := 0, 0
	for fi < len(filter) {
		if filter[fi] == '#' {
			return true
		}
		if filter[fi] == '+' {
			for ti < len(topic) && topic[ti] != '/' {
				ti++
			}
			fi++
			continue
		}
		if ti >= len(topic) || filter[fi] != topic[ti] {
			return false
		}
		fi++
		ti++
	}
	return ti == len(topic)
}

// Package kafka 提供了与 Kafka 消息队列交互的功能。
package kafka

import (
	"context"
	"drafting-wizard-go/internal/config"
	"drafting-wizard-go/pkg/log"
	"drafting-wizard-go/pkg/tasks"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/segmentio/kafka-go"
)

const (
	// MaxAttempts 是单个归档任务的最大处理次数，达到后提交 offset 终止重试。
	MaxAttempts  = 3
	retryBackoff = 2 * time.Second
	attemptsTTL  = 24 * time.Hour
	attemptsKeyF = "archive:attempts:%s"
)

// TaskProcessor 定义了可以处理归档任务的服务，消费者不依赖具体的 pipeline 实现。
type TaskProcessor interface {
	Process(ctx context.Context, task tasks.DraftArchiveTask) error
}

// Producer 向归档主题发送任务。
type Producer struct {
	writer *kafka.Writer
}

// NewProducer 初始化 Kafka 生产者。
func NewProducer(cfg config.KafkaConfig) *Producer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers(cfg.Brokers)...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	log.Info("Kafka 生产者初始化成功")
	return &Producer{writer: w}
}

// PublishDraftArchive 发送一个 draft 归档任务，消息 key 为 draft ID。
func (p *Producer) PublishDraftArchive(ctx context.Context, task tasks.DraftArchiveTask) error {
	taskBytes, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(task.DraftID),
		Value: taskBytes,
	})
}

// Close 关闭生产者。
func (p *Producer) Close() error {
	return p.writer.Close()
}

// messageReader 是消费者用到的 kafka.Reader 方法子集。
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer 消费归档任务。处理失败时在进程内按退避间隔重试，
// 尝试次数记录在 Redis 中，进程重启后重新投递的消息会接着计数。
type Consumer struct {
	reader    messageReader
	topic     string
	processor TaskProcessor
	rdb       *redis.Client
	backoff   time.Duration
}

// NewConsumer 创建消费者。rdb 为 nil 时尝试次数只在本次处理内计数。
func NewConsumer(cfg config.KafkaConfig, processor TaskProcessor, rdb *redis.Client) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers(cfg.Brokers),
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{reader: r, topic: cfg.Topic, processor: processor, rdb: rdb, backoff: retryBackoff}
}

// Run 阻塞消费消息，直到 ctx 被取消或读取出错。
// kafka-go 的消费组不会重新拉取未提交的消息，所以每条消息在 handle 内处理到底后才读下一条。
func (c *Consumer) Run(ctx context.Context) {
	log.Infof("Kafka 消费者已启动，正在监听主题 '%s'", c.topic)
	defer func() {
		if err := c.reader.Close(); err != nil {
			log.Errorf("关闭 Kafka 消费者失败: %v", err)
		}
	}()

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				log.Info("Kafka 消费者已停止")
				return
			}
			log.Error("从 Kafka 读取消息失败", err)
			return
		}

		log.Debugf("收到 Kafka 消息: offset %d", m.Offset)
		if !c.handle(ctx, m.Value) {
			// 停机中断了重试：不提交 offset，重启后该消息会被重新投递
			log.Warnf("归档任务未完成，停止消费: offset %d", m.Offset)
			return
		}
		if err := c.reader.CommitMessages(ctx, m); err != nil {
			log.Errorf("提交 Kafka 消息 offset 失败: %v", err)
		}
	}
}

// handle 处理一条消息，失败时最多尝试 MaxAttempts 次。
// 返回 false 表示 ctx 在重试过程中被取消，此时不应提交 offset。
func (c *Consumer) handle(ctx context.Context, value []byte) bool {
	var task tasks.DraftArchiveTask
	if err := json.Unmarshal(value, &task); err != nil || task.DraftID == "" {
		// 消息格式错误，直接提交，避免阻塞队列
		log.Errorf("无法解析 Kafka 消息: %v, value: %s", err, string(value))
		return true
	}

	attemptsKey := fmt.Sprintf(attemptsKeyF, task.DraftID)
	for local := 1; ; local++ {
		attempt := c.recordAttempt(ctx, attemptsKey, local)
		err := c.processor.Process(ctx, task)
		if err == nil {
			log.Infof("归档任务处理成功: draftId=%s, attempt=%d", task.DraftID, attempt)
			if c.rdb != nil {
				_ = c.rdb.Del(ctx, attemptsKey).Err()
			}
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		log.Errorf("归档任务处理失败: draftId=%s, attempt=%d, Error: %v", task.DraftID, attempt, err)
		if attempt >= MaxAttempts {
			log.Errorf("归档任务多次失败(>=%d)，提交 offset 终止重试: draftId=%s", MaxAttempts, task.DraftID)
			return true
		}

		select {
		case <-ctx.Done():
			return false
		case <-time.After(c.backoff * time.Duration(attempt)):
		}
	}
}

// recordAttempt 在 Redis 中累加尝试次数并返回累计值；Redis 不可用时退回本地计数。
func (c *Consumer) recordAttempt(ctx context.Context, key string, local int) int {
	if c.rdb == nil {
		return local
	}
	n, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		log.Warnf("记录失败次数出错: %v", err)
		return local
	}
	_ = c.rdb.Expire(ctx, key, attemptsTTL).Err()
	return int(max(n, int64(local)))
}

func brokers(list string) []string {
	var out []string
	for _, b := range strings.Split(list, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

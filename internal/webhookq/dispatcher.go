// internal/webhookq/dispatcher.go
package webhookq

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"loyaltystudio-service/internal/domain/webhook"
	"loyaltystudio-service/internal/pkg/secrets"
	"loyaltystudio-service/internal/ws"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

const (
	queueSize       = 256
	deliveryTimeout = 10 * time.Second
)

// Repository is the slice of webhook storage the dispatcher needs.
type Repository interface {
	ListActiveByEvent(ctx context.Context, merchantID, eventType string) ([]webhook.Webhook, error)
	CreateLog(ctx context.Context, l *webhook.WebhookLog) error
}

// Dispatcher delivers events to subscribed endpoints off the request
// path. Publish never blocks a handler: when the queue is full the
// event is dropped and logged.
type Dispatcher struct {
	repo    Repository
	hub     *ws.Hub
	client  *http.Client
	logger  *zap.Logger
	queue   chan webhook.Event
	wg      sync.WaitGroup
	once    sync.Once
	closed  chan struct{}
	workers int
}

func NewDispatcher(repo Repository, hub *ws.Hub, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		repo:    repo,
		hub:     hub,
		client:  &http.Client{Timeout: deliveryTimeout},
		logger:  logger,
		queue:   make(chan webhook.Event, queueSize),
		closed:  make(chan struct{}),
		workers: 4,
	}
}

// Start launches the delivery workers.
func (d *Dispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
}

// Stop drains the queue and waits for in-flight deliveries.
func (d *Dispatcher) Stop() {
	d.once.Do(func() {
		close(d.closed)
		close(d.queue)
	})
	d.wg.Wait()
}

// Publish queues an event for delivery.
func (d *Dispatcher) Publish(merchantID, eventType string, data interface{}) {
	evt := webhook.Event{
		ID:         ulid.Make().String(),
		MerchantID: merchantID,
		Type:       eventType,
		CreatedAt:  time.Now().UTC(),
		Data:       data,
	}

	select {
	case <-d.closed:
		return
	default:
	}

	select {
	case d.queue <- evt:
	default:
		d.logger.Warn("webhook queue full, dropping event",
			zap.String("merchant_id", merchantID),
			zap.String("event_type", eventType),
		)
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()

	for evt := range d.queue {
		d.deliver(evt)
	}
}

func (d *Dispatcher) deliver(evt webhook.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	hooks, err := d.repo.ListActiveByEvent(ctx, evt.MerchantID, evt.Type)
	if err != nil {
		d.logger.Error("failed to list webhooks for event",
			zap.String("event_type", evt.Type),
			zap.Error(err),
		)
		return
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		d.logger.Error("failed to marshal event", zap.Error(err))
		return
	}

	for i := range hooks {
		d.deliverOne(ctx, &hooks[i], evt, payload)
	}
}

// deliverOne makes a single attempt per endpoint. Failed deliveries are
// logged, not retried; the log stream is the merchant's signal to replay.
func (d *Dispatcher) deliverOne(ctx context.Context, hook *webhook.Webhook, evt webhook.Event, payload []byte) {
	status, elapsed, postErr := d.post(ctx, hook, evt.Type, payload)

	log := &webhook.WebhookLog{
		ID:             ulid.Make().String(),
		WebhookID:      hook.ID,
		EventType:      evt.Type,
		StatusCode:     status,
		Successful:     postErr == nil && status >= 200 && status < 300,
		ResponseTimeMs: elapsed.Milliseconds(),
	}
	if postErr != nil {
		log.Error = postErr.Error()
	}

	if err := d.repo.CreateLog(ctx, log); err != nil {
		d.logger.Error("failed to record webhook delivery", zap.Error(err))
	}

	d.hub.Broadcast(evt.MerchantID, "webhook.delivery", log)

	if !log.Successful {
		d.logger.Warn("webhook delivery failed",
			zap.String("webhook_id", hook.ID),
			zap.String("event_type", evt.Type),
			zap.Int("status", status),
			zap.Error(postErr),
		)
	}
}

func (d *Dispatcher) post(ctx context.Context, hook *webhook.Webhook, eventType string, payload []byte) (int, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, hook.URL, bytes.NewReader(payload))
	if err != nil {
		return 0, 0, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Loyalty-Event", eventType)
	req.Header.Set("X-Loyalty-Signature", secrets.Sign(hook.Secret, payload))

	start := time.Now()
	resp, err := d.client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		return 0, elapsed, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	return resp.StatusCode, elapsed, nil
}

// internal/webhookq/dispatcher_test.go
package webhookq

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"loyaltystudio-service/internal/domain/webhook"
	"loyaltystudio-service/internal/pkg/secrets"
	"loyaltystudio-service/internal/ws"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubRepo struct {
	mu    sync.Mutex
	hooks []webhook.Webhook
	logs  []webhook.WebhookLog
}

func (s *stubRepo) ListActiveByEvent(ctx context.Context, merchantID, eventType string) ([]webhook.Webhook, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []webhook.Webhook
	for _, h := range s.hooks {
		if h.MerchantID == merchantID && h.SubscribedTo(eventType) {
			out = append(out, h)
		}
	}
	return out, nil
}

func (s *stubRepo) CreateLog(ctx context.Context, l *webhook.WebhookLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, *l)
	return nil
}

func (s *stubRepo) logCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.logs)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestDispatcherDeliversSignedEvent(t *testing.T) {
	var (
		mu       sync.Mutex
		gotBody  []byte
		gotEvent string
		gotSig   string
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		gotBody = body
		gotEvent = r.Header.Get("X-Loyalty-Event")
		gotSig = r.Header.Get("X-Loyalty-Signature")
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	repo := &stubRepo{hooks: []webhook.Webhook{{
		ID:         "wh_1",
		MerchantID: "mrc_1",
		URL:        srv.URL,
		Events:     []string{"member.created"},
		IsActive:   true,
		Secret:     "whsec_test",
	}}}

	d := NewDispatcher(repo, ws.NewHub(zap.NewNop()), zap.NewNop())
	d.Start()

	d.Publish("mrc_1", "member.created", map[string]string{"id": "m_1"})
	waitFor(t, func() bool { return repo.logCount() == 1 })
	d.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "member.created", gotEvent)
	assert.True(t, secrets.VerifySignature("whsec_test", gotBody, gotSig))

	repo.mu.Lock()
	defer repo.mu.Unlock()
	require.Len(t, repo.logs, 1)
	assert.Equal(t, "wh_1", repo.logs[0].WebhookID)
	assert.True(t, repo.logs[0].Successful)
	assert.Equal(t, http.StatusOK, repo.logs[0].StatusCode)
}

func TestDispatcherWildcardSubscription(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	repo := &stubRepo{hooks: []webhook.Webhook{{
		ID:         "wh_1",
		MerchantID: "mrc_1",
		URL:        srv.URL,
		Events:     []string{"*"},
		IsActive:   true,
		Secret:     "whsec_test",
	}}}

	d := NewDispatcher(repo, ws.NewHub(zap.NewNop()), zap.NewNop())
	d.Start()

	d.Publish("mrc_1", "reward.redeemed", nil)
	waitFor(t, func() bool { return repo.logCount() == 1 })
	d.Stop()
}

func TestDispatcherRecordsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	repo := &stubRepo{hooks: []webhook.Webhook{{
		ID:         "wh_1",
		MerchantID: "mrc_1",
		URL:        srv.URL,
		Events:     []string{"member.created"},
		IsActive:   true,
		Secret:     "whsec_test",
	}}}

	d := NewDispatcher(repo, ws.NewHub(zap.NewNop()), zap.NewNop())
	d.Start()

	d.Publish("mrc_1", "member.created", nil)
	waitFor(t, func() bool { return repo.logCount() == 1 })
	d.Stop()

	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.False(t, repo.logs[0].Successful)
	assert.Equal(t, http.StatusBadRequest, repo.logs[0].StatusCode)
}

func TestDispatcherSkipsUnsubscribedMerchant(t *testing.T) {
	repo := &stubRepo{hooks: []webhook.Webhook{{
		ID:         "wh_1",
		MerchantID: "mrc_other",
		URL:        "http://127.0.0.1:0",
		Events:     []string{"*"},
		IsActive:   true,
	}}}

	d := NewDispatcher(repo, ws.NewHub(zap.NewNop()), zap.NewNop())
	d.Start()

	d.Publish("mrc_1", "member.created", nil)
	d.Stop()

	assert.Equal(t, 0, repo.logCount())
}

func TestPublishAfterStopIsNoOp(t *testing.T) {
	repo := &stubRepo{}
	d := NewDispatcher(repo, ws.NewHub(zap.NewNop()), zap.NewNop())
	d.Start()
	d.Stop()

	// Must not panic on the closed queue.
	d.Publish("mrc_1", "member.created", nil)
}

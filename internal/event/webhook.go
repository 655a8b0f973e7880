package event

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/support-ticket/request-service/internal/model"
	"go.uber.org/zap"
)

// WebhookNotifier POSTs lifecycle events to an external URL. With an empty
// URL every call is a no-op.
type WebhookNotifier struct {
	url        string
	httpClient *http.Client
	log        *zap.Logger
}

func NewWebhookNotifier(url string, log *zap.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		url:        url,
		httpClient: &http.Client{},
		log:        log,
	}
}

// webhookPayload is the body sent to the configured URL.
type webhookPayload struct {
	Event   string         `json:"event"`
	Request *model.Request `json:"request"`
}

func (n *WebhookNotifier) Emit(ctx context.Context, event string, req *model.Request) {
	if n.url == "" || req == nil {
		return
	}
	body, err := json.Marshal(webhookPayload{Event: event, Request: req})
	if err != nil {
		n.log.Error("webhook: marshal event", zap.Error(err))
		return
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		n.log.Error("webhook: new request", zap.Error(err))
		return
	}
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := n.httpClient.Do(httpReq)
	if err != nil {
		n.log.Error("webhook: request", zap.Error(err))
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		n.log.Warn("webhook: unexpected status",
			zap.Int("status", resp.StatusCode),
			zap.String("event", event),
			zap.Uint64("request_id", req.ID))
	}
}

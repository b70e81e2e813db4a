package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icsherer/Herd-Ledger/internal/config"
	"github.com/icsherer/Herd-Ledger/internal/domain/models"
	"github.com/icsherer/Herd-Ledger/internal/metrics"
	"github.com/icsherer/Herd-Ledger/internal/service/commands"
	"github.com/icsherer/Herd-Ledger/pkg/clients/anthropic"
	client "github.com/icsherer/Herd-Ledger/pkg/clients/whatsapp"
)

type fakeClient struct {
	mu   sync.Mutex
	sent []client.SendTextMessageRequest
	err  error
}

func (f *fakeClient) SendTextMessage(_ context.Context, req client.SendTextMessageRequest) (*client.SendTextMessageResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, req)
	return &client.SendTextMessageResponse{}, nil
}

func (f *fakeClient) last() client.SendTextMessageRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1]
}

type fakeDispatcher struct {
	got   []models.Command
	reply string
	err   error
}

func (f *fakeDispatcher) HandleCommand(_ context.Context, cmd models.Command, _ string) (string, error) {
	f.got = append(f.got, cmd)
	return f.reply, f.err
}

type fakeAI struct {
	command string
	history []anthropic.Message
}

func (f *fakeAI) TranslateToCommand(_ context.Context, history []anthropic.Message, _ string) (string, error) {
	f.history = history
	return f.command, nil
}

func textPayload(from, body string) models.WebhookPayload {
	return models.WebhookPayload{
		Object: "whatsapp_business_account",
		Entry: []models.WebhookEntry{{
			Changes: []models.WebhookChange{{
				Field: "messages",
				Value: models.WebhookValue{Messages: []models.InboundMessage{{
					From: from,
					ID:   "wamid.in",
					Type: "text",
					Text: &models.TextContent{Body: body},
				}}},
			}},
		}},
	}
}

func newTestService(t *testing.T, c client.Client, ai anthropic.Client, d commands.Dispatcher) (*MetaWhatsAppService, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)
	return NewMetaWhatsAppService(config.WhatsAppConfig{VerifyToken: "verify-me"}, c, ai, d, m, nil), reg
}

func assertOutbound(t *testing.T, reg *prometheus.Registry, status string) {
	t.Helper()
	expected := fmt.Sprintf(`
# HELP herd_ledger_outbound_messages_total WhatsApp messages sent by status
# TYPE herd_ledger_outbound_messages_total counter
herd_ledger_outbound_messages_total{status=%q} 1
`, status)
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "herd_ledger_outbound_messages_total"))
}

func TestVerifyWebhookToken(t *testing.T) {
	svc, _ := newTestService(t, &fakeClient{}, nil, &fakeDispatcher{})

	challenge, err := svc.VerifyWebhookToken("subscribe", "verify-me", "42")
	require.NoError(t, err)
	assert.Equal(t, "42", challenge)

	_, err = svc.VerifyWebhookToken("subscribe", "wrong", "42")
	assert.Error(t, err)
	_, err = svc.VerifyWebhookToken("unsubscribe", "verify-me", "42")
	assert.Error(t, err)
	_, err = svc.VerifyWebhookToken("", "", "")
	assert.Error(t, err)
}

func TestHandleWebhookDispatchesCommands(t *testing.T) {
	wa := &fakeClient{}
	d := &fakeDispatcher{reply: "Weight saved for Daisy: 845 lbs on 2024-10-15."}
	svc, reg := newTestService(t, wa, nil, d)

	require.NoError(t, svc.HandleWebhook(context.Background(), textPayload("2217000000", "/weight C-12 845")))
	require.Len(t, d.got, 1)
	assert.Equal(t, models.CommandWeight, d.got[0].Type)
	assert.Equal(t, "2217000000", wa.last().To)
	assert.Equal(t, d.reply, wa.last().Body)
	assertOutbound(t, reg, metrics.StatusSent)
}

func TestHandleWebhookRepliesToUserErrors(t *testing.T) {
	wa := &fakeClient{}
	d := &fakeDispatcher{err: fmt.Errorf("%w: %s", commands.ErrUnknownTag, "X-9")}
	svc, _ := newTestService(t, wa, nil, d)

	require.NoError(t, svc.HandleWebhook(context.Background(), textPayload("1", "/status X-9")))
	assert.Equal(t, "No active animal tagged X-9.", wa.last().Body)

	d.err = models.Invalid("pastureName", "is required")
	require.NoError(t, svc.HandleWebhook(context.Background(), textPayload("1", "/move X-9 ")))
	assert.Equal(t, "Not saved: validation failed on pastureName: is required", wa.last().Body)

	d.err = errors.New("disk full")
	err := svc.HandleWebhook(context.Background(), textPayload("1", "/note hi"))
	assert.ErrorContains(t, err, "disk full")
	assert.Equal(t, "Something went wrong saving that. Please try again.", wa.last().Body)
}

func TestHandleWebhookUsesAIForFreeText(t *testing.T) {
	wa := &fakeClient{}
	d := &fakeDispatcher{reply: "ok"}
	ai := &fakeAI{command: "/move C-12 North Meadow"}
	svc, _ := newTestService(t, wa, ai, d)
	ctx := context.Background()

	require.NoError(t, svc.HandleWebhook(ctx, textPayload("1", "/status C-12")))
	require.NoError(t, svc.HandleWebhook(ctx, textPayload("1", "put her in the north meadow")))

	require.Len(t, d.got, 2)
	assert.Equal(t, models.CommandMove, d.got[1].Type)
	assert.Equal(t, []string{"C-12", "North", "Meadow"}, d.got[1].Args)
	assert.Equal(t, "put her in the north meadow", d.got[1].Raw)
	require.Len(t, ai.history, 2)
	assert.Equal(t, "/status C-12", ai.history[0].Content)

	ai.command = ""
	require.NoError(t, svc.HandleWebhook(ctx, textPayload("1", "nice weather")))
	assert.Len(t, d.got, 2)
	assert.Contains(t, wa.last().Body, "Sorry, I did not understand that.")
}

func TestHandleWebhookIgnoresMedia(t *testing.T) {
	wa := &fakeClient{}
	svc, _ := newTestService(t, wa, nil, &fakeDispatcher{})
	payload := textPayload("1", "")
	payload.Entry[0].Changes[0].Value.Messages[0].Text = nil
	payload.Entry[0].Changes[0].Value.Messages[0].Type = "image"

	require.NoError(t, svc.HandleWebhook(context.Background(), payload))
	assert.Empty(t, wa.sent)
}

func TestSendOutboundRecordsFailures(t *testing.T) {
	wa := &fakeClient{err: errors.New("whatsapp api error: code=131047")}
	svc, reg := newTestService(t, wa, nil, &fakeDispatcher{})

	err := svc.SendOutbound(context.Background(), models.OutboundMessageRequest{To: "1", Message: "digest"})
	assert.Error(t, err)
	assertOutbound(t, reg, metrics.StatusError)
}

func TestSessionHistoryIsCapped(t *testing.T) {
	sm := NewSessionManager()
	for i := 0; i < maxHistory; i++ {
		sm.Record("1", "in", "out")
	}
	sm.Record("1", "latest", "reply")

	h := sm.History("1")
	require.Len(t, h, maxHistory)
	assert.Equal(t, "reply", h[len(h)-1].Content)
	assert.Empty(t, sm.History("2"))

	sm.ClearSession("1")
	assert.Empty(t, sm.History("1"))
}

func TestHandleWebhookWeatherFailure(t *testing.T) {
	wa := &fakeClient{}
	d := &fakeDispatcher{err: fmt.Errorf("%w: %w", commands.ErrWeatherUnavailable, errors.New("overloaded"))}
	svc, _ := newTestService(t, wa, nil, d)

	err := svc.HandleWebhook(context.Background(), textPayload("1", "/weather Lancaster PA"))
	assert.ErrorIs(t, err, commands.ErrWeatherUnavailable)
	assert.Equal(t, "The weather report could not be fetched. Please try again later.", wa.last().Body)
}

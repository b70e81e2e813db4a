package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/icsherer/Herd-Ledger/internal/config"
	"github.com/icsherer/Herd-Ledger/internal/domain/models"
	"github.com/icsherer/Herd-Ledger/internal/metrics"
	"github.com/icsherer/Herd-Ledger/internal/service/commands"
	"github.com/icsherer/Herd-Ledger/pkg/clients/anthropic"
	client "github.com/icsherer/Herd-Ledger/pkg/clients/whatsapp"
)

const sendTimeout = 10 * time.Second

// MessagingService describes the operations the HTTP layer can perform.
type MessagingService interface {
	VerifyWebhookToken(mode, verifyToken, challenge string) (string, error)
	HandleWebhook(ctx context.Context, payload models.WebhookPayload) error
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// MetaWhatsAppService is the production implementation backed by WhatsApp Cloud API.
type MetaWhatsAppService struct {
	cfg        config.WhatsAppConfig
	client     client.Client
	ai         anthropic.Client
	dispatcher commands.Dispatcher
	sessions   *SessionManager
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewMetaWhatsAppService wires a new service instance. ai may be nil, in
// which case only slash commands and keywords are understood.
func NewMetaWhatsAppService(cfg config.WhatsAppConfig, c client.Client, ai anthropic.Client, dispatcher commands.Dispatcher, m *metrics.Metrics, logger *zap.Logger) *MetaWhatsAppService {
	svc := &MetaWhatsAppService{
		cfg:        cfg,
		client:     c,
		ai:         ai,
		dispatcher: dispatcher,
		sessions:   NewSessionManager(),
		metrics:    m,
		logger:     logger,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// VerifyWebhookToken validates the callback verification token.
func (s *MetaWhatsAppService) VerifyWebhookToken(mode, verifyToken, challenge string) (string, error) {
	if mode == "" || verifyToken == "" {
		return "", errors.New("missing mode or verify token")
	}

	if !strings.EqualFold(mode, "subscribe") {
		return "", fmt.Errorf("unsupported hub.mode %s", mode)
	}

	if verifyToken != s.cfg.VerifyToken {
		return "", errors.New("invalid verify token")
	}

	return challenge, nil
}

// HandleWebhook processes inbound webhook payloads.
func (s *MetaWhatsAppService) HandleWebhook(ctx context.Context, payload models.WebhookPayload) error {
	var firstErr error

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if err := s.handleInboundMessage(ctx, msg); err != nil {
					s.logger.Error("failed to handle inbound message", zap.Error(err), zap.String("message_id", msg.ID))
					if firstErr == nil {
						firstErr = err
					}
				}
			}
		}
	}

	return firstErr
}

func (s *MetaWhatsAppService) handleInboundMessage(ctx context.Context, msg models.InboundMessage) error {
	text := strings.TrimSpace(extractMessageText(msg))
	if text == "" {
		s.logger.Debug("ignoring message without text", zap.String("type", msg.Type), zap.String("message_id", msg.ID))
		return nil
	}

	cmd := s.understand(ctx, msg.From, text)
	s.logger.Info("parsed inbound command",
		zap.String("from", msg.From),
		zap.String("command", string(cmd.Type)),
		zap.Strings("args", cmd.Args))

	var (
		reply      string
		handlerErr error
	)
	if cmd.Type == models.CommandUnknown {
		reply = "Sorry, I did not understand that.\n" + commands.HelpText()
	} else {
		reply, handlerErr = s.dispatcher.HandleCommand(ctx, cmd, msg.From)
		if handlerErr != nil {
			reply = errorReply(handlerErr)
			if isUserError(handlerErr) {
				handlerErr = nil
			}
		}
	}
	s.sessions.Record(msg.From, text, reply)

	sendErr := s.send(ctx, msg.From, reply, false)
	return errors.Join(handlerErr, sendErr)
}

// understand parses text, falling back to the AI translator for free text.
func (s *MetaWhatsAppService) understand(ctx context.Context, from, text string) models.Command {
	cmd := models.ParseCommand(text)
	if cmd.Type != models.CommandUnknown || s.ai == nil {
		return cmd
	}

	translated, err := s.ai.TranslateToCommand(ctx, s.sessions.History(from), text)
	if err != nil {
		s.logger.Warn("ai translation failed", zap.Error(err))
		return cmd
	}
	if translated == "" {
		return cmd
	}
	s.logger.Debug("ai translated message", zap.String("command", translated))
	out := models.ParseCommand(translated)
	out.Raw = text
	return out
}

// SendOutbound lets internal operators push quick notifications via HTTP.
func (s *MetaWhatsAppService) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	return s.send(ctx, req.To, req.Message, req.PreviewURL)
}

func (s *MetaWhatsAppService) send(ctx context.Context, to, body string, preview bool) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	_, err := s.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{
		To:         to,
		Body:       body,
		PreviewURL: preview,
	})
	if err != nil {
		s.metrics.RecordOutbound(metrics.StatusError)
		return err
	}
	s.metrics.RecordOutbound(metrics.StatusSent)
	return nil
}

func isUserError(err error) bool {
	return errors.Is(err, commands.ErrInvalidArguments) ||
		errors.Is(err, commands.ErrUnknownTag) ||
		errors.Is(err, commands.ErrUnsupportedCommand) ||
		models.IsValidation(err) ||
		models.IsReference(err)
}

func errorReply(err error) string {
	switch {
	case errors.Is(err, commands.ErrInvalidArguments):
		return "Usage: " + strings.TrimPrefix(err.Error(), commands.ErrInvalidArguments.Error()+": ")
	case errors.Is(err, commands.ErrUnknownTag):
		return "No active animal tagged " + strings.TrimPrefix(err.Error(), commands.ErrUnknownTag.Error()+": ") + "."
	case errors.Is(err, commands.ErrUnsupportedCommand):
		return "That command is not available."
	case errors.Is(err, commands.ErrWeatherUnavailable):
		return "The weather report could not be fetched. Please try again later."
	case models.IsValidation(err), models.IsReference(err):
		return "Not saved: " + err.Error()
	default:
		return "Something went wrong saving that. Please try again."
	}
}

func extractMessageText(msg models.InboundMessage) string {
	if msg.Text != nil {
		return msg.Text.Body
	}

	if msg.Interactive != nil {
		if msg.Interactive.ButtonReply != nil {
			return msg.Interactive.ButtonReply.ID
		}
		if msg.Interactive.ListReply != nil {
			return msg.Interactive.ListReply.ID
		}
	}

	return ""
}

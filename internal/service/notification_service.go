package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/boaz-housing/internal/config"
	"github.com/spec-kit/boaz-housing/internal/events"
)

// NotificationService reacts to domain events with notifications. Mail
// stays a logged stub unless an SMTP host is configured.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventSouscriptionCreated, n.handleSouscriptionCreated)
	n.dispatcher.Subscribe(events.EventSouscriptionStatusChanged, n.handleSouscriptionStatusChanged)
	n.dispatcher.Subscribe(events.EventProformaSent, n.handleProformaSent)
	n.dispatcher.Subscribe(events.EventLogementStatusChanged, n.handleLogementStatusChanged)
}

// SendProformaEmail mails the rendered proforma to the client as a PDF
// attachment.
func (n *NotificationService) SendProformaEmail(ctx context.Context, to, reference string, pdf []byte) error {
	if strings.TrimSpace(n.cfg.SMTPHost) == "" {
		n.logger.Info("proforma email stubbed, no SMTP host configured",
			zap.String("to", to),
			zap.String("reference", reference),
			zap.Int("pdf_bytes", len(pdf)))
		return nil
	}

	addr := fmt.Sprintf("%s:%d", n.cfg.SMTPHost, n.cfg.SMTPPort)
	msg := buildProformaMessage(n.cfg.EmailFrom, to, reference, pdf)
	if err := smtp.SendMail(addr, nil, n.cfg.EmailFrom, []string{to}, msg); err != nil {
		return fmt.Errorf("send proforma email: %w", err)
	}
	n.logger.Info("proforma email sent", zap.String("to", to), zap.String("reference", reference))
	return nil
}

func buildProformaMessage(from, to, reference string, pdf []byte) []byte {
	const boundary = "boaz-proforma-part"
	var b strings.Builder
	b.WriteString(fmt.Sprintf("From: %s\r\n", from))
	b.WriteString(fmt.Sprintf("To: %s\r\n", to))
	b.WriteString(fmt.Sprintf("Subject: Proforma %s\r\n", reference))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=%s\r\n\r\n", boundary))

	b.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(fmt.Sprintf("Veuillez trouver ci-joint votre proforma (reference %s).\r\n\r\n", reference))

	b.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	b.WriteString("Content-Type: application/pdf\r\n")
	b.WriteString(fmt.Sprintf("Content-Disposition: attachment; filename=\"proforma_%s.pdf\"\r\n", reference))
	b.WriteString("Content-Transfer-Encoding: base64\r\n\r\n")
	b.WriteString(base64.StdEncoding.EncodeToString(pdf))
	b.WriteString(fmt.Sprintf("\r\n--%s--\r\n", boundary))
	return []byte(b.String())
}

func (n *NotificationService) handleSouscriptionCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("SouscriptionCreated", zap.Int64("souscription_id", event.SubjectID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleSouscriptionStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("SouscriptionStatusChanged", zap.Int64("souscription_id", event.SubjectID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleProformaSent(ctx context.Context, event events.Event) error {
	n.logger.Info("ProformaSent", zap.Int64("souscription_id", event.SubjectID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleLogementStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("LogementStatusChanged", zap.Int64("logement_id", event.SubjectID), zap.Any("payload", event.Payload))
	return nil
}

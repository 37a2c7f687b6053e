// Package notify отправляет уведомления администратору по email.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"gym-panel/internal/models"
	"gym-panel/internal/service"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

var exhaustedTmpl = template.Must(template.New("exhausted").Parse(`<p>Абонемент персональных тренировок закончился.</p>
<ul>
<li>Ученик: {{.StudentName}}</li>
<li>Тренер: {{.CoachName}}</li>
<li>Проведено занятий: {{.Completed}} из {{.TotalSessions}}</li>
</ul>
<p>Предложите ученику продлить пакет.</p>`))

// Message одно письмо
type Message struct {
	To      []string
	Subject string
	HTML    string
}

// Sender доставляет письма; Resend в проде, noop без ключа
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type resendSender struct {
	client *resend.Client
	from   string
	logger *zap.Logger
}

func NewResendSender(apiKey, from string, logger *zap.Logger) Sender {
	return &resendSender{
		client: resend.NewClient(apiKey),
		from:   from,
		logger: logger,
	}
}

func (s *resendSender) Send(ctx context.Context, msg Message) error {
	sent, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	if err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	s.logger.Info("📧 Письмо отправлено", zap.String("id", sent.Id), zap.Strings("to", msg.To))
	return nil
}

type noopSender struct {
	logger *zap.Logger
}

func NewNoopSender(logger *zap.Logger) Sender {
	return &noopSender{logger: logger}
}

func (s *noopSender) Send(_ context.Context, msg Message) error {
	s.logger.Debug("Письмо не отправлено: RESEND_API_KEY не задан", zap.String("subject", msg.Subject))
	return nil
}

// Mailer уведомления администратору о событиях учета
type Mailer struct {
	sender Sender
	admin  string
}

func NewMailer(sender Sender, adminEmail string) *Mailer {
	return &Mailer{sender: sender, admin: adminEmail}
}

var _ service.Notifier = (*Mailer)(nil)

func (m *Mailer) SubscriptionExhausted(ctx context.Context, view models.PTSubscriptionView) error {
	if m.admin == "" {
		return nil
	}
	var body bytes.Buffer
	if err := exhaustedTmpl.Execute(&body, view); err != nil {
		return err
	}
	return m.sender.Send(ctx, Message{
		To:      []string{m.admin},
		Subject: fmt.Sprintf("PT: закончился абонемент %s", view.StudentName),
		HTML:    body.String(),
	})
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"librental-backend/internal/config"
	"librental-backend/internal/logger"
)

type emailService struct {
	apiKey    string
	fromEmail string
	fromName  string
}

func NewEmailService(cfg config.EmailConfig) EmailService {
	return &emailService{
		apiKey:    cfg.APIKey,
		fromEmail: cfg.From,
		fromName:  cfg.FromName,
	}
}

func (s *emailService) SendDueSoonReminder(ctx context.Context, email, name string, loanID int32, dueDate time.Time) error {
	subject := "Your book loan is due soon"
	plainText := fmt.Sprintf(
		"Hello %s,\n\nYour loan #%d is due on %s. Please return your books on time to avoid late fines.",
		name, loanID, dueDate.Format("January 2, 2006"))
	htmlContent := fmt.Sprintf(`
		<html>
			<body>
				<h2>Loan Due Soon</h2>
				<p>Hello %s,</p>
				<p>Your loan <strong>#%d</strong> is due on <strong>%s</strong>.</p>
				<p>Please return your books on time to avoid late fines.</p>
			</body>
		</html>
	`, name, loanID, dueDate.Format("January 2, 2006"))

	return s.send(email, name, subject, plainText, htmlContent)
}

func (s *emailService) SendOverdueNotice(ctx context.Context, email, name string, loanID int32, daysOverdue, outstandingCents int32) error {
	subject := "Your book loan is overdue"
	plainText := fmt.Sprintf(
		"Hello %s,\n\nYour loan #%d is %d day(s) overdue. Your outstanding balance is %s. Please return your books as soon as possible.",
		name, loanID, daysOverdue, formatCents(outstandingCents))
	htmlContent := fmt.Sprintf(`
		<html>
			<body>
				<h2>Overdue Loan</h2>
				<p>Hello %s,</p>
				<p>Your loan <strong>#%d</strong> is <strong>%d day(s)</strong> overdue.</p>
				<p>Your outstanding balance is <strong>%s</strong>.</p>
				<p>Please return your books as soon as possible.</p>
			</body>
		</html>
	`, name, loanID, daysOverdue, formatCents(outstandingCents))

	return s.send(email, name, subject, plainText, htmlContent)
}

func (s *emailService) SendAccountBlockedNotice(ctx context.Context, email, name, reason string) error {
	subject := "Your account has been suspended"
	plainText := fmt.Sprintf(
		"Hello %s,\n\nYour account has been suspended: %s.\nPlease visit the library to resolve this.",
		name, reason)
	htmlContent := fmt.Sprintf(`
		<html>
			<body>
				<h2>Account Suspended</h2>
				<p>Hello %s,</p>
				<p>Your account has been suspended: %s.</p>
				<p>Please visit the library to resolve this.</p>
			</body>
		</html>
	`, name, reason)

	return s.send(email, name, subject, plainText, htmlContent)
}

func (s *emailService) send(to, toName, subject, plainText, htmlContent string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(toName, to)
	message := mail.NewSingleEmail(from, subject, recipient, plainText, htmlContent)

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}

	logger.Debug("email sent", "to", to, "subject", subject)
	return nil
}

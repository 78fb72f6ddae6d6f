package email

import (
	"context"
	"fmt"
	"log/slog"
)

type EmailService struct {
	sender Sender
	logger *slog.Logger
}

func NewEmailService(sender Sender, logger *slog.Logger) *EmailService {
	return &EmailService{
		sender: sender,
		logger: logger,
	}
}

func (s *EmailService) IsConfigured() bool {
	return s.sender.IsConfigured()
}

func (s *EmailService) SendMentionEmail(ctx context.Context, to string, data *MentionEmailData) error {
	message, err := RenderMentionEmail(data)
	if err != nil {
		return err
	}

	message.To = to
	if err := s.sender.Send(ctx, message); err != nil {
		return fmt.Errorf("failed to send mention email: %w", err)
	}

	s.logger.Debug("mention email sent", "to", to, "project", data.ProjectName)

	return nil
}

func (s *EmailService) SendDigestEmail(ctx context.Context, to string, data *DigestEmailData) error {
	if len(data.Items) == 0 {
		return nil
	}

	message, err := RenderDigestEmail(data)
	if err != nil {
		return err
	}

	message.To = to
	if err := s.sender.Send(ctx, message); err != nil {
		return fmt.Errorf("failed to send digest email: %w", err)
	}

	s.logger.Debug("digest email sent", "to", to, "items", len(data.Items))

	return nil
}

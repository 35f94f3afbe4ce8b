// Package email renders and delivers transactional mail through a provider
// selected at startup.
package email

import (
	"context"

	"github.com/sirupsen/logrus"
)

type EmailService struct {
	provider Provider
}

func NewEmailService(provider Provider) *EmailService {
	return &EmailService{provider: provider}
}

// SendPasswordResetEmail renders the reset template and hands it to the
// provider. The caller decides what a delivery failure means; this service
// only reports it.
func (s *EmailService) SendPasswordResetEmail(ctx context.Context, to, resetLink, userName string) error {
	subject, html, text := passwordResetTemplate(resetLink, userName)

	if err := s.provider.Send(ctx, to, subject, html, text); err != nil {
		return err
	}

	logrus.WithField("to", to).Info("Password reset email sent")
	return nil
}

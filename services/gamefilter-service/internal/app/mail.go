package app

import (
	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/usecase"
	"github.com/vasapolrittideah/gamefilter-api/shared/mailer"
)

// logMailer stands in for SMTP in development. It logs the message instead
// of sending it.
type logMailer struct {
	logger *zerolog.Logger
}

func (m logMailer) SendHTML(to []string, subject, htmlBody string) error {
	m.logger.Info().Strs("to", to).Str("subject", subject).Str("body", htmlBody).Msg("smtp disabled, email not sent")
	return nil
}

func newMailSender(cfg mailer.Config, logger *zerolog.Logger) (usecase.MailSender, error) {
	if cfg.Host == "" {
		logger.Warn().Msg("SMTP_HOST is empty, verification emails will only be logged")
		return logMailer{logger: logger}, nil
	}

	m, err := mailer.NewMailer(cfg)
	if err != nil {
		return nil, err
	}
	return m, nil
}

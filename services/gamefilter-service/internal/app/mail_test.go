package app

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasapolrittideah/gamefilter-api/shared/mailer"
)

func TestNewMailSenderFallsBackToLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	sender, err := newMailSender(mailer.Config{}, &logger)
	require.NoError(t, err)
	require.IsType(t, logMailer{}, sender)

	require.NoError(t, sender.SendHTML([]string{"a@example.com"}, "Verify", "<p>hi</p>"))
	assert.Contains(t, buf.String(), "a@example.com")
	assert.Contains(t, buf.String(), "email not sent")
}

func TestNewMailSenderUsesSMTPWhenConfigured(t *testing.T) {
	logger := zerolog.Nop()

	sender, err := newMailSender(mailer.Config{
		Host:     "smtp.example.com",
		Port:     587,
		Username: "user",
		Password: "secret",
		From:     "noreply@example.com",
	}, &logger)
	require.NoError(t, err)
	assert.IsType(t, &mailer.Mailer{}, sender)
}

package usecase

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"strings"
)

//go:embed templates/verify_email.html
var templateFS embed.FS

// MailSender delivers rendered HTML mail.
type MailSender interface {
	SendHTML(to []string, subject, htmlBody string) error
}

const verificationSubject = "Verify your GameFilter account"

type verificationEmail struct {
	DisplayName string
	Link        string
}

// LoadVerificationTemplate parses the verification email template at path, or
// the built-in one when path is empty.
func LoadVerificationTemplate(path string) (*template.Template, error) {
	if path == "" {
		return template.ParseFS(templateFS, "templates/verify_email.html")
	}

	tmpl, err := template.ParseFiles(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse verification template %s: %w", path, err)
	}

	return tmpl, nil
}

func verificationLink(baseURL, token string) string {
	return strings.TrimRight(baseURL, "/") + "/" + url.PathEscape(token)
}

func renderVerificationEmail(tmpl *template.Template, data verificationEmail) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/mail"
	"text/template"

	"gopkg.in/gomail.v2"

	"vouch/internal/platform/config"
)

const issuedBody = `Hello {{.SubjectName}},

{{.IssuerName}} has issued you a credential for "{{.Course}}".

Credential ID: {{.CredentialID}}

Anyone can check its authenticity at any time:
{{.VerificationURL}}

Your certificate is attached to this message.
`

var issuedTmpl = template.Must(template.New("issued").Parse(issuedBody))

// Mailer sends issuance notifications over SMTP with the rendered
// certificate attached.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(cfg config.Email) *Mailer {
	from := mail.Address{Name: cfg.FromName, Address: cfg.FromAddress}
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   from.String(),
	}
}

func (m *Mailer) CredentialIssued(_ context.Context, n Issuance) error {
	var body bytes.Buffer
	if err := issuedTmpl.Execute(&body, n); err != nil {
		return fmt.Errorf("render notification body: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", n.SubjectContact)
	msg.SetHeader("Subject", fmt.Sprintf("Your credential for %s", n.Course))
	msg.SetBody("text/plain", body.String())

	if len(n.Document) > 0 {
		name := fmt.Sprintf("certificate-%s.pdf", n.CredentialID)
		msg.Attach(name, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(n.Document)
			return err
		}))
	}

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	return nil
}

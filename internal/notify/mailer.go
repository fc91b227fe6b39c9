package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"log/slog"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/jpalmerr/slotwatch"
)

const (
	// Subject is the subject line of every availability email.
	Subject = "HSA Exam Slots Available!"

	// DefaultPortalURL is where users register for a slot.
	DefaultPortalURL = "https://id.hsa.edu.vn"
)

// ErrNoRecipient is returned when the mailer has no destination address.
var ErrNoRecipient = errors.New("no email recipient configured")

// Email is a rendered message ready to send.
type Email struct {
	From    string
	To      []string
	Subject string
	Text    string
	HTML    string
}

// EmailSender delivers a rendered [Email].
type EmailSender interface {
	Send(ctx context.Context, email Email) error
}

var textBody = texttemplate.Must(texttemplate.New("text").Parse(
	`HSA Exam Slots Available as of {{.Timestamp}}

{{if .HasBatch}}Batch: {{.BatchName}} (Code: {{.BatchCode}}){{else}}Multiple batches have available slots{{end}}

Available slots summary:
{{range .Findings}}{{.SummaryLine}}
{{range .SlotLines}}  {{.}}
{{end}}{{end}}

Check {{.PortalURL}} to register now.
`))

var htmlBody = htmltemplate.Must(htmltemplate.New("html").Parse(
	`<html><body>
<h1>HSA Exam Slots Available!</h1>
<p>As of {{.Timestamp}}, the following locations have available slots:</p>
{{if .HasBatch}}<p><strong>Batch:</strong> {{.BatchName}} (Code: {{.BatchCode}})</p>{{else}}<p><strong>Multiple batches have available slots</strong></p>{{end}}
<ul>
{{range .Findings}}<li><strong>{{.Location.Name}}</strong> (ID: {{.Location.ID}}){{if .BatchCode}} [{{.BatchCode}}]{{end}}: {{len .Slots}} available sessions<ul>
{{range .Slots}}<li>{{.Slot.Name}}: {{.Available}}/{{.Total}}</li>
{{end}}</ul></li>
{{end}}</ul>
<p>Visit <a href="{{.PortalURL}}">{{.PortalHost}}</a> to register now!</p>
</body></html>
`))

type bodyData struct {
	Timestamp  string
	HasBatch   bool
	BatchName  string
	BatchCode  string
	Findings   []slotwatch.LocationResult
	PortalURL  string
	PortalHost string
}

// Mailer turns notifications into emails.
type Mailer struct {
	sender    EmailSender
	from      string
	to        []string
	portalURL string
	logger    *slog.Logger
}

// MailerOption configures a [Mailer].
type MailerOption func(*Mailer)

// WithPortalURL sets the registration link included in the email.
func WithPortalURL(url string) MailerOption {
	return func(m *Mailer) {
		if url != "" {
			m.portalURL = url
		}
	}
}

// WithMailerLogger sets the logger used to report deliveries.
func WithMailerLogger(logger *slog.Logger) MailerOption {
	return func(m *Mailer) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewMailer creates a [Mailer] sending from from to every address in to.
func NewMailer(sender EmailSender, from string, to []string, opts ...MailerOption) *Mailer {
	m := &Mailer{
		sender:    sender,
		from:      from,
		to:        to,
		portalURL: DefaultPortalURL,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Notify renders n and sends it.
func (m *Mailer) Notify(ctx context.Context, n slotwatch.Notification) error {
	if len(m.to) == 0 {
		return ErrNoRecipient
	}

	email, err := m.Compose(n)
	if err != nil {
		return err
	}
	if err := m.sender.Send(ctx, email); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	m.logger.Info("email notification sent",
		"run_id", n.RunID,
		"to", strings.Join(m.to, ","),
		"locations", len(n.Findings),
	)
	return nil
}

// Compose renders the email for n without sending it.
func (m *Mailer) Compose(n slotwatch.Notification) (Email, error) {
	at := n.At
	if at.IsZero() {
		at = time.Now()
	}

	data := bodyData{
		Timestamp:  at.Format("2006-01-02 15:04:05"),
		HasBatch:   n.BatchName != "" && n.BatchCode != "",
		BatchName:  n.BatchName,
		BatchCode:  n.BatchCode,
		Findings:   n.Findings,
		PortalURL:  m.portalURL,
		PortalHost: portalHost(m.portalURL),
	}

	var text, html bytes.Buffer
	if err := textBody.Execute(&text, data); err != nil {
		return Email{}, fmt.Errorf("render text body: %w", err)
	}
	if err := htmlBody.Execute(&html, data); err != nil {
		return Email{}, fmt.Errorf("render html body: %w", err)
	}

	return Email{
		From:    m.from,
		To:      m.to,
		Subject: Subject,
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}

func portalHost(url string) string {
	host := strings.TrimPrefix(url, "https://")
	host = strings.TrimPrefix(host, "http://")
	return strings.TrimSuffix(host, "/")
}

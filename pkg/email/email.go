package email

import (
	"bytes"
	"fmt"
	"html/template"
	"mime"
	"net/smtp"
	"net/url"
	"strings"
)

type Config struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromName     string
	FromEmail    string
	FrontendURL  string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer renders the back office notification emails and delivers them
// over SMTP with PLAIN auth.
type SMTPMailer struct {
	config Config
	send   sendFunc
}

func NewSMTPMailer(config Config) *SMTPMailer {
	config.FrontendURL = strings.TrimRight(config.FrontendURL, "/")
	return &SMTPMailer{config: config, send: smtp.SendMail}
}

// IsConfigured reports whether an SMTP host was set
func (m *SMTPMailer) IsConfigured() bool {
	return m.config.SMTPHost != ""
}

// SendPasswordResetEmail links to the frontend reset page. The link is valid
// for as long as the token is.
func (m *SMTPMailer) SendPasswordResetEmail(toEmail, token string) error {
	q := url.Values{}
	q.Set("token", token)
	q.Set("email", toEmail)

	return m.deliver(toEmail, "Reset Your Password - "+m.config.FromName, "password_reset", map[string]any{
		"Email":    toEmail,
		"ResetURL": m.config.FrontendURL + "/reset-password?" + q.Encode(),
	})
}

// LowStockItem is one product listed in a low stock alert
type LowStockItem struct {
	Name     string
	Code     string
	Quantity int
	Alert    int
}

// SendLowStockAlert tells a store owner which products fell to their alert
// level. Nothing is sent for an empty list.
func (m *SMTPMailer) SendLowStockAlert(toEmail, storeName string, items []LowStockItem) error {
	if len(items) == 0 {
		return nil
	}
	subject := fmt.Sprintf("Low stock: %d product(s) need restocking - %s", len(items), storeName)
	return m.deliver(toEmail, subject, "low_stock", map[string]any{
		"StoreName": storeName,
		"Items":     items,
	})
}

func (m *SMTPMailer) deliver(to, subject, name string, data map[string]any) error {
	data["AppName"] = m.config.FromName

	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, name, data); err != nil {
		return fmt.Errorf("render %s email: %w", name, err)
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", mime.QEncoding.Encode("utf-8", m.config.FromName), m.config.FromEmail)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	msg.Write(body.Bytes())

	addr := fmt.Sprintf("%s:%d", m.config.SMTPHost, m.config.SMTPPort)
	auth := smtp.PlainAuth("", m.config.SMTPUsername, m.config.SMTPPassword, m.config.SMTPHost)
	if err := m.send(addr, auth, m.config.FromEmail, []string{to}, msg.Bytes()); err != nil {
		return fmt.Errorf("send %s email: %w", name, err)
	}
	return nil
}

var templates = template.Must(template.New("email").Parse(`
{{define "header"}}<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><meta name="viewport" content="width=device-width, initial-scale=1.0"></head>
<body style="margin: 0; padding: 30px; font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; background-color: #f4f7fa;">
<div style="max-width: 600px; margin: 0 auto; background: #ffffff; border-radius: 12px; overflow: hidden;">
<div style="background: #2f855a; padding: 24px 30px;"><h1 style="color: #ffffff; margin: 0; font-size: 24px;">{{.AppName}}</h1></div>
<div style="padding: 30px; color: #4a5568; font-size: 15px; line-height: 1.6;">
{{end}}

{{define "footer"}}</div>
<div style="background: #f8fafc; padding: 20px 30px; color: #a0aec0; font-size: 12px; border-top: 1px solid #e2e8f0;">Sent by {{.AppName}}</div>
</div>
</body>
</html>
{{end}}

{{define "password_reset"}}{{template "header" .}}
<h2 style="color: #1a202c; margin-top: 0;">Reset your password</h2>
<p>We received a request to reset the password for <strong>{{.Email}}</strong>. The link below expires in <strong>1 hour</strong>.</p>
<p style="margin: 30px 0;"><a href="{{.ResetURL}}" style="background: #2f855a; color: #ffffff; padding: 14px 28px; border-radius: 8px; text-decoration: none; font-weight: 600;">Reset Password</a></p>
<p style="font-size: 13px; color: #718096;">If you did not ask for this, ignore this email and your password stays the same. If the button does not work, open this link:<br><a href="{{.ResetURL}}" style="color: #2f855a; word-break: break-all;">{{.ResetURL}}</a></p>
{{template "footer" .}}{{end}}

{{define "low_stock"}}{{template "header" .}}
<h2 style="color: #1a202c; margin-top: 0;">{{.StoreName}}: products at their alert level</h2>
<table style="border-collapse: collapse; width: 100%;">
<tr style="background: #2f855a; color: #ffffff;">
<th style="padding: 8px; text-align: left;">Product</th>
<th style="padding: 8px; text-align: left;">Code</th>
<th style="padding: 8px; text-align: right;">In stock</th>
<th style="padding: 8px; text-align: right;">Alert at</th>
</tr>
{{range .Items}}<tr>
<td style="padding: 8px; border-bottom: 1px solid #edf2f7;">{{.Name}}</td>
<td style="padding: 8px; border-bottom: 1px solid #edf2f7;">{{.Code}}</td>
<td style="padding: 8px; border-bottom: 1px solid #edf2f7; text-align: right;">{{.Quantity}}</td>
<td style="padding: 8px; border-bottom: 1px solid #edf2f7; text-align: right;">{{.Alert}}</td>
</tr>{{end}}
</table>
{{template "footer" .}}{{end}}
`))

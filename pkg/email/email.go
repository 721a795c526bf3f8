package email

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"mime"
	"net/smtp"
	"strings"
)

// ErrNotConfigured is returned when no SMTP host is set
var ErrNotConfigured = errors.New("email: SMTP is not configured")

// EmailConfig holds SMTP configuration
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromName     string
	FromEmail    string
}

// SendFunc matches smtp.SendMail
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailService sends HTML mail over SMTP
type EmailService struct {
	config EmailConfig
	send   SendFunc
	tmpl   *template.Template
}

// NewEmailService creates a new email service
func NewEmailService(config EmailConfig) *EmailService {
	return &EmailService{
		config: config,
		send:   smtp.SendMail,
		tmpl:   template.Must(template.New("receipt").Parse(receiptTemplate)),
	}
}

// WithSender replaces the SMTP transport, mainly for tests
func (s *EmailService) WithSender(send SendFunc) *EmailService {
	s.send = send
	return s
}

// IsConfigured reports whether an SMTP host is set
func (s *EmailService) IsConfigured() bool {
	return s.config.SMTPHost != ""
}

// ReceiptLine is one pre-formatted line of an e-mailed receipt
type ReceiptLine struct {
	Name      string
	Quantity  int
	UnitPrice string
	Discount  string
	Total     string
}

// ReceiptPayment is one pre-formatted payment of an e-mailed receipt
type ReceiptPayment struct {
	Method    string
	Amount    string
	Reference string
}

// ReceiptEmail is the data rendered into the receipt template. Amounts are
// formatted by the caller.
type ReceiptEmail struct {
	SalonName      string
	SalonAddress   string
	SalonPhone     string
	InvoiceNo      string
	Date           string
	CustomerName   string
	Cashier        string
	Lines          []ReceiptLine
	Subtotal       string
	GlobalDiscount string
	PointsDiscount string
	GrandTotal     string
	Payments       []ReceiptPayment
	ChangeOwed     string
	PointsEarned   int64
	PointsBalance  *int64
	Footer         string
	Cancelled      bool
}

// SendReceipt e-mails a sale receipt to one address
func (s *EmailService) SendReceipt(to string, receipt ReceiptEmail) error {
	if !s.IsConfigured() {
		return ErrNotConfigured
	}

	html, err := s.RenderReceipt(receipt)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	subject := fmt.Sprintf("Votre reçu %s - %s", receipt.InvoiceNo, receipt.SalonName)
	return s.sendEmail(to, s.buildHTMLEmail(to, subject, html))
}

// RenderReceipt renders the receipt HTML body
func (s *EmailService) RenderReceipt(receipt ReceiptEmail) (string, error) {
	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, receipt); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *EmailService) sendEmail(to string, message []byte) error {
	addr := fmt.Sprintf("%s:%d", s.config.SMTPHost, s.config.SMTPPort)

	var auth smtp.Auth
	if s.config.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)
	}

	if err := s.send(addr, auth, s.config.FromEmail, []string{to}, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (s *EmailService) buildHTMLEmail(to, subject, htmlBody string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", mime.QEncoding.Encode("utf-8", s.config.FromName), s.config.FromEmail)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}

const receiptTemplate = `<!DOCTYPE html>
<html lang="fr">
<head>
    <meta charset="UTF-8">
    <title>Reçu {{.InvoiceNo}}</title>
</head>
<body style="margin: 0; padding: 0; font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; background-color: #f4f7fa;">
    <table role="presentation" style="max-width: 560px; margin: 30px auto; background-color: #ffffff; border-radius: 12px; border-collapse: collapse;">
        <tr>
            <td style="background: #9f4f8a; padding: 28px; text-align: center; color: #ffffff;">
                <h1 style="margin: 0; font-size: 24px;">{{.SalonName}}</h1>
                {{if .SalonAddress}}<p style="margin: 6px 0 0 0; font-size: 13px;">{{.SalonAddress}}</p>{{end}}
                {{if .SalonPhone}}<p style="margin: 2px 0 0 0; font-size: 13px;">{{.SalonPhone}}</p>{{end}}
            </td>
        </tr>
        <tr>
            <td style="padding: 24px 28px; color: #4a5568; font-size: 14px;">
                {{if .Cancelled}}<p style="color: #c53030; font-weight: 600;">VENTE ANNULÉE</p>{{end}}
                <p style="margin: 0;">Reçu <strong>{{.InvoiceNo}}</strong> du {{.Date}}</p>
                {{if .CustomerName}}<p style="margin: 4px 0 0 0;">Client : {{.CustomerName}}</p>{{end}}
                {{if .Cashier}}<p style="margin: 4px 0 0 0;">Caissier : {{.Cashier}}</p>{{end}}
                <table role="presentation" style="width: 100%; margin-top: 18px; border-collapse: collapse;">
                    {{range .Lines}}
                    <tr>
                        <td style="padding: 6px 0; border-bottom: 1px solid #edf2f7;">{{.Quantity}} × {{.Name}}{{if .Discount}} <span style="color: #a0aec0;">(remise {{.Discount}})</span>{{end}}</td>
                        <td style="padding: 6px 0; border-bottom: 1px solid #edf2f7; text-align: right;">{{.Total}}</td>
                    </tr>
                    {{end}}
                    <tr><td style="padding-top: 12px;">Sous-total</td><td style="padding-top: 12px; text-align: right;">{{.Subtotal}}</td></tr>
                    {{if .GlobalDiscount}}<tr><td>Remise</td><td style="text-align: right;">-{{.GlobalDiscount}}</td></tr>{{end}}
                    {{if .PointsDiscount}}<tr><td>Points fidélité</td><td style="text-align: right;">-{{.PointsDiscount}}</td></tr>{{end}}
                    <tr><td style="font-weight: 600; font-size: 16px;">Total</td><td style="font-weight: 600; font-size: 16px; text-align: right;">{{.GrandTotal}}</td></tr>
                    {{range .Payments}}
                    <tr><td>{{.Method}}{{if .Reference}} ({{.Reference}}){{end}}</td><td style="text-align: right;">{{.Amount}}</td></tr>
                    {{end}}
                    {{if .ChangeOwed}}<tr><td>Monnaie rendue</td><td style="text-align: right;">{{.ChangeOwed}}</td></tr>{{end}}
                </table>
                {{if .PointsEarned}}<p style="margin-top: 18px;">Points gagnés : <strong>{{.PointsEarned}}</strong>{{if .PointsBalance}} (solde {{.PointsBalance}}){{end}}</p>{{end}}
            </td>
        </tr>
        {{if .Footer}}
        <tr>
            <td style="background-color: #f8fafc; padding: 20px; text-align: center; color: #a0aec0; font-size: 13px;">{{.Footer}}</td>
        </tr>
        {{end}}
    </table>
</body>
</html>
`

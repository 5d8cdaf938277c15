package mail

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"strings"

	"github.com/rs/zerolog"

	"github.com/atrule/invoicing/internal/logger"
)

// SMTPSender delivers messages over plain SMTP with an optional PLAIN auth
// login. Attachments are base64-encoded into a multipart/mixed body.
type SMTPSender struct {
	Host        string
	Port        int
	SenderEmail string
	SenderName  string
	Password    string

	log zerolog.Logger
}

func NewSMTPSender(host string, port int, senderEmail, senderName, password string) *SMTPSender {
	return &SMTPSender{
		Host:        host,
		Port:        port,
		SenderEmail: senderEmail,
		SenderName:  senderName,
		Password:    password,
		log:         logger.WithComponent("mail"),
	}
}

const defaultInvoiceBody = `Dear {{ClientName}},

Please find attached invoice {{InvoiceNumber}}, due on {{DueDate}}.

Kind regards,
{{SenderName}}`

const defaultReceiptBody = `Dear {{ClientName}},

Thank you for your payment. Your receipt {{InvoiceNumber}} is attached.

Kind regards,
{{SenderName}}`

func (s *SMTPSender) Send(ctx context.Context, msg Message) (bool, error) {
	if msg.Recipient == "" {
		return false, fmt.Errorf("message has no recipient")
	}
	payload, err := s.compose(msg)
	if err != nil {
		return false, err
	}

	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)
	var auth smtp.Auth
	if s.Password != "" {
		auth = smtp.PlainAuth("", s.SenderEmail, s.Password, s.Host)
	}

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, s.SenderEmail, []string{msg.Recipient}, payload)
	}()
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case err := <-done:
		if err != nil {
			s.log.Error().Err(err).Str("recipient", msg.Recipient).Msg("mail delivery failed")
			return false, err
		}
	}
	s.log.Info().Str("recipient", msg.Recipient).Str("number", msg.InvoiceNumber).Msg("mail delivered")
	return true, nil
}

func (s *SMTPSender) compose(msg Message) ([]byte, error) {
	body := msg.Template
	if body == "" {
		body = defaultInvoiceBody
		if msg.Receipt {
			body = defaultReceiptBody
		}
	}
	replacer := strings.NewReplacer(
		"{{ClientName}}", msg.ClientName,
		"{{InvoiceNumber}}", msg.InvoiceNumber,
		"{{DueDate}}", msg.DueDate.Format("02 Jan 2006"),
		"{{SenderName}}", s.SenderName,
	)
	body = replacer.Replace(body)

	subject := fmt.Sprintf("Invoice %s", msg.InvoiceNumber)
	if msg.Receipt {
		subject = fmt.Sprintf("Payment Receipt %s", msg.InvoiceNumber)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	fmt.Fprintf(&buf, "From: %s <%s>\r\n", s.SenderName, s.SenderEmail)
	fmt.Fprintf(&buf, "To: %s\r\n", msg.Recipient)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", writer.Boundary())

	// Reset the boundary writer onto the buffer after the headers.
	textHeader := textproto.MIMEHeader{}
	textHeader.Set("Content-Type", "text/plain; charset=utf-8")
	part, err := writer.CreatePart(textHeader)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write([]byte(body)); err != nil {
		return nil, err
	}

	for _, attachment := range msg.Attachments {
		header := textproto.MIMEHeader{}
		header.Set("Content-Type", "application/pdf")
		header.Set("Content-Transfer-Encoding", "base64")
		header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", attachment.Filename))
		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, err
		}
		encoded := base64.StdEncoding.EncodeToString(attachment.Content)
		// 76-column lines per RFC 2045.
		for len(encoded) > 76 {
			if _, err := part.Write([]byte(encoded[:76] + "\r\n")); err != nil {
				return nil, err
			}
			encoded = encoded[76:]
		}
		if _, err := part.Write([]byte(encoded + "\r\n")); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Package mail 处理结果通知邮件（SendGrid）
package mail

import (
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

type Mailer interface {
	SendBidResolved(toEmail, toName, bidID, status, comment string) error
}

type SendGrid struct {
	client *sendgrid.Client
	sender string
}

func NewSendGrid(apiKey, sender string) *SendGrid {
	return &SendGrid{client: sendgrid.NewSendClient(apiKey), sender: sender}
}

func (s *SendGrid) SendBidResolved(toEmail, toName, bidID, status, comment string) error {
	from := sgmail.NewEmail("bids-api", s.sender)
	to := sgmail.NewEmail(toName, toEmail)
	subject := fmt.Sprintf("Request %s %s", bidID, status)
	plain := fmt.Sprintf("Hello, %s! Your request %s was %s. Comment: %s", toName, bidID, status, comment)
	html := fmt.Sprintf(
		"<div><h3>Hello, %s!</h3><p>Your request <b>%s</b> was <b>%s</b>.</p><p><b>Comment:</b> %s</p></div>",
		toName, bidID, status, comment)
	msg := sgmail.NewSingleEmail(from, subject, to, plain, html)
	resp, err := s.client.Send(msg)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid: status %d", resp.StatusCode)
	}
	return nil
}

// Noop 未配置邮件时使用
type Noop struct{}

func (Noop) SendBidResolved(string, string, string, string, string) error { return nil }

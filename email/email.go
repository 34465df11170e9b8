package email

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
)

// Service sends account notifications over SMTP configured from env.
type Service struct{}

func NewService() *Service { return &Service{} }

func (s *Service) send(to, subject, body string) error {
	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")
	user := os.Getenv("SMTP_USER")
	pass := os.Getenv("SMTP_PASS")
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = user
	}
	if host == "" || port == "" || user == "" || pass == "" || from == "" {
		return fmt.Errorf("SMTP environment variables missing")
	}
	addr := fmt.Sprintf("%s:%s", host, port)
	auth := smtp.PlainAuth("", user, pass, host)
	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", from, to, subject, body))
	return smtp.SendMail(addr, auth, from, []string{to}, msg)
}

func (s *Service) SendWelcome(to string) error {
	subject := "Welcome to Multi-Tool.io"
	body := "Thanks for signing up. Your account starts with 150 credits and 3 free generations."
	if err := s.send(to, subject, body); err != nil {
		return err
	}
	log.Printf("[email] welcome sent to %s", to)
	return nil
}

func (s *Service) SendPasswordReset(to, resetLink string) error {
	subject := "Multi-Tool.io password reset"
	body := "A password reset was requested for your account. Open the link below to choose a new password. The link expires in one hour.\r\n\r\n" + resetLink +
		"\r\n\r\nIf you did not request this, you can ignore this email."
	if err := s.send(to, subject, body); err != nil {
		return err
	}
	log.Printf("[email] password reset sent to %s", to)
	return nil
}

// SendSubscriptionReceipt confirms an activated plan.
func (s *Service) SendSubscriptionReceipt(to, plan string) error {
	subject := "Your Multi-Tool.io subscription"
	body := fmt.Sprintf("Your %s plan is now active. Enjoy unlimited generations while your subscription runs.", plan)
	if err := s.send(to, subject, body); err != nil {
		return err
	}
	log.Printf("[email] receipt sent to %s plan=%s", to, plan)
	return nil
}

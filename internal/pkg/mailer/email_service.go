package mailer

import (
	"fmt"
	"os"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendPlanReady(toEmail, chatPath string, workoutsInWeek int) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	frontendURL string
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	frontendURL := os.Getenv("FRONTEND_URL")

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		frontendURL: frontendURL,
	}
}

// SendPlanReady notifies the client that their full weekly plan has been
// finalized, with a link back to the conversation.
func (s *emailService) SendPlanReady(toEmail, chatPath string, workoutsInWeek int) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Your Weekly Workout Plan Is Ready")

	planLink := s.frontendURL + chatPath

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Your plan is ready!</h2>
			<p>All %d workouts of your weekly plan have been generated and reviewed.</p>
			<a href="%s" style="background-color: #007BFF; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">View Your Plan</a>
			<p>Or copy this link:</p>
			<p>%s</p>
		</div>
	`, workoutsInWeek, planLink, planLink)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send plan-ready email to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Plan-ready email sent to %s\n", toEmail)
	return nil
}

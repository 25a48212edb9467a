package utils

import (
	"errors"
	"fmt"
	"html"
	"net/smtp"
	"strings"
)

const companyName = "Car Rental"

var ErrEmailNotConfigured = errors.New("email configuration not set")

// Common header template for all emails
const emailHeader = `
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; margin: 0; padding: 0;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<div style="text-align: center; margin-bottom: 30px; background-color: #f9f9f9; padding: 20px;">
			<h2 style="color: #2563eb; margin: 0;">Car Rental</h2>
		</div>
`

// Common footer template for all emails
const emailFooter = `
		<div style="text-align: center; margin-top: 20px; font-size: 12px; color: #666; border-top: 1px solid #eee; padding-top: 20px;">
			<p>This is an automated message, please do not reply to this email.</p>
		</div>
	</div>
</body>
</html>
`

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer sends transactional email over SMTP.
type Mailer struct {
	host     string
	port     string
	from     string
	password string
	appURL   string
	send     sendFunc
}

func NewMailer(host, port, from, password, appURL string) *Mailer {
	return &Mailer{
		host:     host,
		port:     port,
		from:     from,
		password: password,
		appURL:   strings.TrimRight(appURL, "/"),
		send:     smtp.SendMail,
	}
}

// Enabled reports whether every SMTP setting is present.
func (m *Mailer) Enabled() bool {
	return m.host != "" && m.port != "" && m.from != "" && m.password != ""
}

func (m *Mailer) message(to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", companyName, m.from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

func (m *Mailer) sendEmail(to, subject, body string) error {
	if !m.Enabled() {
		return ErrEmailNotConfigured
	}
	auth := smtp.PlainAuth("", m.from, m.password, m.host)
	if err := m.send(m.host+":"+m.port, auth, m.from, []string{to}, m.message(to, subject, body)); err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}
	return nil
}

// SendCarBookedEmail tells a provider that one of their cars was booked.
func (m *Mailer) SendCarBookedEmail(providerEmail, carName, renterName string) error {
	subject := "Your car has been booked - " + companyName
	body := fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">New Booking</h1>
					<p>Hello,</p>
					<p>Your <strong>%s</strong> has been booked by <strong>%s</strong>.</p>
					<p>It is no longer listed as available.</p>
					<div style="text-align: center; margin: 30px 0;">
						<a href="%s/my-listings" style="background-color: #2563eb; color: white; padding: 12px 25px; text-decoration: none; border-radius: 5px;">View your listings</a>
					</div>
				</div>`+emailFooter,
		html.EscapeString(carName), html.EscapeString(renterName), m.appURL)

	return m.sendEmail(providerEmail, subject, body)
}

// SendBookingConfirmationEmail confirms a booking to the renter.
func (m *Mailer) SendBookingConfirmationEmail(renterEmail, renterName, carName string, rentPrice float64) error {
	subject := "Booking confirmed - " + companyName
	body := fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">Booking Confirmed</h1>
					<p>Hello %s,</p>
					<p>Your booking for <strong>%s</strong> at <strong>%.2f</strong> per day is confirmed.</p>
					<div style="text-align: center; margin: 30px 0;">
						<a href="%s/my-bookings" style="background-color: #2563eb; color: white; padding: 12px 25px; text-decoration: none; border-radius: 5px;">View your bookings</a>
					</div>
				</div>`+emailFooter,
		html.EscapeString(renterName), html.EscapeString(carName), rentPrice, m.appURL)

	return m.sendEmail(renterEmail, subject, body)
}

package notifier

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/srgjo27/property_booking/internal/core/domain"
)

const brand = "Luxury Apartments Accra"

// EmailJob is the unit queued for the mail worker.
type EmailJob struct {
	Kind      string `json:"kind"`
	BookingID string `json:"booking_id"`
	To        string `json:"to"`
	Subject   string `json:"subject"`
	HTML      string `json:"html"`
}

var guestConfirmationTmpl = template.Must(template.New("guest").Parse(`<h2>Booking Confirmation</h2>
<p>Dear {{.GuestName}},</p>
<p>Thank you for choosing {{.Brand}}. Your booking has been received and is being processed.</p>
<h3>Booking Details:</h3>
<p><strong>Property:</strong> {{.Property}}</p>
<p><strong>Check-in:</strong> {{.CheckIn}}</p>
<p><strong>Check-out:</strong> {{.CheckOut}}</p>
<p><strong>Guests:</strong> {{.Guests}}</p>
<p><strong>Total Amount:</strong> ${{.Total}}</p>
<p><strong>Booking ID:</strong> {{.BookingID}}</p>
`))

var adminAlertTmpl = template.Must(template.New("admin").Parse(`<h2>New Booking Request</h2>
<p><strong>Guest:</strong> {{.GuestName}} ({{.GuestEmail}}, {{.GuestPhone}})</p>
<p><strong>Property:</strong> {{.Property}}</p>
<p><strong>Dates:</strong> {{.CheckIn}} to {{.CheckOut}} ({{.Nights}} nights)</p>
<p><strong>Guests:</strong> {{.Guests}}</p>
<p><strong>Total Amount:</strong> ${{.Total}}</p>
{{if .SpecialRequests}}<p><strong>Special requests:</strong> {{.SpecialRequests}}</p>{{end}}
<p><strong>Booking ID:</strong> {{.BookingID}}</p>
`))

var statusUpdateTmpl = template.Must(template.New("status").Parse(`<h2>Booking {{.Status}}</h2>
<p>Dear {{.GuestName}},</p>
<p>Your booking {{.BookingID}} for {{.CheckIn}} to {{.CheckOut}} is now <strong>{{.Status}}</strong>.</p>
<p>{{.Brand}}</p>
`))

type emailData struct {
	Brand           string
	BookingID       string
	GuestName       string
	GuestEmail      string
	GuestPhone      string
	Property        string
	CheckIn         string
	CheckOut        string
	Nights          int
	Guests          int
	Total           string
	SpecialRequests string
	Status          string
}

func newEmailData(b *domain.Booking, propertyTitle string) emailData {
	d := emailData{
		Brand:      brand,
		BookingID:  b.ID.String(),
		GuestName:  b.GuestName,
		GuestEmail: b.GuestEmail,
		GuestPhone: b.GuestPhone,
		Property:   propertyTitle,
		CheckIn:    domain.FormatDate(b.CheckIn),
		CheckOut:   domain.FormatDate(b.CheckOut),
		Nights:     b.Range().Nights(),
		Guests:     b.GuestsCount,
		Total:      fmt.Sprintf("%.2f", b.TotalAmount),
		Status:     b.Status.String(),
	}
	if b.SpecialRequests != nil {
		d.SpecialRequests = *b.SpecialRequests
	}
	return d
}

func render(t *template.Template, data emailData) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func bookingCreatedEmails(b *domain.Booking, p *domain.Property, adminEmail string) ([]EmailJob, error) {
	title := ""
	if p != nil {
		title = p.Title
	}
	data := newEmailData(b, title)

	guestHTML, err := render(guestConfirmationTmpl, data)
	if err != nil {
		return nil, err
	}

	jobs := []EmailJob{{
		Kind:      "guest_confirmation",
		BookingID: data.BookingID,
		To:        b.GuestEmail,
		Subject:   "Booking Confirmation - " + brand,
		HTML:      guestHTML,
	}}

	if adminEmail != "" {
		adminHTML, err := render(adminAlertTmpl, data)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, EmailJob{
			Kind:      "admin_alert",
			BookingID: data.BookingID,
			To:        adminEmail,
			Subject:   fmt.Sprintf("New booking: %s (%s to %s)", title, data.CheckIn, data.CheckOut),
			HTML:      adminHTML,
		})
	}

	return jobs, nil
}

// statusChangedEmail returns nil when the new status is not worth a guest email.
func statusChangedEmail(b *domain.Booking) (*EmailJob, error) {
	var subject string
	switch b.Status {
	case domain.BookingConfirmed:
		subject = "Your booking is confirmed - " + brand
	case domain.BookingCancelled:
		subject = "Your booking has been cancelled - " + brand
	default:
		return nil, nil
	}

	html, err := render(statusUpdateTmpl, newEmailData(b, ""))
	if err != nil {
		return nil, err
	}

	return &EmailJob{
		Kind:      "status_" + b.Status.String(),
		BookingID: b.ID.String(),
		To:        b.GuestEmail,
		Subject:   subject,
		HTML:      html,
	}, nil
}

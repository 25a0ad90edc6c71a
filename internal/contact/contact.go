// Package contact handles the contact form: validation, the delivery seam and
// the status shown next to the submit button.
package contact

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Zachkp/portfolio/internal/logger"
)

const (
	StatusSending = "Sending..."
	StatusSent    = "Thanks! I will get back to you soon."
	StatusFailed  = "Sorry, there was an error sending your message. Please try again later."
	StatusLimited = "Too many messages. Please wait a moment and try again."

	DefaultDelay = 800 * time.Millisecond
)

// Message is a contact form submission.
type Message struct {
	Name    string `form:"name" validate:"required"`
	Email   string `form:"email" validate:"required,email"`
	Message string `form:"message" validate:"required"`
}

// FieldErrors maps a form field to its inline error.
type FieldErrors map[string]string

// Form is what the contact form renders after a submission.
type Form struct {
	Values Message
	Errors FieldErrors
	Status string
}

// Sender delivers a message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SimulatedSender waits a fixed delay and reports success. Nothing is sent.
type SimulatedSender struct {
	Delay time.Duration
}

func (s SimulatedSender) Send(ctx context.Context, _ Message) error {
	t := time.NewTimer(s.Delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submitter validates and forwards submissions.
type Submitter struct {
	sender   Sender
	validate *validator.Validate
	log      *logger.Logger

	// OnStatus, if set, observes every status the form passes through.
	OnStatus func(string)
}

func NewSubmitter(sender Sender, log *logger.Logger) *Submitter {
	return &Submitter{
		sender:   sender,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      log,
	}
}

// Validate trims msg and returns per-field errors, or nil when valid.
func (s *Submitter) Validate(msg *Message) FieldErrors {
	msg.Name = strings.TrimSpace(msg.Name)
	msg.Email = strings.TrimSpace(msg.Email)
	msg.Message = strings.TrimSpace(msg.Message)

	err := s.validate.Struct(msg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"form": err.Error()}
	}
	out := FieldErrors{}
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			out[field] = "Please fill out this field."
		case "email":
			out[field] = "Please enter a valid email address."
		default:
			out[field] = fe.Error()
		}
	}
	return out
}

// Submit validates msg and, when valid, sends it. A successful send clears
// the form; invalid input never reaches the sending state.
func (s *Submitter) Submit(ctx context.Context, msg Message) Form {
	if errs := s.Validate(&msg); errs != nil {
		return Form{Values: msg, Errors: errs}
	}

	s.status(StatusSending)
	if err := s.sender.Send(ctx, msg); err != nil {
		s.log.Error(err, "Error sending contact message")
		s.status(StatusFailed)
		return Form{Values: msg, Status: StatusFailed}
	}
	s.log.Info("Contact message accepted", "name", msg.Name)
	s.status(StatusSent)
	return Form{Status: StatusSent}
}

func (s *Submitter) status(v string) {
	if s.OnStatus != nil {
		s.OnStatus(v)
	}
}

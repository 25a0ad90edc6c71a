package contact

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/portfolio/internal/logger"
)

type recordingSender struct {
	sent []Message
	err  error
}

func (r *recordingSender) Send(_ context.Context, msg Message) error {
	r.sent = append(r.sent, msg)
	return r.err
}

func validMessage() Message {
	return Message{Name: "Ada", Email: "ada@example.com", Message: "Hello there"}
}

func TestSubmitSuccessClearsFields(t *testing.T) {
	sender := &recordingSender{}
	s := NewSubmitter(sender, logger.Nop())
	var statuses []string
	s.OnStatus = func(v string) { statuses = append(statuses, v) }

	form := s.Submit(context.Background(), validMessage())

	assert.Equal(t, StatusSent, form.Status)
	assert.Equal(t, Message{}, form.Values)
	assert.Empty(t, form.Errors)
	assert.Equal(t, []string{StatusSending, StatusSent}, statuses)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "Ada", sender.sent[0].Name)
}

func TestSubmitWithEmptyFieldNeverSends(t *testing.T) {
	for _, field := range []string{"name", "email", "message"} {
		t.Run(field, func(t *testing.T) {
			msg := validMessage()
			switch field {
			case "name":
				msg.Name = "  "
			case "email":
				msg.Email = ""
			case "message":
				msg.Message = ""
			}
			sender := &recordingSender{}
			s := NewSubmitter(sender, logger.Nop())
			var statuses []string
			s.OnStatus = func(v string) { statuses = append(statuses, v) }

			form := s.Submit(context.Background(), msg)

			assert.Empty(t, statuses, "must not enter the sending state")
			assert.Empty(t, sender.sent)
			assert.Equal(t, "", form.Status)
			assert.Equal(t, "Please fill out this field.", form.Errors[field])
			assert.Len(t, form.Errors, 1)
		})
	}
}

func TestSubmitRejectsMalformedEmail(t *testing.T) {
	s := NewSubmitter(&recordingSender{}, logger.Nop())
	msg := validMessage()
	msg.Email = "not-an-address"

	form := s.Submit(context.Background(), msg)
	assert.Equal(t, "Please enter a valid email address.", form.Errors["email"])
	assert.Equal(t, "not-an-address", form.Values.Email, "values are kept for correction")
}

func TestSubmitFailureKeepsValues(t *testing.T) {
	s := NewSubmitter(&recordingSender{err: errors.New("relay down")}, logger.Nop())

	form := s.Submit(context.Background(), validMessage())
	assert.Equal(t, StatusFailed, form.Status)
	assert.Equal(t, validMessage(), form.Values)
}

func TestSimulatedSenderWaitsAndSucceeds(t *testing.T) {
	start := time.Now()
	err := SimulatedSender{Delay: 20 * time.Millisecond}.Send(context.Background(), validMessage())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestSimulatedSenderHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := SimulatedSender{Delay: time.Hour}.Send(ctx, validMessage())
	assert.ErrorIs(t, err, context.Canceled)
}

package email

import (
	"context"
	"errors"
)

// Sender define la interfaz para correos transaccionales de cuenta.
// Los envios son best-effort: el caller nunca bloquea la respuesta por ellos.
type Sender interface {
	SendWelcome(ctx context.Context, toEmail, name string) error
	SendCancellation(ctx context.Context, toEmail, name string) error
}

type disabledSender struct {
	reason string
}

func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) SendWelcome(_ context.Context, _ string, _ string) error {
	return s.err()
}

func (s *disabledSender) SendCancellation(_ context.Context, _ string, _ string) error {
	return s.err()
}

func (s *disabledSender) err() error {
	if s.reason == "" {
		return errors.New("email sender disabled")
	}
	return errors.New(s.reason)
}

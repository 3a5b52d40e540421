package infra

import (
	"bytes"
	"errors"
	"net/smtp"
	"testing"
	"time"

	"betadmin/internal/config"

	"github.com/jordan-wright/email"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreaker_OpensAndRecovers(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 2, SuccessThreshold: 1, OpenTimeout: time.Minute})
	now := time.Now()
	cb.now = func() time.Time { return now }
	boom := errors.New("boom")

	assert.ErrorIs(t, cb.Execute(func() error { return boom }), boom)
	assert.Equal(t, CBClosed, cb.State())
	assert.ErrorIs(t, cb.Execute(func() error { return boom }), boom)
	assert.Equal(t, CBOpen, cb.State())

	called := false
	assert.ErrorIs(t, cb.Execute(func() error { called = true; return nil }), ErrCircuitOpen)
	assert.False(t, called)

	now = now.Add(2 * time.Minute)
	assert.Equal(t, CBHalfOpen, cb.State())
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, OpenTimeout: time.Second})
	now := time.Now()
	cb.now = func() time.Time { return now }

	_ = cb.Execute(func() error { return errors.New("x") })
	now = now.Add(2 * time.Second)
	assert.Equal(t, CBHalfOpen, cb.State())

	_ = cb.Execute(func() error { return errors.New("x") })
	assert.Equal(t, CBOpen, cb.State())
}

func TestMailer_Send(t *testing.T) {
	cfg := &config.Config{SMTPHost: "smtp.example.com", SMTPPort: 587, SMTPUser: "noreply@example.com"}
	m := NewMailer(cfg, NewCircuitBreaker(DefaultCBConfig()))

	var got *email.Email
	var gotAddr string
	m.send = func(e *email.Email, addr string, _ smtp.Auth) error {
		got, gotAddr = e, addr
		return nil
	}

	require.NoError(t, m.Send("to@example.com", "Bienvenido", "hola"))
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, []string{"to@example.com"}, got.To)
	assert.Equal(t, "noreply@example.com", got.From)
	assert.Equal(t, "hola", string(got.Text))
}

func TestMailer_DisabledWithoutHost(t *testing.T) {
	m := NewMailer(&config.Config{}, NewCircuitBreaker(DefaultCBConfig()))
	assert.ErrorIs(t, m.Send("to@example.com", "s", "b"), ErrMailerDisabled)
}

func TestRenderCenterSheet(t *testing.T) {
	limit := decimal.NewFromInt(500)
	out, err := RenderCenterSheet(CenterSheet{
		Name:          "Centro Norte",
		Address:       "Av. Principal 123",
		AdminUsername: "admin1",
		GeneratedAt:   time.Now(),
		Taquillas: []SheetTaquilla{
			{Number: 1, Status: "active", AssignedUser: "cajero"},
			{Number: 2, Status: "maintenance"},
		},
		Limits: []SheetLimit{{Label: "Venta máxima", Value: &limit}, {Label: "Venta mínima"}},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

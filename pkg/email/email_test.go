package email

import (
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	addr string
	from string
	to   []string
	msg  string
}

func newTestService(sent *[]sentMail) *SMTPMailer {
	s := NewSMTPMailer(Config{
		SMTPHost:    "smtp.example.com",
		SMTPPort:    587,
		FromName:    "Storefront Admin",
		FromEmail:   "noreply@example.com",
		FrontendURL: "https://app.example.com/",
	})
	s.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		*sent = append(*sent, sentMail{addr, from, to, string(msg)})
		return nil
	}
	return s
}

func TestSendPasswordResetEmail(t *testing.T) {
	var sent []sentMail
	s := newTestService(&sent)

	require.NoError(t, s.SendPasswordResetEmail("jane+1@example.com", "tok en"))
	require.Len(t, sent, 1)

	m := sent[0]
	assert.Equal(t, "smtp.example.com:587", m.addr)
	assert.Equal(t, []string{"jane+1@example.com"}, m.to)
	assert.Contains(t, m.msg, "Subject: Reset Your Password - Storefront Admin")
	assert.Contains(t, m.msg, "token=tok+en")
	assert.Contains(t, m.msg, "email=jane%2B1%40example.com")
	assert.Contains(t, m.msg, "https://app.example.com/reset-password?")
}

func TestSendLowStockAlert(t *testing.T) {
	var sent []sentMail
	s := newTestService(&sent)

	assert.False(t, NewSMTPMailer(Config{}).IsConfigured())
	assert.True(t, s.IsConfigured())

	require.NoError(t, s.SendLowStockAlert("owner@example.com", "Corner Shop", nil))
	assert.Empty(t, sent)

	err := s.SendLowStockAlert("owner@example.com", "Corner Shop", []LowStockItem{
		{Name: "Milk <1L>", Code: "MILK-1", Quantity: 2, Alert: 5},
	})
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].msg, "Low stock: 1 product(s)")
	assert.Contains(t, sent[0].msg, "Milk &lt;1L&gt;")
	assert.True(t, strings.Contains(sent[0].msg, "MILK-1"))
}

// Package contact handles the storefront's contact form: the visitor's note is
// turned into a messaging handoff, nothing is stored.
package contact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fjod/go_meals/internal/config"
	"github.com/fjod/go_meals/internal/handoff"
	"github.com/fjod/go_meals/internal/metrics"
)

var ErrMissingFields = errors.New("contact form fields are missing")

const (
	MissingFieldsMessage = "Please fill in all fields."
	RedirectNotice       = "Redirecting to WhatsApp..."
)

type Form struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type Result struct {
	Notice        string        `json:"notice"`
	Message       string        `json:"message"`
	RedirectURL   string        `json:"redirect_url"`
	RedirectAfter time.Duration `json:"-"`
}

type Service struct {
	shop     config.Shop
	delay    time.Duration
	handoffs *handoff.Dispatcher
	metrics  *metrics.Metrics
	log      *slog.Logger
}

func NewService(shop config.Shop, delay time.Duration, handoffs *handoff.Dispatcher, m *metrics.Metrics, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{shop: shop, delay: delay, handoffs: handoffs, metrics: m, log: log}
}

func (s *Service) Submit(ctx context.Context, form Form) (Result, error) {
	if strings.TrimSpace(form.Name) == "" || strings.TrimSpace(form.Email) == "" || strings.TrimSpace(form.Message) == "" {
		s.metrics.Contact("invalid")
		return Result{}, ErrMissingFields
	}

	msg := Message(s.shop.Name, form)
	link := handoff.Link(s.shop.WhatsAppNumber, msg)
	s.handoffs.Schedule(s.delay, link)

	s.metrics.Contact("sent")
	s.log.InfoContext(ctx, "contact message scheduled", "delay", s.delay.String())

	return Result{
		Notice:        RedirectNotice,
		Message:       msg,
		RedirectURL:   link,
		RedirectAfter: s.delay,
	}, nil
}

// Message is the text sent for a contact form. Values are used as typed.
func Message(shopName string, form Form) string {
	return fmt.Sprintf("Hello! My name is %s and I'd like to get in touch with %s.\n\n"+
		"*Contact Information:*\nEmail: %s\n\n*Message:*\n%s\n\nThank you!",
		form.Name, shopName, form.Email, form.Message)
}

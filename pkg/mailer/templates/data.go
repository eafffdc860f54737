package templates

import (
	"context"
	"strings"
	"time"

	"github.com/rizkypratama/authguard/config"
)

// EmailData is the payload rendered into every security email.
type EmailData struct {
	Name           string
	Email          string
	RecipientEmail string
	Type           string

	CompanyName    string
	CompanyAddress string
	AppName        string
	SupportURL     string

	ConfirmURL    string
	ResetURL      string
	ExpiresAt     time.Time
	ExpiresAtText string

	IP        string
	UserAgent string
	Location  string
	TimeAt    time.Time
	Time      string
}

// Option pattern
type Option func(*EmailData)

func WithIP(ip string) Option        { return func(d *EmailData) { d.IP = ip } }
func WithUserAgent(ua string) Option { return func(d *EmailData) { d.UserAgent = ua } }

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04")
	}
}

func WithConfirmURL(url string) Option { return func(d *EmailData) { d.ConfirmURL = url } }
func WithResetURL(url string) Option   { return func(d *EmailData) { d.ResetURL = url } }

func WithExpiresIn(dur time.Duration) Option {
	return func(d *EmailData) {
		utc := time.Now().Add(dur).UTC()
		d.ExpiresAt = utc
		d.ExpiresAtText = utc.Format("02 January 2006, 15:04")
	}
}

func WithLocation(loc string) Option {
	return func(d *EmailData) { setLocation(d, loc) }
}

func WithGeoFromIP(ctx context.Context, r GeoResolver, ip string) Option {
	return func(d *EmailData) {
		if r == nil || strings.TrimSpace(ip) == "" {
			return
		}
		if g, err := r.Lookup(ctx, ip); err == nil {
			setLocation(d, FormatGeo(g))
		}
	}
}

func setLocation(d *EmailData, loc string) {
	if s := strings.TrimSpace(loc); s != "" {
		d.Location = s
	}
}

// NewBaseEmailData fills the common fields from config, then applies Options
func NewBaseEmailData(cfg *config.Config, typ, name, email, recipient string, opts ...Option) EmailData {
	d := EmailData{
		Name:           name,
		Email:          email,
		RecipientEmail: recipient,
		Type:           typ,

		CompanyName:    cfg.CompanyName,
		CompanyAddress: cfg.CompanyAddress,
		AppName:        cfg.AppName,
		SupportURL:     cfg.SupportURL,

		ConfirmURL: cfg.ConfirmURL,
		ResetURL:   cfg.ResetURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// Map flattens EmailData into the map carried on the queue job.
func (d EmailData) Map() map[string]any {
	m := map[string]any{
		"Name":           d.Name,
		"Email":          d.Email,
		"RecipientEmail": d.RecipientEmail,
		"Type":           d.Type,
		"CompanyName":    d.CompanyName,
		"CompanyAddress": d.CompanyAddress,
		"AppName":        d.AppName,
		"SupportURL":     d.SupportURL,
		"ConfirmURL":     d.ConfirmURL,
		"ResetURL":       d.ResetURL,
		"IP":             d.IP,
		"UserAgent":      d.UserAgent,
		"Location":       d.Location,
		"Time":           d.Time,
		"ExpiresAtText":  d.ExpiresAtText,
	}
	if !d.ExpiresAt.IsZero() {
		m["ExpiresAt"] = d.ExpiresAt.Format(time.RFC3339)
	}
	if !d.TimeAt.IsZero() {
		m["TimeAt"] = d.TimeAt.Format(time.RFC3339)
	}
	return m
}

func NewConfirmInstructionsData(cfg *config.Config, name, email, link string, opts ...Option) EmailData {
	base := append([]Option{WithConfirmURL(link)}, opts...)
	return NewBaseEmailData(cfg, ConfirmInstructions, name, email, email, base...)
}

func NewResetInstructionsData(cfg *config.Config, name, email, link string, opts ...Option) EmailData {
	base := append([]Option{WithResetURL(link)}, opts...)
	return NewBaseEmailData(cfg, ResetInstructions, name, email, email, base...)
}

func NewLoginNotificationData(cfg *config.Config, name, email string, opts ...Option) EmailData {
	return NewBaseEmailData(cfg, LoginNotification, name, email, email, opts...)
}

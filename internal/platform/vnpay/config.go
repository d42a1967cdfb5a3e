package vnpay

import (
	"strings"
	"time"
)

const (
	DefaultVersion  = "2.1.0"
	DefaultLocale   = "vn"
	DefaultCurrency = "VND"
	DefaultTimezone = "Asia/Ho_Chi_Minh"
)

// Config is everything the gateway adapter needs. It is passed in at
// construction; nothing in this package reads the environment.
type Config struct {
	PaymentURL    string
	TmnCode       string
	HashSecret    string
	ReturnURL     string
	Version       string
	Locale        string
	Currency      string
	Location      *time.Location
	ExpireMinutes int
}

func (c Config) withDefaults() Config {
	if c.Version == "" {
		c.Version = DefaultVersion
	}
	if c.Locale == "" {
		c.Locale = DefaultLocale
	}
	if c.Currency == "" {
		c.Currency = DefaultCurrency
	}
	if c.Location == nil {
		if loc, err := time.LoadLocation(DefaultTimezone); err == nil {
			c.Location = loc
		} else {
			c.Location = time.FixedZone("ICT", 7*60*60)
		}
	}
	if c.ExpireMinutes <= 0 {
		c.ExpireMinutes = 15
	}
	return c
}

// Missing names the required settings that are unset. Values are never
// included.
func (c Config) Missing() []string {
	var out []string
	if strings.TrimSpace(c.PaymentURL) == "" {
		out = append(out, "VNPAY_PAYMENT_URL")
	}
	if strings.TrimSpace(c.TmnCode) == "" {
		out = append(out, "VNPAY_TMN_CODE")
	}
	if strings.TrimSpace(c.HashSecret) == "" {
		out = append(out, "VNPAY_HASH_SECRET")
	}
	if strings.TrimSpace(c.ReturnURL) == "" {
		out = append(out, "VNPAY_RETURN_URL")
	}
	return out
}

func (c Config) Enabled() bool { return len(c.Missing()) == 0 }

package flow

import (
	"fmt"
	"net/url"
	"strings"
)

// Shop holds the links and currency shown to customers.
type Shop struct {
	StoreURL           string `yaml:"store_url" envconfig:"SHOP_STORE_URL"`
	TelegramSupportURL string `yaml:"telegram_support_url" envconfig:"SHOP_TELEGRAM_SUPPORT_URL"`
	WhatsAppSupportURL string `yaml:"whatsapp_support_url" envconfig:"SHOP_WHATSAPP_SUPPORT_URL"`
	Currency           string `yaml:"currency" envconfig:"SHOP_CURRENCY"`
}

// Normalize validates the links and defaults the currency.
func (s *Shop) Normalize() error {
	links := map[string]*string{
		"shop.store_url":            &s.StoreURL,
		"shop.telegram_support_url": &s.TelegramSupportURL,
		"shop.whatsapp_support_url": &s.WhatsAppSupportURL,
	}
	for name, v := range links {
		*v = strings.TrimSpace(*v)
		u, err := url.Parse(*v)
		if *v == "" || err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute URL", name)
		}
	}
	if strings.TrimSpace(s.Currency) == "" {
		s.Currency = "Toman"
	}
	return nil
}

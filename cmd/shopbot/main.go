// Command shopbot runs the shop's Telegram bot.
package main

import (
	"context"
	"fmt"
	"log"

	corecmd "github.com/capitanshop/shopbot/core/cmd"
	"github.com/capitanshop/shopbot/internal/app"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return app.Load(path)
		},
		Bootstrap: func(ctx context.Context, cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			c, ok := cfg.(*app.Config)
			if !ok {
				return nil, fmt.Errorf("unexpected config type %T", cfg)
			}
			return app.Bootstrap(ctx, c)
		},
	})
	if err != nil {
		log.Fatal(err)
	}
}

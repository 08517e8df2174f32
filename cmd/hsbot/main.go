package main

import (
	"errors"
	"log"

	corecmd "github.com/homeservice/hsbot/core/cmd"
	"github.com/homeservice/hsbot/internal/app"
)

var errUnexpectedConfig = errors.New("unexpected config carrier type")

func main() {
	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return app.Load(path)
		},
		Bootstrap: func(cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			appCfg, ok := cfg.(*app.Config)
			if !ok {
				return nil, errUnexpectedConfig
			}
			return app.Bootstrap(appCfg)
		},
	})
	if err != nil {
		log.Fatalf("hsbot: %v", err)
	}
}

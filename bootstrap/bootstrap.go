// Package bootstrap builds the app for the serverless entry point, which may not import internal/.
package bootstrap

import (
	"charity-fund/internal/config"
	"charity-fund/internal/interfaces/router"

	"github.com/gofiber/fiber/v2"
)

func New() (*fiber.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	app, _, err := router.CreateApp(cfg)
	return app, err
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"vira-wilds/sim/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := app.ConfigFromEnv(logrus.WithField("component", "config"))
	if err := app.Run(ctx, cfg); err != nil {
		logrus.Fatalf("%v", err)
	}
}

package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"vitibrasil-backend/lib/telemetry"
	"vitibrasil-backend/lib/util/serviceutil"
	"vitibrasil-backend/services/vitidata"
)

func main() {
	ctx := serviceutil.SignalContext()

	err := telemetry.SetupFromEnv(ctx, "vitibrasild")
	if err != nil && !os.IsNotExist(err) {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	telemetry.InitSlog(false)
	telemetry.InstrumentPerfStats(ctx)

	config, err := vitidata.LoadConfig()
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	svc, err := vitidata.NewServiceFromConfig(config)
	if err != nil {
		serviceutil.Fatal("failed to initialize service", err)
	}

	interval := config.RefreshInterval()
	slog.Info("starting snapshot daemon", "interval", interval)

	// take a snapshot right away, then on the ticker
	err = svc.RefreshSnapshots(ctx, time.Now().Year())
	if err != nil {
		slog.Error("initial snapshot refresh", "err", err)
	}
	svc.SnapshotDaemon(ctx, interval)

	// ctx is already cancelled once the daemon returns
	err = telemetry.Shutdown(context.Background())
	if err != nil {
		slog.Error("telemetry shutdown", "err", err)
	}
}

package main

import (
	"context"
	"os"
	"vitibrasil-backend/cmd/vitibrasil-cli/commands"
	"vitibrasil-backend/lib/telemetry"
	"vitibrasil-backend/lib/util/serviceutil"
)

func main() {
	err := telemetry.SetupFromEnv(context.Background(), "vitibrasil-cli")
	if err != nil && !os.IsNotExist(err) {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	telemetry.InitSlog(true)
	commands.ExecuteContext(context.Background())
}

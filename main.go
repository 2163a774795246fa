package main

import (
	"os"

	_ "time/tzdata" // IANA zones for user preferences on hosts without zoneinfo

	"meeting-slot-api/core/logger"
	"meeting-slot-api/core/server"
)

func main() {
	if err := server.Run(); err != nil {
		logger.Error("run server error", "error", err)
		os.Exit(1)
	}
}

package main

import (
	"flag"

	"gitlab.apk-group.net/siem/qa/discovery-harness/internal/simulator"
	"gitlab.apk-group.net/siem/qa/discovery-harness/pkg/logger"
)

var (
	addr     = flag.String("addr", "127.0.0.1:8153", "listen address")
	username = flag.String("username", "admin", "accepted login username")
	password = flag.String("password", "pass", "accepted login password")
)

func main() {
	flag.Parse()

	sim := simulator.New(*username, *password)
	logger.Info("Simulator listening on %s", *addr)
	if err := sim.Run(*addr); err != nil {
		logger.Fatal("Simulator stopped: %v", err)
	}
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dinaMadelen/elevdispatch/internal/elevnet"
	"github.com/dinaMadelen/elevdispatch/internal/elevutils"
	"github.com/dinaMadelen/elevdispatch/internal/logger"
	"github.com/rs/zerolog"
)

var Logger = logger.GetLoggerConfigured(zerolog.InfoLevel)

const DEFAULT_LISTEN_ADDRESS = ":9999"

// Prints the events broadcast by running banks
func main() {
	cmdArgs := elevutils.ProcessCmdArgs("elevatorlisten")
	if cmdArgs.LogLevel != "" {
		logger.GetLoggerConfigured(logger.ParseLevel(cmdArgs.LogLevel))
	}

	address := cmdArgs.BroadcastAddress
	if address == "" {
		address = DEFAULT_LISTEN_ADDRESS
	}

	listen := elevnet.NewEventListen(address)
	if err := listen.Start(); err != nil {
		Logger.Fatal().Err(err).Msg("Could not listen for events")
	}
	defer listen.Stop()
	Logger.Info().Msgf("Listening for bank events on %v", listen.Addr())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return
		case received := <-listen.Events:
			if cmdArgs.Identifier != "" && received.Bank != cmdArgs.Identifier {
				continue
			}
			Logger.Info().Str("bank", received.Bank).Msgf("%s: %+v", received.Event.EventType(), received.Event.Value)
		}
	}
}

package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dinaMadelen/elevdispatch/internal/elevator"
	"github.com/dinaMadelen/elevdispatch/internal/elevconfig"
	"github.com/dinaMadelen/elevdispatch/internal/elevconsole"
	"github.com/dinaMadelen/elevdispatch/internal/elevevent"
	"github.com/dinaMadelen/elevdispatch/internal/elevmetadata"
	"github.com/dinaMadelen/elevdispatch/internal/elevnet"
	"github.com/dinaMadelen/elevdispatch/internal/elevutils"
	"github.com/dinaMadelen/elevdispatch/internal/logger"
	"github.com/rs/zerolog"
)

var Logger = logger.GetLoggerConfigured(zerolog.InfoLevel)

func loadConfig(cmdArgs elevutils.CmdArgs) (elevconfig.BankConfig, error) {
	config := elevconfig.Default()
	var err error

	if cmdArgs.ConfigPath != "" {
		if config, err = elevconfig.Load(cmdArgs.ConfigPath); err != nil {
			return config, err
		}
	}
	if cmdArgs.EnvPath != "" {
		if config, err = elevconfig.LoadEnv(config, cmdArgs.EnvPath); err != nil {
			return config, err
		}
	}
	if config, err = elevconfig.ApplyEnv(config, environ()); err != nil {
		return config, err
	}

	if cmdArgs.Identifier != "" {
		config.Identifier = cmdArgs.Identifier
	}
	if cmdArgs.BroadcastAddress != "" {
		config.BroadcastAddress = cmdArgs.BroadcastAddress
	}
	if cmdArgs.LogLevel != "" {
		config.LogLevel = cmdArgs.LogLevel
	}
	return config, config.Validate()
}

func environ() map[string]string {
	env := make(map[string]string)
	for _, entry := range os.Environ() {
		key, value, _ := strings.Cut(entry, "=")
		if strings.HasPrefix(key, "ELEVATOR_") {
			env[key] = value
		}
	}
	return env
}

// Keeps the event channel moving when nothing broadcasts it
func logEvents(ctx context.Context, events <-chan elevevent.ElevatorEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-events:
			Logger.Debug().Msgf("%s: %+v", event.EventType(), event.Value)
		}
	}
}

func main() {
	cmdArgs := elevutils.ProcessCmdArgs("elevator")

	config, err := loadConfig(cmdArgs)
	if err != nil {
		Logger.Fatal().Err(err).Msg("Invalid configuration")
	}
	logger.GetLoggerConfigured(logger.ParseLevel(config.LogLevel))

	// Starting Programme
	Logger.Info().Msg("Starting Elevator Bank")

	metaData := elevmetadata.New(elevutils.GetGitHash(), config.Identifier, config.NumFloors, config.NumCars)
	bank, err := elevator.NewBank(config, metaData)
	if err != nil {
		Logger.Fatal().Err(err).Msg("Could not create bank")
	}
	bank.Start()
	defer bank.Stop()

	Logger.Info().Msgf("Bank: %v", metaData.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if config.BroadcastAddress != "" {
		broadcast := elevnet.NewEventBroadcast(config.BroadcastAddress, metaData)
		if err := broadcast.Start(bank.Events()); err != nil {
			Logger.Fatal().Err(err).Msg("Could not start event broadcast")
		}
		defer broadcast.Stop()
	} else {
		go logEvents(ctx, bank.Events())
	}

	keys, err := elevconsole.OpenKeyboard()
	if err != nil {
		Logger.Warn().Err(err).Msg("No keyboard, running until interrupted")
		<-ctx.Done()
		return
	}
	defer keys.Close()

	console := elevconsole.NewConsole(keys, bank, config.NumFloors, os.Stdout)
	if err := console.Run(ctx); err != nil {
		Logger.Error().Err(err).Msg("Console stopped")
	}
	Logger.Info().Msg("Stopping Elevator Bank")
}

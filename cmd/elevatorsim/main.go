package main

import (
	"github.com/dinaMadelen/elevdispatch/internal/elevcar"
	"github.com/dinaMadelen/elevdispatch/internal/elevevent"
	"github.com/dinaMadelen/elevdispatch/internal/elevmetadata"
	"github.com/dinaMadelen/elevdispatch/internal/elevscenario"
	"github.com/dinaMadelen/elevdispatch/internal/elevutils"
	"github.com/dinaMadelen/elevdispatch/internal/logger"
	"github.com/rs/zerolog"
)

var Logger = logger.GetLoggerConfigured(zerolog.InfoLevel)

func main() {
	cmdArgs := elevutils.ProcessCmdArgs("elevatorsim")
	if cmdArgs.ScenarioPath == "" {
		Logger.Fatal().Msg("No scenario given, use -scenario <file>")
	}

	scenario, err := elevscenario.Load(cmdArgs.ScenarioPath)
	if err != nil {
		Logger.Fatal().Err(err).Msg("Invalid scenario")
	}
	if cmdArgs.LogLevel != "" {
		scenario.Bank.LogLevel = cmdArgs.LogLevel
	}
	logger.GetLoggerConfigured(logger.ParseLevel(scenario.Bank.LogLevel))

	identifier := cmdArgs.Identifier
	if identifier == "" {
		identifier = scenario.Bank.Identifier
	}
	metaData := elevmetadata.New(elevutils.GetGitHash(), identifier, scenario.Bank.NumFloors, scenario.Bank.NumCars)

	runner, err := elevscenario.NewRunner(scenario, metaData)
	if err != nil {
		Logger.Fatal().Err(err).Msg("Could not create runner")
	}

	Logger.Info().Msgf("Simulating %s for %d ticks", cmdArgs.ScenarioPath, scenario.Steps)
	result, err := runner.Run(func(tick int, events []elevevent.ElevatorEvent) {
		for _, event := range events {
			Logger.Debug().Int("tick", tick).Msgf("%s: %+v", event.EventType(), event.Value)
		}
		snapshots, err := runner.Bank.Snapshots()
		if err != nil {
			Logger.Error().Err(err).Int("tick", tick).Msg("Could not read status")
			return
		}
		Logger.Info().Int("tick", tick).Msgf("\n%s", elevcar.FormatStatus(snapshots, scenario.Bank.NumFloors))
	})
	if err != nil {
		Logger.Fatal().Err(err).Msg("Simulation failed")
	}

	Logger.Info().
		Int("submitted", result.Submitted).
		Int("rejected", result.Rejected).
		Int("served", result.Served).
		Msg("Simulation finished")
}

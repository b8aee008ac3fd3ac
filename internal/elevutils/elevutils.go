package elevutils

import (
	_ "embed"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
)

//go:generate sh -c "printf %s $(git rev-parse HEAD) > githash.txt"
//go:embed githash.txt
var gitHash string

func GetGitHash() string {
	return gitHash
}

type CmdArgs struct {
	ConfigPath       string
	EnvPath          string
	Identifier       string
	BroadcastAddress string
	LogLevel         string
	ScenarioPath     string
	Version          bool
	Help             bool
}

// Parses args (without the programme name) into CmdArgs. Help text goes to out.
func ParseCmdArgs(name string, args []string, out io.Writer) (CmdArgs, *flag.FlagSet, error) {
	var cmdArgs CmdArgs

	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(out)
	flags.BoolVar(&cmdArgs.Help, "help", false, "Show Help Window")
	flags.BoolVar(&cmdArgs.Version, "version", false, "Show Version")
	flags.StringVar(&cmdArgs.ConfigPath, "config", "", "Path to a YAML bank config. Defaults to built in values")
	flags.StringVar(&cmdArgs.EnvPath, "env", "", "Path to a .env file with ELEVATOR_* overrides")
	flags.StringVar(&cmdArgs.Identifier, "id", "", "Set the identifier of the bank. Defaults to random string")
	flags.StringVar(&cmdArgs.BroadcastAddress, "broadcast", "", "UDP address to broadcast events to, e.g. 255.255.255.255:9999")
	flags.StringVar(&cmdArgs.LogLevel, "loglevel", "", "Log level (trace, debug, info, warn, error)")
	flags.StringVar(&cmdArgs.ScenarioPath, "scenario", "", "Path to a YAML scenario to simulate")

	if err := flags.Parse(args); err != nil {
		return cmdArgs, flags, err
	}
	if flags.NArg() > 0 {
		return cmdArgs, flags, fmt.Errorf("unexpected arguments: %v", flags.Args())
	}
	return cmdArgs, flags, nil
}

func printHelp(flags *flag.FlagSet) {
	fmt.Printf("Usage: ./%s [OPTIONS]\n", flags.Name())
	fmt.Println("Elevator bank dispatcher")
	fmt.Println()
	fmt.Println("Options:")
	flags.SetOutput(os.Stdout)
	flags.PrintDefaults()
}

// Parses os.Args, handles -help and -version and exits on bad input
func ProcessCmdArgs(name string) CmdArgs {
	cmdArgs, flags, err := ParseCmdArgs(name, os.Args[1:], io.Discard)
	if errors.Is(err, flag.ErrHelp) {
		cmdArgs.Help = true
	} else if err != nil {
		fmt.Println(err)
		printHelp(flags)
		os.Exit(1)
	}

	if cmdArgs.Version {
		fmt.Println("Version:", GetGitHash())
		os.Exit(0)
	}

	if cmdArgs.Help {
		printHelp(flags)
		os.Exit(0)
	}

	return cmdArgs
}

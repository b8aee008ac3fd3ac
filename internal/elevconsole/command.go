package elevconsole

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dinaMadelen/elevdispatch/internal/elevcall"
	"github.com/dinaMadelen/elevdispatch/internal/elevconsts"
)

var (
	ErrEmptyCommand   = errors.New("empty command")
	ErrUnknownCommand = errors.New("unknown command")
	ErrBadArguments   = errors.New("bad arguments")
)

type Op int

const (
	OpHallCall Op = iota
	OpCarCall
	OpStatus
	OpCallStatus
	OpOutOfService
	OpRestore
	OpUnassigned
	OpHelp
	OpQuit
)

const ALL_CARS = -1

// One parsed console line
type Command struct {
	Op     Op
	CarID  int
	Floor  int
	Dirn   elevconsts.Dirn
	CallID elevcall.ID
}

const USAGE = `commands:
  h <floor> <up|down>   hall call
  c <car> <floor>       car call
  s [car]               status of one car, or the whole bank
  i <call>              status of a call
  o <car>               take car out of service
  r <car>               restore car
  u                     unassigned calls
  ?                     this help
  q                     quit`

func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return Command{}, ErrEmptyCommand
	}
	args := fields[1:]

	switch fields[0] {
	case "h", "hall":
		if len(args) != 2 {
			return Command{}, fmt.Errorf("%w: h <floor> <up|down>", ErrBadArguments)
		}
		floor, err := strconv.Atoi(args[0])
		if err != nil {
			return Command{}, fmt.Errorf("%w: floor %q", ErrBadArguments, args[0])
		}
		var dirn elevconsts.Dirn
		if err := dirn.UnmarshalText([]byte(args[1])); err != nil || !dirn.IsTravel() {
			return Command{}, fmt.Errorf("%w: direction %q", ErrBadArguments, args[1])
		}
		return Command{Op: OpHallCall, Floor: floor, Dirn: dirn}, nil

	case "c", "car":
		numbers, err := parseInts(args, 2, "c <car> <floor>")
		if err != nil {
			return Command{}, err
		}
		return Command{Op: OpCarCall, CarID: numbers[0], Floor: numbers[1]}, nil

	case "s", "status":
		if len(args) == 0 {
			return Command{Op: OpStatus, CarID: ALL_CARS}, nil
		}
		numbers, err := parseInts(args, 1, "s [car]")
		if err != nil {
			return Command{}, err
		}
		return Command{Op: OpStatus, CarID: numbers[0]}, nil

	case "i", "call":
		if len(args) != 1 {
			return Command{}, fmt.Errorf("%w: i <call>", ErrBadArguments)
		}
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return Command{}, fmt.Errorf("%w: call %q", ErrBadArguments, args[0])
		}
		return Command{Op: OpCallStatus, CallID: elevcall.ID(id)}, nil

	case "o", "out":
		numbers, err := parseInts(args, 1, "o <car>")
		if err != nil {
			return Command{}, err
		}
		return Command{Op: OpOutOfService, CarID: numbers[0]}, nil

	case "r", "restore":
		numbers, err := parseInts(args, 1, "r <car>")
		if err != nil {
			return Command{}, err
		}
		return Command{Op: OpRestore, CarID: numbers[0]}, nil

	case "u", "unassigned":
		return Command{Op: OpUnassigned}, nil

	case "?", "help":
		return Command{Op: OpHelp}, nil

	case "q", "quit":
		return Command{Op: OpQuit}, nil
	}
	return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, fields[0])
}

func parseInts(args []string, count int, usage string) ([]int, error) {
	if len(args) != count {
		return nil, fmt.Errorf("%w: %s", ErrBadArguments, usage)
	}
	numbers := make([]int, count)
	for i, arg := range args {
		number, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrBadArguments, arg)
		}
		numbers[i] = number
	}
	return numbers, nil
}

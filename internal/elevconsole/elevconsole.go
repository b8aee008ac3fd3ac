package elevconsole

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dinaMadelen/elevdispatch/internal/elevcall"
	"github.com/dinaMadelen/elevdispatch/internal/elevcar"
	"github.com/dinaMadelen/elevdispatch/internal/elevconsts"
	"github.com/dinaMadelen/elevdispatch/internal/elevdispatch"
	"github.com/dinaMadelen/elevdispatch/internal/logger"
	"github.com/eiannone/keyboard"
)

var Log = logger.GetLogger()

type KeySource interface {
	GetKey() (rune, keyboard.Key, error)
}

// Operations the console drives, implemented by elevator.Bank
type Controller interface {
	SubmitHallCall(floor int, dirn elevconsts.Dirn) (elevcall.ID, error)
	SubmitCarCall(carID int, floor int) (elevcall.ID, error)
	GetStatus(carID int) (elevcar.CarSnapshot, error)
	Snapshots() ([]elevcar.CarSnapshot, error)
	CallStatus(id elevcall.ID) (elevdispatch.CallStatus, error)
	SetOutOfService(carID int) error
	Restore(carID int) error
	Unassigned() ([]elevcall.Call, error)
}

// Terminal keyboard in raw mode
type KeyboardSource struct{}

func OpenKeyboard() (*KeyboardSource, error) {
	if err := keyboard.Open(); err != nil {
		return nil, fmt.Errorf("error opening keyboard: %w", err)
	}
	return &KeyboardSource{}, nil
}

func (ks *KeyboardSource) GetKey() (rune, keyboard.Key, error) {
	return keyboard.GetKey()
}

func (ks *KeyboardSource) Close() error {
	return keyboard.Close()
}

// Line editor on top of single key presses, executing one command per line
type Console struct {
	keys       KeySource
	controller Controller
	numFloors  int
	out        io.Writer
}

func NewConsole(keys KeySource, controller Controller, numFloors int, out io.Writer) *Console {
	return &Console{
		keys:       keys,
		controller: controller,
		numFloors:  numFloors,
		out:        out,
	}
}

// Reads keys until quit, Esc or Ctrl-C. Returns the key source error if
// reading fails.
func (c *Console) Run(ctx context.Context) error {
	var line []rune
	c.prompt()

	for {
		if ctx.Err() != nil {
			return nil
		}

		char, key, err := c.keys.GetKey()
		if err != nil {
			return err
		}

		switch key {
		case keyboard.KeyEsc, keyboard.KeyCtrlC:
			fmt.Fprintln(c.out)
			return nil
		case keyboard.KeyEnter:
			fmt.Fprintln(c.out)
			if quit := c.Execute(string(line)); quit {
				return nil
			}
			line = line[:0]
			c.prompt()
		case keyboard.KeyBackspace, keyboard.KeyBackspace2:
			if len(line) > 0 {
				line = line[:len(line)-1]
				fmt.Fprint(c.out, "\b \b")
			}
		case keyboard.KeySpace:
			line = append(line, ' ')
			fmt.Fprint(c.out, " ")
		default:
			if char != 0 {
				line = append(line, char)
				fmt.Fprint(c.out, string(char))
			}
		}
	}
}

func (c *Console) prompt() {
	fmt.Fprint(c.out, "> ")
}

// Runs one command line and prints the outcome. Returns true on quit.
func (c *Console) Execute(line string) bool {
	command, err := ParseCommand(line)
	if errors.Is(err, ErrEmptyCommand) {
		return false
	}
	if err != nil {
		fmt.Fprintf(c.out, "error: %v\n", err)
		return false
	}
	Log.Debug().Msgf("Console command %q", line)

	switch command.Op {
	case OpHallCall:
		id, err := c.controller.SubmitHallCall(command.Floor, command.Dirn)
		c.report(err, "hall call %d submitted", id)
	case OpCarCall:
		id, err := c.controller.SubmitCarCall(command.CarID, command.Floor)
		c.report(err, "car call %d submitted", id)
	case OpStatus:
		c.printStatus(command.CarID)
	case OpCallStatus:
		status, err := c.controller.CallStatus(command.CallID)
		switch {
		case err != nil:
			c.report(err, "")
		case status.Assigned:
			c.report(nil, "%v assigned to car %d", status.Call, status.CarID)
		default:
			c.report(nil, "%v waiting for a car", status.Call)
		}
	case OpOutOfService:
		c.report(c.controller.SetOutOfService(command.CarID), "car %d out of service", command.CarID)
	case OpRestore:
		c.report(c.controller.Restore(command.CarID), "car %d restored", command.CarID)
	case OpUnassigned:
		calls, err := c.controller.Unassigned()
		if err == nil && len(calls) == 0 {
			c.report(nil, "no unassigned calls")
			break
		}
		for _, call := range calls {
			c.report(nil, "%v", call)
		}
		if err != nil {
			c.report(err, "")
		}
	case OpHelp:
		fmt.Fprintln(c.out, USAGE)
	case OpQuit:
		return true
	}
	return false
}

func (c *Console) printStatus(carID int) {
	if carID == ALL_CARS {
		snapshots, err := c.controller.Snapshots()
		if err != nil {
			c.report(err, "")
			return
		}
		fmt.Fprint(c.out, elevcar.FormatStatus(snapshots, c.numFloors))
		return
	}

	snapshot, err := c.controller.GetStatus(carID)
	c.report(err, "%v", snapshot)
}

func (c *Console) report(err error, format string, args ...any) {
	if err != nil {
		fmt.Fprintf(c.out, "error: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, format+"\n", args...)
}

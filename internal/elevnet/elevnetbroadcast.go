package elevnet

import (
	"errors"
	"fmt"
	"net"

	"github.com/dinaMadelen/elevdispatch/internal/elevevent"
	"github.com/dinaMadelen/elevdispatch/internal/elevmetadata"
	"github.com/libp2p/go-reuseport"
)

// Sends every outward event of a bank to one UDP address
type EventBroadcast struct {
	broadcasting bool                       //internal variable
	startStopCh  chan int                   //internal variable
	doneCh       chan struct{}              //internal variable
	conn         net.PacketConn             //internal variable
	target       *net.UDPAddr               //internal variable
	address      string                     //internal variable
	metaData     *elevmetadata.BankMetaData //internal variable
}

func NewEventBroadcast(address string, metaData *elevmetadata.BankMetaData) *EventBroadcast {
	return &EventBroadcast{
		broadcasting: false,
		startStopCh:  make(chan int),
		address:      address,
		metaData:     metaData,
	}
}

// Forwards events until Stop is called or the channel closes
func (eb *EventBroadcast) Start(events <-chan elevevent.ElevatorEvent) error {
	if eb.broadcasting {
		return errors.New("eventBroadcast is already broadcasting")
	}
	if eb.metaData == nil {
		return errors.New("metaData is nil")
	}

	var err error
	eb.target, err = net.ResolveUDPAddr("udp4", eb.address)
	if err != nil {
		return fmt.Errorf("error resolving UDP Address: %v", err)
	}

	eb.conn, err = reuseport.ListenPacket("udp4", ":0")
	if err != nil {
		return fmt.Errorf("error creating UDP Socket: %v", err)
	}

	eb.broadcasting = true
	eb.doneCh = make(chan struct{})
	go func() {
		defer close(eb.doneCh)
		defer eb.conn.Close()

		for {
			select {
			case event, ok := <-events:
				if !ok {
					Log.Info().Msgf("Event channel closed, stopping broadcasting task...")
					return
				}
				eb.send(event)

			case val := <-eb.startStopCh:
				if val == 0 {
					Log.Info().Msgf("Stopping Broadcasting task...")
					return
				}
			}
		}
	}()

	Log.Info().Msgf("Started to broadcast events to %s", eb.address)
	return nil
}

func (eb *EventBroadcast) send(event elevevent.ElevatorEvent) {
	jsonData, err := EncodeEvent(eb.metaData.Identifier, event)
	if err != nil {
		Log.Error().Msgf("Error marshalling JSON: %v", err)
		return
	}
	if len(jsonData) > BUFFER_LENGTH {
		Log.Error().Msgf("Event %s too large to send (%d bytes)", event.EventType(), len(jsonData))
		return
	}

	_, err = eb.conn.WriteTo(jsonData, eb.target)
	if err != nil {
		Log.Error().Msgf("Error writing to UDP Socket: %v", err)
		return
	}
	Log.Debug().Msgf("Sent Packet: %v", string(jsonData))
}

func (eb *EventBroadcast) Stop() error {
	if !eb.broadcasting {
		return errors.New("cannot stop broadcasting if EventBroadcast is not broadcasting")
	}

	select {
	case eb.startStopCh <- 0:
	case <-eb.doneCh:
	}
	<-eb.doneCh
	eb.broadcasting = false

	return nil
}

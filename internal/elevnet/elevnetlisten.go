package elevnet

import (
	"errors"
	"fmt"
	"net"

	"github.com/libp2p/go-reuseport"
)

// Receives events broadcast by banks, for displays and other observers
type EventListen struct {
	Events chan ReceivedEvent //events decoded from the network

	listening bool           //internal variable
	doneCh    chan struct{}  //internal variable
	conn      net.PacketConn //internal variable
	address   string         //internal variable
}

func NewEventListen(address string) *EventListen {
	return &EventListen{
		Events:    make(chan ReceivedEvent),
		listening: false,
		address:   address,
	}
}

func (el *EventListen) Start() error {
	if el.listening {
		return errors.New("eventListen is already listening")
	}

	var err error
	el.conn, err = reuseport.ListenPacket("udp4", el.address)
	if err != nil {
		return fmt.Errorf("error creating UDP Socket: %v", err)
	}
	el.listening = true
	el.doneCh = make(chan struct{})

	go func() {
		listenBuffer := make([]byte, BUFFER_LENGTH)
		for {
			n, _, err := el.conn.ReadFrom(listenBuffer)
			if errors.Is(err, net.ErrClosed) {
				Log.Info().Msgf("Stopping Listening task...")
				return
			}
			if err != nil {
				Log.Error().Msgf("Error reading UDP message: %v", err)
				continue
			}

			received, err := DecodeEvent(listenBuffer[:n])
			if err != nil {
				Log.Error().Msgf("Error deserialising JSON: %v", err)
				continue
			}

			select {
			case el.Events <- received:
			case <-el.doneCh:
				return
			}
		}
	}()

	return nil
}

// Local address the listener is bound to
func (el *EventListen) Addr() net.Addr {
	if el.conn == nil {
		return nil
	}
	return el.conn.LocalAddr()
}

func (el *EventListen) Stop() error {
	if !el.listening {
		return errors.New("cannot stop listening if EventListen is not listening")
	}

	close(el.doneCh)
	el.listening = false
	return el.conn.Close()
}

package db

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// NewNATSConn connects to NATS, reconnecting forever once connected.
func NewNATSConn(natsURL, clientName string) (*nats.Conn, error) {
	conn, err := nats.Connect(natsURL,
		nats.Name(clientName),
		nats.Timeout(5*time.Second),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("nats.Connect: %w", err)
	}
	return conn, nil
}

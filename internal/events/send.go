package events

import (
	"encoding/json"
	"fmt"
	"net"
)

// Send delivers e to the collector listening on socketPath.
func Send(socketPath string, e Event) error {
	if err := e.Validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if len(payload) >= defaultMaxPayloadBytes {
		return fmt.Errorf("event too large (%d bytes)", len(payload))
	}
	addr, err := net.ResolveUnixAddr("unixgram", socketPath)
	if err != nil {
		return fmt.Errorf("resolve unix addr: %w", err)
	}
	conn, err := net.DialUnix("unixgram", nil, addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", socketPath, err)
	}
	defer conn.Close()
	if _, err := conn.Write(payload); err != nil {
		return fmt.Errorf("send event: %w", err)
	}
	return nil
}

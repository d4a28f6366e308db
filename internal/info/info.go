// Package info exposes read-only terminal queries: account state, symbol
// catalog and quotes, open positions and pending orders, and bar, tick and
// trading history. Every query refuses to run against a disconnected
// terminal and enriches raw epoch fields with UTC time values.
package info

import (
	"github.com/sirupsen/logrus"

	"gomt5/internal/connection"
	"gomt5/internal/terminal"
)

// guard rejects queries while the terminal is disconnected.
func guard(conn *connection.Manager, log *logrus.Entry) error {
	if conn.IsConnected() {
		return nil
	}
	log.Error("terminal not connected")
	return terminal.ErrNotConnected
}

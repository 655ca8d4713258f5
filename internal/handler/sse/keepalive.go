package sse

import "time"

// KeepAliveWriter abstracts the keep-alive write so it can be tested without
// a real HTTP connection.
type KeepAliveWriter interface {
	// WriteKeepAlive writes a keep-alive message.
	// Returns error if connection is closed or write fails.
	WriteKeepAlive() error
}

// TickerKeepAlive paces keep-alive pings for a stream handler. The Writer is
// not safe for concurrent use, so the ticker only supplies the cadence: the
// handler selects on C and performs the write from its own loop via Ping.
type TickerKeepAlive struct {
	ticker *time.Ticker
	writer KeepAliveWriter
}

// NewTickerKeepAlive creates a keep-alive pacer for the given writer.
func NewTickerKeepAlive(interval time.Duration, writer KeepAliveWriter) *TickerKeepAlive {
	return &TickerKeepAlive{
		ticker: time.NewTicker(interval),
		writer: writer,
	}
}

// C is the tick channel the stream handler selects on.
func (k *TickerKeepAlive) C() <-chan time.Time {
	return k.ticker.C
}

// Ping writes one keep-alive. An error means the client is gone.
func (k *TickerKeepAlive) Ping() error {
	return k.writer.WriteKeepAlive()
}

// Stop releases the ticker. Safe to call via defer alongside further ticks.
func (k *TickerKeepAlive) Stop() {
	k.ticker.Stop()
}

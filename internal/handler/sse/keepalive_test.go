package sse

import (
	"errors"
	"testing"
	"time"
)

type fakeKeepAliveWriter struct {
	pings int
	err   error
}

func (f *fakeKeepAliveWriter) WriteKeepAlive() error {
	f.pings++
	return f.err
}

func TestTickerKeepAlivePing(t *testing.T) {
	writer := &fakeKeepAliveWriter{}
	keepAlive := NewTickerKeepAlive(time.Hour, writer)
	defer keepAlive.Stop()

	if err := keepAlive.Ping(); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	if writer.pings != 1 {
		t.Errorf("pings = %d, want 1", writer.pings)
	}

	writer.err = errors.New("connection closed")
	if err := keepAlive.Ping(); err == nil {
		t.Error("Ping() must surface the writer error")
	}
}

func TestTickerKeepAliveTicks(t *testing.T) {
	keepAlive := NewTickerKeepAlive(time.Millisecond, &fakeKeepAliveWriter{})
	defer keepAlive.Stop()

	select {
	case <-keepAlive.C():
	case <-time.After(time.Second):
		t.Fatal("expected a tick")
	}
}

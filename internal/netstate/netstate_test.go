package netstate

import (
	"net"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func TestStaticOracle(t *testing.T) {
	t.Parallel()

	s := Static{State: State{Connected: true, Transport: TransportMetered}}
	got := s.Current()
	if !got.Connected || got.Transport != TransportMetered {
		t.Fatalf("unexpected state: %+v", got)
	}

	if Online.Current().Transport != TransportUnmetered {
		t.Fatalf("Online oracle should report unmetered")
	}
}

func TestTransportString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tr   Transport
		want string
	}{
		{TransportUnknown, "unknown"},
		{TransportUnmetered, "unmetered"},
		{TransportMetered, "metered"},
	}
	for _, tt := range tests {
		if got := tt.tr.String(); got != tt.want {
			t.Errorf("Transport(%d).String() = %q, want %q", tt.tr, got, tt.want)
		}
	}
}

func TestMonitorProbesListener(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			_ = conn.Close()
		}
	}()

	m := NewMonitor(ln.Addr().String(), time.Hour, zaptest.NewLogger(t))
	m.Start()
	defer m.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if m.Current().Connected {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if !m.Current().Connected {
		t.Fatalf("monitor did not observe reachable listener")
	}
}

package services

import (
	"net"
	"sync/atomic"
	"testing"
	"time"

	"coffee-quality-api/config"
)

// refusingBroker accepts TCP connections and closes them at once, counting
// every connection attempt.
func refusingBroker(t *testing.T) (string, *atomic.Int32) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	var attempts atomic.Int32
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			attempts.Add(1)
			conn.Close()
		}
	}()
	return "tcp://" + ln.Addr().String(), &attempts
}

func TestMQTTPublisherStopsRetryingAfterFailedConnect(t *testing.T) {
	prev := mqttRetryInterval
	mqttRetryInterval = 50 * time.Millisecond
	defer func() { mqttRetryInterval = prev }()

	broker, attempts := refusingBroker(t)
	_, err := NewMQTTPublisher(config.MQTTConfig{BrokerURL: broker, Topic: "coffee/test", ConnectTimeoutSec: 1})
	if err == nil {
		t.Fatal("expected connect to fail")
	}
	if attempts.Load() == 0 {
		t.Fatal("broker saw no connection attempt")
	}

	time.Sleep(100 * time.Millisecond)
	settled := attempts.Load()
	time.Sleep(500 * time.Millisecond)
	if got := attempts.Load(); got != settled {
		t.Errorf("client kept reconnecting after failure: %d attempts, then %d", settled, got)
	}
}

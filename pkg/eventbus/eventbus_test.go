package eventbus

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/pkg/logging"
)

type matchedEvent struct {
	poNumber string
}

type lockedEvent struct {
	year int
}

func TestPublisher_Publish_NoSubscribers(t *testing.T) {
	logBuffer := bytes.Buffer{}
	log := logrus.New()
	log.SetOutput(&logBuffer)
	log.SetLevel(logrus.WarnLevel)
	publisher := NewEventPublisher(log)
	publisher.Subscribe(func(e *matchedEvent) {
		t.Error("should not be called")
	})
	publisher.Publish(&lockedEvent{year: 2024})

	if output := logBuffer.String(); output == "" {
		t.Error("should have logged")
	} else if !strings.Contains(output, "eventbus.Publish: no matching subscribers") {
		t.Errorf("should have contained no matching subscribers but got: %q", output)
	}
}

func TestPublisher_Subscribe(t *testing.T) {
	publisher := NewEventPublisher(logging.ConsoleLogger(logrus.WarnLevel))
	called := false
	var got string
	publisher.Subscribe(func(e *matchedEvent) {
		called = true
		got = e.poNumber
	})
	publisher.Publish(&matchedEvent{poNumber: "123456"})
	if !called {
		t.Error("should be called")
	}
	if got != "123456" {
		t.Errorf("expected: %v, got: %v", "123456", got)
	}
}

func TestPublisher_Unsubscribe(t *testing.T) {
	publisher := NewEventPublisher(logging.ConsoleLogger(logrus.PanicLevel))
	handler := func(e *matchedEvent) {
		t.Error("should not be called after unsubscribe")
	}
	publisher.Subscribe(handler)
	if publisher.SubscribersCount() != 1 {
		t.Fatalf("expected 1 subscriber, got %d", publisher.SubscribersCount())
	}
	publisher.Unsubscribe(handler)
	if publisher.SubscribersCount() != 0 {
		t.Fatalf("expected 0 subscribers, got %d", publisher.SubscribersCount())
	}
}

func TestPublisher_PanickingHandlerDoesNotStopDispatch(t *testing.T) {
	logBuffer := bytes.Buffer{}
	log := logrus.New()
	log.SetOutput(&logBuffer)
	publisher := NewEventPublisher(log)

	publisher.Subscribe(func(e *lockedEvent) {
		panic("boom")
	})
	called := false
	publisher.Subscribe(func(e *lockedEvent) {
		called = true
	})

	publisher.Publish(&lockedEvent{year: 2023})

	if !called {
		t.Error("second subscriber should still be called")
	}
	if !strings.Contains(logBuffer.String(), "panicked") {
		t.Errorf("panic should have been logged, got: %q", logBuffer.String())
	}
}

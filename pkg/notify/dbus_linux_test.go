//go:build linux

package notify

import (
	"os"
	"testing"
)

func TestDBusBackendSends(t *testing.T) {
	if os.Getenv("DBUS_SESSION_BUS_ADDRESS") == "" {
		t.Skip("no D-Bus session available")
	}

	b, err := Platform()
	if err != nil {
		t.Fatalf("Platform() error: %v", err)
	}
	if err := b.Send(Notification{Title: "Leader Test", Body: "from unit test", Timeout: 1000, Urgency: UrgencyLow}); err != nil {
		t.Fatalf("Send() error: %v", err)
	}
}

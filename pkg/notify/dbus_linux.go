//go:build linux

package notify

import (
	"github.com/godbus/dbus/v5"
)

const (
	dbusNotifyDest      = "org.freedesktop.Notifications"
	dbusNotifyPath      = "/org/freedesktop/Notifications"
	dbusNotifyInterface = "org.freedesktop.Notifications"
)

// dbusBackend sends notifications via the session bus.
type dbusBackend struct {
	obj dbus.BusObject
}

// Platform returns the D-Bus backend.
func Platform() (Backend, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, err
	}
	return &dbusBackend{obj: conn.Object(dbusNotifyDest, dbusNotifyPath)}, nil
}

func (b *dbusBackend) Name() string { return "dbus" }

func (b *dbusBackend) Send(n Notification) error {
	hints := map[string]dbus.Variant{
		"urgency":       dbus.MakeVariant(byte(n.Urgency)),
		"desktop-entry": dbus.MakeVariant("leader"),
	}

	// Notify(app_name, replaces_id, icon, summary, body, actions, hints, timeout) -> id
	call := b.obj.Call(
		dbusNotifyInterface+".Notify",
		0,
		"Leader",
		uint32(0),
		"",
		n.Title,
		n.Body,
		[]string{},
		hints,
		n.Timeout,
	)
	return call.Err
}

package notify

import (
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
)

const (
	notifyDestination = "org.freedesktop.Notifications"
	notifyObjectPath  = "/org/freedesktop/Notifications"
	notifyMethod      = "org.freedesktop.Notifications.Notify"

	appName = "berke0s"
)

// Notifier shows desktop notifications.
type Notifier interface {
	Notify(summary, body string) error
}

// Nop discards notifications.
type Nop struct{}

func (Nop) Notify(string, string) error { return nil }

type caller interface {
	Call(method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

// DBusNotifier sends notifications over the session bus. Successive
// notifications replace the previous one instead of stacking.
type DBusNotifier struct {
	mu      sync.Mutex
	conn    *dbus.Conn
	obj     caller
	timeout int32
	lastID  uint32
}

// NewDBusNotifier connects to the session bus. timeoutMS of 0 lets the
// notification server pick the expiry.
func NewDBusNotifier(timeoutMS int) (*DBusNotifier, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	n := newDBusNotifier(conn.Object(notifyDestination, notifyObjectPath), timeoutMS)
	n.conn = conn
	return n, nil
}

func newDBusNotifier(obj caller, timeoutMS int) *DBusNotifier {
	timeout := int32(timeoutMS)
	if timeoutMS <= 0 {
		timeout = -1
	}
	return &DBusNotifier{obj: obj, timeout: timeout}
}

// Notify calls org.freedesktop.Notifications.Notify.
func (n *DBusNotifier) Notify(summary, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	call := n.obj.Call(notifyMethod, 0, notifyArgs(n.lastID, summary, body, n.timeout)...)
	if call.Err != nil {
		return fmt.Errorf("failed to call %s: %w", notifyMethod, call.Err)
	}
	var id uint32
	if err := call.Store(&id); err != nil {
		return fmt.Errorf("failed to parse notification id: %w", err)
	}
	n.lastID = id
	return nil
}

// Close releases the bus connection.
func (n *DBusNotifier) Close() error {
	if n.conn == nil {
		return nil
	}
	return n.conn.Close()
}

// notifyArgs orders arguments as the Notify signature susssasa{sv}i expects.
func notifyArgs(replaces uint32, summary, body string, timeout int32) []interface{} {
	return []interface{}{
		appName,
		replaces,
		"",
		summary,
		body,
		[]string{},
		map[string]dbus.Variant{"urgency": dbus.MakeVariant(byte(1))},
		timeout,
	}
}

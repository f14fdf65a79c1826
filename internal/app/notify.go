package app

import "github.com/gen2brain/beeep"

// Notifier shows desktop notifications.
type Notifier interface {
	Notify(title, body string) error
}

// desktopNotifier sends notifications through the desktop notification
// service.
type desktopNotifier struct{}

// NewDesktopNotifier returns the production Notifier.
func NewDesktopNotifier() Notifier {
	return desktopNotifier{}
}

func (desktopNotifier) Notify(title, body string) error {
	return beeep.Notify(title, body, "")
}

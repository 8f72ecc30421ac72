package state

import (
	"github.com/sentidash/sentidash/internal/view"
)

// loadedMsg carries performed requests of one page back to Update, where they
// are applied. Results of superseded requests are dropped on apply.
type loadedMsg struct {
	page int
	done []view.Done
}

// notificationsMsg tells Update the notification bus changed. The model reads
// the bus when rendering, so it carries no payload.
type notificationsMsg struct{}

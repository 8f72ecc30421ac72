package notify

import "time"

// Kind classifies a notification.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindWarning Kind = "warning"
	KindInfo    Kind = "info"
)

// Sticky is the TTL that disables auto-expiry.
const Sticky time.Duration = 0

var defaultTTLs = map[Kind]time.Duration{
	KindSuccess: 4 * time.Second,
	KindError:   6 * time.Second,
	KindWarning: 5 * time.Second,
	KindInfo:    4 * time.Second,
}

// DefaultTTL returns the auto-expiry delay used when Notify is called without a TTL.
func (k Kind) DefaultTTL() time.Duration {
	if ttl, ok := defaultTTLs[k]; ok {
		return ttl
	}
	return defaultTTLs[KindInfo]
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	_, ok := defaultTTLs[k]
	return ok
}

// Notification is a single transient message.
type Notification struct {
	ID        uint64
	Kind      Kind
	Title     string
	Message   string
	CreatedAt time.Time
	// TTL is the auto-expiry delay. Zero means the notification stays until dismissed.
	TTL time.Duration
}

// IsSticky reports whether the notification never expires on its own.
func (n Notification) IsSticky() bool {
	return n.TTL == Sticky
}

// ExpiresAt returns the expiry instant, or the zero time for sticky notifications.
func (n Notification) ExpiresAt() time.Time {
	if n.IsSticky() {
		return time.Time{}
	}
	return n.CreatedAt.Add(n.TTL)
}

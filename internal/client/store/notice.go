package store

import (
	"sync"
	"time"
)

// DefaultDismissAfter is how long a success notice stays visible.
const DefaultDismissAfter = 3 * time.Second

// NoticeKind distinguishes success banners from error banners.
type NoticeKind int

const (
	NoticeSuccess NoticeKind = iota
	NoticeError
)

// Notice is a banner message shown to the operator.
type Notice struct {
	Kind NoticeKind
	Text string
	At   time.Time
}

// Notifier holds at most one notice. Success notices clear themselves after
// the dismiss delay; error notices stay until replaced or dismissed.
type Notifier struct {
	mu           sync.Mutex
	dismissAfter time.Duration
	current      *Notice
	timer        *time.Timer
	seq          uint64
}

// NewNotifier returns a notifier that dismisses success notices after d.
func NewNotifier(d time.Duration) *Notifier {
	return &Notifier{dismissAfter: d}
}

// Success shows text and schedules its dismissal.
func (n *Notifier) Success(text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	seq := n.set(NoticeSuccess, text)
	n.timer = time.AfterFunc(n.dismissAfter, func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if n.seq == seq {
			n.current = nil
		}
	})
}

// Error shows text until it is replaced.
func (n *Notifier) Error(text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.set(NoticeError, text)
}

func (n *Notifier) set(kind NoticeKind, text string) uint64 {
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.seq++
	n.current = &Notice{Kind: kind, Text: text, At: time.Now()}
	return n.seq
}

// Current returns the visible notice, if any.
func (n *Notifier) Current() (Notice, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return Notice{}, false
	}
	return *n.current, true
}

// Dismiss clears the visible notice.
func (n *Notifier) Dismiss() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.seq++
	n.current = nil
}

// Stop cancels a pending dismissal.
func (n *Notifier) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}

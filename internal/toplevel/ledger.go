package toplevel

import (
	"errors"
	"fmt"

	"github.com/1broseidon/xdgrole/internal/platform"
)

var (
	// ErrUnknownSerial is returned when an acknowledgement names a serial
	// that was never sent.
	ErrUnknownSerial = errors.New("unknown configure serial")
	// ErrStaleSerial is returned when an acknowledgement names a serial at or
	// below one that was already acknowledged.
	ErrStaleSerial = errors.New("stale configure serial")
)

// SerialSource hands out display-wide, strictly increasing serials.
type SerialSource interface {
	NextSerial() uint32
}

// Configuration is one configure event: the size and states the compositor
// asks the client to adopt.
type Configuration struct {
	Size      platform.Size
	States    StateSet
	Serial    uint32
	Committed bool
}

// Ledger tracks configurations through their life: queued for sending,
// sent and awaiting acknowledgement, and current.
type Ledger struct {
	serials SerialSource

	current     Configuration
	pendingSend Configuration
	sentLog     []Configuration

	dirty     bool
	sentCount uint64
	lastAcked uint32
	hasAcked  bool
}

// NewLedger returns an empty ledger drawing serials from src.
func NewLedger(src SerialSource) *Ledger {
	return &Ledger{serials: src}
}

// Enqueue replaces the pending configuration and returns its serial. Nothing
// is transmitted until Flush.
func (l *Ledger) Enqueue(size platform.Size, states StateSet) uint32 {
	l.pendingSend = Configuration{
		Size:   size,
		States: states,
		Serial: l.serials.NextSerial(),
	}
	l.dirty = true
	return l.pendingSend.Serial
}

// Flush moves the pending configuration into the sent log and returns it for
// transmission. It is a no-op unless something was enqueued since the last
// flush or force is set; a forced resend takes a fresh serial.
func (l *Ledger) Flush(force bool) (Configuration, bool) {
	if !l.dirty {
		if !force {
			return Configuration{}, false
		}
		l.pendingSend.Serial = l.serials.NextSerial()
	}
	l.dirty = false
	l.sentCount++
	sent := l.pendingSend
	l.sentLog = append(l.sentLog, sent)
	return sent, true
}

// Acknowledge retires every sent configuration up to and including serial.
// The last retired one becomes current and is returned.
func (l *Ledger) Acknowledge(serial uint32) (Configuration, error) {
	if l.hasAcked && serial <= l.lastAcked {
		return l.current, fmt.Errorf("%w: %d (last acknowledged %d)", ErrStaleSerial, serial, l.lastAcked)
	}

	idx := -1
	for i, c := range l.sentLog {
		if c.Serial == serial {
			idx = i
			break
		}
		if c.Serial > serial {
			break
		}
	}
	if idx < 0 {
		return l.current, fmt.Errorf("%w: %d", ErrUnknownSerial, serial)
	}

	l.current = l.sentLog[idx]
	l.current.Committed = true
	l.sentLog = append(l.sentLog[:0], l.sentLog[idx+1:]...)
	l.lastAcked = serial
	l.hasAcked = true
	return l.current, nil
}

// Reset drops every configuration. Used when the window unmaps.
func (l *Ledger) Reset() {
	l.current = Configuration{}
	l.pendingSend = Configuration{}
	l.sentLog = nil
	l.dirty = false
	l.lastAcked = 0
	l.hasAcked = false
}

// Current returns the last acknowledged configuration.
func (l *Ledger) Current() Configuration { return l.current }

// Pending returns the configuration most recently enqueued.
func (l *Ledger) Pending() Configuration { return l.pendingSend }

// Dirty reports whether an enqueued configuration awaits Flush.
func (l *Ledger) Dirty() bool { return l.dirty }

// SentCount returns how many configurations were ever flushed. It survives
// Reset.
func (l *Ledger) SentCount() uint64 { return l.sentCount }

// Sent returns a copy of the configurations awaiting acknowledgement,
// oldest first.
func (l *Ledger) Sent() []Configuration {
	out := make([]Configuration, len(l.sentLog))
	copy(out, l.sentLog)
	return out
}

// Last returns the newest configuration the client knows about: the newest
// sent one, or current when nothing is outstanding.
func (l *Ledger) Last() Configuration {
	if n := len(l.sentLog); n > 0 {
		return l.sentLog[n-1]
	}
	return l.current
}

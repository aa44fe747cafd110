package toplevel

import (
	"errors"
	"testing"

	"github.com/1broseidon/xdgrole/internal/platform"
)

type counter struct{ n uint32 }

func (c *counter) NextSerial() uint32 {
	c.n++
	return c.n
}

func TestLedgerFlushIsNoOpWithoutChanges(t *testing.T) {
	l := NewLedger(&counter{})

	if _, ok := l.Flush(false); ok {
		t.Fatalf("expected empty ledger flush to be a no-op")
	}

	l.Enqueue(platform.Size{Width: 100, Height: 50}, States(Activated))
	if _, ok := l.Flush(false); !ok {
		t.Fatalf("expected flush after enqueue to send")
	}
	if _, ok := l.Flush(false); ok {
		t.Fatalf("expected second flush to be a no-op")
	}
}

func TestLedgerForcedFlushTakesFreshSerial(t *testing.T) {
	l := NewLedger(&counter{})
	l.Enqueue(platform.Size{}, States())
	first, _ := l.Flush(false)

	second, ok := l.Flush(true)
	if !ok {
		t.Fatalf("expected forced flush to send")
	}
	if second.Serial <= first.Serial {
		t.Fatalf("expected forced resend serial > %d, got %d", first.Serial, second.Serial)
	}
	if len(l.Sent()) != 2 {
		t.Fatalf("expected 2 outstanding configurations, got %d", len(l.Sent()))
	}
}

func TestLedgerSentLogStrictlyIncreasing(t *testing.T) {
	l := NewLedger(&counter{})
	for i := 0; i < 5; i++ {
		l.Enqueue(platform.Size{Width: i}, States())
		if i%2 == 0 {
			// Overwritten before flushing: its serial is never sent.
			l.Enqueue(platform.Size{Width: i * 10}, States())
		}
		l.Flush(false)
	}

	sent := l.Sent()
	for i := 1; i < len(sent); i++ {
		if sent[i].Serial <= sent[i-1].Serial {
			t.Fatalf("serials not strictly increasing: %d then %d", sent[i-1].Serial, sent[i].Serial)
		}
	}
}

func TestLedgerAcknowledgeRetiresOlderRecords(t *testing.T) {
	l := NewLedger(&counter{})
	var serials []uint32
	for i := 1; i <= 3; i++ {
		serials = append(serials, l.Enqueue(platform.Size{Width: i * 100, Height: 100}, States()))
		l.Flush(false)
	}

	cur, err := l.Acknowledge(serials[1])
	if err != nil {
		t.Fatalf("acknowledge: %v", err)
	}
	if cur.Size.Width != 200 {
		t.Fatalf("expected current width 200, got %d", cur.Size.Width)
	}
	if !cur.Committed {
		t.Fatalf("expected acknowledged configuration to be marked committed")
	}

	sent := l.Sent()
	if len(sent) != 1 || sent[0].Serial != serials[2] {
		t.Fatalf("expected only serial %d outstanding, got %+v", serials[2], sent)
	}
	for _, c := range sent {
		if c.Serial <= serials[1] {
			t.Fatalf("serial %d should have been retired", c.Serial)
		}
	}
}

func TestLedgerAcknowledgeErrors(t *testing.T) {
	l := NewLedger(&counter{})
	first := l.Enqueue(platform.Size{Width: 10}, States())
	l.Flush(false)
	second := l.Enqueue(platform.Size{Width: 20}, States())
	l.Flush(false)

	if _, err := l.Acknowledge(second + 100); !errors.Is(err, ErrUnknownSerial) {
		t.Fatalf("expected ErrUnknownSerial, got %v", err)
	}
	if _, err := l.Acknowledge(second); err != nil {
		t.Fatalf("acknowledge: %v", err)
	}

	cur, err := l.Acknowledge(first)
	if !errors.Is(err, ErrStaleSerial) {
		t.Fatalf("expected ErrStaleSerial, got %v", err)
	}
	if cur.Size.Width != 20 {
		t.Fatalf("stale acknowledgement must not change current, got width %d", cur.Size.Width)
	}
}

func TestLedgerReset(t *testing.T) {
	l := NewLedger(&counter{})
	s := l.Enqueue(platform.Size{Width: 10}, States(Maximized))
	l.Flush(false)
	l.Acknowledge(s)
	l.Enqueue(platform.Size{Width: 30}, States())

	l.Reset()

	if l.Current() != (Configuration{}) || l.Pending() != (Configuration{}) {
		t.Fatalf("expected zero configurations after reset")
	}
	if len(l.Sent()) != 0 || l.Dirty() {
		t.Fatalf("expected empty, clean ledger after reset")
	}
	if l.SentCount() != 1 {
		t.Fatalf("expected sent count to survive reset, got %d", l.SentCount())
	}
}

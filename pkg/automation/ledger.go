package automation

import "sync"

// MemoryLedger is an in-memory suppression ledger. Flags live for the
// process lifetime, which is the suppression epoch; re-derivable alerts make
// losing the flags on restart safe.
type MemoryLedger struct {
	mu    sync.Mutex
	flags map[string]struct{}
}

// NewMemoryLedger creates an empty ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{flags: make(map[string]struct{})}
}

func ledgerKey(subject, condition string) string {
	return subject + "\x00" + condition
}

// Marked reports whether the flag is set.
func (l *MemoryLedger) Marked(subject, condition string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.flags[ledgerKey(subject, condition)]
	return ok
}

// Mark sets the flag.
func (l *MemoryLedger) Mark(subject, condition string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.flags[ledgerKey(subject, condition)] = struct{}{}
}

// Clear removes the flag.
func (l *MemoryLedger) Clear(subject, condition string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.flags, ledgerKey(subject, condition))
}

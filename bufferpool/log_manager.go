package bufferpool

import "sync"

// LSN is a log sequence number. Frames that have been modified under a
// future write-ahead log would carry the LSN of their last modifying
// record; this implementation only tracks the watermark, not log content.
type LSN int64

// LogManager is consumed, optionally, by BufferPoolManager. §6 describes it
// as present at construction for a future WAL extension: before a dirty
// page is written back, the log up to that page's LSN must already be
// durable. This implementation tracks only the flushed watermark — no
// actual log records are written — which is enough to express and test the
// force-write-ahead ordering without building a full WAL.
type LogManager interface {
	// Flush durably records all log entries up to and including upTo,
	// returning once that watermark is satisfied.
	Flush(upTo LSN) error

	// FlushedLSN reports the highest watermark Flush has satisfied.
	FlushedLSN() LSN
}

// NopLogManager is a LogManager that treats every LSN as already flushed.
// The zero-value default when a BufferPoolManager is built without one.
type NopLogManager struct{}

func (NopLogManager) Flush(upTo LSN) error { return nil }
func (NopLogManager) FlushedLSN() LSN      { return 1<<63 - 1 }

var _ LogManager = NopLogManager{}

// InMemLogManager is a minimal LogManager that advances a watermark in
// memory without persisting anything. It exists to exercise the
// force-write-ahead call path from FlushPage in tests and the bpctl demo,
// not as a real recovery log.
type InMemLogManager struct {
	mu  sync.Mutex
	lsn LSN
}

func NewInMemLogManager() *InMemLogManager {
	return &InMemLogManager{}
}

func (m *InMemLogManager) Flush(upTo LSN) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if upTo > m.lsn {
		m.lsn = upTo
	}
	return nil
}

func (m *InMemLogManager) FlushedLSN() LSN {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lsn
}

var _ LogManager = (*InMemLogManager)(nil)

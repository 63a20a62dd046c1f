package locks

import (
	"hash/fnv"
	"sync"

	"github.com/google/uuid"
)

// DefaultShardCount is the number of lock slots used when none is specified.
const DefaultShardCount = 2048

// ShardedLock is a fixed-size table of mutexes indexed by hashing a
// transaction identifier. All operations on the same identifier map to the
// same slot, so mutations on one transaction are strictly serialized.
// Distinct identifiers may collide on a slot; they then serialize against
// each other, the accepted cost of keeping the table bounded.
type ShardedLock struct {
	shards []sync.Mutex
}

// NewShardedLock creates a lock table with n slots. Non-positive n falls
// back to DefaultShardCount.
func NewShardedLock(n int) *ShardedLock {
	if n <= 0 {
		n = DefaultShardCount
	}
	return &ShardedLock{shards: make([]sync.Mutex, n)}
}

// Acquire blocks until the slot for id is free and returns the release
// function. Callers must defer the release so it runs on every exit path.
func (l *ShardedLock) Acquire(id uuid.UUID) func() {
	mu := &l.shards[l.index(id)]
	mu.Lock()
	return mu.Unlock
}

func (l *ShardedLock) index(id uuid.UUID) int {
	h := fnv.New32a()
	h.Write(id[:])
	return int(h.Sum32() % uint32(len(l.shards)))
}

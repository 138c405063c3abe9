package relation

import (
	"hash/fnv"
	"sync"
)

// pairLocks serializes relationship transitions per conversation pair using a
// fixed set of striped mutexes. The key is the unordered pair, so a send from A
// to B and a send from B to A always contend on the same lock and the
// read-check-write sequence inside a transition can never interleave with
// another transition on the same pair.
//
// Striping means unrelated pairs may occasionally share a lock; that costs a
// little parallelism, never correctness.
type pairLocks struct {
	shards [64]sync.Mutex
}

// Lock acquires the pair's stripe and returns the matching unlock.
func (p *pairLocks) Lock(a, b string) func() {
	if a > b {
		a, b = b, a
	}

	h := fnv.New32a()
	h.Write([]byte(a))
	h.Write([]byte{'|'})
	h.Write([]byte(b))

	m := &p.shards[h.Sum32()%uint32(len(p.shards))]
	m.Lock()
	return m.Unlock
}

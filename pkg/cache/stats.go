package cache

import "sync/atomic"

// Statistics is a point-in-time snapshot of cache activity.
type Statistics struct {
	Hits      int64
	Misses    int64
	Sets      int64
	Deletes   int64
	Evictions int64
}

// HitRate returns the fraction of lookups served from the cache.
func (s Statistics) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

type statistics struct {
	hits      atomic.Int64
	misses    atomic.Int64
	sets      atomic.Int64
	deletes   atomic.Int64
	evictions atomic.Int64
}

func newStatistics() *statistics {
	return &statistics{}
}

func (s *statistics) hit()      { s.hits.Add(1) }
func (s *statistics) miss()     { s.misses.Add(1) }
func (s *statistics) set()      { s.sets.Add(1) }
func (s *statistics) del()      { s.deletes.Add(1) }
func (s *statistics) eviction() { s.evictions.Add(1) }

func (s *statistics) snapshot() Statistics {
	return Statistics{
		Hits:      s.hits.Load(),
		Misses:    s.misses.Load(),
		Sets:      s.sets.Load(),
		Deletes:   s.deletes.Load(),
		Evictions: s.evictions.Load(),
	}
}

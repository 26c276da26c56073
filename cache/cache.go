package cache

import (
	"errors"
	"fmt"
	"io"

	"github.com/mit-pdos/go-journal/util"
	"github.com/rodaine/table"

	"github.com/mit-pdos/go-jbod/jbod"
)

// A fixed-size cache of array blocks keyed by (disk, block). Slots are
// allocated up front and start out invalid. Every hit, insert and update
// advances a clock and stamps the slot with it. When the cache is full an
// insert replaces the most recently used slot, the one with the highest
// stamp; ties go to the lowest slot.
//
// The zero Cache is not initialized. It is not safe for concurrent use.

const (
	MINSZ = 2
	MAXSZ = 4096
)

var (
	ErrInvalidCapacity    = errors.New("cache: capacity out of range")
	ErrAlreadyInitialized = errors.New("cache: already initialized")
	ErrNotInitialized     = errors.New("cache: not initialized")
	ErrNotEnabled         = errors.New("cache: not enabled")
	ErrInvalidArgs        = errors.New("cache: invalid arguments")
	ErrDuplicateEntry     = errors.New("cache: entry already present")
)

type entry struct {
	valid bool
	disk  int
	block int
	data  [jbod.BlockSize]byte
	tick  uint64
}

type Cache struct {
	entries []entry
	clock   uint64
	queries uint64
	hits    uint64
}

func MkCache(sz int) (*Cache, error) {
	c := &Cache{}
	if err := c.Create(sz); err != nil {
		return nil, err
	}
	return c, nil
}

func validSize(sz int) bool {
	return sz >= MINSZ && sz <= MAXSZ
}

func (c *Cache) Create(sz int) error {
	if c.entries != nil {
		return ErrAlreadyInitialized
	}
	if !validSize(sz) {
		return fmt.Errorf("%w: %d", ErrInvalidCapacity, sz)
	}
	c.entries = make([]entry, sz)
	c.clock = 0
	c.queries = 0
	c.hits = 0
	util.DPrintf(1, "cache: create %d entries\n", sz)
	return nil
}

func (c *Cache) Destroy() error {
	if c.entries == nil {
		return ErrNotInitialized
	}
	util.DPrintf(1, "cache: destroy, %d hits / %d queries\n", c.hits, c.queries)
	*c = Cache{}
	return nil
}

func (c *Cache) Enabled() bool {
	return c != nil && len(c.entries) > 0
}

func (c *Cache) Capacity() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Len returns the number of valid entries.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	n := 0
	for i := range c.entries {
		if c.entries[i].valid {
			n++
		}
	}
	return n
}

func (c *Cache) find(disk, block int) int {
	for i := range c.entries {
		e := &c.entries[i]
		if e.valid && e.disk == disk && e.block == block {
			return i
		}
	}
	return -1
}

// victim picks the slot an insert fills: the first invalid slot, or else
// the valid slot with the largest tick (lowest index on ties).
func (c *Cache) victim() int {
	mru := -1
	for i := range c.entries {
		e := &c.entries[i]
		if !e.valid {
			return i
		}
		if mru < 0 || e.tick > c.entries[mru].tick {
			mru = i
		}
	}
	return mru
}

func (c *Cache) stamp(i int) {
	c.clock++
	c.entries[i].tick = c.clock
}

func checkArgs(disk, block int, buf []byte) bool {
	return disk >= 0 && block >= 0 && buf != nil
}

// Lookup copies the cached contents of (disk, block) into buf and reports
// whether it was present.
func (c *Cache) Lookup(disk, block int, buf []byte) (bool, error) {
	if !c.Enabled() {
		return false, ErrNotEnabled
	}
	if !checkArgs(disk, block, buf) {
		return false, ErrInvalidArgs
	}
	c.queries++
	i := c.find(disk, block)
	if i < 0 {
		return false, nil
	}
	copy(buf, c.entries[i].data[:])
	c.hits++
	c.stamp(i)
	util.DPrintf(10, "cache: hit (%d, %d) slot %d\n", disk, block, i)
	return true, nil
}

// Update refreshes an existing entry and otherwise does nothing; it never
// inserts.
func (c *Cache) Update(disk, block int, buf []byte) {
	if !c.Enabled() || !checkArgs(disk, block, buf) {
		return
	}
	i := c.find(disk, block)
	if i < 0 {
		return
	}
	copy(c.entries[i].data[:], buf)
	c.stamp(i)
}

func (c *Cache) Insert(disk, block int, buf []byte) error {
	if !c.Enabled() {
		return ErrNotEnabled
	}
	if !checkArgs(disk, block, buf) {
		return ErrInvalidArgs
	}
	if c.find(disk, block) >= 0 {
		return ErrDuplicateEntry
	}
	i := c.victim()
	e := &c.entries[i]
	if e.valid {
		util.DPrintf(5, "cache: evict (%d, %d) slot %d tick %d\n",
			e.disk, e.block, i, e.tick)
	}
	e.valid = true
	e.disk = disk
	e.block = block
	e.data = [jbod.BlockSize]byte{}
	copy(e.data[:], buf)
	c.stamp(i)
	return nil
}

// Resize keeps the first min(old, new) slots as they are, in order. An
// uninitialized cache is created instead.
func (c *Cache) Resize(sz int) error {
	if !validSize(sz) {
		return fmt.Errorf("%w: %d", ErrInvalidCapacity, sz)
	}
	if !c.Enabled() {
		return c.Create(sz)
	}
	entries := make([]entry, sz)
	n := copy(entries, c.entries)
	util.DPrintf(1, "cache: resize %d -> %d, kept %d slots\n", len(c.entries), sz, n)
	c.entries = entries
	return nil
}

func (c *Cache) Stats() (queries uint64, hits uint64) {
	if c == nil {
		return 0, 0
	}
	return c.queries, c.hits
}

// HitRate returns hits/queries, or false when nothing was queried.
func (c *Cache) HitRate() (float64, bool) {
	queries, hits := c.Stats()
	if queries == 0 {
		return 0, false
	}
	return float64(hits) / float64(queries), true
}

func (c *Cache) WriteHitRate(w io.Writer) {
	queries, hits := c.Stats()
	rate := "N/A"
	if r, ok := c.HitRate(); ok {
		rate = fmt.Sprintf("%5.1f%%", 100*r)
	}
	tbl := table.New("queries", "hits", "hit rate")
	tbl.WithWriter(w)
	tbl.AddRow(queries, hits, rate)
	tbl.Print()
}

package selfplay

import (
	"fmt"

	"github.com/alphazero/engine/board"
	"github.com/alphazero/engine/zero"
)

// evalCache is a per-generator bounded cache of board-position evaluations,
// keyed by the board's text rendering. Boards don't expose a cheaper hash
// than their own String() in this engine, and a generator's cache only
// ever needs to survive a handful of positions per move, so the string key
// is simple and fast enough; it is never shared across goroutines.
type evalCache struct {
	capacity int
	entries  map[string]zero.Response
	order    []string
}

func newEvalCache(capacity int) *evalCache {
	return &evalCache{
		capacity: capacity,
		entries:  make(map[string]zero.Response, capacity),
	}
}

func (c *evalCache) key(b board.Board) string {
	return fmt.Sprintf("%T:%s", b, b.String())
}

func (c *evalCache) get(b board.Board) (zero.Response, bool) {
	resp, ok := c.entries[c.key(b)]
	return resp, ok
}

func (c *evalCache) put(b board.Board, resp zero.Response) {
	key := c.key(b)
	if _, exists := c.entries[key]; !exists {
		if len(c.order) >= c.capacity {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = resp
}

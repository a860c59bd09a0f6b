package pricing

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"azure-bom-cost/core/normalize"
)

// pageCache is an in-process cache of fetched row sets keyed by query.
// Values are stored JSON-encoded and cost their size in bytes.
type pageCache struct {
	c   *ristretto.Cache[string, []byte]
	ttl time.Duration
}

func newPageCache(maxCostBytes int64, ttl time.Duration) (*pageCache, error) {
	counters := maxCostBytes / 65536 * 10
	if counters < 1000 {
		counters = 1000
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: counters,
		MaxCost:     maxCostBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &pageCache{c: c, ttl: ttl}, nil
}

func (p *pageCache) get(key string) ([]normalize.Row, bool) {
	data, ok := p.c.Get(key)
	if !ok {
		return nil, false
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var rows []normalize.Row
	if err := dec.Decode(&rows); err != nil {
		return nil, false
	}
	return rows, true
}

func (p *pageCache) set(key string, rows []normalize.Row) {
	data, err := json.Marshal(rows)
	if err != nil {
		return
	}
	p.c.SetWithTTL(key, data, int64(len(data)), p.ttl)
	p.c.Wait()
}

func (p *pageCache) close() {
	p.c.Close()
}

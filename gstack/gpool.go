// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package gstack

import (
	"sync"
	"sync/atomic"
)

// gpool is a large reserved virtual region carved into equal blocks, used
// when the platform lacks reliable overcommit (§4.1). Block 0 is reserved
// for the pool's own metadata, matching the spec's "first block is reserved
// for the gpool's own meta-data".
type gpool struct {
	region     []byte
	blockSize  int
	blockCount int

	mu      sync.Mutex
	freeIdx []int32 // stack of free block indices (1..blockCount-1)
	freeTop int
}

// gpoolNode links gpools into the process-wide list (§4.1, §9 "global
// mutable state"). A CAS loop on the atomic head gives linearizable push.
type gpoolNode struct {
	pool *gpool
	next *gpoolNode
}

var gpoolHead atomic.Pointer[gpoolNode]

func newGpool(blockSize int, maxSize int64) (*gpool, error) {
	blockCount := int(maxSize / int64(blockSize))
	if blockCount < 2 {
		blockCount = 2
	}
	region, err := reserveRegion(blockSize * blockCount)
	if err != nil {
		return nil, err
	}
	// Commit and zero the meta-data page (block 0), per spec.
	if err := commitRegion(region, 0, pageSize); err != nil {
		_ = releaseRegion(region)
		return nil, err
	}
	g := &gpool{
		region:     region,
		blockSize:  blockSize,
		blockCount: blockCount,
	}
	g.freeIdx = make([]int32, blockCount-1)
	for i := range g.freeIdx {
		g.freeIdx[i] = int32(blockCount - 1 - i)
	}
	g.freeTop = len(g.freeIdx)
	return g, nil
}

// tryAlloc pops a free block under the pool's spinlock-equivalent mutex.
func (g *gpool) tryAlloc() (int, []byte, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.freeTop == 0 {
		return 0, nil, false
	}
	g.freeTop--
	idx := int(g.freeIdx[g.freeTop])
	start := idx * g.blockSize
	return idx, g.region[start : start+g.blockSize : start+g.blockSize], true
}

func (g *gpool) free(idx int) {
	g.mu.Lock()
	g.freeIdx[g.freeTop] = int32(idx)
	g.freeTop++
	g.mu.Unlock()
}

// gpoolAlloc tries every existing pool before reserving a fresh one,
// matching "allocation tries existing pools first, then reserves a fresh
// pool" verbatim.
func gpoolAlloc(cfg *Config) (*gpool, int, []byte, error) {
	for n := gpoolHead.Load(); n != nil; n = n.next {
		if idx, blk, ok := n.pool.tryAlloc(); ok {
			return n.pool, idx, blk, nil
		}
	}
	g, err := newGpool(cfg.StackMaxSize, cfg.GpoolMaxSize)
	if err != nil {
		return nil, 0, nil, err
	}
	node := &gpoolNode{pool: g}
	for {
		head := gpoolHead.Load()
		node.next = head
		if gpoolHead.CompareAndSwap(head, node) {
			break
		}
	}
	idx, blk, ok := g.tryAlloc()
	if !ok {
		// Freshly reserved pool must have at least one free block.
		return nil, 0, nil, newError(InvalidState, "new gpool has no free blocks")
	}
	return g, idx, blk, nil
}

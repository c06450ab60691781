package mr

import (
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/thanhpk/randstr"
	"golang.org/x/sync/errgroup"

	"kvmr/config"
	db "kvmr/debug"
)

// A Context carries the execution parameters of the operations that
// take it.  Create one with NewContext and tear it down with Close;
// operations on a closed context fail with ErrClosed.
type Context struct {
	name    string
	id      string
	nworker int
	nshard  int
	seed    uint64
	part    Partitioner
	merge   MergePolicy
	closed  atomic.Bool
}

func NewContext(name string, cfg *config.Engine) (*Context, error) {
	part, err := ParsePartitioner(cfg.PARTITIONER, cfg.SEED)
	if err != nil {
		return nil, err
	}
	merge, err := ParseMerge(cfg.MERGE)
	if err != nil {
		return nil, err
	}
	if cfg.NSHARD <= 0 {
		return nil, fmt.Errorf("NewContext: nshard %d", cfg.NSHARD)
	}
	ctx := &Context{
		name:    name,
		id:      randstr.Hex(8),
		nworker: cfg.NWORKER,
		nshard:  cfg.NSHARD,
		seed:    cfg.SEED,
		part:    part,
		merge:   merge,
	}
	if ctx.nworker <= 0 {
		ctx.nworker = runtime.NumCPU()
	}
	db.DPrintf(db.MR, "NewContext %v", ctx)
	return ctx, nil
}

func (ctx *Context) String() string {
	return fmt.Sprintf("&{ %v-%v nworker %d nshard %d part %v merge %v }", ctx.name, ctx.id, ctx.nworker, ctx.nshard, ctx.part, ctx.merge)
}

func (ctx *Context) Name() string {
	return ctx.name
}

func (ctx *Context) NShard() int {
	return ctx.nshard
}

func (ctx *Context) Partitioner() Partitioner {
	return ctx.part
}

func (ctx *Context) Merge() MergePolicy {
	return ctx.merge
}

func (ctx *Context) Close() error {
	if ctx.closed.Swap(true) {
		return ErrClosed
	}
	db.DPrintf(db.MR, "Close %v-%v", ctx.name, ctx.id)
	return nil
}

func (ctx *Context) check() error {
	if ctx.closed.Load() {
		return ErrClosed
	}
	return nil
}

func (ctx *Context) shards(nshard int) int {
	if nshard <= 0 {
		return ctx.nshard
	}
	return nshard
}

// group returns an errgroup running at most nworker shard workers
// at a time.
func (ctx *Context) group() *errgroup.Group {
	g := &errgroup.Group{}
	g.SetLimit(ctx.nworker)
	return g
}

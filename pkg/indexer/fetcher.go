package indexer

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"golang.org/x/sync/errgroup"
)

// LogFilterer is the chain-side dependency of the fetcher.
type LogFilterer interface {
	FilterLogs(ctx context.Context, contract common.Address, topic common.Hash, fromBlock, toBlock uint64) ([]types.Log, error)
}

// Fetcher runs the per-sweep log queries: one eth_getLogs per
// (sub-range, topic) pair, fanned out with bounded concurrency. Any single
// failed query fails the whole fetch; a sweep is never applied from partial
// results.
type Fetcher struct {
	client      LogFilterer
	contract    common.Address
	topics      []common.Hash
	concurrency int
}

// NewFetcher creates a fetcher for one source contract.
func NewFetcher(client LogFilterer, contract common.Address, topics []common.Hash, concurrency int) *Fetcher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Fetcher{
		client:      client,
		contract:    contract,
		topics:      topics,
		concurrency: concurrency,
	}
}

// Fetch collects all logs for the planned sub-ranges. The result carries no
// ordering guarantee; the merger sorts.
func (f *Fetcher) Fetch(ctx context.Context, ranges []BlockRange) ([]types.Log, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)

	results := make([][]types.Log, len(ranges)*len(f.topics))
	for i, r := range ranges {
		for j, topic := range f.topics {
			idx := i*len(f.topics) + j
			r, topic := r, topic
			g.Go(func() error {
				logs, err := f.client.FilterLogs(ctx, f.contract, topic, r.From, r.To)
				if err != nil {
					return err
				}
				results[idx] = logs
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []types.Log
	for _, logs := range results {
		all = append(all, logs...)
	}
	return all, nil
}

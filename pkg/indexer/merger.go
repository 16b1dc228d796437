package indexer

import (
	"sort"

	"github.com/ethereum/go-ethereum/core/types"
)

// DecodeAndSort decodes the per-topic log batches into typed events and
// establishes the causal order handlers rely on: block number ascending, then
// transaction index, then log index.
func DecodeAndSort(logs []types.Log) ([]Event, error) {
	events := make([]Event, 0, len(logs))
	for _, log := range logs {
		ev, err := DecodeLog(log)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}

	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i].Meta(), events[j].Meta()
		if a.BlockNumber != b.BlockNumber {
			return a.BlockNumber < b.BlockNumber
		}
		if a.TxIndex != b.TxIndex {
			return a.TxIndex < b.TxIndex
		}
		return a.LogIndex < b.LogIndex
	})
	return events, nil
}

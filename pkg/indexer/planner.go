package indexer

// BlockRange is an inclusive range of block numbers.
type BlockRange struct {
	From uint64
	To   uint64
}

// Plan splits the next sweep into contiguous sub-ranges. The sweep covers
// (lastIndexed, min(lastIndexed+window, head)]; each sub-range spans at most
// subSize blocks. Returns nil when there is nothing new to index.
func Plan(lastIndexed, head, window, subSize uint64) []BlockRange {
	if head <= lastIndexed {
		return nil
	}

	target := head
	if lastIndexed+window < head {
		target = lastIndexed + window
	}

	var ranges []BlockRange
	for from := lastIndexed + 1; from <= target; from += subSize {
		to := from + subSize - 1
		if to > target {
			to = target
		}
		ranges = append(ranges, BlockRange{From: from, To: to})
	}
	return ranges
}

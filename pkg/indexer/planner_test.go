package indexer

import (
	"reflect"
	"testing"
)

func TestPlan(t *testing.T) {
	tests := []struct {
		name    string
		last    uint64
		head    uint64
		window  uint64
		subSize uint64
		want    []BlockRange
	}{
		{
			name: "caught up",
			last: 100, head: 100, window: 50, subSize: 10,
			want: nil,
		},
		{
			name: "head behind cursor",
			last: 100, head: 90, window: 50, subSize: 10,
			want: nil,
		},
		{
			name: "single block",
			last: 100, head: 101, window: 50, subSize: 10,
			want: []BlockRange{{From: 101, To: 101}},
		},
		{
			name: "window capped by head",
			last: 100, head: 115, window: 50, subSize: 10,
			want: []BlockRange{{From: 101, To: 110}, {From: 111, To: 115}},
		},
		{
			name: "head capped by window",
			last: 100, head: 1000, window: 25, subSize: 10,
			want: []BlockRange{{From: 101, To: 110}, {From: 111, To: 120}, {From: 121, To: 125}},
		},
		{
			name: "exact sub-range multiple",
			last: 0, head: 30, window: 20, subSize: 10,
			want: []BlockRange{{From: 1, To: 10}, {From: 11, To: 20}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Plan(tt.last, tt.head, tt.window, tt.subSize)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Plan(%d, %d, %d, %d) = %v, want %v",
					tt.last, tt.head, tt.window, tt.subSize, got, tt.want)
			}
		})
	}
}

func TestPlanRangesAreContiguous(t *testing.T) {
	ranges := Plan(499, 10_000, 1000, 77)
	if len(ranges) == 0 {
		t.Fatal("expected ranges")
	}
	if ranges[0].From != 500 {
		t.Fatalf("expected first range to start at 500, got %d", ranges[0].From)
	}
	if ranges[len(ranges)-1].To != 1499 {
		t.Fatalf("expected last range to end at 1499, got %d", ranges[len(ranges)-1].To)
	}
	for i := 1; i < len(ranges); i++ {
		if ranges[i].From != ranges[i-1].To+1 {
			t.Fatalf("gap between ranges %v and %v", ranges[i-1], ranges[i])
		}
	}
	for _, r := range ranges {
		if r.To-r.From+1 > 77 {
			t.Fatalf("range %v exceeds sub-range size", r)
		}
	}
}

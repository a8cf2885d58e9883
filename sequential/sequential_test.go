package sequential_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/exascience/pararray/parallel"
	"github.com/exascience/pararray/sequential"
)

func ExampleRangeReduce() {
	values := []int{5, -3, 0, 12, 7}
	sum, _ := sequential.RangeReduce(context.Background(), 0, len(values), 2,
		func(_ context.Context, low, high int) (int, error) {
			var sum int
			for _, v := range values[low:high] {
				sum += v
			}
			return sum, nil
		},
		func(x, y int) int { return x + y },
	)
	fmt.Println(sum)

	// Output:
	// 21
}

func TestRangeVisitsLeavesInOrder(t *testing.T) {
	var got []parallel.Batch
	err := sequential.Range(context.Background(), 0, 17, 4,
		func(_ context.Context, low, high int) error {
			got = append(got, parallel.Batch{Low: low, High: high})
			return nil
		},
	)
	if err != nil {
		t.Fatal(err)
	}
	want := []parallel.Batch{
		{Low: 0, High: 4}, {Low: 4, High: 8}, {Low: 8, High: 12},
		{Low: 12, High: 14}, {Low: 14, High: 17},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected leaves %v, got %v", want, got)
	}
}

// The sequential and parallel implementations split identically, so they
// must visit the same set of leaves.
func TestRangeMatchesParallel(t *testing.T) {
	s := parallel.NewScheduler(4)
	defer s.Close()

	for _, size := range []int{0, 1, 99, 1000, 12345} {
		var seq []parallel.Batch
		if err := sequential.Range(context.Background(), 0, size, 10,
			func(_ context.Context, low, high int) error {
				seq = append(seq, parallel.Batch{Low: low, High: high})
				return nil
			},
		); err != nil {
			t.Fatal(err)
		}
		var mu sync.Mutex
		par := make(map[parallel.Batch]bool)
		if err := parallel.Range(context.Background(), s, 0, size, 10,
			func(_ context.Context, low, high int) error {
				mu.Lock()
				par[parallel.Batch{Low: low, High: high}] = true
				mu.Unlock()
				return nil
			},
		); err != nil {
			t.Fatal(err)
		}
		if len(seq) != len(par) {
			t.Fatalf("size %d: %d sequential leaves, %d parallel leaves", size, len(seq), len(par))
		}
		for _, b := range seq {
			if !par[b] {
				t.Errorf("size %d: leaf %v not visited in parallel", size, b)
			}
		}
	}
}

func TestRangeStopsAtFirstError(t *testing.T) {
	errStop := errors.New("stop")
	calls := 0
	err := sequential.Range(context.Background(), 0, 100, 10,
		func(_ context.Context, low, _ int) error {
			calls++
			if calls == 3 {
				return errStop
			}
			return nil
		},
	)
	if err != errStop {
		t.Errorf("expected %v, got %v", errStop, err)
	}
	if calls != 3 {
		t.Errorf("expected 3 leaves, got %d", calls)
	}
}

func TestRangeReduceCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := sequential.RangeReduce(ctx, 0, 100, 10,
		func(context.Context, int, int) (int, error) { return 1, nil },
		func(x, y int) int { return x + y },
	)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

package repository_test

import (
	"context"
	"sync"
	"testing"

	"github.com/bitfantasy/nimo-sourcing/internal/sourcing/repository"
	"github.com/bitfantasy/nimo-sourcing/internal/sourcing/testutil"
)

func TestSequenceNext(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewSequenceRepository(db)
	ctx := context.Background()

	v1, err := repo.Next(ctx, "test_key")
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if v1 != 1 {
		t.Errorf("first increment should be 1, got %d", v1)
	}

	v2, err := repo.Next(ctx, "test_key")
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if v2 != 2 {
		t.Errorf("second increment should be 2, got %d", v2)
	}

	// 不同key互不影响
	other, err := repo.Next(ctx, "other_key")
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if other != 1 {
		t.Errorf("other key should start at 1, got %d", other)
	}
}

func TestSequenceNextConcurrent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewSequenceRepository(db)
	ctx := context.Background()

	const n = 50
	values := make(chan int64, n)
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := repo.Next(ctx, "concurrent_key")
			if err != nil {
				t.Errorf("concurrent Next failed: %v", err)
				return
			}
			values <- v
		}()
	}
	wg.Wait()
	close(values)

	seen := make(map[int64]bool)
	var max int64
	count := 0
	for v := range values {
		if seen[v] {
			t.Errorf("duplicate value minted: %d", v)
		}
		seen[v] = true
		if v > max {
			max = v
		}
		count++
	}

	if count != n {
		t.Fatalf("expected %d values, got %d", n, count)
	}
	// 连续无空洞：最大值等于发号次数
	if max != n {
		t.Errorf("expected max value %d, got %d (gaps in sequence)", n, max)
	}
	for i := int64(1); i <= n; i++ {
		if !seen[i] {
			t.Errorf("missing value %d", i)
		}
	}
}

func TestSequenceNextAtLeastFloor(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewSequenceRepository(db)
	ctx := context.Background()

	v, err := repo.NextAtLeast(ctx, "catalog", 9000)
	if err != nil {
		t.Fatalf("NextAtLeast failed: %v", err)
	}
	if v != 9000 {
		t.Errorf("first increment must be corrected up to floor 9000, got %d", v)
	}

	next, err := repo.NextAtLeast(ctx, "catalog", 9000)
	if err != nil {
		t.Fatalf("NextAtLeast failed: %v", err)
	}
	if next != 9001 {
		t.Errorf("increment after floor correction should be 9001, got %d", next)
	}
}

func TestSequenceCurrent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewSequenceRepository(db)
	ctx := context.Background()

	v, err := repo.Current(ctx, "never_used")
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if v != 0 {
		t.Errorf("missing counter should read as 0, got %d", v)
	}

	if _, err := repo.Next(ctx, "used"); err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	v, err = repo.Current(ctx, "used")
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if v != 1 {
		t.Errorf("expected current 1, got %d", v)
	}
}

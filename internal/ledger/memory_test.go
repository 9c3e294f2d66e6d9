package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestIncrementAndRead(t *testing.T) {
	l := NewMemoryLedger()
	ctx := context.Background()

	balance, err := l.Increment(ctx, "v1", "s1", 10)
	if err != nil {
		t.Fatalf("Increment: %v", err)
	}
	if balance != 10 {
		t.Fatalf("balance = %d, want 10", balance)
	}

	balance, err = l.Increment(ctx, "v1", "s1", 5)
	if err != nil {
		t.Fatalf("Increment: %v", err)
	}
	if balance != 15 {
		t.Fatalf("balance = %d, want 15", balance)
	}

	got, err := l.Read(ctx, "v1", "s1")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != 15 {
		t.Fatalf("Read = %d, want 15", got)
	}
}

func TestBalancesAreIndependentPerPair(t *testing.T) {
	l := NewMemoryLedger()
	ctx := context.Background()

	l.Increment(ctx, "v1", "s1", 10)
	l.Increment(ctx, "v1", "s2", 20)
	l.Increment(ctx, "v2", "s1", 30)

	if got, _ := l.Read(ctx, "v1", "s1"); got != 10 {
		t.Fatalf("v1/s1 = %d, want 10", got)
	}
	if got, _ := l.Read(ctx, "v1", "s2"); got != 20 {
		t.Fatalf("v1/s2 = %d, want 20", got)
	}
	if got, _ := l.Read(ctx, "v2", "s1"); got != 30 {
		t.Fatalf("v2/s1 = %d, want 30", got)
	}
}

func TestInvalidAmount(t *testing.T) {
	l := NewMemoryLedger()
	ctx := context.Background()

	if _, err := l.Increment(ctx, "v1", "s1", 0); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("err = %v, want ErrInvalidAmount", err)
	}
	if _, err := l.Increment(ctx, "v1", "s1", -5); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("err = %v, want ErrInvalidAmount", err)
	}
}

func TestConcurrentIncrements(t *testing.T) {
	l := NewMemoryLedger()
	ctx := context.Background()

	const workers = 50
	const perWorker = 100

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				if _, err := l.Increment(ctx, "v1", "s1", 1); err != nil {
					t.Errorf("Increment: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	got, err := l.Read(ctx, "v1", "s1")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if want := int64(workers * perWorker); got != want {
		t.Fatalf("balance = %d, want %d", got, want)
	}
}

func TestReadByViewer(t *testing.T) {
	l := NewMemoryLedger()
	ctx := context.Background()

	l.Increment(ctx, "v1", "s1", 10)
	l.Increment(ctx, "v1", "s2", 20)
	l.Increment(ctx, "v2", "s1", 99)

	balances, err := l.ReadByViewer(ctx, "v1")
	if err != nil {
		t.Fatalf("ReadByViewer: %v", err)
	}
	if len(balances) != 2 {
		t.Fatalf("len(balances) = %d, want 2", len(balances))
	}
	if balances["s1"] != 10 || balances["s2"] != 20 {
		t.Fatalf("balances = %v", balances)
	}
}

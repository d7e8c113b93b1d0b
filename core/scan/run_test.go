package scan

import "testing"

func fixedClock(value float64) func() float64 {
	return func() float64 { return value }
}

func TestRunWrapsScan(t *testing.T) {
	entries := buildChain(t, 2)
	result, err := Run("demo", entries, 100, fixedClock(101.5))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Status != "completed" || result.ChainID != "demo" {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.StartedAt != 100 || result.CompletedAt != 101.5 {
		t.Fatalf("timing not carried: %+v", result)
	}
	if len(result.Findings) != 0 {
		t.Fatalf("expected empty findings slice, got %v", result.Findings)
	}
	if result.Findings == nil {
		t.Fatalf("findings must be [] on the wire, not null")
	}
	if result.Receipt == nil || result.Receipt.ChainID != "demo" {
		t.Fatalf("receipt not attached: %+v", result.Receipt)
	}
	if result.ID == "" {
		t.Fatalf("missing run id")
	}
}

func TestRunSamplesCompletionAfterScan(t *testing.T) {
	entries := buildChain(t, 3)
	calls := 0
	clock := func() float64 {
		calls++
		return 100 + float64(calls)
	}
	result, err := Run("demo", entries, 100, clock)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	// The clock is read exactly once, inside Run, after the scan; a caller
	// that pre-computed completed_at would report zero elapsed time no
	// matter how large the chain.
	if calls != 1 {
		t.Fatalf("expected one completion clock read, got %d", calls)
	}
	if result.CompletedAt <= result.StartedAt {
		t.Fatalf("completed_at %v does not follow started_at %v", result.CompletedAt, result.StartedAt)
	}
	if result.Receipt.DurationSeconds != result.CompletedAt-result.StartedAt {
		t.Fatalf("receipt duration %v does not match the bounds", result.Receipt.DurationSeconds)
	}
}

func TestRunDeterministicAcrossTimings(t *testing.T) {
	entries := buildChain(t, 2)
	first, err := Run("demo", entries, 100, fixedClock(101))
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := Run("demo", entries, 5000, fixedClock(5009))
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if first.Receipt.ReceiptHash != second.Receipt.ReceiptHash {
		t.Fatalf("receipt hash drifted across timings")
	}
	if first.ID != second.ID {
		t.Fatalf("run id drifted across timings: %s vs %s", first.ID, second.ID)
	}
}

func TestRunStructuralErrorPropagates(t *testing.T) {
	entries := buildChain(t, 2)
	entries[0].XY = ""
	if _, err := Run("demo", entries, 100, fixedClock(101)); err == nil {
		t.Fatalf("expected structural error")
	}
}

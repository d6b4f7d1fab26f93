package numerator

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	corenumerator "saleflow/internal/core/numerator"
)

type fakeRow struct {
	val int64
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) > 0 {
		if p, ok := dest[0].(*int64); ok {
			*p = r.val
		}
	}
	return nil
}

// fakeQuerier emulates the sys_sequences upsert.
type fakeQuerier struct {
	seq   map[string]int64
	calls int
}

func newFakeQuerier() *fakeQuerier {
	return &fakeQuerier{seq: make(map[string]int64)}
}

func (q *fakeQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	q.calls++
	key, _ := args[0].(string)
	increment := int64(1)
	if len(args) > 1 {
		if v, ok := args[1].(int64); ok {
			increment = v
		}
	}
	q.seq[key] += increment
	return fakeRow{val: q.seq[key]}
}

func TestGetNextNumberStrict(t *testing.T) {
	q := newFakeQuerier()
	svc := New(q)
	cfg := corenumerator.DefaultConfig("SO")
	period := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	first, err := svc.GetNextNumber(context.Background(), cfg, nil, period)
	if err != nil {
		t.Fatalf("GetNextNumber: %v", err)
	}
	if first != "SO-2024-00001" {
		t.Errorf("first number = %q, want SO-2024-00001", first)
	}

	second, err := svc.GetNextNumber(context.Background(), cfg, nil, period)
	if err != nil {
		t.Fatalf("GetNextNumber: %v", err)
	}
	if second != "SO-2024-00002" {
		t.Errorf("second number = %q, want SO-2024-00002", second)
	}
	if q.calls != 2 {
		t.Errorf("strict strategy made %d queries, want one per number", q.calls)
	}
}

func TestGetNextNumberCached(t *testing.T) {
	q := newFakeQuerier()
	svc := New(q)
	cfg := corenumerator.DefaultConfig("SO")
	opts := &corenumerator.Options{Strategy: corenumerator.StrategyCached, RangeSize: 10}
	period := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := 1; i <= 10; i++ {
		got, err := svc.GetNextNumber(context.Background(), cfg, opts, period)
		if err != nil {
			t.Fatalf("GetNextNumber %d: %v", i, err)
		}
		if n := ParseNumber(got); n != int64(i) {
			t.Errorf("number %d parsed as %d (%q)", i, n, got)
		}
	}
	if q.calls != 1 {
		t.Errorf("cached strategy hit the database %d times for one range, want 1", q.calls)
	}

	// Eleventh number exhausts the range and reserves a new one.
	if _, err := svc.GetNextNumber(context.Background(), cfg, opts, period); err != nil {
		t.Fatalf("GetNextNumber: %v", err)
	}
	if q.calls != 2 {
		t.Errorf("range refill made %d total queries, want 2", q.calls)
	}
}

func TestBuildKeyResetPeriods(t *testing.T) {
	svc := New(newFakeQuerier())
	period := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		reset string
		want  string
	}{
		{"year", "SO_2024"},
		{"month", "SO_2024_03"},
		{"never", "SO"},
	}
	for _, tt := range tests {
		cfg := corenumerator.Config{Prefix: "SO", ResetPeriod: tt.reset}
		if got := svc.buildKey(cfg, period); got != tt.want {
			t.Errorf("buildKey(%s) = %q, want %q", tt.reset, got, tt.want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	svc := New(newFakeQuerier())
	period := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	cfg := corenumerator.Config{Prefix: "INV", IncludeYear: true, PadWidth: 5}
	if got := svc.formatNumber(cfg, period, 42); got != "INV-2024-00042" {
		t.Errorf("formatNumber = %q", got)
	}

	cfg = corenumerator.Config{Prefix: "CPN", PadWidth: 3}
	if got := svc.formatNumber(cfg, period, 7); got != "CPN-007" {
		t.Errorf("formatNumber = %q", got)
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"SO-2024-00042", 42},
		{"CPN-007", 7},
		{"garbage", -1},
		{"SO-", -1},
		{"SO-12ab", -1},
	}
	for _, tt := range tests {
		if got := ParseNumber(tt.in); got != tt.want {
			t.Errorf("ParseNumber(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

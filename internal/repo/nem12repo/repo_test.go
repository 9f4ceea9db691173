package nem12repo

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milad/simplenem12/internal/domain"
	"github.com/milad/simplenem12/internal/nem12"
	"github.com/milad/simplenem12/internal/repo"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	got, err := time.ParseInLocation(domain.DateLayout, s, time.UTC)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return got
}

func meterRead(t *testing.T, nmi string, dates ...string) domain.MeterRead {
	t.Helper()
	mr := domain.NewMeterRead(nmi, domain.EnergyUnitKWH)
	for i, d := range dates {
		mr.AppendVolume(mustDate(t, d), domain.IntervalVolume{Volume: decimal.NewFromInt(int64(i + 1)), Quality: domain.QualityActual})
	}
	return mr
}

func TestRepo_ListFiltersByNMIAndDateRange(t *testing.T) {
	t.Parallel()

	r := New([]domain.MeterRead{
		meterRead(t, "AAAAAAAAAA", "2024-01-01", "2024-01-02", "2024-01-03"),
		meterRead(t, "BBBBBBBBBB", "2024-01-02"),
	})

	start := mustDate(t, "2024-01-02")
	end := mustDate(t, "2024-01-03")

	out, err := r.List(context.Background(), repo.Filter{NMI: "AAAAAAAAAA", StartInclusive: &start, EndExclusive: &end})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, []time.Time{start}, out[0].Dates())
	assert.Equal(t, "2", out[0].Volumes[start].Volume.String())
}

func TestRepo_ListKeepsIngestOrderAndEmptyReads(t *testing.T) {
	t.Parallel()

	r := New([]domain.MeterRead{
		meterRead(t, "BBBBBBBBBB"),
		meterRead(t, "AAAAAAAAAA", "2024-01-01"),
	})

	out, err := r.List(context.Background(), repo.Filter{})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "BBBBBBBBBB", out[0].NMI)
	assert.Equal(t, "AAAAAAAAAA", out[1].NMI)

	out[1].AppendVolume(mustDate(t, "2030-01-01"), domain.IntervalVolume{})
	again, err := r.List(context.Background(), repo.Filter{})
	require.NoError(t, err)
	assert.Len(t, again[1].Volumes, 1, "callers must not mutate repository storage")
}

func TestRepo_ListHonoursCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(nil).List(ctx, repo.Filter{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewFromFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := filepath.Join(dir, "good.csv")
	require.NoError(t, os.WriteFile(good, []byte("100\n200,ABCDEFGHIJ,KWH\n300,20240101,1,A\n900\n"), 0o600))

	r, err := NewFromFile(good)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Len())

	bad := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("100\n200,ABCDEFGHIJ,KWH\n"), 0o600))

	r, err = NewFromFile(bad)
	assert.Nil(t, r)
	assert.ErrorIs(t, err, nem12.ErrStructural)
}

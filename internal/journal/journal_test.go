package journal

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/tradeoracle/signal-bot/pkg/rules"
	"github.com/tradeoracle/signal-bot/pkg/signal"
)

func journalResult(direction, asset string, entry float64) *signal.Result {
	return &signal.Result{
		Direction:   direction,
		Asset:       asset,
		Timeframe:   "M5",
		Entry:       entry,
		EntrySource: signal.EntrySourceTable,
		TP1:         entry + 1,
		TP2:         entry + 2,
		TP3:         entry + 3,
		SL:          entry - 1,
		TP1Distance: 1,
		TP2Distance: 2,
		TP3Distance: 3.5,
		SLDistance:  1.5,
		Unit:        rules.UnitPercent,
		RiskReward:  1.44,
		Original:    direction + " " + asset + " M5",
		GeneratedAt: time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC),
	}
}

// TestJournal_AppendCreatesWorkbook tests first-append file creation
func TestJournal_AppendCreatesWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal", "signals.xlsx")
	j := New(path)

	require.NoError(t, j.Append(journalResult("LONG", "BTCUSD", 65000)))

	fx, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer fx.Close()

	rows, err := fx.GetRows("Signals")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Time (UTC)", rows[0][0])
	assert.Equal(t, "LONG", rows[1][1])
	assert.Equal(t, "BTCUSD", rows[1][2])
	assert.Equal(t, "M5", rows[1][3])
	assert.Equal(t, "%", rows[1][10])
	assert.Equal(t, "LONG BTCUSD M5", rows[1][12])
	assert.Equal(t, "Status", rows[0][13])
	assert.Equal(t, "Result", rows[0][14])
	assert.Equal(t, "SENT", rows[1][13])
}

// TestJournal_AppendGrowsExisting tests that appends accumulate rows
func TestJournal_AppendGrowsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "signals.xlsx")
	j := New(path)

	require.NoError(t, j.Append(journalResult("LONG", "BTCUSD", 65000)))
	require.NoError(t, j.Append(journalResult("SHORT", "XAUUSD", 2350)))
	require.NoError(t, j.Append(journalResult("LONG", "BTCUSD", 66000)))

	fx, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer fx.Close()

	rows, err := fx.GetRows("Signals")
	require.NoError(t, err)
	assert.Len(t, rows, 4)
	assert.Equal(t, "XAUUSD", rows[2][2])
}

// TestJournal_ReadStats tests totals, direction split and per-asset counts
func TestJournal_ReadStats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "signals.xlsx")
	j := New(path)

	require.NoError(t, j.Append(journalResult("LONG", "BTCUSD", 65000)))
	require.NoError(t, j.Append(journalResult("SHORT", "XAUUSD", 2350)))
	require.NoError(t, j.Append(journalResult("LONG", "BTCUSD", 66000)))

	stats, err := j.ReadStats()
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Long)
	assert.Equal(t, 1, stats.Short)
	assert.Equal(t, 2, stats.ByAsset["BTCUSD"])
	assert.Equal(t, 1, stats.ByAsset["XAUUSD"])
	assert.Equal(t, "2026-08-26 10:00:00", stats.Last)
	assert.Equal(t, 3, stats.Pending)
	assert.Equal(t, 0.0, stats.WinRate)
}

// TestJournal_ReadStatsWinRate tests win/loss tallies over hand-filled results
func TestJournal_ReadStatsWinRate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "signals.xlsx")
	j := New(path)

	for i := 0; i < 4; i++ {
		require.NoError(t, j.Append(journalResult("LONG", "BTCUSD", 65000)))
	}

	fx, err := excelize.OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, fx.SetCellValue("Signals", "O2", "WIN"))
	require.NoError(t, fx.SetCellValue("Signals", "O3", "TP2"))
	require.NoError(t, fx.SetCellValue("Signals", "O4", "LOSS"))
	require.NoError(t, fx.SaveAs(path))
	require.NoError(t, fx.Close())

	stats, err := j.ReadStats()
	require.NoError(t, err)

	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.Wins)
	assert.Equal(t, 1, stats.Losses)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 66.7, stats.WinRate)
}

// TestJournal_ReadStatsMissingFile tests that a fresh journal reads as empty
func TestJournal_ReadStatsMissingFile(t *testing.T) {
	j := New(filepath.Join(t.TempDir(), "never-written.xlsx"))

	stats, err := j.ReadStats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Total)
	assert.Empty(t, stats.ByAsset)
}

// TestJournal_ConcurrentAppends tests that parallel appends all land
func TestJournal_ConcurrentAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "signals.xlsx")
	j := New(path)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := j.Append(journalResult("LONG", "BTCUSD", 65000)); err != nil {
				t.Errorf("append failed: %v", err)
			}
		}()
	}
	wg.Wait()

	stats, err := j.ReadStats()
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
}

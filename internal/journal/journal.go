// Package journal appends every delivered signal to an Excel workbook so
// channel output can be audited and compared against later price action.
package journal

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"

	apperrors "github.com/tradeoracle/signal-bot/internal/errors"
	"github.com/tradeoracle/signal-bot/pkg/signal"
)

const signalsSheet = "Signals"

// statusSent marks a freshly journaled row. The Result column stays empty
// until the trade is resolved by hand (or a later sync) with WIN/TP1..TP3
// or LOSS/SL.
const statusSent = "SENT"

var columns = []string{
	"Time (UTC)", "Direction", "Asset", "Timeframe", "Entry", "Source",
	"TP1", "TP2", "TP3", "SL", "Unit", "R:R", "Original", "Status", "Result",
}

// Journal is an append-only signal log backed by one workbook file. Appends
// are serialized; the workbook is rewritten on each append so a crash never
// loses more than the in-flight row.
type Journal struct {
	mu   sync.Mutex
	path string
}

// New builds a journal writing to path. The file and its directory are
// created on first append.
func New(path string) *Journal {
	return &Journal{path: path}
}

// Path returns the workbook location.
func (j *Journal) Path() string { return j.path }

// Append writes one result row, creating the workbook with a styled header
// when it does not exist yet.
func (j *Journal) Append(res *signal.Result) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	fx, next, err := j.open()
	if err != nil {
		return apperrors.NewJournalError("journal", "open", err)
	}
	defer fx.Close()

	values := []interface{}{
		res.GeneratedAt.Format("2006-01-02 15:04:05"),
		res.Direction,
		res.Asset,
		res.Timeframe,
		res.Entry,
		string(res.EntrySource),
		res.TP1,
		res.TP2,
		res.TP3,
		res.SL,
		res.Unit.String(),
		res.RiskReward,
		res.Original,
		statusSent,
		"",
	}
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, next)
		fx.SetCellValue(signalsSheet, cell, v)
	}

	if err := fx.SaveAs(j.path); err != nil {
		return apperrors.NewJournalError("journal", "save", err)
	}
	return nil
}

// open returns the workbook and the next free row, creating the file shape
// on first use. Callers hold the mutex.
func (j *Journal) open() (*excelize.File, int, error) {
	if _, err := os.Stat(j.path); errors.Is(err, fs.ErrNotExist) {
		fx, err := j.create()
		if err != nil {
			return nil, 0, err
		}
		return fx, 2, nil
	}

	fx, err := excelize.OpenFile(j.path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open journal %s: %w", j.path, err)
	}
	rows, err := fx.GetRows(signalsSheet)
	if err != nil {
		fx.Close()
		return nil, 0, fmt.Errorf("failed to read journal sheet: %w", err)
	}
	return fx, len(rows) + 1, nil
}

func (j *Journal) create() (*excelize.File, error) {
	if dir := filepath.Dir(j.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create journal directory %s: %w", dir, err)
		}
	}

	fx := excelize.NewFile()
	fx.SetSheetName(fx.GetSheetName(0), signalsSheet)

	headStyle, err := fx.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"366092"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		fx.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, h := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		fx.SetCellValue(signalsSheet, cell, h)
		fx.SetCellStyle(signalsSheet, cell, cell, headStyle)
	}
	fx.SetColWidth(signalsSheet, "A", "A", 20)
	fx.SetColWidth(signalsSheet, "M", "M", 30)

	return fx, nil
}

// Stats summarizes the journal contents for the /stats command. WinRate is
// a percentage over resolved rows, one decimal, 0 until a trade closes.
type Stats struct {
	Total   int
	Long    int
	Short   int
	Wins    int
	Losses  int
	Pending int
	WinRate float64
	ByAsset map[string]int
	Last    string
}

// ReadStats tallies the journal. A missing file counts as an empty journal.
func (j *Journal) ReadStats() (*Stats, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	stats := &Stats{ByAsset: make(map[string]int)}

	if _, err := os.Stat(j.path); errors.Is(err, fs.ErrNotExist) {
		return stats, nil
	}

	fx, err := excelize.OpenFile(j.path)
	if err != nil {
		return nil, apperrors.NewJournalError("journal", "stats", err)
	}
	defer fx.Close()

	rows, err := fx.GetRows(signalsSheet)
	if err != nil {
		return nil, apperrors.NewJournalError("journal", "stats", err)
	}

	for i, row := range rows {
		if i == 0 || len(row) < 3 {
			continue
		}
		stats.Total++
		switch row[1] {
		case "LONG":
			stats.Long++
		case "SHORT":
			stats.Short++
		}
		stats.ByAsset[row[2]]++
		stats.Last = row[0]

		result := ""
		if len(row) > 14 {
			result = row[14]
		}
		switch classifyResult(result) {
		case resultWin:
			stats.Wins++
		case resultLoss:
			stats.Losses++
		default:
			stats.Pending++
		}
	}

	if closed := stats.Wins + stats.Losses; closed > 0 {
		stats.WinRate = math.Round(float64(stats.Wins)/float64(closed)*1000) / 10
	}
	return stats, nil
}

type resultClass int

const (
	resultPending resultClass = iota
	resultWin
	resultLoss
)

// classifyResult maps a hand-filled Result cell onto win/loss/pending.
// "WIN" and target hits ("TP1".."TP3") count as wins, "LOSS" and "SL" as
// losses; anything else is still open.
func classifyResult(result string) resultClass {
	result = strings.ToUpper(strings.TrimSpace(result))
	switch {
	case result == "":
		return resultPending
	case strings.HasPrefix(result, "WIN"), strings.HasPrefix(result, "TP"):
		return resultWin
	case strings.HasPrefix(result, "LOSS"), strings.HasPrefix(result, "SL"):
		return resultLoss
	default:
		return resultPending
	}
}

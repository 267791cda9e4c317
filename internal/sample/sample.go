// Package sample generates demo CSV datasets with mixed missing-value tokens.
package sample

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// naVariations are the raw tokens injected in place of missing values, so
// a generated file exercises every indicator the wizard offers.
var naVariations = []string{
	"N/A", "n/a", "NA", "na", "NULL", "null", "None", "none", "NaN", "nan",
	"", " ",
}

type column struct {
	name string
	gen  func(rnd *rand.Rand) string
}

var columns = []column{
	{name: "Age", gen: func(rnd *rand.Rand) string {
		return strconv.Itoa(18 + rnd.Intn(72))
	}},
	{name: "Income", gen: func(rnd *rand.Rand) string {
		return strconv.Itoa(20000 + rnd.Intn(180000))
	}},
	{name: "Satisfaction", gen: func(rnd *rand.Rand) string {
		return strconv.Itoa(1 + rnd.Intn(10))
	}},
	{name: "Gender", gen: pick("Male", "Female")},
	{name: "Region", gen: pick("North", "South", "East", "West")},
	{name: "Churn", gen: pick("Yes", "No")},
}

func pick(values ...string) func(rnd *rand.Rand) string {
	return func(rnd *rand.Rand) string {
		return values[rnd.Intn(len(values))]
	}
}

// Generator produces randomized demo datasets.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewSeeded returns a deterministic Generator for tests.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Dataset builds a header row plus count data rows. missingPct of the
// cells (0-1) are replaced with a randomly chosen missing-value token.
func (g *Generator) Dataset(count int, missingPct float64) [][]string {
	header := make([]string, len(columns))
	for i, col := range columns {
		header[i] = col.name
	}
	rows := make([][]string, 0, count+1)
	rows = append(rows, header)
	for i := 0; i < count; i++ {
		row := make([]string, len(columns))
		for j, col := range columns {
			if g.rnd.Float64() < missingPct {
				row[j] = naVariations[g.rnd.Intn(len(naVariations))]
				continue
			}
			row[j] = col.gen(g.rnd)
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteCSV writes rows to path atomically.
func WriteCSV(path string, rows [][]string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, "sample-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	writer := csv.NewWriter(tmpFile)
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to move csv into place: %w", err)
	}
	return nil
}

// Package dataimport loads labelled texts from CSV or JSON files so they can
// be embedded and added to a session in one pass.
package dataimport

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dora-ryukyu/word2vec3d/corpus"
)

// ErrNoRecords is returned when a file parses but holds nothing to import.
var ErrNoRecords = errors.New("dataimport: no records")

// Record is one imported row. Vector is set only when the file carried a
// precomputed embedding, in which case the embedder is skipped for it.
type Record struct {
	Text     string
	Category string
	Vector   []float32
}

// HasVector reports whether the record arrived pre-embedded.
func (r Record) HasVector() bool {
	return len(r.Vector) > 0
}

// Entry converts a pre-embedded record into a corpus entry. An empty
// Category falls back to defaultCategory.
func (r Record) Entry(defaultCategory string) corpus.Entry {
	category := r.Category
	if category == "" {
		category = defaultCategory
	}
	return corpus.NewEntry(r.Text, category, r.Vector)
}

type jsonRecord struct {
	Text     string    `json:"text"`
	Category string    `json:"category,omitempty"`
	Vector   []float32 `json:"vector,omitempty"`
}

// LoadRecords reads a .csv or .json file. CSV needs a "text" header and may
// carry a "category" column. JSON is either an array of strings or an array
// of objects with "text" and optional "category" and "vector" fields.
func LoadRecords(path string) ([]Record, error) {
	var (
		records []Record
		err     error
	)

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv":
		records, err = loadCSV(path)
	case ".json":
		records, err = loadJSON(path)
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoRecords)
	}
	return records, nil
}

// Split separates records that still need embedding from pre-embedded ones.
func Split(records []Record) (pending, embedded []Record) {
	for _, record := range records {
		if record.HasVector() {
			embedded = append(embedded, record)
		} else {
			pending = append(pending, record)
		}
	}
	return pending, embedded
}

func loadCSV(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	textCol, categoryCol := -1, -1
	for i, header := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(header)) {
		case "text":
			textCol = i
		case "category":
			categoryCol = i
		}
	}

	if textCol == -1 {
		return nil, fmt.Errorf("CSV missing 'text' column header")
	}

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if textCol >= len(row) || strings.TrimSpace(row[textCol]) == "" {
			continue
		}
		record := Record{Text: strings.TrimSpace(row[textCol])}
		if categoryCol >= 0 && categoryCol < len(row) {
			record.Category = strings.TrimSpace(row[categoryCol])
		}
		records = append(records, record)
	}

	return records, nil
}

func loadJSON(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading JSON file: %w", err)
	}

	var stringArray []string
	if err := json.Unmarshal(data, &stringArray); err == nil {
		records := make([]Record, 0, len(stringArray))
		for _, text := range stringArray {
			if text = strings.TrimSpace(text); text != "" {
				records = append(records, Record{Text: text})
			}
		}
		return records, nil
	}

	var objectArray []jsonRecord
	if err := json.Unmarshal(data, &objectArray); err != nil {
		return nil, fmt.Errorf("parsing JSON: expected array of strings or objects with 'text' field: %w", err)
	}

	records := make([]Record, 0, len(objectArray))
	dimension := 0
	for i, obj := range objectArray {
		if obj.Text == "" {
			return nil, fmt.Errorf("entry %d missing text field", i)
		}
		if len(obj.Vector) > 0 {
			if dimension == 0 {
				dimension = len(obj.Vector)
			} else if len(obj.Vector) != dimension {
				return nil, &corpus.DimensionMismatchError{Index: i, Got: len(obj.Vector), Want: dimension}
			}
		}
		records = append(records, Record{Text: obj.Text, Category: obj.Category, Vector: obj.Vector})
	}

	return records, nil
}

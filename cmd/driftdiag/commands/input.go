package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/moolen/driftdiag/internal/schema"
)

// readRows loads observation rows from a CSV or JSON file and normalizes
// them into the canonical schema. The format is chosen by extension.
func readRows(path string) ([]schema.Row, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return readJSONRows(path)
	default:
		return readCSVRows(path)
	}
}

// readCSVRows reads a header-first CSV into raw string records.
func readCSVRows(path string) ([]schema.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input %q: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	all, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV %q: %w", path, err)
	}
	if len(all) < 2 {
		return nil, fmt.Errorf("input %q has no data rows", path)
	}

	header := all[0]
	records := make([]map[string]string, 0, len(all)-1)
	for _, line := range all[1:] {
		record := make(map[string]string, len(header))
		for i, field := range header {
			if i < len(line) {
				record[field] = line[i]
			}
		}
		records = append(records, record)
	}
	return schema.NormalizeRecords(records), nil
}

// readJSONRows reads a JSON array of flat objects. Values may be strings
// or numbers; both normalize the same way.
func readJSONRows(path string) ([]schema.Row, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input %q: %w", path, err)
	}

	var objects []map[string]any
	if err := json.Unmarshal(raw, &objects); err != nil {
		return nil, fmt.Errorf("failed to parse JSON %q: %w", path, err)
	}

	records := make([]map[string]string, 0, len(objects))
	for _, obj := range objects {
		record := make(map[string]string, len(obj))
		for k, v := range obj {
			switch value := v.(type) {
			case string:
				record[k] = value
			case float64:
				record[k] = strconv.FormatFloat(value, 'f', -1, 64)
			case bool:
				record[k] = strconv.FormatBool(value)
			case nil:
				record[k] = ""
			default:
				record[k] = fmt.Sprintf("%v", value)
			}
		}
		records = append(records, record)
	}
	return schema.NormalizeRecords(records), nil
}

// parseSeries parses a comma-separated series flag into floats.
func parseSeries(flag string) ([]float64, error) {
	if strings.TrimSpace(flag) == "" {
		return nil, nil
	}
	parts := strings.Split(flag, ",")
	series := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid series value %q: %w", p, err)
		}
		series = append(series, v)
	}
	return series, nil
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

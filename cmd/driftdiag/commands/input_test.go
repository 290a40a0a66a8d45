package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moolen/driftdiag/internal/schema"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadRows_CSV(t *testing.T) {
	path := writeFile(t, "rows.csv",
		"period,click_quality_value,region,completeness_pct\n"+
			"baseline,0.40,emea,99\n"+
			"current,0.34,emea,99\n")

	rows, err := readRows(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "baseline", rows[0].Period)
	assert.Equal(t, 0.40, rows[0].Metric(schema.MetricClickQuality))
	assert.Equal(t, "emea", rows[0].Dimension("region"))
	assert.InDelta(t, 0.99, rows[0].Metric(schema.FieldCompleteness), 1e-9)
}

func TestReadRows_JSON(t *testing.T) {
	path := writeFile(t, "rows.json",
		`[{"period":"current","dlctr_value":0.34,"region":"amer","data_freshness_min":12}]`)

	rows, err := readRows(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "current", rows[0].Period)
	assert.Equal(t, 0.34, rows[0].Metric(schema.MetricClickQuality))
	assert.Equal(t, 12.0, rows[0].Metric(schema.FieldFreshnessMin))
	assert.Equal(t, "amer", rows[0].Dimension("region"))
}

func TestReadRows_EmptyCSV(t *testing.T) {
	path := writeFile(t, "rows.csv", "period,click_quality_value\n")
	_, err := readRows(path)
	assert.Error(t, err)
}

func TestReadRows_MissingFile(t *testing.T) {
	_, err := readRows(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestParseSeries(t *testing.T) {
	series, err := parseSeries("1.0, 0.9,0.8")
	require.NoError(t, err)
	assert.Equal(t, []float64{1.0, 0.9, 0.8}, series)

	empty, err := parseSeries("")
	require.NoError(t, err)
	assert.Nil(t, empty)

	_, err = parseSeries("1.0,abc")
	assert.Error(t, err)
}

func TestSplitDimensions(t *testing.T) {
	assert.Equal(t, []string{"region", "tenant_tier"}, splitDimensions("region, tenant_tier"))
	assert.Nil(t, splitDimensions(""))
	assert.Equal(t, []string{"region"}, splitDimensions("region,"))
}

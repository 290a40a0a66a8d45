package schema

// NormalizeRecord converts one raw string record (a CSV row or flat JSON
// object) into a Row. Numeric fields become metrics under their canonical
// names, everything else becomes a dimension. The period field is lifted
// out of both maps.
func NormalizeRecord(record map[string]string) Row {
	row := Row{
		Metrics:    make(map[string]float64),
		Dimensions: make(map[string]string),
	}
	for field, raw := range record {
		if field == FieldPeriod {
			row.Period = raw
			continue
		}
		v, numeric := parseFloat(raw)
		if !numeric {
			row.Dimensions[field] = raw
			continue
		}
		name, value := normalizeTrustField(CanonicalMetricName(field), v)
		row.Metrics[name] = value
	}
	return row
}

// NormalizeRecords converts a batch of raw records. The slice order is
// preserved so day-ordered inputs stay day-ordered.
func NormalizeRecords(records []map[string]string) []Row {
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, NormalizeRecord(rec))
	}
	return rows
}

// normalizeTrustField maps the two trust-gate field spellings onto their
// canonical names and units: completeness as a 0..1 fraction, freshness
// as lag minutes. Completeness values above 1.0 are treated as percent
// regardless of spelling, since upstream exporters have mixed the units.
func normalizeTrustField(name string, value float64) (string, float64) {
	switch name {
	case FieldCompletenessPct:
		return FieldCompleteness, value / 100.0
	case FieldCompleteness:
		if value > 1.0 {
			return FieldCompleteness, value / 100.0
		}
		return FieldCompleteness, value
	case FieldFreshnessLag:
		return FieldFreshnessMin, value
	default:
		return name, value
	}
}

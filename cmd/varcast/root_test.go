package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"varcast/dataprep"
)

func TestParseDerive(t *testing.T) {
	tests := []struct {
		in   string
		want dataprep.ColumnSpec
	}{
		{"gdp_growth=pct(gdp_index)", dataprep.ColumnSpec{
			Name: "gdp_growth", Transform: dataprep.PctChange, Source: "gdp_index"}},
		{"yield_spread=spread(rate_10yr, rate_3mo)", dataprep.ColumnSpec{
			Name: "yield_spread", Transform: dataprep.SpreadOf, Source: "rate_10yr", Source2: "rate_3mo"}},
		{"cpi=raw(cpi_index)", dataprep.ColumnSpec{
			Name: "cpi", Transform: dataprep.Raw, Source: "cpi_index"}},
		{"cpi=cpi_index", dataprep.ColumnSpec{
			Name: "cpi", Transform: dataprep.Raw, Source: "cpi_index"}},
	}
	for _, tc := range tests {
		got, err := parseDerive(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseDeriveRejectsMalformed(t *testing.T) {
	for _, in := range []string{
		"",
		"noequals",
		"x=",
		"=pct(a)",
		"x=log(a)",
		"x=spread(a)",
		"x=pct()",
	} {
		_, err := parseDerive(in)
		assert.Error(t, err, in)
	}
}

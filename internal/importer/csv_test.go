package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowsSemicolonAutodetect(t *testing.T) {
	imp := NewCSV(",")
	rows, err := imp.Rows(strings.NewReader("2026-01-05;Groceries;12,50\n2026-01-06;Fuel;200,00\n"), 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"2026-01-05", "Groceries", "12,50"}, rows[0])
	assert.Equal(t, []string{"2026-01-06", "Fuel", "200,00"}, rows[1])
}

func TestRowsCommaAutodetect(t *testing.T) {
	imp := NewCSV(".")
	rows, err := imp.Rows(strings.NewReader("2026-01-05,Groceries,12.50\n"), 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"2026-01-05", "Groceries", "12.50"}, rows[0])
}

func TestRowsExplicitDelimiterOverridesDetection(t *testing.T) {
	imp := NewCSV(",")
	rows, err := imp.Rows(strings.NewReader("a|b|c\n"), '|')
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"a", "b", "c"}, rows[0])
}

func TestRowsRaggedRowsKept(t *testing.T) {
	imp := NewCSV(".")
	rows, err := imp.Rows(strings.NewReader("a,b,c\nd,e\nf\n"), 0)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Len(t, rows[0], 3)
	assert.Len(t, rows[1], 2)
	assert.Len(t, rows[2], 1)
}

func TestRowsSkipsBlankLines(t *testing.T) {
	imp := NewCSV(".")
	rows, err := imp.Rows(strings.NewReader("a,b\n\n\nc,d\n"), 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
}

func TestRowsLazyQuotes(t *testing.T) {
	imp := NewCSV(".")
	rows, err := imp.Rows(strings.NewReader("shop \"corner\",5.00\n"), 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, `shop "corner"`, rows[0][0])
}

func TestRowsEmptyFile(t *testing.T) {
	imp := NewCSV(".")
	rows, err := imp.Rows(strings.NewReader(""), 0)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

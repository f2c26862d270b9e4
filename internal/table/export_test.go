package table

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExportCSV(t *testing.T) {
	columns := []string{"Name", "Note"}
	rows := [][]string{
		{"a,b", `c"d`},
	}

	got := string(ExportCSV(columns, rows))

	assert.True(t, strings.HasPrefix(got, "\uFEFF"), "file must start with BOM")
	want := "\uFEFF\"Name\",\"Note\"\n\"a,b\",\"c\"\"d\"\n"
	assert.Equal(t, want, got)
}

func TestExportExcel(t *testing.T) {
	got := string(ExportExcel([]string{"Name"}, [][]string{{"<b>milk</b>"}}))

	assert.Contains(t, got, "<th>Name</th>")
	assert.Contains(t, got, "&lt;b&gt;milk&lt;/b&gt;")
	assert.NotContains(t, got, "<b>milk</b>")
}

func TestExportText(t *testing.T) {
	got := string(ExportText([]string{"Name", "Price"}, [][]string{{"milk", "1.20"}}))
	assert.Equal(t, "Name\tPrice\nmilk\t1.20\n", got)
}

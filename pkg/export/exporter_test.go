package export

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"ID", "Region", "Description"},
		Rows: []map[string]string{
			{"ID": "r1", "Region": "Nairobi", "Description": "streetlight out"},
			{"ID": "r2", "Region": "Kisumu", "Description": "illegal dumping"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	payload, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(payload)), "\r\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ID,Region,Description", lines[0])
	assert.Contains(t, lines[1], "streetlight out")
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	payload, err := NewPDFExporter().Render(sampleDataset(), "Incident Report Digest")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(payload), "%PDF"))
}

func TestTruncateCell(t *testing.T) {
	long := strings.Repeat("a", 100)
	got := truncateCell(long)
	assert.Equal(t, 60, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, "short", truncateCell("short"))
}

func TestTruncateCellKeepsRunesIntact(t *testing.T) {
	long := strings.Repeat("ñé", 50)
	got := truncateCell(long)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 60, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, strings.Repeat("ñé", 28)+"ñ...", got)
}

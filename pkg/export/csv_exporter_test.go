package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	exporter := NewCSVExporter()

	payload, err := exporter.Render(Dataset{
		Headers: []string{"Subject", "Grade"},
		Rows: []map[string]string{
			{"Subject": "CS101", "Grade": "8"},
			{"Subject": "CS102", "Grade": "6"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Subject,Grade\nCS101,8\nCS102,6\n", string(payload))
}

func TestCSVExporterMissingCell(t *testing.T) {
	exporter := NewCSVExporter()

	payload, err := exporter.Render(Dataset{
		Headers: []string{"Subject", "Grade"},
		Rows:    []map[string]string{{"Subject": "CS101"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Subject,Grade\nCS101,\n", string(payload))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	exporter := NewCSVExporter()

	_, err := exporter.Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	exporter := NewPDFExporter()

	payload, err := exporter.Render(Dataset{
		Headers: []string{"Subject", "Grade"},
		Rows:    []map[string]string{{"Subject": "CS101", "Grade": "8"}},
	}, "Academic Transcript", "Student stu-1")
	require.NoError(t, err)
	require.NotEmpty(t, payload)
	assert.Equal(t, "%PDF", string(payload[:4]))
}

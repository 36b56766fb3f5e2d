package formatter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/futig/style-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *entity.DiagnosisResult {
	return &entity.DiagnosisResult{
		BodyType:          "straight",
		TypeDescription:   "Solid upper body with a firm texture.",
		RecommendedStyles: "Simple V-necks and straight trousers.",
		AvoidStyles:       "Ruffles and oversized layers.",
	}
}

func TestDiagnosisReport_SkipsEmptyFields(t *testing.T) {
	report := DiagnosisReport(sampleResult())

	assert.Equal(t, reportTitle, report.Title)
	require.Len(t, report.Sections, 4)
	assert.Equal(t, "Body type", report.Sections[0].Heading)
	assert.Equal(t, "Description", report.Sections[1].Heading)
	assert.Equal(t, "Recommended styles", report.Sections[2].Heading)
	assert.Equal(t, "Styles to avoid", report.Sections[3].Heading)
}

func TestMarkdownFormatter(t *testing.T) {
	data, err := NewMarkdownFormatter().Format(DiagnosisReport(sampleResult()))
	require.NoError(t, err)

	want := "# Body Type Diagnosis\n" +
		"\n## Body type\n\nstraight\n" +
		"\n## Description\n\nSolid upper body with a firm texture.\n" +
		"\n## Recommended styles\n\nSimple V-necks and straight trousers.\n" +
		"\n## Styles to avoid\n\nRuffles and oversized layers.\n"
	assert.Equal(t, want, string(data))
}

func TestMarkdownFormatter_ContentReport(t *testing.T) {
	data, err := NewMarkdownFormatter().Format(ContentReport("Guide", "Wear clean lines."))
	require.NoError(t, err)
	assert.Equal(t, "# Guide\n\nWear clean lines.\n", string(data))
}

func TestPDFFormatter(t *testing.T) {
	pf := &PDFFormatter{}
	data, err := pf.Format(DiagnosisReport(sampleResult()))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	assert.Equal(t, "application/pdf", pf.ContentType())
}

func TestDOCXFormatter(t *testing.T) {
	data, err := NewDOCXFormatter().Format(DiagnosisReport(sampleResult()))
	if err != nil && strings.Contains(err.Error(), "license") {
		t.Skip("unioffice needs a license key to save documents")
	}
	require.NoError(t, err)
	// docx is a zip archive
	assert.True(t, bytes.HasPrefix(data, []byte("PK")))
}

func TestFactory(t *testing.T) {
	f := NewFactory()

	tests := []struct {
		format entity.ResultFormat
		ext    string
	}{
		{entity.FormatMarkdown, ".md"},
		{entity.FormatPDF, ".pdf"},
		{entity.FormatDOCX, ".docx"},
	}
	for _, tt := range tests {
		formatter, err := f.Create(tt.format)
		require.NoError(t, err)
		assert.Equal(t, tt.ext, formatter.FileExtension())
	}

	_, err := f.Create(entity.FormatJSON)
	assert.ErrorIs(t, err, entity.ErrInvalidFormat)
	_, err = f.Create("html")
	assert.ErrorIs(t, err, entity.ErrInvalidFormat)
}

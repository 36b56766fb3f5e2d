package formatter

import (
	"fmt"

	"github.com/futig/style-backend/internal/entity"
)

const reportTitle = "Body Type Diagnosis"

// Section is a titled block of report text.
type Section struct {
	Heading string
	Body    string
}

// Report is a format-neutral document rendered by a Formatter.
type Report struct {
	Title    string
	Sections []Section
}

var sectionHeadings = map[string]string{
	"body_type":          "Body type",
	"type_description":   "Description",
	"detailed_features":  "Detailed features",
	"attraction_points":  "Attraction points",
	"recommended_styles": "Recommended styles",
	"avoid_styles":       "Styles to avoid",
	"styling_fixes":      "Styling fixes",
	"styling_tips":       "Styling tips",
}

// DiagnosisReport lays a diagnosis result out in presentation order, skipping empty fields.
func DiagnosisReport(res *entity.DiagnosisResult) *Report {
	values := map[string]string{
		"body_type":          res.BodyType,
		"type_description":   res.TypeDescription,
		"detailed_features":  res.DetailedFeatures,
		"attraction_points":  res.AttractionPoints,
		"recommended_styles": res.RecommendedStyles,
		"avoid_styles":       res.AvoidStyles,
		"styling_fixes":      res.StylingFixes,
		"styling_tips":       res.StylingTips,
	}

	report := &Report{Title: reportTitle}
	for _, key := range entity.DiagnosisFields {
		if values[key] == "" {
			continue
		}
		report.Sections = append(report.Sections, Section{Heading: sectionHeadings[key], Body: values[key]})
	}
	return report
}

// ContentReport wraps free-form styling content into a single-section report.
func ContentReport(title, content string) *Report {
	return &Report{Title: title, Sections: []Section{{Body: content}}}
}

type Formatter interface {
	Format(report *Report) ([]byte, error)
	ContentType() string
	FileExtension() string
}

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(format entity.ResultFormat) (Formatter, error) {
	switch format {
	case entity.FormatMarkdown:
		return NewMarkdownFormatter(), nil
	case entity.FormatDOCX:
		return NewDOCXFormatter(), nil
	case entity.FormatPDF:
		return NewPDFFormatter(), nil
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", entity.ErrInvalidFormat, format)
	}
}

// Package report renders study statistics as markdown and optionally
// converts the result to PDF.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mandolyte/mdtopdf"

	"github.com/mfukuda/studyset/internal/performance"
)

// WriteMarkdown renders the statistics report.
func WriteMarkdown(
	w io.Writer,
	generatedAt time.Time,
	stats []performance.TopicStats,
	weak []performance.TopicStats,
	sevenDayAccuracy float64,
) error {
	var b strings.Builder

	b.WriteString("# Study statistics\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", generatedAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "Overall 7-day accuracy: %.1f%%\n\n", sevenDayAccuracy*100)

	b.WriteString("## Topics\n\n")
	if len(stats) == 0 {
		b.WriteString("No reviews recorded yet.\n\n")
	} else {
		b.WriteString("| Subject | Topic | Reviews | Accuracy | 7-day | Mastery |\n")
		b.WriteString("| --- | --- | --- | --- | --- | --- |\n")
		for _, ts := range stats {
			fmt.Fprintf(&b, "| %s | %s | %d | %.1f%% | %.1f%% | %.2f |\n",
				ts.Subject, ts.Topic, ts.TotalReviews,
				ts.Accuracy*100, ts.Accuracy7Day*100, ts.MasteryScore)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Weak topics\n\n")
	if len(weak) == 0 {
		b.WriteString("No topics below the accuracy threshold.\n")
	} else {
		for _, ts := range weak {
			fmt.Fprintf(&b, "- %s / %s: %.1f%% over %d reviews\n",
				ts.Subject, ts.Topic, ts.Accuracy*100, ts.TotalReviews)
		}
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write report > %w", err)
	}
	return nil
}

// SaveMarkdown writes the report to <dir>/statistics-<date>.md and
// returns the file path.
func SaveMarkdown(
	dir string,
	generatedAt time.Time,
	stats []performance.TopicStats,
	weak []performance.TopicStats,
	sevenDayAccuracy float64,
) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("os.MkdirAll(%s) > %w", dir, err)
	}

	path := filepath.Join(dir, fmt.Sprintf("statistics-%s.md", generatedAt.Format("2006-01-02")))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("os.Create(%s) > %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	if err := WriteMarkdown(file, generatedAt, stats, weak, sevenDayAccuracy); err != nil {
		return "", err
	}
	return path, nil
}

// ConvertMarkdownToPDF converts a markdown report to PDF next to the
// source file and returns the PDF path.
func ConvertMarkdownToPDF(markdownPath string) (string, error) {
	if !strings.HasSuffix(markdownPath, ".md") {
		return "", fmt.Errorf("input file must have .md extension: %s", markdownPath)
	}

	content, err := os.ReadFile(markdownPath)
	if err != nil {
		return "", fmt.Errorf("os.ReadFile(%s) > %w", markdownPath, err)
	}

	pdfPath := strings.TrimSuffix(markdownPath, ".md") + ".pdf"

	renderer := mdtopdf.NewPdfRenderer("P", "A4", pdfPath, "", nil, mdtopdf.LIGHT)
	if err := renderer.Process(content); err != nil {
		return "", fmt.Errorf("renderer.Process() > %w", err)
	}

	absPath, err := filepath.Abs(pdfPath)
	if err != nil {
		return pdfPath, nil
	}
	return absPath, nil
}

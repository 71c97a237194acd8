package ingestion

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

var xmlTags = regexp.MustCompile(`<[^>]+>`)

// ExtractText pulls the raw text out of a source document, concatenating all
// pages and sections in document order. No semantic segmentation happens
// here; the normalizer and the prompts deal with structure.
func ExtractText(doc *SourceDocument) (string, error) {
	switch doc.Format {
	case FormatPDF:
		return extractPDF(doc.Content)
	case FormatDOCX:
		return extractDOCX(doc.Content)
	default:
		return "", fmt.Errorf("%w (file %q)", ErrUnsupportedFormat, doc.Filename)
	}
}

func extractPDF(content []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}

	return buf.String(), nil
}

// extractDOCX reads word/document.xml out of the docx container, turns
// paragraph ends into newlines and strips the remaining markup.
func extractDOCX(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open docx container: %w", err)
	}

	var docXML []byte
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open docx body: %w", err)
		}
		docXML, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("read docx body: %w", err)
		}
		break
	}
	if len(docXML) == 0 {
		return "", errors.New("docx container has no word/document.xml")
	}

	text := string(docXML)
	text = strings.ReplaceAll(text, "</w:p>", "\n")
	text = strings.ReplaceAll(text, "<w:tab/>", "\t")
	text = strings.ReplaceAll(text, "<w:br/>", "\n")
	text = xmlTags.ReplaceAllString(text, " ")

	return text, nil
}

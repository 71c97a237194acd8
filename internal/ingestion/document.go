// Package ingestion turns uploaded career documents into normalized plain
// text. Format dispatch is by filename extension with a content-signature
// fallback; only PDF and DOCX documents are accepted.
package ingestion

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned when a document matches neither supported
// format by extension or by content signature.
var ErrUnsupportedFormat = errors.New("unsupported document format: only pdf and docx are accepted")

// Format identifies a supported document format.
type Format string

// Supported document formats.
const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

var (
	pdfMagic = []byte("%PDF-")
	zipMagic = []byte("PK\x03\x04")
)

// SourceDocument is one uploaded file with its detected format. It lives only
// for the pipeline invocation that created it and is discarded once text has
// been extracted.
type SourceDocument struct {
	Filename string
	Content  []byte
	Format   Format
}

// NewSourceDocument detects the document format and wraps the raw bytes.
// Detection prefers the filename extension (case-insensitive) and falls back
// to sniffing the content signature when the extension is missing or unknown.
func NewSourceDocument(filename string, content []byte) (*SourceDocument, error) {
	format, err := detectFormat(filename, content)
	if err != nil {
		return nil, err
	}
	return &SourceDocument{Filename: filename, Content: content, Format: format}, nil
}

func detectFormat(filename string, content []byte) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDOCX, nil
	}

	if bytes.HasPrefix(content, pdfMagic) {
		return FormatPDF, nil
	}
	if bytes.HasPrefix(content, zipMagic) {
		return FormatDOCX, nil
	}

	return "", fmt.Errorf("%w (file %q)", ErrUnsupportedFormat, filename)
}

// Ingest extracts and normalizes the text of one document. It is the single
// entry point the pipelines use: detect format, pull the raw text in document
// order, normalize.
func Ingest(content []byte, filename string) (string, error) {
	doc, err := NewSourceDocument(filename, content)
	if err != nil {
		return "", err
	}

	raw, err := ExtractText(doc)
	if err != nil {
		return "", err
	}

	return Normalize(raw), nil
}

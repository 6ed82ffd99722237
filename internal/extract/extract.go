// Package extract converts uploaded document bytes into plain text for
// analysis.
package extract

import (
	"bytes"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
)

// pageTimeout bounds extraction of a single PDF page. Malformed PDFs can send
// the content-stream parser into unbounded loops.
const pageTimeout = 10 * time.Second

var errPageTimeout = errors.New("page extraction timed out")

// Text extracts plain text from a document. The format is chosen by the file
// extension of name. Image uploads carry no extractable text and yield an
// empty string; unrecognized formats are treated as plain text. Extraction is
// best effort: an unreadable file logs and yields an empty string rather than
// an error, and an empty document reviews with zero findings downstream.
func Text(name string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return pdfText(data)
	case ".docx", ".odt", ".rtf", ".txt":
		return documentText(name, data)
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
		return "", nil
	default:
		return string(data), nil
	}
}

func pdfText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		log.Printf("extract: unreadable pdf: %v", err)
		return "", nil
	}

	var sb strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := extractPage(page)
		if err != nil {
			// A single broken page should not sink the document.
			log.Printf("extract: skipping pdf page %d: %v", i, err)
			continue
		}
		sb.WriteString(content)
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

// documentText extracts docx/odt/rtf/txt content. The parser only reads from
// paths, so the bytes go through a temp file. Temp file failures are
// environmental and returned for redelivery; parse failures are not.
func documentText(name string, data []byte) (string, error) {
	tmp, err := os.CreateTemp("", "clauseguard-*"+strings.ToLower(filepath.Ext(name)))
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	text, err := cat.File(tmp.Name())
	if err != nil {
		log.Printf("extract: unreadable %s document: %v", filepath.Ext(name), err)
		return "", nil
	}
	return text, nil
}

// extractPage bounds GetPlainText with a timeout.
func extractPage(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()

	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(pageTimeout):
		return "", errPageTimeout
	}
}

// Package corpus provides the ordered document sources that get indexed.
package corpus

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	// ErrEmpty is returned when a source yields no documents.
	ErrEmpty = errors.New("corpus has no documents")

	// ErrUnsupportedFormat is returned for files Load cannot read.
	ErrUnsupportedFormat = errors.New("unsupported corpus format")
)

// IDPrefix prefixes every document ID.
const IDPrefix = "doc_"

// Source is an ordered list of documents. A document's position is its
// identity within a run.
type Source []string

// faqs is the built-in FAQ set.
var faqs = Source{
	"What is Git? Git is a distributed version control system for tracking changes in source code during software development.",
	"How do I create a Python virtual environment? You can create a virtual environment using `python -m venv myenv` or `conda create -n myenv python=3.9`.",
	"What is a FastAPI endpoint? A FastAPI endpoint is a function decorated with an HTTP method (like `@app.get` or `@app.post`) that handles incoming web requests.",
	"Explain Python's `list` data structure. A list in Python is an ordered, mutable collection of items. It allows duplicate members and can contain items of different data types.",
}

// Default returns a copy of the built-in FAQ documents.
func Default() Source {
	out := make(Source, len(faqs))
	copy(out, faqs)
	return out
}

// DocumentID returns the ID of the document at zero-based position i.
func DocumentID(i int) string {
	return IDPrefix + strconv.Itoa(i)
}

// IDs returns the IDs of every document in s, in order.
func (s Source) IDs() []string {
	ids := make([]string, len(s))
	for i := range s {
		ids[i] = DocumentID(i)
	}
	return ids
}

// Load reads documents from a file. Text and Markdown files contribute one
// document per non-blank line, PDFs one document per page with text.
func Load(path string) (Source, error) {
	var (
		src Source
		err error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		src, err = loadText(path, false)
	case ".md", ".markdown":
		src, err = loadText(path, true)
	case ".pdf":
		src, err = loadPDF(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, err
	}

	if len(src) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmpty, path)
	}
	return src, nil
}

func loadText(path string, markdown bool) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening corpus: %w", err)
	}
	defer f.Close()

	return ParseLines(f, markdown)
}

// ParseLines returns one document per non-blank line of r. With markdown set,
// headings are skipped and list markers are stripped.
func ParseLines(r io.Reader, markdown bool) (Source, error) {
	var src Source

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if markdown {
			if strings.HasPrefix(line, "#") {
				continue
			}
			for _, marker := range []string{"- ", "* ", "+ "} {
				if strings.HasPrefix(line, marker) {
					line = strings.TrimSpace(line[len(marker):])
					break
				}
			}
		}
		if line == "" {
			continue
		}
		src = append(src, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading corpus: %w", err)
	}

	return src, nil
}

func loadPDF(path string) (Source, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	var src Source
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("reading pdf page %d: %w", i, err)
		}

		text = strings.Join(strings.Fields(text), " ")
		if text == "" {
			continue
		}
		src = append(src, text)
	}

	return src, nil
}

package render

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Metadata is the document information dictionary of a rendered resume.
type Metadata struct {
	Title    string
	Author   string
	Subject  string
	Keywords string
	Creator  string
}

// ExtractText returns the plain text of a PDF.
func ExtractText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ReadMetadata returns the information dictionary of a PDF.
func ReadMetadata(data []byte) (Metadata, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Metadata{}, err
	}
	info := r.Trailer().Key("Info")
	if info.IsNull() {
		return Metadata{}, errors.New("pdf has no info dictionary")
	}
	return Metadata{
		Title:    info.Key("Title").Text(),
		Author:   info.Key("Author").Text(),
		Subject:  info.Key("Subject").Text(),
		Keywords: info.Key("Keywords").Text(),
		Creator:  info.Key("Creator").Text(),
	}, nil
}

// Verify checks that a rendered PDF exposes the candidate name and the most
// recent job title as extractable text.
func Verify(data []byte, name, title string) error {
	text, err := ExtractText(data)
	if err != nil {
		return fmt.Errorf("extract text: %w", err)
	}
	flat := squash(text)
	for _, want := range []string{name, title} {
		if want == "" {
			continue
		}
		if !strings.Contains(flat, squash(want)) {
			return fmt.Errorf("rendered pdf is missing %q", want)
		}
	}
	return nil
}

// squash drops whitespace, which text extraction does not preserve reliably.
func squash(s string) string {
	return strings.Join(strings.Fields(s), "")
}

package word_service

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const OOXMLEngineName = "ooxml"

const documentPart = "word/document.xml"

// OOXMLEngine reads the main document part of a .docx archive directly.
// It only handles OOXML payloads.
type OOXMLEngine struct{}

func NewOOXMLEngine() *OOXMLEngine {
	return &OOXMLEngine{}
}

func (e *OOXMLEngine) Name() string { return OOXMLEngineName }

func (e *OOXMLEngine) RawText(ctx context.Context, data []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}

	var docFile *zip.File
	for _, f := range reader.File {
		if f.Name == documentPart {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", fmt.Errorf("%s not found", documentPart)
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", documentPart, err)
	}
	defer rc.Close()

	return documentText(ctx, rc)
}

// documentText walks the WordprocessingML body, emitting run text, tabs and
// breaks, and a blank line after every paragraph.
func documentText(ctx context.Context, r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var b strings.Builder
	inText := false
	inRun := 0

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse %s: %w", documentPart, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "r":
				inRun++
			case "t":
				inText = true
			case "tab":
				// tab stops in paragraph properties share the name
				if inRun > 0 {
					b.WriteString("\t")
				}
			case "br", "cr":
				if inRun > 0 {
					b.WriteString("\n")
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "r":
				inRun--
			case "t":
				inText = false
			case "p":
				b.WriteString("\n\n")
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return b.String(), nil
}

func NewOOXMLLoader() func(ctx context.Context) (any, error) {
	return func(ctx context.Context) (any, error) {
		return NewOOXMLEngine(), nil
	}
}

package extract_type

import (
	"context"
	"fmt"
)

type FileType string

const (
	FileTypePDF     FileType = "pdf"
	FileTypeDocx    FileType = "docx"
	FileTypeTxt     FileType = "txt"
	FileTypeImage   FileType = "image"
	FileTypeUnknown FileType = "unknown"
)

// Method labels that are not engine names.
const (
	MethodFetch       = "fetch"
	MethodUnsupported = "unsupported"
	MethodFailed      = "failed"
)

// ExtractedContent is the normalized result of a single extraction.
// Error is only set when the extraction failed or the type is unsupported.
type ExtractedContent struct {
	Text             string   `json:"text"`
	Confidence       float64  `json:"confidence"`
	FileType         FileType `json:"fileType"`
	ExtractionMethod string   `json:"extractionMethod"`
	Error            string   `json:"error,omitempty"`
}

func (c ExtractedContent) Failed() bool {
	return c.Error != ""
}

// Failure builds a zero-confidence result carrying err.
func Failure(fileType FileType, method string, err error) ExtractedContent {
	return ExtractedContent{
		Text:             "",
		Confidence:       0,
		FileType:         fileType,
		ExtractionMethod: method,
		Error:            err.Error(),
	}
}

func Unsupported(fileType FileType) ExtractedContent {
	return Failure(fileType, MethodUnsupported,
		fmt.Errorf("File type %s is not supported for text extraction", fileType))
}

// PDFEngine returns the text items of every page, in page order.
type PDFEngine interface {
	Name() string
	Pages(ctx context.Context, data []byte) ([][]string, error)
}

// WordEngine extracts the raw text of a Word document.
type WordEngine interface {
	Name() string
	RawText(ctx context.Context, data []byte) (string, error)
}

// OCRProgress receives coarse progress events from an OCR engine.
// progress is in [0,1].
type OCRProgress func(status string, progress float64)

// OCRResult carries recognized text and the engine's confidence on a 0-100 scale.
type OCRResult struct {
	Text       string
	Confidence float64
}

type OCREngine interface {
	Name() string
	Recognize(ctx context.Context, image []byte, lang string, progress OCRProgress) (OCRResult, error)
}

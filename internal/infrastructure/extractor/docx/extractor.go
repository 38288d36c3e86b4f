package docx

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

// Extractor reads the body paragraphs of a Word document in document order.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) ExtractBytes(raw []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer doc.Close()

	paragraphs, err := bodyParagraphs(doc.Editable().GetContent())
	if err != nil {
		return "", fmt.Errorf("parse docx body: %w", err)
	}
	return strings.TrimSpace(strings.Join(paragraphs, "\n")), nil
}

// bodyParagraphs returns the text of every w:p that is a direct child of w:body.
// Table cells and text boxes are not body paragraphs and are skipped.
// Only run content counts: w:tab under w:pPr/w:tabs is a tab stop, not text.
func bodyParagraphs(documentXML string) ([]string, error) {
	decoder := xml.NewDecoder(strings.NewReader(documentXML))

	var (
		stack      []string
		paragraphs []string
		current    strings.Builder
		inBodyPara bool
		paraDepth  int
		inText     bool
	)

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			name := t.Name.Local
			if name == "p" {
				paraDepth++
				if paraDepth == 1 && len(stack) > 0 && stack[len(stack)-1] == "body" {
					inBodyPara = true
					current.Reset()
				}
			}
			if inBodyPara && paraDepth == 1 && len(stack) > 0 && stack[len(stack)-1] == "r" {
				switch name {
				case "t":
					inText = true
				case "tab":
					current.WriteString("\t")
				case "br", "cr":
					current.WriteString("\n")
				}
			}
			stack = append(stack, name)
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if paraDepth == 1 && inBodyPara {
					paragraphs = append(paragraphs, current.String())
					inBodyPara = false
				}
				paraDepth--
			}
		}
	}
	return paragraphs, nil
}

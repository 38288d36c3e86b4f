package docx

import (
	"archive/zip"
	"bytes"
	"testing"
)

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Annual compliance</w:t></w:r><w:r><w:t xml:space="preserve"> training</w:t></w:r></w:p>
    <w:tbl><w:tr><w:tc><w:p><w:r><w:t>cell text</w:t></w:r></w:p></w:tc></w:tr></w:tbl>
    <w:p><w:r><w:t>Data</w:t><w:tab/><w:t>handling</w:t></w:r></w:p>
    <w:p></w:p>
    <w:p><w:pPr><w:tabs><w:tab w:val="left" w:pos="720"/><w:tab w:val="right" w:pos="9360"/></w:tabs></w:pPr><w:r><w:t>Tab stops</w:t><w:br/><w:t>only</w:t></w:r></w:p>
    <w:p><w:r><w:t>Workplace safety</w:t></w:r></w:p>
  </w:body>
</w:document>`

func buildDocx(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := map[string]string{
		"[Content_Types].xml":          `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"></Types>`,
		"word/document.xml":            body,
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
	}
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestBodyParagraphsJoinsInDocumentOrder(t *testing.T) {
	paragraphs, err := bodyParagraphs(documentXML)
	if err != nil {
		t.Fatalf("bodyParagraphs() error = %v", err)
	}
	want := []string{"Annual compliance training", "Data\thandling", "", "Tab stops\nonly", "Workplace safety"}
	if len(paragraphs) != len(want) {
		t.Fatalf("expected %d paragraphs, got %q", len(want), paragraphs)
	}
	for i := range want {
		if paragraphs[i] != want[i] {
			t.Fatalf("paragraph %d: expected %q, got %q", i, want[i], paragraphs[i])
		}
	}
}

func TestExtractBytesFromPackage(t *testing.T) {
	text, err := NewExtractor().ExtractBytes(buildDocx(t, documentXML))
	if err != nil {
		t.Fatalf("ExtractBytes() error = %v", err)
	}
	want := "Annual compliance training\nData\thandling\n\nTab stops\nonly\nWorkplace safety"
	if text != want {
		t.Fatalf("expected %q, got %q", want, text)
	}
}

func TestExtractBytesRejectsNonZip(t *testing.T) {
	if _, err := NewExtractor().ExtractBytes([]byte("not a docx")); err == nil {
		t.Fatalf("expected error for invalid package")
	}
}

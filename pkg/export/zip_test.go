package export

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	formTypes "github.com/fmb1991/broker-forms-vf/pkg/forms/types"
)

type mapOpener map[string]string

func (m mapOpener) Open(objectKey string) (io.ReadCloser, error) {
	content, ok := m[objectKey]
	if !ok {
		return nil, errors.New("object not found")
	}
	return io.NopCloser(strings.NewReader(content)), nil
}

func readZip(t *testing.T, buf *bytes.Buffer) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("invalid zip produced: %v", err)
	}
	entries := map[string]string{}
	for _, f := range zr.File {
		r, err := f.Open()
		if err != nil {
			t.Fatalf("open entry %s: %v", f.Name, err)
		}
		data, _ := io.ReadAll(r)
		r.Close()
		entries[f.Name] = string(data)
	}
	return entries
}

func TestWriteAttachmentsZip(t *testing.T) {
	files := []formTypes.FileDoc{
		{QuestionCode: "claims_history", ObjectKey: "f/claims_history/1-sinistros.pdf", Filename: "sinistros.pdf"},
		{QuestionCode: "balance_sheet", ObjectKey: "f/balance_sheet/2-balanco.xlsx", Filename: "balanco.xlsx"},
		{QuestionCode: "broken", ObjectKey: "f/broken/3-lost.pdf", Filename: "lost.pdf"},
	}
	store := mapOpener{
		"f/claims_history/1-sinistros.pdf": "pdf-a",
		"f/balance_sheet/2-balanco.xlsx":   "xlsx-b",
	}

	var buf bytes.Buffer
	if err := WriteAttachmentsZip(&buf, files, store); err != nil {
		t.Fatalf("WriteAttachmentsZip: %v", err)
	}

	entries := readZip(t, &buf)
	if entries["claims_history/sinistros.pdf"] != "pdf-a" {
		t.Errorf("entries = %v", entries)
	}
	if entries["balance_sheet/balanco.xlsx"] != "xlsx-b" {
		t.Errorf("entries = %v", entries)
	}
	if _, ok := entries["broken/lost.pdf"]; ok {
		t.Error("unreadable attachment must be skipped, not break the bundle")
	}
	if _, ok := entries["NO_ATTACHMENTS.txt"]; ok {
		t.Error("placeholder must only appear in empty bundles")
	}
}

func TestWriteAttachmentsZipEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteAttachmentsZip(&buf, nil, mapOpener{}); err != nil {
		t.Fatalf("WriteAttachmentsZip: %v", err)
	}

	entries := readZip(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("entries = %v", entries)
	}
	if !strings.Contains(entries["NO_ATTACHMENTS.txt"], "no uploaded attachments") {
		t.Errorf("placeholder content = %q", entries["NO_ATTACHMENTS.txt"])
	}
}

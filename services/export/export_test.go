package exportsvc

import (
	"bytes"
	"strings"
	"testing"
)

var table = Table{
	Title:   "Dizimistas",
	Headers: []string{"Nome", "Igreja", "Dizimo"},
	Rows: [][]string{
		{"Maria da Silva", "Central", "150.00"},
		{"Jose, Filho", "Bairro", "50.00"},
	},
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, table); err != nil {
		t.Fatalf("WriteCSV() failed: %v", err)
	}

	want := "Nome,Igreja,Dizimo\n" +
		"Maria da Silva,Central,150.00\n" +
		"\"Jose, Filho\",Bairro,50.00\n"
	if got := buf.String(); got != want {
		t.Errorf("WriteCSV() = %q, want %q", got, want)
	}
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePDF(&buf, table); err != nil {
		t.Fatalf("WritePDF() failed: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "%PDF") {
		t.Error("WritePDF() did not produce a PDF document")
	}
	if buf.Len() < 500 {
		t.Errorf("WritePDF() produced a suspiciously small document (%d bytes)", buf.Len())
	}
}

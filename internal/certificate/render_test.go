package certificate

import (
	"bytes"
	"testing"
	"time"
)

func TestRenderProducesPDF(t *testing.T) {
	data := Data{
		Institution:      "Each-R Logistics",
		CertificateTitle: "Certificate of Completion",
		RecipientName:    "Ana Cruz",
		TrainingTitle:    "Defensive Driving",
		Venue:            "Main Depot",
		CompletedOn:      time.Date(2026, 8, 10, 16, 0, 0, 0, time.UTC),
		Signatories: []SignatoryBlock{
			{Name: "J. Santos", Role: "Operations Manager"},
			{Name: "M. Ramos", Role: "HR Manager"},
		},
	}
	out, err := Render(data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Errorf("output does not look like a PDF: %q", out[:10])
	}
}

func TestRenderRequiresRecipient(t *testing.T) {
	if _, err := Render(Data{TrainingTitle: "X"}); err == nil {
		t.Error("want error for missing recipient")
	}
}

func TestVisibleBlocks(t *testing.T) {
	blocks := []SignatoryBlock{
		{Name: "J. Santos", Role: "Operations Manager"}, // name only: kept
		{}, // empty: dropped
		{Signature: []byte{1, 2}, SignatureFormat: "PNG"}, // image only: kept
		{Name: "", Role: "Safety Officer"},                // role without name or image: dropped
	}
	got := VisibleBlocks(blocks)
	if len(got) != 2 {
		t.Fatalf("want 2 visible blocks, got %d", len(got))
	}
	if got[0].Name != "J. Santos" || len(got[1].Signature) == 0 {
		t.Errorf("wrong blocks kept: %+v", got)
	}
}

func TestSignatureFormat(t *testing.T) {
	cases := map[string]string{
		"https://cdn/x/sig.png":  "PNG",
		"https://cdn/x/sig.jpg":  "JPG",
		"https://cdn/x/sig.JPEG": "JPG",
		"https://cdn/x/sig":      "PNG",
	}
	for url, want := range cases {
		if got := signatureFormat(url); got != want {
			t.Errorf("%s: got %s want %s", url, got, want)
		}
	}
}

package writer

import (
	"bytes"
	"compress/zlib"
	"image"
	"io"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/georgepadayatti/pdflayout/pdf/content"
	"github.com/georgepadayatti/pdflayout/pdf/images"
	"github.com/georgepadayatti/pdflayout/pdf/layout"
	"github.com/georgepadayatti/pdflayout/pdf/text"
)

func fixedWriter() *PdfFileWriter {
	w := NewPdfFileWriter("")
	w.Compress = false
	w.CreationDate = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	w.FileID = []byte{1, 2, 3, 4}
	return w
}

func TestWriteSinglePage(t *testing.T) {
	w := fixedWriter()
	if w.Version != "1.7" {
		t.Errorf("Version = %q, want 1.7", w.Version)
	}
	if _, err := w.AddPage(layout.A5, []byte("0 g\n"), Resources{Fonts: map[string]string{"F1": text.Courier}}); err != nil {
		t.Fatalf("AddPage() error: %v", err)
	}

	var buf bytes.Buffer
	if err := w.Write(&buf); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, "%PDF-1.7\n") || !strings.HasSuffix(out, "%%EOF\n") {
		t.Errorf("bad header or trailer:\n%s", out)
	}
	for _, want := range []string{
		"1 0 obj\n<< /Type /Pages /Kids [4 0 R] /Count 1 >>\nendobj",
		"2 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Courier /Encoding /WinAnsiEncoding >>",
		"3 0 obj\n<< /Length 4 >>\nstream\n0 g\n\nendstream\nendobj",
		"/MediaBox [0 0 420 595] /Resources << /Font << /F1 2 0 R >> >> /Contents 3 0 R >>",
		"5 0 obj\n<< /Type /Catalog /Pages 1 0 R >>",
		"/Producer (pdflayout) /CreationDate (D:20240102030405+00'00')",
		"xref\n0 7\n0000000000 65535 f \n",
		"/Size 7 /Root 5 0 R /Info 6 0 R /ID [<01020304> <01020304>]",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	var again bytes.Buffer
	if err := w.Write(&again); err != nil {
		t.Fatalf("second Write() error: %v", err)
	}
	if again.String() != out {
		t.Error("writing twice should give the same file")
	}
}

func TestXrefOffsets(t *testing.T) {
	w := fixedWriter()
	for i := 0; i < 2; i++ {
		if _, err := w.AddPage(layout.A4, []byte("0 g\n"), Resources{}); err != nil {
			t.Fatal(err)
		}
	}
	var buf bytes.Buffer
	if err := w.Write(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	entries := regexp.MustCompile(`(\d{10}) 00000 n `).FindAllStringSubmatch(out, -1)
	if len(entries) != 7 {
		t.Fatalf("got %d xref entries, want 7", len(entries))
	}
	for i, e := range entries {
		off, _ := strconv.Atoi(e[1])
		want := strconv.Itoa(i+1) + " 0 obj\n"
		if !strings.HasPrefix(out[off:], want) {
			t.Errorf("entry %d points at %q", i+1, out[off:off+10])
		}
	}

	start := regexp.MustCompile(`startxref\n(\d+)\n`).FindStringSubmatch(out)
	off, _ := strconv.Atoi(start[1])
	if !strings.HasPrefix(out[off:], "xref\n") {
		t.Errorf("startxref points at %q", out[off:off+5])
	}
}

func TestCompressedStream(t *testing.T) {
	w := NewPdfFileWriter("1.4")
	data := []byte(strings.Repeat("72 720 100 50 re\nS\n", 20))
	ref, err := w.AddStream(data)
	if err != nil {
		t.Fatalf("AddStream() error: %v", err)
	}

	body := string(w.objects[ref-1])
	if !strings.Contains(body, "/Filter /FlateDecode") {
		t.Errorf("missing filter: %s", body[:40])
	}
	start := strings.Index(body, "stream\n") + len("stream\n")
	end := strings.LastIndex(body, "\nendstream")
	zr, err := zlib.NewReader(strings.NewReader(body[start:end]))
	if err != nil {
		t.Fatalf("zlib.NewReader() error: %v", err)
	}
	got, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("ReadAll() error: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("decoded stream differs from the original")
	}
}

func TestAddFontOnce(t *testing.T) {
	w := NewPdfFileWriter("")
	a := w.AddFont(text.Helvetica)
	b := w.AddFont(text.Helvetica)
	c := w.AddFont(text.HelveticaBold)
	if a != b || a == c {
		t.Errorf("AddFont refs = %v %v %v", a, b, c)
	}
}

func TestImageXObject(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for i := range src.Pix {
		src.Pix[i] = 128
	}
	img, err := images.FromImage(src)
	if err != nil {
		t.Fatal(err)
	}

	w := fixedWriter()
	if _, err := w.AddPage(layout.A5, []byte("/Im1 Do\n"), Resources{Images: map[string]*images.Image{"Im1": img}}); err != nil {
		t.Fatalf("AddPage() error: %v", err)
	}
	if ref := w.AddImage(img); ref != 3 {
		t.Errorf("AddImage() = %v, want the existing 3 0 R", ref)
	}

	var buf bytes.Buffer
	if err := w.Write(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"2 0 obj\n<< /Length " + strconv.Itoa(len(img.Alpha)) + " /Type /XObject /Subtype /Image /Width 2 /Height 2 /ColorSpace /DeviceGray",
		"/ColorSpace /DeviceRGB /BitsPerComponent 8 /Filter /FlateDecode /SMask 2 0 R >>",
		"/Resources << /XObject << /Im1 3 0 R >> >> /Contents 4 0 R",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteDocument(t *testing.T) {
	doc := layout.NewBlock("doc")
	for i := 0; i < 3; i++ {
		doc.Append(layout.NewLeaf("", text.NewText(strings.Repeat("word ", 400), text.DefaultStyle())))
	}
	sink := content.NewSink()
	p := &layout.Paginator{Areas: layout.NewPageAreas(layout.NewPageLayout(layout.A4)), Sink: sink}
	rep, err := p.Run(doc)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	w := fixedWriter()
	if err := w.WriteDocument(sink); err != nil {
		t.Fatalf("WriteDocument() error: %v", err)
	}
	if w.PageCount() != len(rep.Pages) {
		t.Errorf("PageCount() = %d, want %d", w.PageCount(), len(rep.Pages))
	}

	var buf bytes.Buffer
	if err := w.Write(&buf); err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(buf.String(), "/BaseFont /Helvetica "); n != 1 {
		t.Errorf("font written %d times, want once", n)
	}
	if !strings.Contains(buf.String(), "(word word") {
		t.Error("text missing from content streams")
	}
}

func TestFormatPdfDate(t *testing.T) {
	tz := time.FixedZone("", -(5*3600 + 30*60))
	got := formatPdfDate(time.Date(2023, 12, 31, 23, 59, 0, 0, tz))
	if want := "D:20231231235900-05'30'"; got != want {
		t.Errorf("formatPdfDate() = %q, want %q", got, want)
	}
}

func TestFormatNumber(t *testing.T) {
	tests := map[float64]string{595: "595", 612.5: "612.5", 841.8898: "841.8898", 0: "0"}
	for in, want := range tests {
		if got := formatNumber(in); got != want {
			t.Errorf("formatNumber(%v) = %q, want %q", in, got, want)
		}
	}
}

// Package writer assembles laid out pages into a PDF file.
package writer

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/georgepadayatti/pdflayout/pdf/content"
	"github.com/georgepadayatti/pdflayout/pdf/images"
	"github.com/georgepadayatti/pdflayout/pdf/layout"
)

// Reference is an indirect object number. Generations are always 0.
type Reference int

func (r Reference) String() string {
	return fmt.Sprintf("%d 0 R", int(r))
}

// PdfFileWriter creates new PDF files.
type PdfFileWriter struct {
	Version string
	// Compress FlateDecode-encodes content streams.
	Compress     bool
	Producer     string
	CreationDate time.Time
	FileID       []byte

	objects  [][]byte
	pagesRef Reference
	pages    []Reference
	fonts    map[string]Reference
	images   map[*images.Image]Reference
}

// Resources names the fonts and images a content stream uses.
type Resources struct {
	// Fonts maps resource names to standard font names.
	Fonts map[string]string
	// Images maps resource names to images.
	Images map[string]*images.Image
}

// NewPdfFileWriter creates a new PDF writer.
func NewPdfFileWriter(version string) *PdfFileWriter {
	if version == "" {
		version = "1.7"
	}
	w := &PdfFileWriter{
		Version:      version,
		Compress:     true,
		Producer:     "pdflayout",
		CreationDate: time.Now(),
		fonts:        map[string]Reference{},
		images:       map[*images.Image]Reference{},
	}
	w.pagesRef = w.reserve()
	return w
}

func (w *PdfFileWriter) reserve() Reference {
	w.objects = append(w.objects, nil)
	return Reference(len(w.objects))
}

func (w *PdfFileWriter) set(ref Reference, body []byte) {
	w.objects[ref-1] = body
}

// AddObject adds an object and returns its reference.
func (w *PdfFileWriter) AddObject(body []byte) Reference {
	ref := w.reserve()
	w.set(ref, body)
	return ref
}

// AddStream adds a stream object, compressed when Compress is set.
func (w *PdfFileWriter) AddStream(data []byte) (Reference, error) {
	entries := ""
	if w.Compress {
		var buf bytes.Buffer
		zw := zlib.NewWriter(&buf)
		if _, err := zw.Write(data); err != nil {
			return 0, fmt.Errorf("flate encode failed: %w", err)
		}
		if err := zw.Close(); err != nil {
			return 0, fmt.Errorf("flate encode failed: %w", err)
		}
		data = buf.Bytes()
		entries = "/Filter /FlateDecode"
	}
	return w.addStream(entries, data), nil
}

// addStream adds data, already encoded, with extra dictionary entries.
func (w *PdfFileWriter) addStream(entries string, data []byte) Reference {
	var body bytes.Buffer
	fmt.Fprintf(&body, "<< /Length %d", len(data))
	if entries != "" {
		body.WriteString(" " + entries)
	}
	body.WriteString(" >>\nstream\n")
	body.Write(data)
	body.WriteString("\nendstream")
	return w.AddObject(body.Bytes())
}

// AddImage adds an image XObject, and its soft mask, once.
func (w *PdfFileWriter) AddImage(img *images.Image) Reference {
	if ref, ok := w.images[img]; ok {
		return ref
	}
	entries := fmt.Sprintf("/Type /XObject /Subtype /Image /Width %d /Height %d /ColorSpace /%s /BitsPerComponent %d /Filter /%s",
		img.Width, img.Height, img.ColorSpace, img.BitsPerComponent, img.Filter)
	if img.HasAlpha() {
		mask := w.addStream(fmt.Sprintf("/Type /XObject /Subtype /Image /Width %d /Height %d /ColorSpace /DeviceGray /BitsPerComponent 8 /Filter /FlateDecode",
			img.Width, img.Height), img.Alpha)
		entries += fmt.Sprintf(" /SMask %s", mask)
	}
	ref := w.addStream(entries, img.Data)
	w.images[img] = ref
	return ref
}

// AddFont adds a standard Type1 font once and returns its reference.
func (w *PdfFileWriter) AddFont(baseFont string) Reference {
	if ref, ok := w.fonts[baseFont]; ok {
		return ref
	}
	ref := w.AddObject([]byte(fmt.Sprintf(
		"<< /Type /Font /Subtype /Type1 /BaseFont /%s /Encoding /WinAnsiEncoding >>", baseFont)))
	w.fonts[baseFont] = ref
	return ref
}

// AddPage adds a page of the given size.
func (w *PdfFileWriter) AddPage(size layout.PageSize, contents []byte, res Resources) (Reference, error) {
	var dict strings.Builder
	fmt.Fprintf(&dict, "<< /Type /Page /Parent %s /MediaBox [0 0 %s %s]",
		w.pagesRef, formatNumber(size.Width), formatNumber(size.Height))

	if len(res.Fonts) > 0 || len(res.Images) > 0 {
		dict.WriteString(" /Resources <<")
		if len(res.Fonts) > 0 {
			dict.WriteString(" /Font <<")
			for _, name := range sortedKeys(res.Fonts) {
				fmt.Fprintf(&dict, " /%s %s", name, w.AddFont(res.Fonts[name]))
			}
			dict.WriteString(" >>")
		}
		if len(res.Images) > 0 {
			dict.WriteString(" /XObject <<")
			for _, name := range sortedKeys(res.Images) {
				fmt.Fprintf(&dict, " /%s %s", name, w.AddImage(res.Images[name]))
			}
			dict.WriteString(" >>")
		}
		dict.WriteString(" >>")
	}

	if contents != nil {
		ref, err := w.AddStream(contents)
		if err != nil {
			return 0, err
		}
		fmt.Fprintf(&dict, " /Contents %s", ref)
	}
	dict.WriteString(" >>")

	ref := w.AddObject([]byte(dict.String()))
	w.pages = append(w.pages, ref)
	return ref, nil
}

// PageCount returns the number of pages added.
func (w *PdfFileWriter) PageCount() int {
	return len(w.pages)
}

// Write writes the PDF to the given writer.
func (w *PdfFileWriter) Write(out io.Writer) error {
	kids := make([]string, len(w.pages))
	for i, p := range w.pages {
		kids[i] = p.String()
	}
	w.set(w.pagesRef, []byte(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>",
		strings.Join(kids, " "), len(w.pages))))

	rootRef := w.AddObject([]byte(fmt.Sprintf("<< /Type /Catalog /Pages %s >>", w.pagesRef)))
	infoRef := w.AddObject([]byte(fmt.Sprintf("<< /Producer %s /CreationDate %s >>",
		literal(w.Producer), literal(formatPdfDate(w.CreationDate)))))
	defer func() {
		// Root and info are rebuilt on every Write.
		w.objects = w.objects[:len(w.objects)-2]
	}()

	if w.FileID == nil {
		id := uuid.New()
		w.FileID = id[:]
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%%PDF-%s\n", w.Version)
	buf.Write([]byte{0x25, 0xE2, 0xE3, 0xCF, 0xD3, 0x0A})

	offsets := make([]int, len(w.objects))
	for i, body := range w.objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n", i+1)
		buf.Write(body)
		buf.WriteString("\nendobj\n")
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(w.objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}

	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %s /Info %s /ID [<%x> <%x>] >>\n",
		len(w.objects)+1, rootRef, infoRef, w.FileID, w.FileID)
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", xrefOffset)

	_, err := out.Write(buf.Bytes())
	return err
}

// WriteDocument adds every page of sink to w.
func (w *PdfFileWriter) WriteDocument(sink *content.Sink) error {
	res := Resources{Fonts: sink.Fonts(), Images: sink.Images()}
	for _, page := range sink.Pages() {
		if _, err := w.AddPage(page.Area.Size, page.Render(), res); err != nil {
			return fmt.Errorf("page %d: %w", page.Area.Index+1, err)
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var literalEscaper = strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`)

func literal(s string) string {
	return "(" + literalEscaper.Replace(s) + ")"
}

func formatNumber(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.4f", v), "0"), ".")
}

// formatPdfDate formats a time as a PDF date string.
func formatPdfDate(t time.Time) string {
	_, offset := t.Zone()
	offsetHours := offset / 3600
	offsetMinutes := (offset % 3600) / 60

	sign := "+"
	if offset < 0 {
		sign = "-"
		offsetHours = -offsetHours
		offsetMinutes = -offsetMinutes
	}

	return fmt.Sprintf("D:%04d%02d%02d%02d%02d%02d%s%02d'%02d'",
		t.Year(), t.Month(), t.Day(),
		t.Hour(), t.Minute(), t.Second(),
		sign, offsetHours, offsetMinutes)
}

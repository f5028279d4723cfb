package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgepadayatti/pdflayout/config"
)

// execute runs the command tree quietly and returns its standard output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path
}

const twoPages = `
root:
  id: doc
  children:
    - id: a
      kind: box
      size: {width: 100, height: 400}
    - id: b
      kind: box
      size: {width: 100, height: 400}
`

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "pdflayout version dev\nBuild time: unknown\n", out)

	out, err = execute(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)
}

func TestColumnsCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"count", []string{"451pt", "--count", "3"}, "columns: 3\nwidth: 142.33pt\n"},
		{"column width", []string{"6in", "--column-width", "2in", "--gap", "0.25in"}, "columns: 2\nwidth: 207.00pt\n"},
		{"auto", []string{"300"}, "columns: 1\nwidth: 300.00pt\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, append([]string{"columns"}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestColumnsCommandErrors(t *testing.T) {
	_, err := execute(t, "columns", "50%")
	assert.ErrorIs(t, err, config.ErrInvalidLength)

	_, err = execute(t, "columns", "300", "--count", "-1")
	assert.Error(t, err)

	_, err = execute(t, "columns", "300", "--gap", "wide")
	assert.ErrorIs(t, err, config.ErrInvalidLength)
}

func TestRenderJSON(t *testing.T) {
	doc := writeFile(t, "doc.yaml", twoPages)

	out, err := execute(t, "render", "--format", "json", doc)
	require.NoError(t, err)

	var got PlacementOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Pages, 2)
	assert.Empty(t, got.Diagnostics)

	ids := func(p *PagePlacements) []string {
		var s []string
		for _, b := range p.Boxes {
			s = append(s, b.ID)
		}
		return s
	}
	assert.Equal(t, []string{"doc", "a"}, ids(got.Pages[0]))
	assert.Equal(t, []string{"doc", "b"}, ids(got.Pages[1]))
	assert.Equal(t, 2, got.Pages[1].Number)
	assert.InDelta(t, 595, got.Pages[0].Width, 1e-9)

	a := got.Pages[0].Boxes[1]
	assert.Equal(t, "leaf", a.Kind)
	assert.InDelta(t, 72, a.X, 1e-9)
	assert.InDelta(t, 72, a.Y, 1e-9)
	assert.InDelta(t, 400, a.Height, 1e-9)
}

func TestRenderJSONToDirectory(t *testing.T) {
	doc := writeFile(t, "report.yaml", twoPages)
	dir := filepath.Join(t.TempDir(), "out")

	out, err := execute(t, "render", "-f", "json", "-o", dir, doc)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "report.json")+"\n", out)
	assert.FileExists(t, filepath.Join(dir, "report.json"))
}

func TestRenderContent(t *testing.T) {
	doc := writeFile(t, "doc.yaml", "root:\n  text: hello\n  font: Courier\n  font-size: 10\n")

	out, err := execute(t, "render", doc)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "% page 1\n"), out)
	assert.Contains(t, out, "/F1 10 Tf")
	assert.Contains(t, out, "(hello) Tj")
	assert.NotContains(t, out, "% page 2")

	dir := t.TempDir()
	out, err = execute(t, "render", "--out", dir, doc)
	require.NoError(t, err)
	name := filepath.Join(dir, "doc-1.content")
	assert.Equal(t, name+"\n", out)
	data, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Contains(t, string(data), "(hello) Tj")
}

func TestRenderPNG(t *testing.T) {
	doc := writeFile(t, "doc.yaml", twoPages)
	dir := t.TempDir()

	out, err := execute(t, "render", "--format", "png", "--scale", "0.5", "--out", dir, doc)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "\n"))
	assert.FileExists(t, filepath.Join(dir, "doc-1.png"))
	assert.FileExists(t, filepath.Join(dir, "doc-2.png"))

	_, err = execute(t, "render", "--format", "png", doc)
	assert.ErrorContains(t, err, "--out")
}

func TestRenderPDF(t *testing.T) {
	doc := writeFile(t, "doc.yaml", "root:\n  text: hello\n  font: Helvetica-Bold\n")

	out, err := execute(t, "render", "--format", "pdf", "--compress=false", doc)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "%PDF-1.7\n"))
	assert.Contains(t, out, "/Count 1")
	assert.Contains(t, out, "/BaseFont /Helvetica-Bold")
	assert.Contains(t, out, "(hello) Tj")

	dir := t.TempDir()
	out, err = execute(t, "render", "-f", "pdf", "-o", dir, doc)
	require.NoError(t, err)
	name := filepath.Join(dir, "doc.pdf")
	assert.Equal(t, name+"\n", out)
	data, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Contains(t, string(data), "/Filter /FlateDecode")
}

func TestRenderErrors(t *testing.T) {
	doc := writeFile(t, "doc.yaml", twoPages)

	_, err := execute(t, "render", "--format", "xml", doc)
	assert.ErrorContains(t, err, "unknown format")

	_, err = execute(t, "render", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = execute(t, "render")
	assert.Error(t, err)

	settings := writeFile(t, "settings.yaml", "max_pages: 1\n")
	_, err = execute(t, "--config", settings, "render", doc)
	assert.ErrorContains(t, err, "too many pages")
}

func TestRenderStrict(t *testing.T) {
	doc := writeFile(t, "doc.yaml", "root:\n  id: huge\n  kind: box\n  size: {width: 100, height: 2000}\n")

	_, err := execute(t, "render", "--format", "json", doc)
	require.NoError(t, err)

	_, err = execute(t, "render", "--strict", doc)
	assert.ErrorContains(t, err, "huge")
}

func TestInvalidSettings(t *testing.T) {
	settings := writeFile(t, "settings.yaml", "logging:\n  format: xml\n")
	_, err := execute(t, "--config", settings, "version")
	assert.ErrorIs(t, err, config.ErrInvalidValue)

	root := NewRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"--log-level", "loud", "version"})
	assert.ErrorIs(t, root.Execute(), config.ErrInvalidValue)
}

func TestRunExitsOnError(t *testing.T) {
	var code int
	osExit = func(c int) { code = c }
	t.Cleanup(func() { osExit = os.Exit })

	Run([]string{"--log-level", "error", "columns", "50%"})
	assert.Equal(t, 1, code)

	code = 0
	Run([]string{"--log-level", "error", "columns", "100"})
	assert.Equal(t, 0, code)
}

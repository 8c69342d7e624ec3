package api

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/dgallion1/transcriptr/internal/transcript"
)

// maxPreviewRows caps the table on the success page.
const maxPreviewRows = 100

var pageTemplates = template.Must(template.New("layout").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2rem auto; max-width: 60rem; padding: 0 1rem; }
table { border-collapse: collapse; font-size: 0.9rem; }
th, td { border: 1px solid #ccc; padding: 0.25rem 0.5rem; text-align: left; }
.error { color: #b00020; }
</style>
</head>
<body>
<main>
{{if eq .Page "index"}}{{template "index" .}}{{else}}{{.Body}}{{end}}
</main>
</body>
</html>
{{define "index"}}
<h1>Transcript to spreadsheet</h1>
<p>Upload a University of Tasmania academic transcript to get one row per unit.</p>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
<form method="post" action="/" enctype="multipart/form-data">
<p><input type="file" name="file" accept="{{.Accept}}"></p>
<p>
<label>Format
<select name="format">
{{range .Formats}}<option value="{{.}}"{{if eq . $.Format}} selected{{end}}>{{.}}</option>
{{end}}</select>
</label>
</p>
<p><button type="submit">Upload</button></p>
</form>
{{end}}`))

type pageData struct {
	Page    string
	Title   string
	Error   string
	Accept  string
	Format  string
	Formats []string
	Body    template.HTML
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

func renderPage(w http.ResponseWriter, code int, data pageData) {
	var buf bytes.Buffer
	if err := pageTemplates.Execute(&buf, data); err != nil {
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	w.Write(buf.Bytes())
}

// renderMarkdown converts Markdown to HTML. Raw HTML in the source is
// dropped by the renderer.
func renderMarkdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// successMarkdown describes a finished export and previews its rows.
func successMarkdown(outputName string, records []transcript.UnitRecord) string {
	var b strings.Builder
	b.WriteString("# Extraction complete\n\n")

	switch len(records) {
	case 0:
		b.WriteString("No unit records were found in this transcript.\n\n")
	case 1:
		b.WriteString("Extracted **1** unit record.\n\n")
	default:
		fmt.Fprintf(&b, "Extracted **%d** unit records.\n\n", len(records))
	}

	fmt.Fprintf(&b, "[Download %s](<%s>)\n\n", mdEscape(outputName), downloadURL(outputName))

	if len(records) == 0 {
		return b.String()
	}

	preview := records
	if len(preview) > maxPreviewRows {
		preview = preview[:maxPreviewRows]
		fmt.Fprintf(&b, "Showing the first %d of %d records.\n\n", maxPreviewRows, len(records))
	}

	header := transcript.Header()
	writeRow(&b, header)
	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = "---"
	}
	b.WriteString("| " + strings.Join(sep, " | ") + " |\n")
	for _, r := range preview {
		writeRow(&b, r.Values())
	}
	return b.String()
}

func writeRow(b *strings.Builder, cells []string) {
	escaped := make([]string, len(cells))
	for i, c := range cells {
		escaped[i] = mdEscape(c)
	}
	b.WriteString("| " + strings.Join(escaped, " | ") + " |\n")
}

// mdEscape backslash-escapes ASCII punctuation so transcript text renders
// literally.
func mdEscape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x80 && strings.ContainsRune("!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~", r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func downloadURL(name string) string {
	return "/uploads/" + url.PathEscape(name)
}

func successURL(name string) string {
	return "/extraction_complete/" + url.PathEscape(name)
}

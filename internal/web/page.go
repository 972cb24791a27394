package web

import (
	"fmt"
	"net/http"

	"github.com/go-kit/log/level"

	"github.com/KaramelBytes/sheetsift-cli/internal/session"
)

type filterField struct {
	Index int
	session.FilterColumn
}

type cell struct {
	Text string
	Href string
}

type pageData struct {
	Title      string
	Loaded     string
	Caption    string
	Window     string
	Global     string
	Filters    []filterField
	Header     []string
	Rows       [][]cell
	Warnings   []string
	Filtered   bool
	ExportName string
}

func (s *Server) pageData(sess *session.Session, v *session.View) pageData {
	policy := s.shared.Policy()
	if s.opt.LinkLabel != "" {
		policy.Label = s.opt.LinkLabel
	}
	d := pageData{
		Title:      s.opt.Title,
		Loaded:     s.shared.Source().Caption(),
		Caption:    v.Caption(),
		Global:     sess.GlobalInput(),
		Header:     v.Header(),
		Filtered:   v.Filtered(),
		ExportName: s.opt.ExportFilename,
	}
	for i, fc := range sess.FilterColumns() {
		d.Filters = append(d.Filters, filterField{Index: i, FilterColumn: fc})
	}
	for _, w := range v.Warnings {
		d.Warnings = append(d.Warnings, w.Error())
	}

	n := v.Len()
	if s.opt.MaxRows > 0 && n > s.opt.MaxRows {
		n = s.opt.MaxRows
		d.Window = fmt.Sprintf("displaying the first %d rows; export for the full view", n)
	}
	links := make([]bool, len(v.Columns))
	for c, col := range v.Columns {
		links[c] = v.IsLink(col.Name)
	}
	d.Rows = make([][]cell, n)
	for i := 0; i < n; i++ {
		row := make([]cell, len(v.Columns))
		for c := range v.Columns {
			val := v.Cell(i, c)
			if links[c] {
				if label := policy.Render(val); label != "" {
					row[c] = cell{Text: label, Href: val}
				}
				continue
			}
			row[c] = cell{Text: val}
		}
		d.Rows[i] = row
	}
	return d
}

func (s *Server) renderPage(w http.ResponseWriter, sess *session.Session, v *session.View) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := s.tmpl.Execute(w, s.pageData(sess, v)); err != nil {
		level.Error(s.logger).Log("msg", "render page", "session", sess.ID(), "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

const pageTemplate = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
:root {
  color-scheme: dark;
  --bg: #070b14;
  --panel: rgba(14, 21, 36, 0.88);
  --panel-border: rgba(148, 163, 184, 0.18);
  --text: #e6edf8;
  --muted: #9fb0ca;
  --accent: #66d9ff;
  --warn: #fbbf24;
}
* { box-sizing: border-box; }
body {
  margin: 0;
  font: 14px/1.45 "JetBrains Mono", "IBM Plex Mono", ui-monospace, SFMono-Regular, Menlo, monospace;
  color: var(--text);
  background: linear-gradient(180deg, var(--bg) 0%, #05070d 100%);
}
header {
  position: sticky;
  top: 0;
  padding: 16px 22px;
  background: rgba(7,11,20,.9);
  border-bottom: 1px solid var(--panel-border);
}
h1 { margin: 0; font-size: 18px; }
.muted { color: var(--muted); }
main { display: grid; grid-template-columns: 300px 1fr; gap: 18px; padding: 18px 22px; }
aside, section {
  background: var(--panel);
  border: 1px solid var(--panel-border);
  border-radius: 12px;
  padding: 14px;
}
label { display: block; margin: 10px 0 4px; color: var(--muted); }
input[type=text], select {
  width: 100%;
  padding: 6px 8px;
  color: var(--text);
  background: #0b1320;
  border: 1px solid var(--panel-border);
  border-radius: 6px;
}
select[multiple] { min-height: 90px; }
.actions { display: flex; gap: 8px; margin-top: 14px; }
button, .button {
  padding: 6px 12px;
  color: var(--bg);
  background: var(--accent);
  border: 0;
  border-radius: 6px;
  cursor: pointer;
  text-decoration: none;
}
.warnings { color: var(--warn); margin: 0 0 10px; padding-left: 18px; }
table { width: 100%; border-collapse: collapse; }
th, td { padding: 5px 8px; border-bottom: 1px solid var(--panel-border); text-align: left; }
th { position: sticky; top: 64px; background: #0b1320; }
a { color: var(--accent); }
</style>
</head>
<body>
<header>
  <h1>{{.Title}}</h1>
  <div class="muted">{{.Loaded}}</div>
</header>
<main>
<aside>
  <form method="post" action="/filter">
    <label for="q">Search all</label>
    <input type="text" id="q" name="q" value="{{.Global}}" placeholder="search every text column">
    {{range .Filters}}
    <label for="c{{.Index}}">{{.Name}}</label>
    {{if .Offered}}
    <select id="s{{.Index}}" name="s{{.Index}}" multiple>
      {{$sel := .Selected}}{{range .Options}}<option value="{{.}}"{{if selected $sel .}} selected{{end}}>{{.}}</option>{{end}}
    </select>
    {{end}}
    <input type="text" id="c{{.Index}}" name="c{{.Index}}" value="{{.Input}}" placeholder="keyword, a,b or =exact">
    {{end}}
    <div class="actions">
      <button type="submit">Apply</button>
    </div>
  </form>
  <form method="post" action="/clear">
    <div class="actions">
      <button type="submit"{{if not .Filtered}} disabled{{end}}>Clear all filters</button>
    </div>
  </form>
</aside>
<section>
  {{if .Warnings}}<ul class="warnings">{{range .Warnings}}<li>⚠ {{.}}</li>{{end}}</ul>{{end}}
  <p><strong id="caption">{{.Caption}}</strong>{{if .Window}} <span class="muted">({{.Window}})</span>{{end}}
    <a class="button" href="/export.csv" download="{{.ExportName}}">Download CSV</a></p>
  <table>
    <thead><tr>{{range .Header}}<th>{{.}}</th>{{end}}</tr></thead>
    <tbody>
    {{range .Rows}}<tr>{{range .}}<td>{{if .Href}}<a href="{{.Href}}" target="_blank" rel="noopener">{{.Text}}</a>{{else}}{{.Text}}{{end}}</td>{{end}}</tr>
    {{end}}
    </tbody>
  </table>
</section>
</main>
</body>
</html>
`

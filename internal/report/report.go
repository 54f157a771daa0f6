package report

import (
	"encoding/json"
	"fmt"
	htmltemplate "html/template"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/FranksOps/namevet/internal/convergence"
	"github.com/FranksOps/namevet/internal/rdap"
	"github.com/FranksOps/namevet/internal/validator"
)

// Row is one candidate as presented to a reader.
type Row struct {
	Name        string   `json:"name"`
	Label       string   `json:"slug"`
	Score       int      `json:"score"`
	Bucket      string   `json:"bucket"`
	Primary     string   `json:"primary"`
	FreeDomains []string `json:"free_domains"`
	Similar     []string `json:"similar"`
}

// Summary is a rendered view of a convergence run.
type Summary struct {
	RunID       string        `json:"run_id"`
	Outcome     string        `json:"outcome"`
	Headline    string        `json:"headline"`
	Rounds      int           `json:"rounds"`
	Total       int           `json:"total"`
	Free        int           `json:"free"`
	FreeSimilar int           `json:"free_similar"`
	Discarded   int           `json:"discarded"`
	Rows        []Row         `json:"rows"`
	StartTime   time.Time     `json:"start_time"`
	EndTime     time.Time     `json:"end_time"`
	Duration    time.Duration `json:"duration"`
}

// Summarize builds a Summary from a run report.
func Summarize(rep *convergence.Report) Summary {
	s := Summary{Rows: []Row{}}
	if rep == nil {
		return s
	}

	s.RunID = rep.ID.String()
	s.Outcome = string(rep.Outcome)
	s.Rounds = rep.Rounds
	s.Total = rep.Total
	s.Free = len(rep.Free)
	s.FreeSimilar = len(rep.FreeSimilar)
	s.Discarded = len(rep.Discarded)
	s.StartTime = rep.StartedAt
	s.EndTime = rep.FinishedAt
	s.Duration = rep.FinishedAt.Sub(rep.StartedAt)

	for _, c := range rep.Candidates {
		s.Rows = append(s.Rows, RowOf(c))
	}
	s.Headline = headline(s)
	return s
}

// RowOf flattens one candidate.
func RowOf(c validator.Candidate) Row {
	r := Row{
		Name:        c.Name,
		Label:       c.Label,
		Score:       c.Score,
		Bucket:      string(c.Bucket()),
		Primary:     primaryText(c),
		FreeDomains: c.FreeDomains(),
		Similar:     make([]string, 0, len(c.SimilarBusinesses)),
	}
	for _, b := range c.SimilarBusinesses {
		r.Similar = append(r.Similar, b.Name)
	}
	return r
}

func primaryText(c validator.Candidate) string {
	switch {
	case c.Skipped:
		return "skipped"
	case c.Primary == rdap.Available:
		return "free"
	case c.Primary == rdap.Taken:
		return "registered"
	default:
		return "unable to verify"
	}
}

func headline(s Summary) string {
	switch {
	case s.Free > 0:
		return fmt.Sprintf("Analysed %d names. %d have a free primary domain and no similar business.", s.Total, s.Free)
	case s.FreeSimilar > 0:
		return fmt.Sprintf("Analysed %d names. %d have a free primary domain, but similar businesses exist.", s.Total, s.FreeSimilar)
	default:
		return fmt.Sprintf("Analysed %d names but none has a free primary domain. Generate more or enter a name manually.", s.Total)
	}
}

var funcs = map[string]any{
	"join": strings.Join,
}

// WriteJSON writes the summary to the provided writer in JSON format.
func WriteJSON(w io.Writer, summary Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	return nil
}

// WriteText writes a human-readable text summary to the provided writer.
func WriteText(w io.Writer, summary Summary) error {
	const textTmpl = `namevet report {{.RunID}}
------------------
{{.Headline}}
Outcome:       {{.Outcome}} after {{.Rounds}} round(s)
Free:          {{.Free}}
Free, similar: {{.FreeSimilar}}
Discarded:     {{.Discarded}}

{{- range .Rows}}
  {{printf "%4d" .Score}}  {{printf "%-24s" .Name}} {{.Primary}}
{{- if .FreeDomains}}  free: {{join .FreeDomains ", "}}{{end}}
{{- if .Similar}}  similar: {{join .Similar ", "}}{{end}}
{{- else}}
  No candidates
{{- end}}
`

	t, err := template.New("textReport").Funcs(funcs).Parse(textTmpl)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}

	if err := t.Execute(w, summary); err != nil {
		return fmt.Errorf("report: %w", err)
	}

	return nil
}

// WriteHTML writes a basic HTML report to the provided writer.
func WriteHTML(w io.Writer, summary Summary) error {
	const htmlTmpl = `<!DOCTYPE html>
<html>
<head>
<title>namevet report</title>
<style>
  body { font-family: sans-serif; margin: 40px; color: #333; }
  h1 { border-bottom: 2px solid #ccc; padding-bottom: 10px; }
  .stat-card { display: inline-block; padding: 20px; margin: 10px 10px 10px 0; background: #f4f4f4; border-radius: 5px; min-width: 150px; }
  .stat-val { font-size: 24px; font-weight: bold; }
  table { border-collapse: collapse; margin-top: 10px; }
  th, td { padding: 8px 12px; border: 1px solid #ccc; text-align: left; }
  th { background: #eaeaea; }
  .free { color: green; }
  .free_similar { color: #b8860b; }
  .discarded { color: #999; }
</style>
</head>
<body>
  <h1>namevet report</h1>
  <p>{{.Headline}}</p>
  <p><strong>Run:</strong> {{.RunID}} ({{.Rounds}} round(s), {{.Duration}})</p>

  <div class="stat-card">
    <div>Free</div>
    <div class="stat-val free">{{.Free}}</div>
  </div>
  <div class="stat-card">
    <div>Free, similar business</div>
    <div class="stat-val free_similar">{{.FreeSimilar}}</div>
  </div>
  <div class="stat-card">
    <div>Discarded</div>
    <div class="stat-val discarded">{{.Discarded}}</div>
  </div>

  <h3>Candidates</h3>
  <table>
    <tr><th>Score</th><th>Name</th><th>Primary domain</th><th>Free domains</th><th>Similar businesses</th></tr>
    {{- range .Rows}}
    <tr class="{{.Bucket}}"><td>{{.Score}}</td><td>{{.Name}}</td><td>{{.Primary}}</td><td>{{join .FreeDomains ", "}}</td><td>{{join .Similar ", "}}</td></tr>
    {{- else}}
    <tr><td colspan="5">None</td></tr>
    {{- end}}
  </table>
</body>
</html>
`
	t, err := htmltemplate.New("htmlReport").Funcs(funcs).Parse(htmlTmpl)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}

	if err := t.Execute(w, summary); err != nil {
		return fmt.Errorf("report: %w", err)
	}

	return nil
}

package web

import (
	"fmt"
	"html/template"
	"net/http"
	"time"

	"page-summarizer/internal/domain/model"
	"page-summarizer/internal/infra/i18n"
	"page-summarizer/internal/infra/page"
)

const layoutTemplates = `
{{define "head"}}<!doctype html>
<html lang="{{lang}}">
<head>
<meta charset="utf-8" />
<meta name="viewport" content="width=device-width,initial-scale=1" />
<title>{{.}} - {{t "app_title"}}</title>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<style>
body{font-family:system-ui,Arial,sans-serif;margin:2rem;max-width:860px}
.error{color:#b00020}
.stats td{padding:2px 12px 2px 0}
pre{white-space:pre-wrap;background:#f6f6f6;padding:12px;border-radius:8px}
.muted{font-size:12px;color:#666}
</style>
</head>
<body>
<h1>{{.}}</h1>
{{end}}

{{define "foot"}}</body>
</html>{{end}}

{{define "credentials"}}<form method="post" action="{{.Action}}">
  <input name="username" placeholder="{{t "field_username"}}" required />
  <input name="password" type="password" placeholder="{{t "field_password"}}" required />
  <button>{{.Button}}</button>
</form>
<a href="/">{{t "link_home"}}</a>{{end}}
`

const pageTemplates = `
{{define "home"}}{{template "head" (t "home_title")}}
{{if .User}}<p>{{t "hello_user" .User}}</p>
<a href="/logout">{{t "link_logout"}}</a>
<h2>{{t "process_title"}}</h2>
<form method="post" action="/process">
  <p><input name="resource-locator" type="url" placeholder="{{t "field_url"}}" size="60" required /></p>
  <p><label>{{t "field_format"}}
    <select name="output-format">
      <option value="markdown">{{t "format_markdown"}}</option>
      <option value="html">{{t "format_html"}}</option>
    </select></label></p>
  <p><input name="custom-instruction" placeholder="{{t "field_custom"}}" size="60" /></p>
  <button>{{t "button_process"}}</button>
</form>
{{else}}<p>{{t "hello_world"}}</p>
<a href="/login">{{t "link_login"}}</a> | <a href="/register">{{t "link_register"}}</a>
{{end}}{{template "foot"}}{{end}}

{{define "register"}}{{template "head" (t "register_title")}}
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
{{template "credentials" (form "/register" (t "button_register"))}}
{{template "foot"}}{{end}}

{{define "login"}}{{template "head" (t "login_title")}}
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
{{template "credentials" (form "/login" (t "button_login"))}}
{{template "foot"}}{{end}}

{{define "error"}}{{template "head" (t "home_title")}}
<p class="error">{{.Message}}</p>
<a href="/">{{t "link_home"}}</a>
{{template "foot"}}{{end}}

{{define "process"}}{{template "head" (or .Title .URL)}}
<p class="muted">{{.URL}}</p>
<h2>{{t "stats_heading"}}</h2>
<table class="stats">
<tr><td>{{t "stats_chars"}}</td><td>{{.Stats.Chars}}</td></tr>
<tr><td>{{t "stats_words"}}</td><td>{{.Stats.Words}}</td></tr>
<tr><td>{{t "stats_tokens_est"}}</td><td>{{.Stats.EstimatedTokens}}</td></tr>
{{if .Stats.Tokens}}<tr><td>{{t "stats_tokens"}}</td><td>{{.Stats.Tokens}}</td></tr>{{end}}
<tr><td>{{t "stats_links"}}</td><td>{{.Stats.Links}}</td></tr>
<tr><td>{{t "stats_link_density"}}</td><td>{{printf "%.2f" .Stats.LinkDensity}}</td></tr>
</table>
<h2>{{t "summary_heading"}}</h2>
{{template "job_pending" .JobID}}
<h2>{{t "content_heading"}} ({{.Format}})</h2>
<pre>{{.Body}}</pre>
<a href="/">{{t "link_home"}}</a>
{{template "foot"}}{{end}}
`

const jobTemplates = `
{{define "job_pending"}}<div id="summary" hx-get="/job-status/{{.}}" hx-trigger="load delay:1s" hx-swap="outerHTML">{{t "summary_pending"}}</div>{{end}}

{{define "job_complete"}}<div id="summary">
<p>{{.Summary}}</p>
{{if .Custom}}<h3>{{t "summary_custom_heading"}}</h3>
<p>{{.Custom}}</p>{{end}}
{{if .CustomError}}<p class="error">{{t "summary_custom_failed" .CustomError}}</p>{{end}}
<p class="muted">{{t "summary_elapsed" .Model (dur .Elapsed)}}</p>
</div>{{end}}

{{define "job_error"}}<div id="summary"><p class="error">{{t "summary_failed" .}}</p></div>{{end}}

{{define "job_expired"}}<div id="summary"><p>{{t "summary_expired"}}</p></div>{{end}}
`

type credentialsForm struct {
	Action string
	Button string
}

type homeData struct{ User string }

type authPageData struct{ Error string }

type errorData struct{ Message string }

type processData struct {
	URL    string
	Title  string
	Format page.Format
	Stats  page.Stats
	Body   string
	JobID  string
}

// parseTemplates builds the page set with tr bound as the "t" function.
func parseTemplates(tr *i18n.Translator) *template.Template {
	funcs := template.FuncMap{
		"t":    tr.T,
		"lang": tr.Lang,
		"form": func(action, button string) credentialsForm { return credentialsForm{Action: action, Button: button} },
		"dur":  func(d time.Duration) string { return d.Round(time.Millisecond).String() },
	}
	t := template.New("pages").Funcs(funcs)
	template.Must(t.Parse(layoutTemplates))
	template.Must(t.Parse(pageTemplates))
	template.Must(t.Parse(jobTemplates))
	return t
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, code int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		l := s.reqLog(r)
		l.Error().Err(err).Str("template", name).Msg("render")
	}
}

// renderError shows the generic error page; msg "" means err_internal.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	if msg == "" {
		msg = s.tr.T("err_internal")
	}
	s.render(w, r, code, "error", errorData{Message: msg})
}

func (s *Server) renderJob(w http.ResponseWriter, r *http.Request, name string, data any) {
	s.render(w, r, http.StatusOK, name, data)
}

func jobResult(j *model.SummaryJob) model.SummaryResult {
	if j == nil || j.Result == nil {
		return model.SummaryResult{}
	}
	return *j.Result
}

func describeFetchErr(status int) string {
	if status > 0 {
		return fmt.Sprintf("upstream returned HTTP %d", status)
	}
	return "network error"
}

package health

import (
	"bytes"
	"html/template"
)

var dashboardTmpl = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>{{.Title}} · API Status</title>
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <meta http-equiv="refresh" content="30">
  <style>
    :root { --teal: #007473; --dark: #173E35; --bg: #F8F9FA; --muted: #64748b; }
    body { background: var(--bg); color: var(--dark); font-family: sans-serif; margin: 0; display: flex; justify-content: center; }
    .container { width: 100%; max-width: 1000px; padding: 40px 20px; }
    h1 { font-size: 44px; font-weight: 900; letter-spacing: -2px; margin: 0 0 24px; }
    h1.issue { color: #B91C1C; }
    .grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(260px, 1fr)); gap: 20px; }
    .card { background: white; border-radius: 20px; padding: 28px; box-shadow: 0 20px 60px -20px rgba(0,116,115,0.15); }
    .label { text-transform: uppercase; font-size: 11px; font-weight: 900; letter-spacing: 2px; color: #94a3b8; margin-bottom: 16px; }
    .row { display: flex; justify-content: space-between; padding: 6px 0; border-bottom: 1px solid rgba(0,0,0,0.04); font-weight: 700; font-size: 14px; }
    .ok { color: var(--teal); } .err { color: #EF4444; }
    footer { margin-top: 24px; font-family: monospace; color: var(--muted); }
  </style>
</head>
<body>
  <div class="container">
    {{if eq .Health.Status "ok"}}<h1>All Systems Operational</h1>{{else}}<h1 class="issue">System Issues Detected</h1>{{end}}
    <div class="grid">
      <div class="card">
        <div class="label">Traffic</div>
        <div class="row"><span>Requests</span><span>{{.Health.Traffic.TotalRequests}}</span></div>
        <div class="row"><span>Successful</span><span class="ok">{{.Health.Traffic.SuccessCount}}</span></div>
        <div class="row"><span>Failed</span><span class="err">{{.Health.Traffic.FailedCount}}</span></div>
        <div class="row"><span>Success rate</span><span>{{.Health.Traffic.SuccessRate}}%</span></div>
        <div class="row"><span>Avg latency</span><span>{{.Health.Traffic.AvgResponseTime}} ms</span></div>
      </div>
      <div class="card">
        <div class="label">Dependencies</div>
        {{range $name, $dep := .Health.Dependencies}}
        <div class="row"><span>{{$name}}</span><span class="{{if eq $dep.Status "connected"}}ok{{else}}err{{end}}">{{$dep.Status}}</span></div>
        {{end}}
        <div class="row"><span>Uptime</span><span>{{.Health.Runtime.UptimeSeconds}} s</span></div>
        <div class="row"><span>Heap</span><span>{{.Health.Runtime.Memory.HeapUsed}} MB</span></div>
      </div>
      {{with .Health.Funds}}
      <div class="card">
        <div class="label">Funds</div>
        <div class="row"><span>Open projects</span><span>{{.OpenProjects}}</span></div>
        <div class="row"><span>Still needed</span><span>{{.ProjectsNeed}}</span></div>
        <div class="row"><span>Open donations</span><span>{{.OpenDonations}}</span></div>
        <div class="row"><span>Idle money</span><span>{{.DonationsIdle}}</span></div>
        <div class="row"><span>Closed projects</span><span>{{.ClosedProjects}}</span></div>
      </div>
      {{end}}
    </div>
    <footer>{{.Health.Runtime.Platform}} · {{.Health.Runtime.GoVersion}} · <a href="/health/errors">error log</a></footer>
  </div>
</body>
</html>`))

// RenderDashboardHTML renders the status page for GET /.
func RenderDashboardHTML(title string, health CollectResult) (string, error) {
	var buf bytes.Buffer
	err := dashboardTmpl.Execute(&buf, struct {
		Title  string
		Health CollectResult
	}{title, health})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

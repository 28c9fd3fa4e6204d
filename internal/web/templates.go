package web

// ── Page layout ───────────────────────────────────────────────────────────────

const tmplLayout = `
{{define "page"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>{{.Title}}</title>
<script src="https://cdn.plot.ly/plotly-2.35.2.min.js"></script>
<style>
*{box-sizing:border-box}
body{margin:0;font-family:Inter,Helvetica,sans-serif;background:#f4f6f7;color:#2c3e50;display:flex;min-height:100vh}
aside{width:240px;background:#2c3e50;color:#ecf0f1;padding:20px;flex-shrink:0}
aside h2{margin:0 0 12px;font-size:18px}
aside form{margin:0}
aside button{display:block;width:100%;text-align:left;background:none;border:0;color:#bdc3c7;padding:6px 8px;border-radius:4px;cursor:pointer;font-size:14px}
aside button.active{background:#c0392b;color:#fff;font-weight:600}
aside button:hover{background:#34495e}
.progress{height:6px;background:#34495e;border-radius:3px;margin:16px 0 6px}
.progress div{height:6px;background:#c0392b;border-radius:3px}
.caption{font-size:11px;color:#95a5a6}
main{flex:1;padding:32px}
.slide-card{background:#fff;border-radius:16px;padding:32px;box-shadow:0 10px 30px rgba(0,0,0,.08);animation:fadeInUp .6s ease-out}
@keyframes fadeInUp{from{opacity:0;transform:translate3d(0,40px,0)}to{opacity:1;transform:none}}
h1.hero-title{font-size:3rem;font-weight:800;line-height:1.1}
h2.section-header{border-bottom:3px solid #c0392b;padding-bottom:8px}
.cols{display:flex;gap:24px;flex-wrap:wrap}
.cols>div{flex:1;min-width:260px}
.nav-row{display:flex;justify-content:space-between;margin-top:24px}
.nav-row button,.cta{background:#c0392b;color:#fff;border:0;border-radius:8px;padding:10px 20px;font-size:15px;cursor:pointer}
.terminal-window{background:#1e1e1e;color:#2ecc71;font-family:'JetBrains Mono',monospace;font-size:13px;padding:12px;border-radius:8px;min-height:200px}
.terminal-line{white-space:pre}
.telemetry-panel{background:#2c3e50;color:#ecf0f1;font-family:monospace;padding:12px;border-radius:8px}
.mobile-frame{width:260px;border:12px solid #222;border-radius:32px;overflow:hidden;margin:auto}
.appsheet-header{background:#2980b9;color:#fff;padding:12px}
.appsheet-body{padding:12px;background:#fff}
.field{background:#eee;padding:10px;border-radius:5px;margin-bottom:10px}
.metric-box{background:#fff;border-left:5px solid #c0392b;padding:16px;border-radius:8px;box-shadow:0 4px 10px rgba(0,0,0,.05)}
.metric-value{font-size:2rem;font-weight:800;color:#c0392b}
.metric-label{font-size:.9rem;color:#7f8c8d}
.quote-card{background:#fdfefe;border-left:5px solid #2980b9;padding:16px;margin:12px 0;border-radius:8px;font-style:italic}
.pipeline{display:flex;align-items:center;gap:8px;flex-wrap:wrap}
.stage{padding:14px 18px;border-radius:10px;font-weight:600;text-align:center;white-space:pre-line}
.edge{color:#7f8c8d;font-size:12px;text-align:center}
.notice{padding:10px 14px;border-radius:8px;margin:10px 0}
.notice.ok{background:#d5f5e3;color:#1e8449}
.notice.err{background:#fadbd8;color:#922b21}
.notice.info{background:#d6eaf8;color:#1f618d}
</style>
</head>
<body>
<aside>
  <h2>{{.Title}}</h2>
  {{range .Sidebar}}
  <form method="post" action="/nav/goto/{{.Key}}"><button class="{{if .Active}}active{{end}}">{{.Label}}</button></form>
  {{end}}
  <div class="progress"><div style="width:{{percent .Progress}}%"></div></div>
  <div class="caption">{{.Footer}}</div>
</aside>
<main>
  {{.Body}}
  <div class="nav-row">
    <div>{{if .HasPrevious}}<form method="post" action="/nav/previous"><button>&larr; Previous</button></form>{{end}}</div>
    <div>{{if .HasNext}}<form method="post" action="/nav/next"><button>Next &rarr;</button></form>{{end}}</div>
  </div>
</main>
</body>
</html>{{end}}
`

// ── Shared fragments ──────────────────────────────────────────────────────────

const tmplFragments = `
{{define "header"}}<h2 class="section-header">{{.Copy.Title}}</h2>{{if .Copy.Subtitle}}<p><em>{{.Copy.Subtitle}}</em></p>{{end}}<hr>{{end}}

{{define "chart"}}<div id="chart-{{.ID}}"></div>
<script>Plotly.newPlot("chart-{{.ID}}", ({{.JSON}}).data, ({{.JSON}}).layout, {responsive:true});</script>{{end}}

{{define "register"}}<div class="telemetry-panel" id="register">
<strong>REGISTER MAP:</strong><br>
Address: {{.Address}}<br>
Payload: JSON<br>
----------------<br>
{{with .Step}}Temp: <span style="color:#e74c3c">{{printf "%.1f" .Reading.Temperature}}</span><br>
Humid: <span style="color:#3498db">{{printf "%.1f" .Reading.Humidity}}</span><br>
Geo: {{.Reading.Geo}}{{else}}System Offline{{end}}
</div>{{end}}
`

// ── Slides ────────────────────────────────────────────────────────────────────

const tmplSlides = `
{{define "slide-hero"}}<div class="slide-card"><div class="cols">
<div style="flex:1.8">
  <h1 class="hero-title">{{.Research.Headline}}</h1>
  {{.Body}}
  <div class="notice info"><strong>PRESENTERS:</strong><br>{{.Research.Presenters}}<br><em>{{.Research.Affiliation}}</em></div>
  <form method="post" action="/nav/begin"><button class="cta">BEGIN KEYNOTE PRESENTATION</button></form>
</div>
<div><img src="https://images.unsplash.com/photo-1581091226825-a6a2a5aee158?q=80&w=2070&auto=format&fit=crop" alt="" style="border-radius:20px;width:100%;height:500px;object-fit:cover;box-shadow:-20px 20px 0 #c0392b"></div>
</div></div>{{end}}

{{define "slide-context"}}<div class="slide-card">{{template "header" .}}{{.Body}}</div>{{end}}

{{define "slide-solution"}}<div class="slide-card">{{template "header" .}}
<div class="pipeline">
{{range .Stages}}<div class="stage" style="background:{{.Node.Fill}};color:{{.Node.Font}}">{{.Node.Label}}
{{.Node.Caption}}</div>{{if .Out}}<div class="edge">{{.Out}}<br>&rarr;</div>{{end}}{{end}}
</div>
{{.Body}}</div>{{end}}

{{define "slide-wokwi"}}<div class="slide-card">{{template "header" .}}
<h3>VISIBLE TELEMETRY &amp; DATA STREAM</h3>
<div class="cols">
<div>{{.Body}}<button class="cta" id="simulate">COMPILE &amp; UPLOAD TO SIMULATOR</button></div>
<div><h3>Virtual Serial Monitor</h3><div class="terminal-window" id="serial">
{{if .Log}}{{range .Log}}<div class="terminal-line">{{.}}</div>{{end}}{{else}}<div class="terminal-line">Waiting for upload...</div>{{end}}
</div></div>
<div><h3>Live Register View</h3>{{template "register" .Register}}</div>
</div>
<script>
document.getElementById("simulate").addEventListener("click", async (ev) => {
  ev.target.disabled = true;
  const serial = document.getElementById("serial");
  const register = document.getElementById("register");
  const resp = await fetch("/simulate", {method: "POST"});
  const reader = resp.body.getReader();
  const dec = new TextDecoder();
  let buf = "";
  for (;;) {
    const {value, done} = await reader.read();
    if (done) break;
    buf += dec.decode(value, {stream: true});
    let cut;
    while ((cut = buf.indexOf("\n\n")) >= 0) {
      const frame = buf.slice(0, cut); buf = buf.slice(cut + 2);
      const data = frame.split("\n").filter(l => l.startsWith("data:")).map(l => l.slice(5)).join("");
      if (!data) continue;
      const ev = JSON.parse(data);
      if (!ev.log) continue;
      serial.replaceChildren(...ev.log.map(l => { const d = document.createElement("div"); d.className = "terminal-line"; d.textContent = l; return d; }));
      const r = ev.step.reading;
      register.innerHTML = "<strong>REGISTER MAP:</strong><br>Address: " + ev.address + "<br>Payload: JSON<br>----------------<br>" +
        "Temp: <span style='color:#e74c3c'>" + r.temp.toFixed(1) + "</span><br>Humid: <span style='color:#3498db'>" + r.humidity.toFixed(1) +
        "</span><br>Geo: " + r.lat.toFixed(4) + ", " + r.lon.toFixed(4);
    }
  }
  location.reload();
});
</script>
</div>{{end}}

{{define "slide-appsheet"}}<div class="slide-card">{{template "header" .}}
<div class="cols">
<div>{{.Body}}</div>
<div><div class="mobile-frame">
  <div class="appsheet-header">&#9776; Field Sensor V1</div>
  <div class="appsheet-body">
    <p class="caption">LOCATION ID</p><div class="field">{{.MobileLocation}}</div>
    <p class="caption">SENSOR READING (&deg;C)</p><div class="field" style="color:#c0392b;font-weight:bold">{{printf "%.1f" .MobileTemperature}}</div>
    <p class="caption">GEOSPATIAL TAG</p><div class="field">&#128205; {{.MobileGeo}}</div>
    <div style="background:#2980b9;color:#fff;text-align:center;padding:10px;border-radius:20px">SYNC NOW</div>
  </div>
</div></div>
<div>
  <h3>Interactive Form Logic</h3>
  <p>Test the validation logic taught to students:</p>
  <form method="post" action="/submit">
    <label>Enter Temp (&deg;C)<br><input type="number" step="0.1" name="temperature" value="{{printf "%.1f" .FormTemperature}}"></label><br><br>
    <label>Location<br><input type="text" name="location" value="{{.FormLocation}}"></label><br><br>
    <button class="cta">Submit to Cloud</button>
  </form>
  {{with .Submission}}{{if .OK}}<div class="notice ok">Data synced! GPS Tagged: {{.Reading.Geo}}</div>
  <iframe title="preview" width="100%" height="180" style="border:0;border-radius:8px" src="https://www.openstreetmap.org/export/embed.html?bbox={{bbox .Reading}}&amp;layer=mapnik&amp;marker={{printf "%.5f,%.5f" .Reading.Latitude .Reading.Longitude}}"></iframe>
  {{else}}<div class="notice err">{{rangeError}}</div>{{end}}{{end}}
</div>
</div></div>{{end}}

{{define "slide-apps-script"}}<div class="slide-card">{{template "header" .}}{{.Body}}</div>{{end}}

{{define "slide-looker"}}<div class="slide-card">{{template "header" .}}{{.Body}}
<h3>Risk Density Map (USM Campus) &middot; {{.Readings}} readings</h3>
{{template "chart" .DensityMap}}
<h3>Temporal Trend</h3>
{{template "chart" .Trend}}
</div>{{end}}

{{define "slide-methodology"}}<div class="slide-card">{{template "header" .}}
<div class="cols">
<div>{{.Body}}
  <div class="cols">
    <div class="metric-box"><div class="metric-value">{{.Research.Demographics.ZeroCoding}}%</div><div class="metric-label">Zero Coding Exp</div></div>
    <div class="metric-box"><div class="metric-value">{{.Research.Demographics.NoLowCode}}%</div><div class="metric-label">No Low-Code Exp</div></div>
  </div>
</div>
<div style="flex:1.5"><h3>Digital Deficiencies at Baseline</h3>{{template "chart" .Chart}}</div>
</div></div>{{end}}

{{define "slide-quant-results"}}<div class="slide-card">{{template "header" .}}{{.Body}}
{{template "chart" .Chart}}
<div class="cols">{{range .Research.Domains}}
<div class="metric-box"><div class="metric-value">{{printf "%+.2f" .Gain}}</div><div class="metric-label">{{.Name}} (d={{printf "%.2f" .EffectSize}})</div></div>
{{end}}</div>
</div>{{end}}

{{define "slide-deep-dive"}}<div class="slide-card">{{template "header" .}}
<div class="cols"><div style="flex:2">{{template "chart" .Chart}}</div><div>{{.Body}}</div></div>
</div>{{end}}

{{define "slide-trajectories"}}<div class="slide-card">{{template "header" .}}
{{template "chart" .Chart}}
{{.Body}}</div>{{end}}

{{define "slide-qualitative"}}<div class="slide-card">{{template "header" .}}{{.Body}}
{{range .Research.Quotes}}<div class="quote-card"><strong>THEME: {{.Theme}}</strong><br>"{{.Text}}"</div>{{end}}
<h3>Career Alignment</h3>
<div class="progress" style="background:#ecf0f1"><div style="width:100%"></div></div>
<p class="caption">100% of participants envisioned applying these skills to <strong>Flood Early Warning</strong> and <strong>Air Quality Monitoring</strong>.</p>
</div>{{end}}

{{define "slide-conclusion"}}<div class="slide-card">{{template "header" .}}
<div class="cols">
<div><img src="https://api.qrserver.com/v1/create-qr-code/?size=150x150&amp;data=MICROCASA2026" width="150" alt="Scan for Paper"><p class="caption">Scan for Paper</p></div>
<div style="flex:4">{{.Body}}</div>
</div></div>{{end}}
`

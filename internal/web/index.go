package web

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Presale Dashboard</title>
<style>
  body { font-family: -apple-system, Segoe UI, sans-serif; background: #0f1115; color: #e6e6e6; margin: 2rem; }
  h1 { font-size: 1.3rem; }
  .card { background: #181b21; border-radius: 8px; padding: 1rem 1.5rem; margin-bottom: 1rem; max-width: 640px; }
  .bar { background: #2a2e37; border-radius: 4px; height: 14px; overflow: hidden; }
  .bar > div { background: #43bf6d; height: 100%; width: 0; transition: width .4s; }
  .over { background: #e0a030 !important; }
  table { border-collapse: collapse; width: 100%; }
  td, th { padding: .3rem .6rem; text-align: left; border-bottom: 1px solid #2a2e37; font-size: .85rem; }
  .failed { color: #e06060; }
  .done { color: #73f59f; }
  .muted { color: #8a8f98; }
</style>
</head>
<body>
<h1>Presale Dashboard</h1>
<div class="card">
  <div id="progress-label" class="muted">waiting for data…</div>
  <div class="bar"><div id="progress-bar"></div></div>
  <table>
    <tr><td class="muted">raised</td><td id="raised">-</td></tr>
    <tr><td class="muted">participants</td><td id="participants">-</td></tr>
    <tr><td class="muted">time remaining</td><td id="remaining">-</td></tr>
    <tr><td class="muted">state</td><td id="state">-</td></tr>
    <tr><td class="muted">message</td><td id="message">-</td></tr>
  </table>
</div>
<div class="card">
  <h2 style="font-size:1rem">Submissions</h2>
  <table id="receipts"><tr><th>time</th><th>action</th><th>amount</th><th>status</th><th>tx</th></tr></table>
</div>
<script>
const fmt = (v) => v === undefined || v === null ? "-" : v;

const sale = new EventSource("/sale/stream");
sale.addEventListener("sale", (e) => {
  const v = JSON.parse(e.data);
  const s = v.snapshot || {};
  const raised = parseFloat(s.total_raised || 0);
  const cap = parseFloat(s.hard_cap || 0);
  const pct = cap > 0 ? raised / cap * 100 : 0;
  const bar = document.getElementById("progress-bar");
  bar.style.width = Math.min(pct, 100) + "%";
  bar.classList.toggle("over", pct > 100);
  document.getElementById("progress-label").textContent = pct.toFixed(1) + "% of hard cap";
  document.getElementById("raised").textContent = fmt(s.total_raised) + " / " + fmt(s.hard_cap);
  document.getElementById("participants").textContent = fmt(s.participant_count);
  const ns = s.time_remaining || 0;
  const days = Math.floor(ns / 86400e9), hours = Math.floor(ns % 86400e9 / 3600e9);
  document.getElementById("remaining").textContent = days + "d " + hours + "h";
  document.getElementById("state").textContent = fmt(v.state);
  document.getElementById("message").textContent = v.last_error || v.last_success || "-";
});

const receipts = new EventSource("/receipts/stream");
receipts.addEventListener("receipt", (e) => {
  const r = JSON.parse(e.data);
  const row = document.getElementById("receipts").insertRow(1);
  row.insertCell().textContent = new Date(r.time).toLocaleTimeString();
  row.insertCell().textContent = r.action;
  row.insertCell().textContent = r.amount;
  const status = row.insertCell();
  status.textContent = r.status;
  status.className = r.status;
  row.insertCell().textContent = r.tx_id ? r.tx_id.slice(0, 10) + "..." : (r.error || "-");
});
</script>
</body>
</html>
`

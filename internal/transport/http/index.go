package httpserver

const indexHTML = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>SimpleNEM12</title>
</head>
<body>
<h1>SimpleNEM12 meter reads</h1>
<ul>
<li><code>GET /api/meter-reads?nmi=&amp;start=YYYY-MM-DD&amp;end=YYYY-MM-DD&amp;page_size=&amp;page_token=</code></li>
<li><code>POST /api/parse</code> with a SimpleNEM12 document as the body</li>
<li><a href="/metrics">/metrics</a></li>
</ul>
<form id="parse">
<textarea name="doc" rows="12" cols="60">100
200,NEM1201009,KWH
300,20050301,0,E
900</textarea><br>
<button type="submit">Parse</button>
</form>
<pre id="out"></pre>
<script>
document.getElementById("parse").addEventListener("submit", async (e) => {
  e.preventDefault();
  const res = await fetch("/api/parse", {method: "POST", body: e.target.doc.value});
  document.getElementById("out").textContent = JSON.stringify(await res.json(), null, 2);
});
</script>
</body>
</html>
`

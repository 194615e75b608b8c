package distributor

import (
	"html"
	"net/url"
	"strings"
	"time"

	"github.com/ricirt/report-robot/internal/domain"
)

// MessageOptions controls notification wording.
type MessageOptions struct {
	GreetingByHour bool
	EmojiSales     string
	EmojiAccounts  string
}

// Greeting picks the salutation for the local hour.
func Greeting(hour int) string {
	switch {
	case hour >= 6 && hour < 12:
		return "☀️ Buenos días"
	case hour >= 12 && hour < 19:
		return "🌤️ Buenas tardes"
	}
	return "🌙 Buenas noches"
}

// BuildMessage renders the HTML notification for one recipient. The name and
// file name are escaped for Telegram's HTML parse mode.
func BuildMessage(opts MessageOptions, name string, kind domain.ReportKind, fileName, link string, now time.Time) string {
	var body string
	switch kind {
	case domain.ReportSales:
		body = orDefault(opts.EmojiSales, "💰") + " <b>Reporte de Ventas</b>\n\n" +
			"📊 <b>¿Qué incluye?</b>\n" +
			"Desglose detallado de todas las operaciones facturadas en VENDO. " +
			"Podrás ver fechas, clientes y montos totales recaudados por día.\n\n"
	case domain.ReportAccounts:
		body = orDefault(opts.EmojiAccounts, "📉") + " <b>Estado de Cuentas Corrientes</b>\n\n" +
			"📊 <b>¿Qué incluye?</b>\n" +
			"Listado de clientes con saldo pendiente, ordenado por " +
			"<b>antigüedad de la deuda</b>. Incluye cantidad de comprobantes " +
			"adeudados y monto exacto a cobrar.\n\n"
	default:
		body = "📄 <b>Nuevo Reporte Disponible</b>\n\n" +
			"Se ha generado un nuevo reporte: <b>" + html.EscapeString(fileName) + "</b>\n\n" +
			"Ya está disponible en tu hoja de cálculo.\n\n"
	}

	greeting := "👋 Hola"
	if opts.GreetingByHour {
		greeting = Greeting(now.Hour())
	}

	var b strings.Builder
	b.WriteString(greeting + " <b>" + html.EscapeString(name) + "</b>,\n\n")
	b.WriteString(body)
	b.WriteString(`🔗 <b>ACCESO:</b> <a href="` + link + `">👉 Abrir Planilla</a>`)
	return b.String()
}

// TrackingURL wraps a direct link with the click tracker. An empty base
// returns the direct link unchanged.
func TrackingURL(base, direct, recipient, fileName string, sentAt time.Time) string {
	if base == "" {
		return direct
	}
	q := url.Values{}
	q.Set("url", direct)
	q.Set("vendedor", recipient)
	q.Set("archivo", fileName)
	q.Set("envio", sentAt.Format("02/01/2006 15:04"))

	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + q.Encode()
}

// BannerText is stamped on every distributed tab.
func BannerText(at time.Time) string {
	return "REPORTE ACTUALIZADO EL " + at.Format("02-01-2006") + " a las " + at.Format("15:04")
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

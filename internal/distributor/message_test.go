package distributor_test

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/ricirt/report-robot/internal/distributor"
	"github.com/ricirt/report-robot/internal/domain"
)

func TestGreeting(t *testing.T) {
	tests := map[int]string{
		5:  "🌙 Buenas noches",
		6:  "☀️ Buenos días",
		11: "☀️ Buenos días",
		12: "🌤️ Buenas tardes",
		18: "🌤️ Buenas tardes",
		19: "🌙 Buenas noches",
	}
	for hour, want := range tests {
		if got := distributor.Greeting(hour); got != want {
			t.Errorf("Greeting(%d) = %q, want %q", hour, got, want)
		}
	}
}

func TestBuildMessage(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	link := "https://docs.google.com/spreadsheets/d/doc/edit#gid=5"

	t.Run("sales with hourly greeting", func(t *testing.T) {
		msg := distributor.BuildMessage(distributor.MessageOptions{GreetingByHour: true},
			"0009 - Juan", domain.ReportSales, "ventas.xlsx", link, now)
		if !strings.HasPrefix(msg, "☀️ Buenos días <b>0009 - Juan</b>,\n\n💰 <b>Reporte de Ventas</b>") {
			t.Fatalf("unexpected message start: %q", msg)
		}
		if !strings.HasSuffix(msg, `🔗 <b>ACCESO:</b> <a href="`+link+`">👉 Abrir Planilla</a>`) {
			t.Fatalf("unexpected message end: %q", msg)
		}
	})

	t.Run("generic names the file", func(t *testing.T) {
		msg := distributor.BuildMessage(distributor.MessageOptions{}, "Ana", domain.ReportGeneric, "SIGO.xlsx", link, now)
		if !strings.HasPrefix(msg, "👋 Hola <b>Ana</b>") || !strings.Contains(msg, "<b>SIGO.xlsx</b>") {
			t.Fatalf("unexpected message %q", msg)
		}
	})

	t.Run("accounts uses configured emoji", func(t *testing.T) {
		msg := distributor.BuildMessage(distributor.MessageOptions{EmojiAccounts: "🧾"}, "Ana", domain.ReportAccounts, "cta.xlsx", link, now)
		if !strings.Contains(msg, "🧾 <b>Estado de Cuentas Corrientes</b>") {
			t.Fatalf("unexpected message %q", msg)
		}
	})

	t.Run("escapes markup in name and file", func(t *testing.T) {
		msg := distributor.BuildMessage(distributor.MessageOptions{}, "A&B <x>", domain.ReportGeneric, "Q1 <final>.xlsx", link, now)
		if !strings.Contains(msg, "<b>A&amp;B &lt;x&gt;</b>") {
			t.Fatalf("expected escaped recipient, got %q", msg)
		}
		if !strings.Contains(msg, "<b>Q1 &lt;final&gt;.xlsx</b>") {
			t.Fatalf("expected escaped file name, got %q", msg)
		}
		if strings.Contains(msg, "<x>") || strings.Contains(msg, "<final>") {
			t.Fatalf("raw markup leaked into %q", msg)
		}
	})
}

func TestTrackingURL(t *testing.T) {
	sentAt := time.Date(2026, 3, 2, 9, 5, 0, 0, time.UTC)
	direct := "https://docs.google.com/spreadsheets/d/doc/edit#gid=5"

	if got := distributor.TrackingURL("", direct, "Ana", "f.xlsx", sentAt); got != direct {
		t.Fatalf("empty tracker must return the direct link, got %q", got)
	}

	got := distributor.TrackingURL("https://robot.example.com/track", direct, "0009 - Juan", "Ventas 01-03.xlsx", sentAt)
	u, err := url.Parse(got)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	q := u.Query()
	if q.Get("url") != direct || q.Get("vendedor") != "0009 - Juan" ||
		q.Get("archivo") != "Ventas 01-03.xlsx" || q.Get("envio") != "02/03/2026 09:05" {
		t.Fatalf("unexpected query %v", q)
	}
}

func TestBannerText(t *testing.T) {
	at := time.Date(2026, 1, 7, 16, 4, 0, 0, time.UTC)
	if got := distributor.BannerText(at); got != "REPORTE ACTUALIZADO EL 07-01-2026 a las 16:04" {
		t.Fatalf("unexpected banner %q", got)
	}
}

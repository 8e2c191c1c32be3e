package processor

import (
	"context"
	"strings"
	"testing"

	"github.com/ZaguanLabs/i18nmig"
	"github.com/google/go-cmp/cmp"
)

func htmlUnit(src string) i18nmig.SourceUnit {
	return i18nmig.SourceUnit{Path: "public/index.html", Source: []byte(src)}
}

func htmlTexts(t *testing.T, p *HTMLProcessor, src string) []string {
	t.Helper()
	lits, err := p.Extract(context.Background(), htmlUnit(src))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	var out []string
	for _, l := range lits {
		if l.Attr != "" {
			out = append(out, "["+l.Attr+"]"+l.Text)
			continue
		}
		out = append(out, l.Text)
	}
	return out
}

func TestHTMLProcessor_Extract_Basic(t *testing.T) {
	p := NewHTMLProcessor()

	got := htmlTexts(t, p, `<div><h1>Hola   mundo</h1><p>Bienvenido al panel.</p></div>`)

	want := []string{"Hola mundo", "Bienvenido al panel."}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("texts mismatch (-want +got):\n%s", d)
	}
}

func TestHTMLProcessor_Extract_IgnoredTags(t *testing.T) {
	p := NewHTMLProcessor()

	got := htmlTexts(t, p, `<div>
		<p>Traducir</p>
		<script>doNotTranslate();</script>
		<style>.class { color: red; }</style>
		<code>const x = 1;</code>
		<pre>preformateado</pre>
		<textarea>campo</textarea>
		<section data-no-translate><p>Marca</p></section>
	</div>`)

	if d := cmp.Diff([]string{"Traducir"}, got); d != "" {
		t.Errorf("texts mismatch (-want +got):\n%s", d)
	}
}

func TestHTMLProcessor_Extract_Attributes(t *testing.T) {
	p := NewHTMLProcessor()

	got := htmlTexts(t, p, `<form>
		<img src="logo.png" alt="Logotipo" class="brand">
		<input type="search" placeholder="Buscar">
		<button title="Enviar formulario">Enviar</button>
	</form>`)

	want := []string{"[alt]Logotipo", "[placeholder]Buscar", "[title]Enviar formulario", "Enviar"}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("texts mismatch (-want +got):\n%s", d)
	}
}

func TestHTMLProcessor_Extract_MixedContent(t *testing.T) {
	p := NewHTMLProcessor()

	got := htmlTexts(t, p, `<p>Hola <b>mundo</b></p>`)

	if d := cmp.Diff([]string{"mundo"}, got); d != "" {
		t.Errorf("texts mismatch (-want +got):\n%s", d)
	}
}

func TestHTMLProcessor_Rewrite_Fragment(t *testing.T) {
	p := NewHTMLProcessor()
	keys := i18nmig.TranslationMap{"Cancelar": "cancelar"}

	result, err := p.Rewrite(context.Background(), htmlUnit(`<div><button title="Cancelar">Cancelar</button></div>`), keys)
	if err != nil {
		t.Fatalf("Rewrite failed: %v", err)
	}

	want := `<div><button title="Cancelar" data-i18n="[title]cancelar;cancelar">Cancelar</button></div>`
	if d := cmp.Diff(want, string(result.Output)); d != "" {
		t.Errorf("output mismatch (-want +got):\n%s", d)
	}
	if len(result.Edits) != 2 {
		t.Errorf("expected 2 edits, got %d", len(result.Edits))
	}
}

func TestHTMLProcessor_Rewrite_Idempotent(t *testing.T) {
	p := NewHTMLProcessor()
	keys := i18nmig.TranslationMap{"Cancelar": "cancelar", "Inicio": "inicio"}

	src := `<!DOCTYPE html>
<html><head><title>Inicio</title></head>
<body><button title="Cancelar">Cancelar</button></body></html>`

	first, err := p.Rewrite(context.Background(), htmlUnit(src), keys)
	if err != nil {
		t.Fatalf("Rewrite failed: %v", err)
	}
	out := string(first.Output)
	if !strings.HasPrefix(out, "<!DOCTYPE html>") {
		t.Errorf("doctype lost:\n%s", out)
	}
	if !strings.Contains(out, `<title data-i18n="inicio">Inicio</title>`) {
		t.Errorf("title not annotated:\n%s", out)
	}

	second, err := p.Rewrite(context.Background(), htmlUnit(out), keys)
	if err != nil {
		t.Fatalf("second Rewrite failed: %v", err)
	}
	if second.Changed() {
		t.Errorf("second rewrite changed the page: %+v", second.Edits)
	}
	if string(second.Output) != out {
		t.Error("unchanged page must be returned byte for byte")
	}
}

func TestHTMLProcessor_Rewrite_KeepsExistingEntries(t *testing.T) {
	p := NewHTMLProcessor()
	keys := i18nmig.TranslationMap{"Hola": "hola", "Ayuda": "ayuda"}

	result, err := p.Rewrite(context.Background(), htmlUnit(`<p title="Ayuda" data-i18n="[title]otro">Hola</p>`), keys)
	if err != nil {
		t.Fatal(err)
	}

	want := `<p title="Ayuda" data-i18n="[title]otro;hola">Hola</p>`
	if d := cmp.Diff(want, string(result.Output)); d != "" {
		t.Errorf("output mismatch (-want +got):\n%s", d)
	}
}

func TestHTMLProcessor_Rewrite_Unmapped(t *testing.T) {
	p := NewHTMLProcessor()

	src := `<p>Hola</p>`
	result, err := p.Rewrite(context.Background(), htmlUnit(src), i18nmig.TranslationMap{})
	if err != nil {
		t.Fatal(err)
	}
	if result.Changed() || string(result.Output) != src {
		t.Errorf("unmapped page was modified: %q", result.Output)
	}
}

func TestHTMLProcessor_CustomOptions(t *testing.T) {
	p := NewHTMLProcessor(WithIgnoredTags([]string{"ASIDE"}), WithHTMLAttributes([]string{"data-tooltip"}))

	got := htmlTexts(t, p, `<main><aside>Lateral</aside><span data-tooltip="Ayuda" title="Ignorado">Texto</span></main>`)

	want := []string{"[data-tooltip]Ayuda", "Texto"}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("texts mismatch (-want +got):\n%s", d)
	}
}

func TestParseEntries(t *testing.T) {
	e := parseEntries(" hola ; [title]ayuda;; ")

	if d := cmp.Diff(i18nEntries{"hola", "[title]ayuda"}, e); d != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", d)
	}
	if !e.hasText() || !e.hasAttr("title") || e.hasAttr("alt") {
		t.Errorf("unexpected entry classification for %v", e)
	}
	if got := e.add("[alt]logo").String(); got != "hola;[title]ayuda;[alt]logo" {
		t.Errorf("String() = %q", got)
	}
}

package i18nmig_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZaguanLabs/i18nmig"
	"github.com/ZaguanLabs/i18nmig/processor"
	"github.com/ZaguanLabs/i18nmig/provider"
	"github.com/google/go-cmp/cmp"
)

// Integration tests running the passes over real files with real processors.

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func readFile(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func newPipeline(dir string, opts ...i18nmig.Option) *i18nmig.Pipeline {
	for _, p := range processor.Defaults(i18nmig.DefaultRuntimeAPI(), nil) {
		opts = append(opts, i18nmig.WithProcessor(p))
	}
	return i18nmig.NewPipeline(i18nmig.PipelineConfig{
		Root:    dir,
		Include: []string{"src/**/*.{jsx,tsx,js}", "public/**/*.html"},
		Options: opts,
	})
}

const toolbar = `export function Toolbar() {
  return (
    <div>
      <button title="Cancelar">Cancelar</button>
      <span>Estado</span>
      <span>Estado </span>
    </div>
  );
}
`

func TestIntegration_SharedTextOneKey(t *testing.T) {
	dir := writeFiles(t, map[string]string{"src/Toolbar.jsx": toolbar})
	p := newPipeline(dir)

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	lits := result.Extraction.Report["src/Toolbar.jsx"]
	var texts []string
	for _, l := range lits {
		texts = append(texts, l.Text)
	}
	if d := cmp.Diff([]string{"Cancelar", "Estado"}, texts); d != "" {
		t.Errorf("report texts mismatch (-want +got):\n%s", d)
	}

	want := i18nmig.TranslationMap{"Cancelar": "cancelar", "Estado": "estado"}
	if d := cmp.Diff(want, result.Generation.Map); d != "" {
		t.Errorf("map mismatch (-want +got):\n%s", d)
	}
	if got := result.Generation.Primary()["cancelar"]; got != "Cancelar" {
		t.Errorf("primary bundle cancelar = %q", got)
	}

	out := readFile(t, dir, "src/Toolbar.jsx")
	if strings.Count(out, `t("cancelar")`) != 2 {
		t.Errorf("both Cancelar occurrences should be rewritten:\n%s", out)
	}
	if strings.Count(out, `{t("estado")}`) != 2 {
		t.Errorf("both Estado occurrences should be rewritten:\n%s", out)
	}
	if !strings.Contains(out, "const { t } = useTranslation();") {
		t.Errorf("hook not injected:\n%s", out)
	}
}

func TestIntegration_Idempotent(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"src/Toolbar.jsx":   toolbar,
		"public/index.html": `<main><h1>Bienvenido</h1><input placeholder="Buscar"></main>`,
	})

	if _, err := newPipeline(dir).Run(context.Background()); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	jsx, html := readFile(t, dir, "src/Toolbar.jsx"), readFile(t, dir, "public/index.html")
	keys := readFile(t, dir, "i18n/keys.json")

	second, err := newPipeline(dir).Run(context.Background())
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if second.Rewrite.Summary.FilesChanged != 0 || second.Hooks.Summary.FilesChanged != 0 {
		t.Errorf("second run changed files: rewrite=%d hooks=%d",
			second.Rewrite.Summary.FilesChanged, second.Hooks.Summary.FilesChanged)
	}
	if readFile(t, dir, "src/Toolbar.jsx") != jsx || readFile(t, dir, "public/index.html") != html {
		t.Error("sources changed on the second run")
	}
	if readFile(t, dir, "i18n/keys.json") != keys {
		t.Error("keys changed on the second run")
	}
}

func TestIntegration_IncrementalKeepsKeys(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"src/A.jsx": "export const A = () => <p>Nueva categoria</p>;\n",
	})
	first, err := newPipeline(dir).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if first.Generation.Map["Nueva categoria"] != "nueva_categoria" {
		t.Fatalf("unexpected first key: %v", first.Generation.Map)
	}

	// A new text whose slug collides sorts first but must not steal the key.
	if err := os.WriteFile(filepath.Join(dir, "src", "B.jsx"), []byte("export const B = () => <p>Nueva Categoría</p>;\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	second, err := newPipeline(dir).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	want := i18nmig.TranslationMap{"Nueva categoria": "nueva_categoria", "Nueva Categoría": "nueva_categoria_1"}
	if d := cmp.Diff(want, second.Generation.Map); d != "" {
		t.Errorf("map mismatch (-want +got):\n%s", d)
	}
}

func TestIntegration_MaxKeyLength(t *testing.T) {
	const text = "Revise los datos de facturación antes de confirmar el pedido de esta semana"
	long := "revise_los_datos_de_facturacion_antes_de_confirmar_el_pedido_de_esta_semana"

	tests := []struct {
		name   string
		maxLen int
		want   string
	}{
		{"default cap", 0, long[:i18nmig.MaxKeyLength]},
		{"custom cap", 12, "revise_los_d"},
		{"no cap", i18nmig.NoKeyLengthLimit, long},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeFiles(t, map[string]string{"src/A.jsx": "export const A = () => <p>" + text + "</p>;\n"})
			p := i18nmig.NewPipeline(i18nmig.PipelineConfig{
				Root:         dir,
				Include:      []string{"src/**/*.jsx"},
				MaxKeyLength: tt.maxLen,
				Options:      []i18nmig.Option{i18nmig.WithProcessor(processor.NewJSXProcessor())},
			})

			result, err := p.Run(context.Background())
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}
			if got := result.Generation.Map[text]; got != tt.want {
				t.Errorf("key = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIntegration_UnmappedUntouched(t *testing.T) {
	src := "export const A = () => <p>Hola</p>;\n"
	dir := writeFiles(t, map[string]string{"src/A.jsx": src})
	paths := []string{filepath.Join(dir, "src", "A.jsx")}

	report, err := i18nmig.NewRewriter(i18nmig.TranslationMap{"Adiós": "adios"},
		i18nmig.WithProcessor(processor.NewJSXProcessor()),
		i18nmig.WithRoot(dir),
	).Rewrite(context.Background(), paths)
	if err != nil {
		t.Fatal(err)
	}
	if report.Changed("src/A.jsx") {
		t.Error("file without mapped literals reported as changed")
	}
	if readFile(t, dir, "src/A.jsx") != src {
		t.Error("file without mapped literals was modified")
	}
}

func TestIntegration_ParseFailureIsPerFile(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"src/Good.jsx":   "export const Good = () => <p>Hola</p>;\n",
		"src/Broken.jsx": "export const Broken = () => <p>Hola</p;\n",
	})

	result, err := newPipeline(dir).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	failures := result.Extraction.Summary.Failures
	if len(failures) != 1 || failures[0].Path != "src/Broken.jsx" {
		t.Fatalf("expected one failure for src/Broken.jsx, got %+v", failures)
	}
	if !strings.Contains(readFile(t, dir, "src/Good.jsx"), `t("hola")`) {
		t.Error("good file should still be rewritten")
	}
}

func TestIntegration_DryRun(t *testing.T) {
	dir := writeFiles(t, map[string]string{"src/Toolbar.jsx": toolbar})

	result, err := newPipeline(dir, i18nmig.WithDryRun(true)).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if !result.Rewrite.DryRun || !result.Rewrite.Changed("src/Toolbar.jsx") {
		t.Errorf("dry run should report the planned change: %+v", result.Rewrite.Files)
	}
	if readFile(t, dir, "src/Toolbar.jsx") != toolbar {
		t.Error("dry run modified the source")
	}
	if _, err := os.Stat(filepath.Join(dir, "i18n", "keys.json")); err != nil {
		t.Errorf("artifacts should still be written in dry-run mode: %v", err)
	}
}

func TestIntegration_Backup(t *testing.T) {
	dir := writeFiles(t, map[string]string{"src/Toolbar.jsx": toolbar})
	backup := t.TempDir()

	if _, err := newPipeline(dir, i18nmig.WithBackupDir(backup)).Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, backup, "src/Toolbar.jsx"); got != toolbar {
		t.Errorf("backup should hold the original, got:\n%s", got)
	}
}

type fakeDirty map[string]bool

func (f fakeDirty) IsDirty(path string) (bool, error) {
	return f[filepath.Base(path)], nil
}

func TestIntegration_RequireClean(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"src/Clean.jsx": "export const Clean = () => <p>Hola</p>;\n",
		"src/Dirty.jsx": "export const Dirty = () => <p>Hola</p>;\n",
	})

	result, err := newPipeline(dir, i18nmig.WithRequireClean(fakeDirty{"Dirty.jsx": true})).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(readFile(t, dir, "src/Clean.jsx"), `t("hola")`) {
		t.Error("clean file should be rewritten")
	}
	if strings.Contains(readFile(t, dir, "src/Dirty.jsx"), `t("hola")`) {
		t.Error("dirty file must be left alone")
	}

	var skipped bool
	for _, f := range result.Rewrite.Summary.Failures {
		if f.Path == "src/Dirty.jsx" && strings.Contains(f.Message, "uncommitted") {
			skipped = true
		}
	}
	if !skipped {
		t.Errorf("dirty file should be reported: %+v", result.Rewrite.Summary.Failures)
	}
}

// unparseableProcessor produces output that fails validation.
type unparseableProcessor struct {
	*processor.JSXProcessor
}

func (p unparseableProcessor) Rewrite(ctx context.Context, unit i18nmig.SourceUnit, keys i18nmig.TranslationMap) (*i18nmig.RewriteResult, error) {
	res, err := p.JSXProcessor.Rewrite(ctx, unit, keys)
	if err != nil || !res.Changed() {
		return res, err
	}
	res.Output = append(res.Output, []byte("export const = ;\n")...)
	return res, nil
}

func TestIntegration_InvalidOutputNotWritten(t *testing.T) {
	src := "export const A = () => <p>Hola</p>;\n"
	dir := writeFiles(t, map[string]string{"src/A.jsx": src})

	report, err := i18nmig.NewRewriter(i18nmig.TranslationMap{"Hola": "hola"},
		i18nmig.WithProcessor(unparseableProcessor{processor.NewJSXProcessor()}),
		i18nmig.WithRoot(dir),
	).Rewrite(context.Background(), []string{filepath.Join(dir, "src", "A.jsx")})
	if err != nil {
		t.Fatal(err)
	}

	if readFile(t, dir, "src/A.jsx") != src {
		t.Error("file must be left intact when the rewrite does not parse")
	}
	if len(report.Summary.Failures) != 1 || !strings.Contains(report.Summary.Failures[0].Message, "does not parse") {
		t.Errorf("expected a write failure, got %+v", report.Summary.Failures)
	}
}

func TestIntegration_RewriteWithoutMap(t *testing.T) {
	dir := writeFiles(t, map[string]string{"src/A.jsx": "export const A = () => <p>Hola</p>;\n"})

	_, err := newPipeline(dir).Rewrite(context.Background(), nil)

	var missing *i18nmig.MissingArtifactError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingArtifactError, got %v", err)
	}
}

func TestIntegration_StatusAndSuggestions(t *testing.T) {
	dir := writeFiles(t, map[string]string{"src/Toolbar.jsx": toolbar})
	p := newPipeline(dir)
	if _, err := p.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	a := p.Artifacts()

	st, err := i18nmig.Status(a, "es", "en")
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff([]string{"cancelar", "estado"}, st.Pending); d != "" {
		t.Errorf("pending mismatch (-want +got):\n%s", d)
	}

	items, err := i18nmig.PendingItems(a, "en")
	if err != nil {
		t.Fatal(err)
	}
	wantItems := []i18nmig.SuggestItem{
		{Key: "cancelar", Text: "Cancelar"},
		{Key: "estado", Text: "Estado"},
	}
	if d := cmp.Diff(wantItems, items); d != "" {
		t.Errorf("items mismatch (-want +got):\n%s", d)
	}

	res, err := i18nmig.NewSuggester(provider.NewMockProvider()).Suggest(context.Background(), items)
	if err != nil {
		t.Fatal(err)
	}
	if err := i18nmig.SaveSuggestions(a, "en", res.Suggestions); err != nil {
		t.Fatal(err)
	}
	if err := i18nmig.SaveSuggestions(a, "en", map[string]string{"estado": "State"}); err != nil {
		t.Fatal(err)
	}

	got, err := i18nmig.LoadBundle(a.SuggestionsPath("en"))
	if err != nil {
		t.Fatal(err)
	}
	want := i18nmig.ResourceBundle{"cancelar": "Cancel", "estado": "State"}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("suggestions mismatch (-want +got):\n%s", d)
	}
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"github.com/ZaguanLabs/i18nmig"
	"github.com/fatih/color"
)

var (
	okColor    = color.New(color.FgGreen, color.Bold)
	warnColor  = color.New(color.FgYellow)
	errorColor = color.New(color.FgRed)
	faintColor = color.New(color.Faint)
)

// rel shortens path to the project root for display.
func (a *app) rel(path string) string {
	if a.cfg == nil {
		return path
	}
	if r, err := filepath.Rel(a.cfg.Root, path); err == nil {
		return filepath.ToSlash(r)
	}
	return path
}

func (a *app) printSummary(s i18nmig.Summary) {
	mark := okColor.Sprint("ok")
	if s.Failed() {
		mark = warnColor.Sprint("!!")
	}

	fmt.Fprintf(a.stdout, "%s %-8s files: %d", mark, s.Stage, s.FilesScanned)
	if s.FilesChanged > 0 || s.EditsApplied > 0 {
		fmt.Fprintf(a.stdout, "  changed: %d  edits: %d", s.FilesChanged, s.EditsApplied)
	}
	if s.LiteralsFound > 0 {
		fmt.Fprintf(a.stdout, "  literals: %d", s.LiteralsFound)
	}
	fmt.Fprintln(a.stdout)

	for _, f := range s.Failures {
		if f.Path == "" {
			fmt.Fprintf(a.stdout, "   %s %s\n", errorColor.Sprint("x"), f.Message)
			continue
		}
		fmt.Fprintf(a.stdout, "   %s %s: %s\n", errorColor.Sprint("x"), a.rel(f.Path), f.Message)
	}
}

func (a *app) printGeneration(gen *i18nmig.Generation) {
	s := i18nmig.Summary{Stage: "keys", LiteralsFound: len(gen.Map)}
	for _, err := range gen.Failures {
		s.Failures = append(s.Failures, i18nmig.FileFailure{Stage: "keys", Message: err.Error()})
	}
	a.printSummary(s)

	if gen.Diff != nil {
		stats := gen.Diff.Stats()
		fmt.Fprintf(a.stdout, "   new: %d  retained: %d  unseen: %d\n", stats.Added, stats.Retained, stats.Unseen)
	}
	a.printPending(len(gen.Pending))
}

func (a *app) printPending(n int) {
	if n == 0 {
		return
	}
	fmt.Fprintf(a.stdout, "   %s\n", warnColor.Sprintf("%d secondary entries still need a translation", n))
}

func (a *app) printRewrite(r *i18nmig.RewriteReport) {
	a.printSummary(r.Summary)
	for _, f := range r.Files {
		switch {
		case f.Skipped != "":
			fmt.Fprintf(a.stdout, "   %s %s (%s)\n", faintColor.Sprint("-"), f.Path, f.Skipped)
		case f.Changed && r.DryRun:
			fmt.Fprintf(a.stdout, "   ~ %s\n", f.Path)
		}
	}
	if r.DryRun {
		a.printDryRun()
	}
}

func (a *app) printDryRun() {
	fmt.Fprintln(a.stdout, faintColor.Sprint("Dry run: no source file was written."))
}

func (a *app) printArtifact(name, path string) {
	fmt.Fprintf(a.stdout, "   %-11s %s\n", name+":", a.rel(path))
}

func (a *app) printStatus(st *i18nmig.StatusReport) {
	if !st.HasReport && !st.HasMap {
		fmt.Fprintln(a.stdout, "No artifacts yet. Run \"i18nmig extract\" first.")
		return
	}

	if st.HasReport {
		fmt.Fprintf(a.stdout, "Report:   %d files, %d literals, %d distinct texts\n", st.Files, st.Literals, st.DistinctTexts)
	} else {
		fmt.Fprintln(a.stdout, "Report:   missing")
	}
	if st.HasMap {
		fmt.Fprintf(a.stdout, "Map:      %d entries\n", st.MapEntries)
	} else {
		fmt.Fprintln(a.stdout, "Map:      missing")
	}

	locales := make([]string, 0, len(st.BundleSizes))
	for locale := range st.BundleSizes {
		locales = append(locales, locale)
	}
	sort.Strings(locales)
	for _, locale := range locales {
		fmt.Fprintf(a.stdout, "Bundle:   %s (%d keys)\n", locale, st.BundleSizes[locale])
	}

	if len(st.Unmapped) > 0 {
		fmt.Fprintf(a.stdout, "\n%s\n", warnColor.Sprintf("Unmapped: %d (run \"i18nmig keys\")", len(st.Unmapped)))
		printTexts(a.stdout, "+", st.Unmapped)
	}
	if len(st.Unseen) > 0 {
		fmt.Fprintf(a.stdout, "\nUnseen:   %d\n", len(st.Unseen))
		printTexts(a.stdout, "-", st.Unseen)
	}
	if len(st.Pending) > 0 {
		fmt.Fprintf(a.stdout, "\n%s\n", warnColor.Sprintf("Pending:  %d", len(st.Pending)))
		printTexts(a.stdout, "?", st.Pending)
	}
}

func (a *app) printPendingItems(items []i18nmig.SuggestItem) {
	fmt.Fprintf(a.stdout, "Found %d pending entries:\n\n", len(items))
	for i, item := range items {
		fmt.Fprintf(a.stdout, "%3d. %s = %q\n", i+1, item.Key, truncate(item.Text, 60))
		if item.Hint != "" {
			fmt.Fprintf(a.stdout, "     Hint: %s\n", item.Hint)
		}
	}
}

func (a *app) printSuggestions(r *i18nmig.SuggestResult) {
	fmt.Fprintf(a.stdout, "%s suggest   %d entries  requested: %d  from cache: %d\n",
		okColor.Sprint("ok"), len(r.Suggestions), r.Requested, r.Cached)
}

func printTexts(w io.Writer, mark string, texts []string) {
	for _, t := range texts {
		fmt.Fprintf(w, "  %s %q\n", mark, truncate(t, 50))
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// outputJSON writes v as indented JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

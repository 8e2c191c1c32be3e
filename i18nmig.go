// Package i18nmig migrates React-style UI sources to runtime localization.
//
// The migration runs as four passes, each usable on its own:
//
//   - Extractor collects user-visible text literals (element text and
//     string attributes) from every selected file.
//   - KeyGenerator assigns each distinct text a stable slug key and seeds
//     the primary and secondary resource bundles.
//   - Rewriter replaces mapped literals with lookup calls such as
//     {t("guardar")} and adds the localization import where missing.
//   - HookInjector binds the lookup function, const { t } = useTranslation(),
//     at the top of component bodies that need it.
//
// Passes hand data to each other through artifacts on disk (see Artifacts),
// or in memory when they run on the same Pipeline.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ZaguanLabs/i18nmig"
//	    "github.com/ZaguanLabs/i18nmig/processor"
//	)
//
//	func main() {
//	    p := i18nmig.NewPipeline(i18nmig.PipelineConfig{
//	        Root: ".",
//	        Options: []i18nmig.Option{
//	            i18nmig.WithProcessor(processor.NewJSXProcessor()),
//	        },
//	    })
//
//	    result, err := p.Run(context.Background())
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    for _, s := range result.Summaries() {
//	        fmt.Println(s.Stage, s.FilesChanged, len(s.Failures))
//	    }
//	}
package i18nmig

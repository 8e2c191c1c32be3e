package i18nmig

import "context"

// HookInjector binds the lookup function at the top of component bodies in
// files that already import the localization accessor.
type HookInjector struct {
	cfg passConfig
}

// NewHookInjector creates a HookInjector.
func NewHookInjector(opts ...Option) *HookInjector {
	return &HookInjector{cfg: newPassConfig(opts)}
}

// Inject processes every file. Files whose processor cannot inject hooks
// are left alone without failure.
func (h *HookInjector) Inject(ctx context.Context, paths []string) (*RewriteReport, error) {
	return runRewritePass(ctx, &h.cfg, "hooks", paths, func(ctx context.Context, proc SourceProcessor, unit SourceUnit) (*RewriteResult, error) {
		hp, ok := proc.(HookProcessor)
		if !ok {
			return &RewriteResult{Output: unit.Source}, nil
		}
		return hp.InjectHooks(ctx, unit)
	})
}

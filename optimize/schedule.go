package optimize

import (
	"module/config"
	"module/diag"
	"module/mil"
)

// RunToFixpoint repeatedly runs inline, flow, unused-args, dedup and
// static-hoist, each gated by its PassesConfig flag, until a full round
// makes no further change. It is the {inline, flow, unused-args, dedup,
// hoist} portion of the §6 pass schedule; the one-shot
// specialise/rep-transform/lower tail of the schedule lives above this
// package, since those stages run exactly once after this loop settles.
func RunToFixpoint(prog *mil.Program, cfg *config.PipelineConfig) {
	for round := 1; ; round++ {
		changed := 0

		if cfg.Passes.Inline {
			n := RunInline(prog, cfg)
			diag.PassResult("inline", n)
			changed += n
		}
		if cfg.Passes.Flow {
			n := RunFlow(prog, cfg.Passes.KnownCons)
			diag.PassResult("flow", n)
			changed += n
		}

		if cfg.Passes.UnusedArgs {
			n := RunUnusedArgs(prog)
			diag.PassResult("unused-args", n)
			changed += n
		}

		if cfg.Passes.Dedup {
			n := RunDedup(prog)
			diag.PassResult("dedup", n)
			changed += n
		}

		if cfg.Passes.StaticHoist {
			n := RunStaticHoist(prog)
			diag.PassResult("hoist", n)
			changed += n
		}

		diag.Fixpoint("optimize", round)
		prog.RecomputeOrder()

		if changed == 0 {
			return
		}
	}
}

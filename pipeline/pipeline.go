// Package pipeline sequences the whole back-end: optimisation to a
// fixpoint, monomorphisation from the program's entry points,
// representation transformation, and LLVM lowering, per the §6 pass
// schedule's "run {inline, flow, unused-args, dedup, hoist} to a
// fixpoint, then once {specialise, rep-transform, lower}" shape. This
// is the library's only stage the external parser/builder does not
// drive directly; everything upstream of it is the mil.Builder
// interface.
package pipeline

import (
	"github.com/llir/llvm/ir"

	"module/config"
	"module/lower"
	"module/mil"
	"module/optimize"
	"module/report"
	"module/reptransform"
	"module/specialize"
)

// Compile runs the full pipeline over prog and returns the finished
// LLVM module, or the first Failure raised while monomorphising an
// entry point.
func Compile(prog *mil.Program, cfg *config.PipelineConfig) (*ir.Module, *report.Failure) {
	prog.RecomputeOrder()
	optimize.RunToFixpoint(prog, cfg)

	if fail := specializeEntries(prog); fail != nil {
		return nil, fail
	}
	prog.RecomputeOrder()

	reptransform.Run(prog)
	prog.RecomputeOrder()

	lw := lower.New()
	return lw.Lower(prog), nil
}

// specializeEntries instantiates every program entry point at its
// declared concrete type, replacing each EntryPoint's TopLevel/Index
// with the monomorphic instance the specialiser produced (or leaving
// it untouched if it was already monomorphic).
func specializeEntries(prog *mil.Program) *report.Failure {
	sp := specialize.New(prog)
	for i, e := range prog.Entries {
		top, fail := sp.Instantiate(e.Top, e.Index, e.Type)
		if fail != nil {
			return fail
		}
		prog.Entries[i].Top = top
	}
	return nil
}

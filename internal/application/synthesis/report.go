package synthesis

import (
	"github.com/samber/lo"

	"github.com/turtacn/SymRxn/pkg/errors"
)

// Skip reasons recorded for symmetric pairs that produced no template.
const (
	ReasonAmbiguousAttachment = "ambiguous_attachment"
	ReasonFragmentationFailed = "fragmentation_failed"
	ReasonPairLimit           = "pair_limit"
)

// PairSkip is a symmetric pair for which no template was built.
type PairSkip struct {
	Molecule string
	I, J     int
	Reason   string
	Err      error
}

// TemplateFailure is a template that failed to build or was rejected by the
// probe.
type TemplateFailure struct {
	Molecule string
	Pattern  string
	Err      error
}

// Code returns the error code of the failure.
func (f TemplateFailure) Code() errors.ErrorCode { return errors.GetCode(f.Err) }

// SynthesisReport accounts for every pair and template of a synthesis call.
// Nothing in it is fatal; it lists what was skipped and why.
type SynthesisReport struct {
	Molecules       int
	PairsConsidered int
	Skipped         []PairSkip
	BuildFailures   []TemplateFailure
	Rejected        []TemplateFailure
	Built           int
	Duplicates      int
	Retained        int
	// Canceled is set when the context ended before every pair was seen.
	Canceled bool
}

// SkipCounts groups skipped pairs by reason.
func (r *SynthesisReport) SkipCounts() map[string]int {
	return lo.CountValuesBy(r.Skipped, func(s PairSkip) string { return s.Reason })
}

// Problems reports whether anything was skipped, failed or rejected.
func (r *SynthesisReport) Problems() bool {
	return len(r.Skipped)+len(r.BuildFailures)+len(r.Rejected) > 0
}

func (r *SynthesisReport) merge(o *SynthesisReport) {
	r.Molecules += o.Molecules
	r.PairsConsidered += o.PairsConsidered
	r.Skipped = append(r.Skipped, o.Skipped...)
	r.BuildFailures = append(r.BuildFailures, o.BuildFailures...)
	r.Rejected = append(r.Rejected, o.Rejected...)
	r.Built += o.Built
	r.Duplicates += o.Duplicates
	r.Retained += o.Retained
	r.Canceled = r.Canceled || o.Canceled
}

//Personal.AI order the ending

package models

import (
	"context"
	"sync"

	"xbrowse/models/searcherr"
)

// Anomaly is a per-variant irregularity that was recovered from rather than
// surfaced as a search failure.
type Anomaly struct {
	Kind    searcherr.Kind `json:"kind"`
	Detail  string         `json:"detail"`
	Variant *UniqueTuple   `json:"variant,omitempty"`
}

// Diagnostics accumulates anomalies for one search request. It is safe for
// concurrent use and every method tolerates a nil receiver.
type Diagnostics struct {
	RequestId string

	mu              sync.Mutex
	anomalies       []Anomaly
	skippedVariants int
}

func NewDiagnostics(requestId string) *Diagnostics {
	return &Diagnostics{RequestId: requestId}
}

func (d *Diagnostics) Record(anomalies ...Anomaly) {
	if d == nil || len(anomalies) == 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.anomalies = append(d.anomalies, anomalies...)
}

func (d *Diagnostics) SkipVariant() {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.skippedVariants++
}

func (d *Diagnostics) Anomalies() []Anomaly {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Anomaly(nil), d.anomalies...)
}

func (d *Diagnostics) SkippedVariants() int {
	if d == nil {
		return 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.skippedVariants
}

type diagnosticsKey struct{}

// WithDiagnostics attaches d to ctx so that every stage of a search records
// into the same place.
func WithDiagnostics(ctx context.Context, d *Diagnostics) context.Context {
	return context.WithValue(ctx, diagnosticsKey{}, d)
}

// DiagnosticsFrom returns the diagnostics attached to ctx, or nil.
func DiagnosticsFrom(ctx context.Context) *Diagnostics {
	d, _ := ctx.Value(diagnosticsKey{}).(*Diagnostics)
	return d
}

// Package pipeline orchestrates one extract-transform-load run. The stages
// execute strictly in sequence on the calling goroutine; the first failure
// short-circuits the run and leaves the destination untouched by later
// stages.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"datapipeline/internal/config"
	"datapipeline/internal/extractor"
	"datapipeline/internal/fault"
	"datapipeline/internal/loader"
	"datapipeline/internal/metrics"
	"datapipeline/internal/transformer"
	"datapipeline/pkg/records"
)

// Pipeline wires an extractor, a transformer, and a loader built from a
// resolved configuration. A Pipeline runs once; construct a new one per run.
type Pipeline struct {
	cfg config.Pipeline

	extractor   extractor.Extractor
	transformer transformer.Transformer
	loader      loader.Loader

	state State
}

// New builds all three components up front so that an unknown kind or bad
// option fails before any data is touched.
func New(cfg config.Pipeline) (*Pipeline, error) {
	ex, err := extractor.New(cfg.Extractor.Kind, cfg.Extractor.Options)
	if err != nil {
		return nil, err
	}
	tr, err := transformer.New(cfg.Transformer.Kind, cfg.Transformer.Options)
	if err != nil {
		return nil, err
	}
	ld, err := loader.New(cfg.Loader.Kind, cfg)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		cfg:         cfg,
		extractor:   ex,
		transformer: tr,
		loader:      ld,
		state:       StateIdle,
	}, nil
}

// State returns the current lifecycle state.
func (p *Pipeline) State() State {
	return p.state
}

// Run executes extract, transform, load in order and returns the run
// accounting. On failure the returned error carries the stage's fault kind
// and the result names the failed stage; the error and result agree.
func (p *Pipeline) Run(ctx context.Context, source, destination string) (*RunResult, error) {
	if p.state != StateIdle {
		return nil, fmt.Errorf("pipeline in state %q cannot run", p.state)
	}

	res := &RunResult{
		Pipeline:    p.cfg.Name,
		Source:      source,
		Destination: destination,
		Started:     time.Now(),
	}
	log.Printf("pipeline=%s run: source=%s destination=%s", p.cfg.Name, source, destination)

	ds, err := p.runExtract(ctx, source, res)
	if err != nil {
		return p.fail(res, "extract", err)
	}

	ds, err = p.runTransform(ds, res)
	if err != nil {
		return p.fail(res, "transform", err)
	}

	if err := p.runLoad(ctx, ds, destination, res); err != nil {
		return p.fail(res, "load", err)
	}

	p.state = StateCompleted
	res.Status = StateCompleted
	res.Finished = time.Now()
	log.Printf("%s", res.Summary())
	return res, nil
}

func (p *Pipeline) runExtract(ctx context.Context, source string, res *RunResult) (*records.Dataset, error) {
	p.state = StateExtracting
	start := time.Now()

	ds, err := p.extractor.Extract(ctx, source)

	elapsed := time.Since(start)
	metrics.RecordStage(p.cfg.Name, "extract", err, elapsed)
	res.Extract = StageResult{Name: "extract", Elapsed: elapsed, OK: err == nil}
	if err != nil {
		return nil, err
	}
	res.Extract.RowsOut = ds.Len()
	metrics.RecordRows(p.cfg.Name, "extracted", int64(ds.Len()))
	log.Printf("pipeline=%s extract: rows=%d elapsed=%s", p.cfg.Name, ds.Len(), elapsed.Truncate(time.Millisecond))
	return ds, nil
}

func (p *Pipeline) runTransform(ds *records.Dataset, res *RunResult) (*records.Dataset, error) {
	p.state = StateTransforming
	start := time.Now()

	out, err := p.transformer.Transform(ds)

	elapsed := time.Since(start)
	metrics.RecordStage(p.cfg.Name, "transform", err, elapsed)
	res.Transform = StageResult{Name: "transform", RowsIn: ds.Len(), Elapsed: elapsed, OK: err == nil}
	if err != nil {
		if _, ok := fault.KindOf(err); !ok {
			err = fault.Wrap(fault.Transformation, err)
		}
		return nil, err
	}
	res.Transform.RowsOut = out.Len()
	metrics.RecordRows(p.cfg.Name, "transformed", int64(out.Len()))
	log.Printf("pipeline=%s transform: rows_in=%d rows_out=%d elapsed=%s",
		p.cfg.Name, ds.Len(), out.Len(), elapsed.Truncate(time.Millisecond))
	return out, nil
}

func (p *Pipeline) runLoad(ctx context.Context, ds *records.Dataset, destination string, res *RunResult) error {
	p.state = StateLoading
	start := time.Now()

	n, err := p.loader.Load(ctx, ds, destination)

	elapsed := time.Since(start)
	metrics.RecordStage(p.cfg.Name, "load", err, elapsed)
	res.Load = StageResult{Name: "load", RowsIn: ds.Len(), Elapsed: elapsed, OK: err == nil}
	if err != nil {
		return err
	}
	res.Load.RowsOut = int(n)
	metrics.RecordRows(p.cfg.Name, "loaded", n)
	log.Printf("pipeline=%s load: rows=%d elapsed=%s", p.cfg.Name, n, elapsed.Truncate(time.Millisecond))
	return nil
}

func (p *Pipeline) fail(res *RunResult, stage string, err error) (*RunResult, error) {
	p.state = StateFailed
	res.Status = StateFailed
	res.FailedStage = stage
	res.Finished = time.Now()
	log.Printf("pipeline=%s %s failed: %v", p.cfg.Name, stage, err)
	return res, err
}

package gmaps

import (
	"github.com/AhmedRagabRG/scraper/models"
	"github.com/AhmedRagabRG/scraper/utils"
)

// Sink receives each accepted record synchronously, before the pipeline moves
// to the next entity. A slow sink therefore delays extraction but can never
// reorder delivery; a failing one is logged and ignored.
type Sink func(rec models.Record, progress models.RunProgress) error

// Pipeline is the streaming delivery layer: it deduplicates, tracks progress,
// notifies the sink per accepted record, and produces the one terminal
// summary. One Pipeline serves exactly one run and is not restartable.
type Pipeline struct {
	logger *utils.Logger
	dedup  *Deduplicator
	sink   Sink

	progress   models.RunProgress
	accepted   []models.Record
	duplicates int
	finished   bool
}

// NewPipeline creates the pipeline for one run. expectedTotal is the number
// of entities the scroll-loader made visible; cap (0 = unlimited) stops
// acceptance early.
func NewPipeline(logger *utils.Logger, expectedTotal, cap int, sink Sink) *Pipeline {
	if cap > 0 && expectedTotal > cap {
		expectedTotal = cap
	}
	return &Pipeline{
		logger: logger,
		dedup:  NewDeduplicator(),
		sink:   sink,
		progress: models.RunProgress{
			ExpectedTotal: expectedTotal,
			Cap:           cap,
		},
	}
}

// Emit feeds one extracted record through dedup and, when accepted, hands it
// to the sink. Returns whether the record was accepted.
func (p *Pipeline) Emit(rec models.Record) bool {
	p.progress.Extracted++

	if !p.dedup.Accept(rec) {
		p.duplicates++
		p.logger.Debug("[pipeline] Duplicate dropped: %q", rec.Identity())
		return false
	}

	p.progress.Accepted++
	p.accepted = append(p.accepted, rec)
	p.notify(rec)
	return true
}

// notify invokes the sink with failure isolation: an erroring or panicking
// consumer loses that one delivery and nothing else.
func (p *Pipeline) notify(rec models.Record) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("[pipeline] Sink panicked on record %d: %v", p.progress.Accepted, r)
		}
	}()

	if p.sink == nil {
		return
	}
	if err := p.sink(rec, p.progress); err != nil {
		p.logger.Error("[pipeline] Sink failed on record %d: %v", p.progress.Accepted, err)
	}
}

// Full reports whether the cap has been reached.
func (p *Pipeline) Full() bool {
	return p.progress.Cap > 0 && p.progress.Accepted >= p.progress.Cap
}

// Progress returns the current counters.
func (p *Pipeline) Progress() models.RunProgress {
	return p.progress
}

// Records returns the accepted records in extraction order.
func (p *Pipeline) Records() []models.Record {
	return p.accepted
}

// Finish seals the pipeline and returns the terminal summary. Emitting after
// Finish is a programming error.
func (p *Pipeline) Finish() models.RunSummary {
	p.finished = true
	return models.RunSummary{
		TotalAccepted:     p.progress.Accepted,
		DuplicatesRemoved: p.duplicates,
	}
}

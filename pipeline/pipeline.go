// Package pipeline drives transcription runs: it splits a recording's
// payload into pieces, submits each piece to the transcription backend,
// persists after every piece, and keeps the recording's aggregate status and
// progress consistent with its pieces.
package pipeline

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/echoscribe/echoscribe/errors"
	"github.com/echoscribe/echoscribe/logger"
	"github.com/echoscribe/echoscribe/observability"
	"github.com/echoscribe/echoscribe/split"
	"github.com/echoscribe/echoscribe/store"
	"github.com/echoscribe/echoscribe/transcription"
	"github.com/echoscribe/echoscribe/vocab"
)

// Transcriber is the pipeline's view of the transcription backend. The
// escalating client in package transcription satisfies it.
type Transcriber interface {
	Transcribe(ctx context.Context, req transcription.Request) (*transcription.Response, error)
}

// Pipeline runs transcriptions against a Store. At most one run may be
// active per recording; concurrent attempts are rejected with a conflict.
type Pipeline struct {
	store       *store.Store
	transcriber Transcriber
	limits      split.Limits
	publisher   Publisher
	metrics     *observability.Metrics
	log         *logger.Logger

	mu     sync.Mutex
	active map[int64]struct{}
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithPublisher sets the progress event publisher.
func WithPublisher(p Publisher) Option {
	return func(pl *Pipeline) { pl.publisher = p }
}

// WithMetrics sets the metric instruments recorded per run and per piece.
func WithMetrics(m *observability.Metrics) Option {
	return func(pl *Pipeline) { pl.metrics = m }
}

// WithLimits overrides the split limits.
func WithLimits(lim split.Limits) Option {
	return func(pl *Pipeline) { pl.limits = lim }
}

// New creates a Pipeline.
func New(st *store.Store, tr Transcriber, opts ...Option) *Pipeline {
	pl := &Pipeline{
		store:       st,
		transcriber: tr,
		limits:      split.DefaultLimits(),
		log:         logger.WithComponent("pipeline"),
		active:      make(map[int64]struct{}),
	}
	for _, opt := range opts {
		opt(pl)
	}
	return pl
}

// Run executes a full transcription run for the given recording.
//
// A recording that already completed with a transcript is returned as-is
// without touching the backend. Per-piece failures do not abort a
// multi-piece run: the failed piece is recorded and the loop moves on,
// leaving the recording failed at the end. A single-piece run has no
// siblings to continue for, so its remote failure is returned after the
// failure is persisted. Run also returns an error when the run itself
// cannot proceed (recording missing, storage failure, another run active);
// in that case the recording is marked failed with progress reset.
func (p *Pipeline) Run(ctx context.Context, id int64) (*store.Recording, error) {
	if err := p.acquire(id); err != nil {
		return nil, err
	}
	defer p.release(id)

	ctx, span := observability.StartSpan(ctx, "pipeline.Run",
		trace.WithAttributes(attribute.Int64("recording.id", id)))
	defer span.End()

	start := time.Now()
	rec, err := p.store.Recording(ctx, id)
	if err != nil {
		return nil, err
	}

	// Completed with no pieces means a stale status, not a finished
	// transcript; such a recording runs again.
	if rec.Status == store.StatusCompleted && len(rec.Pieces) > 0 {
		p.log.Info("recording already transcribed, skipping", logger.Fields(
			logger.FieldRecordingID, id,
		))
		return rec, nil
	}

	rec, err = p.run(ctx, rec)
	if err != nil {
		// A nil recording means the run broke before its state settled;
		// mark it failed. With a non-nil recording the piece loop already
		// persisted the final state and err is a propagated piece failure.
		if rec == nil {
			p.fail(ctx, id)
		}
		p.recordRun(ctx, string(store.StatusFailed), time.Since(start))
		return nil, err
	}

	p.recordRun(ctx, string(rec.Status), time.Since(start))
	return rec, nil
}

func (p *Pipeline) run(ctx context.Context, rec *store.Recording) (*store.Recording, error) {
	// Claim the recording before any remote work so clients see the run
	// start even if the first piece is slow. Pieces from an earlier run are
	// cleared in the same write: a crash after this point must not leave
	// the old transcript paired with a transcribing status.
	if err := p.persist(ctx, rec, store.StatusTranscribing, 5, []store.TranscriptPiece{}); err != nil {
		return nil, err
	}

	prompt, err := p.buildPrompt(ctx)
	if err != nil {
		return nil, err
	}

	plan := split.Plan(rec.Size, p.limits)
	pieces := make([]store.TranscriptPiece, len(plan))
	for i := range pieces {
		pieces[i] = store.TranscriptPiece{Index: i, Status: store.PieceProcessing}
	}
	if err := p.persist(ctx, rec, store.StatusTranscribing, 10, pieces); err != nil {
		return nil, err
	}

	p.log.Info("transcription run started", logger.Fields(
		logger.FieldRecordingID, rec.ID,
		"pieces", len(plan),
		"size", rec.Size,
	))

	for i, pc := range plan {
		pieces[i] = p.transcribePiece(ctx, rec, pc, prompt)
		p.recordPiece(ctx, string(pieces[i].Status))

		progress := pieceProgress(i+1, len(plan))
		if err := p.persist(ctx, rec, store.StatusTranscribing, progress, pieces); err != nil {
			return nil, err
		}
	}

	status, progress := aggregate(pieces)
	if err := p.persist(ctx, rec, status, progress, pieces); err != nil {
		return nil, err
	}

	p.log.Info("transcription run finished", logger.Fields(
		logger.FieldRecordingID, rec.ID,
		logger.FieldStatus, string(status),
	))

	// With one piece there are no siblings to keep going for, so the
	// remote failure reaches the caller. The persisted state above still
	// records the failure; the non-nil recording signals that to Run.
	if len(plan) == 1 && pieces[0].Status == store.PieceFailed {
		return rec, apperrors.RemoteService("transcription", fmt.Errorf("%s", pieces[0].Content))
	}
	return rec, nil
}

// RetryPiece re-runs a single failed or stuck piece. The byte range is
// recomputed from the recording's payload, so the piece boundaries match the
// original run as long as the limits are unchanged.
func (p *Pipeline) RetryPiece(ctx context.Context, id int64, index int) (*store.Recording, error) {
	if err := p.acquire(id); err != nil {
		return nil, err
	}
	defer p.release(id)

	ctx, span := observability.StartSpan(ctx, "pipeline.RetryPiece",
		trace.WithAttributes(
			attribute.Int64("recording.id", id),
			attribute.Int("piece.index", index),
		))
	defer span.End()

	rec, err := p.store.Recording(ctx, id)
	if err != nil {
		return nil, err
	}

	plan := split.Plan(rec.Size, p.limits)
	if index < 0 || index >= len(plan) || index >= len(rec.Pieces) {
		return nil, apperrors.InvalidInput("index", fmt.Sprintf("piece %d does not exist", index))
	}

	prompt, err := p.buildPrompt(ctx)
	if err != nil {
		return nil, err
	}

	pieces := rec.Pieces
	pieces[index] = store.TranscriptPiece{Index: index, Status: store.PieceProcessing}
	if err := p.persist(ctx, rec, rec.Status, rec.Progress, pieces); err != nil {
		return nil, err
	}

	pieces[index] = p.transcribePiece(ctx, rec, plan[index], prompt)
	p.recordPiece(ctx, string(pieces[index].Status))

	status, progress := rec.Status, rec.Progress
	if st, pr, done := settle(pieces); done {
		status, progress = st, pr
	}
	if err := p.persist(ctx, rec, status, progress, pieces); err != nil {
		return nil, err
	}

	if pieces[index].Status == store.PieceFailed {
		return nil, apperrors.RemoteService("transcription", fmt.Errorf("%s", pieces[index].Content)).
			WithDetail("piece", index)
	}
	return rec, nil
}

// transcribePiece runs one piece and converts the outcome into a terminal
// TranscriptPiece. Failures are contained here: the error goes into the
// piece, not up the stack.
func (p *Pipeline) transcribePiece(ctx context.Context, rec *store.Recording, pc split.Piece, prompt string) store.TranscriptPiece {
	if pc.Len() == 0 {
		return store.TranscriptPiece{Index: pc.Index, Status: store.PieceCompleted}
	}

	ctx, span := observability.StartSpan(ctx, "pipeline.transcribePiece",
		trace.WithAttributes(attribute.Int("piece.index", pc.Index)))
	defer span.End()

	resp, err := p.transcriber.Transcribe(ctx, transcription.Request{
		Audio:    split.SubmissionBytes(rec.Payload, pc, p.limits),
		MimeType: rec.MimeType,
		Prompt:   prompt,
	})
	if err != nil {
		p.log.Error("piece transcription failed", logger.Fields(
			logger.FieldRecordingID, rec.ID,
			logger.FieldPiece, pc.Index,
			logger.FieldError, err.Error(),
		))
		return store.TranscriptPiece{
			Index:   pc.Index,
			Content: err.Error(),
			Status:  store.PieceFailed,
		}
	}

	return store.TranscriptPiece{
		Index:   pc.Index,
		Content: resp.Text,
		Status:  store.PieceCompleted,
	}
}

// buildPrompt combines the configured base prompt with the user vocabulary.
func (p *Pipeline) buildPrompt(ctx context.Context) (string, error) {
	base, _, err := p.store.Setting(ctx, store.SettingTranscriptionPrompt)
	if err != nil {
		return "", err
	}
	items, err := p.store.Vocabulary(ctx)
	if err != nil {
		return "", err
	}
	return vocab.BuildPrompt(base, items), nil
}

// persist writes the recording's run state and publishes a progress event.
// rec is updated in place so callers return current state.
func (p *Pipeline) persist(ctx context.Context, rec *store.Recording, status store.RecordingStatus, progress int, pieces []store.TranscriptPiece) error {
	patch := store.RecordingPatch{Status: &status, Progress: &progress}
	if pieces != nil {
		patch.Pieces = &pieces
	}
	if err := p.store.MergeRecording(ctx, rec.ID, patch); err != nil {
		return err
	}

	rec.Status = status
	rec.Progress = progress
	if pieces != nil {
		rec.Pieces = pieces
	}

	if p.publisher != nil {
		p.publisher.Publish(ProgressEvent{
			RecordingID: rec.ID,
			Status:      status,
			Progress:    progress,
			Pieces:      pieces,
		})
	}
	return nil
}

// fail marks a recording failed after a run-level error. Best effort: the
// original error is what the caller reports.
func (p *Pipeline) fail(ctx context.Context, id int64) {
	status := store.StatusFailed
	progress := 0
	err := p.store.MergeRecording(ctx, id, store.RecordingPatch{Status: &status, Progress: &progress})
	if err != nil {
		p.log.Error("failed to mark recording failed", logger.ErrorFields("merge", err))
		return
	}
	if p.publisher != nil {
		p.publisher.Publish(ProgressEvent{RecordingID: id, Status: status, Progress: progress})
	}
}

func (p *Pipeline) acquire(id int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, running := p.active[id]; running {
		return apperrors.Conflict(fmt.Sprintf("transcription already running for recording %d", id))
	}
	p.active[id] = struct{}{}
	return nil
}

// Busy reports whether a run is currently active for the recording.
func (p *Pipeline) Busy(id int64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, running := p.active[id]
	return running
}

func (p *Pipeline) release(id int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.active, id)
}

func (p *Pipeline) recordRun(ctx context.Context, status string, d time.Duration) {
	p.metrics.RecordRun(ctx, status, d)
}

func (p *Pipeline) recordPiece(ctx context.Context, status string) {
	p.metrics.RecordPiece(ctx, status)
}

// pieceProgress maps attempted pieces onto the 10..95 band of the ladder.
// The floor keeps progress from dipping below the 10 persisted at plan time
// when the first pieces of a large plan round lower.
func pieceProgress(attempted, total int) int {
	if total == 0 {
		return 95
	}
	progress := int(math.Round(float64(attempted) / float64(total) * 95))
	if progress < 10 {
		return 10
	}
	return progress
}

// aggregate derives the terminal run state from the pieces. Progress is 100
// once every piece has been attempted, whatever the outcome: progress tracks
// how much of the run happened, status reports how it went.
func aggregate(pieces []store.TranscriptPiece) (store.RecordingStatus, int) {
	for _, pc := range pieces {
		if pc.Status != store.PieceCompleted {
			return store.StatusFailed, 100
		}
	}
	return store.StatusCompleted, 100
}

// settle reports the aggregate state once every piece is terminal. done is
// false while any piece is still processing.
func settle(pieces []store.TranscriptPiece) (store.RecordingStatus, int, bool) {
	for _, pc := range pieces {
		if pc.Status == store.PieceProcessing {
			return "", 0, false
		}
	}
	st, pr := aggregate(pieces)
	return st, pr, true
}

// Package capture manages live recording sessions. The browser streams audio
// in numbered fragments; on finish they are assembled into one recording and
// the fragment rows are cleared.
package capture

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	apperrors "github.com/echoscribe/echoscribe/errors"
	"github.com/echoscribe/echoscribe/logger"
	"github.com/echoscribe/echoscribe/store"
)

// Manager tracks open capture sessions. Fragments go straight to the store
// so an interrupted session can be aborted cleanly; only the session list is
// held in memory.
type Manager struct {
	store *store.Store
	log   *logger.Logger

	mu   sync.Mutex
	open map[int64]*session
}

type session struct {
	name     string
	mimeType string
}

// NewManager creates a Manager over the given store.
func NewManager(st *store.Store) *Manager {
	return &Manager{
		store: st,
		log:   logger.WithComponent("capture"),
		open:  make(map[int64]*session),
	}
}

// Start opens a capture session and returns its id. The id becomes the
// recording id once the session is finished.
func (m *Manager) Start(name, mimeType string) (int64, error) {
	if mimeType == "" {
		return 0, apperrors.MissingField("mime_type")
	}
	if name == "" {
		name = time.Now().Format("Recording 2006-01-02 15:04")
	}

	id := time.Now().UnixMilli()
	m.mu.Lock()
	// Two captures within the same millisecond would collide on id.
	for {
		if _, taken := m.open[id]; !taken {
			break
		}
		id++
	}
	m.open[id] = &session{name: name, mimeType: mimeType}
	m.mu.Unlock()

	m.log.Info("capture started", logger.Fields(
		logger.FieldRecordingID, id,
		"mime_type", mimeType,
	))
	return id, nil
}

// Append stores one fragment of an open session. Writing the same seq twice
// overwrites the earlier data, which lets the browser resend after a flaky
// request.
func (m *Manager) Append(ctx context.Context, id int64, seq int, data []byte) error {
	if _, err := m.session(id); err != nil {
		return err
	}
	if seq < 0 {
		return apperrors.InvalidInput("seq", "must not be negative")
	}
	if len(data) == 0 {
		return apperrors.MissingField("data")
	}
	return m.store.PutFragment(ctx, store.Fragment{RecordingID: id, Seq: seq, Data: data})
}

// Finish assembles the session's fragments into a recording and closes the
// session. The fragment sequence must be gapless from zero; a gap means lost
// audio and fails the whole capture.
func (m *Manager) Finish(ctx context.Context, id int64) (*store.Recording, error) {
	sess, err := m.session(id)
	if err != nil {
		return nil, err
	}

	frags, err := m.store.Fragments(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(frags) == 0 {
		return nil, apperrors.InvalidInput("fragments", "capture has no audio")
	}

	var buf bytes.Buffer
	for i, f := range frags {
		if f.Seq != i {
			return nil, apperrors.InvalidInput("fragments",
				fmt.Sprintf("missing fragment %d (next stored seq is %d)", i, f.Seq))
		}
		buf.Write(f.Data)
	}

	rec := &store.Recording{
		ID:       id,
		Name:     sess.name,
		Size:     int64(buf.Len()),
		MimeType: sess.mimeType,
		Payload:  buf.Bytes(),
		Status:   store.StatusNew,
	}
	if err := m.store.InsertRecording(ctx, rec); err != nil {
		return nil, err
	}
	if err := m.store.DeleteFragments(ctx, id); err != nil {
		// The recording is already durable; stale fragments are only waste.
		m.log.Warn("failed to clear fragments after finish", logger.ErrorFields("delete fragments", err))
	}

	m.close(id)
	m.log.Info("capture finished", logger.Fields(
		logger.FieldRecordingID, id,
		"fragments", len(frags),
		"size", rec.Size,
	))
	return rec, nil
}

// Abort discards an open session and its stored fragments.
func (m *Manager) Abort(ctx context.Context, id int64) error {
	if _, err := m.session(id); err != nil {
		return err
	}
	if err := m.store.DeleteFragments(ctx, id); err != nil {
		return err
	}
	m.close(id)
	m.log.Info("capture aborted", logger.Fields(logger.FieldRecordingID, id))
	return nil
}

// Open returns the ids of the currently open sessions.
func (m *Manager) Open() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int64, 0, len(m.open))
	for id := range m.open {
		ids = append(ids, id)
	}
	return ids
}

func (m *Manager) session(id int64) (*session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.open[id]
	if !ok {
		return nil, apperrors.NotFound("capture", fmt.Sprintf("%d", id))
	}
	return sess, nil
}

func (m *Manager) close(id int64) {
	m.mu.Lock()
	delete(m.open, id)
	m.mu.Unlock()
}

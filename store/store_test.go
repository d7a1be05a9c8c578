package store

import (
	"context"
	"testing"

	apperrors "github.com/echoscribe/echoscribe/errors"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecording_InsertAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec := &Recording{
		ID:       1700000000001,
		Name:     "standup",
		Size:     4,
		MimeType: "audio/webm",
		Payload:  []byte{1, 2, 3, 4},
	}
	if err := s.InsertRecording(ctx, rec); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := s.Recording(ctx, rec.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "standup" || got.MimeType != "audio/webm" || got.Size != 4 {
		t.Errorf("unexpected recording: %+v", got)
	}
	if got.Status != StatusNew {
		t.Errorf("expected status new, got %s", got.Status)
	}
	if len(got.Payload) != 4 {
		t.Errorf("expected 4 payload bytes, got %d", len(got.Payload))
	}
	if got.Pieces == nil || len(got.Pieces) != 0 {
		t.Errorf("expected empty pieces, got %v", got.Pieces)
	}
}

func TestRecording_InsertDuplicate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec := &Recording{ID: 42, Name: "a", Size: 1, MimeType: "audio/mp3", Payload: []byte{0}}
	if err := s.InsertRecording(ctx, rec); err != nil {
		t.Fatalf("insert: %v", err)
	}
	err := s.InsertRecording(ctx, rec)
	if !apperrors.IsCode(err, apperrors.ErrCodeAlreadyExists) {
		t.Errorf("expected ALREADY_EXISTS, got %v", err)
	}
}

func TestRecording_GetAbsent(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Recording(context.Background(), 999)
	if !apperrors.IsCode(err, apperrors.ErrCodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestRecording_SummariesNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, id := range []int64{10, 30, 20} {
		rec := &Recording{ID: id, Name: "r", Size: 1, MimeType: "audio/mp3", Payload: []byte{0xFF}}
		if err := s.InsertRecording(ctx, rec); err != nil {
			t.Fatalf("insert %d: %v", id, err)
		}
	}

	sums, err := s.RecordingSummaries(ctx)
	if err != nil {
		t.Fatalf("summaries: %v", err)
	}
	if len(sums) != 3 {
		t.Fatalf("expected 3 summaries, got %d", len(sums))
	}
	want := []int64{30, 20, 10}
	for i, sum := range sums {
		if sum.ID != want[i] {
			t.Errorf("position %d: expected id %d, got %d", i, want[i], sum.ID)
		}
	}
}

func TestRecording_MergePartial(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec := &Recording{ID: 7, Name: "before", Size: 1, MimeType: "audio/mp3", Payload: []byte{0}}
	if err := s.InsertRecording(ctx, rec); err != nil {
		t.Fatalf("insert: %v", err)
	}

	status := StatusTranscribing
	progress := 5
	pieces := []TranscriptPiece{{Index: 0, Status: PieceProcessing}}
	err := s.MergeRecording(ctx, 7, RecordingPatch{
		Status:   &status,
		Progress: &progress,
		Pieces:   &pieces,
	})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}

	got, err := s.Recording(ctx, 7)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "before" {
		t.Errorf("name must be untouched by a partial merge, got %q", got.Name)
	}
	if got.Status != StatusTranscribing || got.Progress != 5 {
		t.Errorf("expected transcribing/5, got %s/%d", got.Status, got.Progress)
	}
	if len(got.Pieces) != 1 || got.Pieces[0].Status != PieceProcessing {
		t.Errorf("unexpected pieces: %v", got.Pieces)
	}
}

func TestRecording_MergeAbsent(t *testing.T) {
	s := openTestStore(t)
	name := "x"
	err := s.MergeRecording(context.Background(), 404, RecordingPatch{Name: &name})
	if !apperrors.IsCode(err, apperrors.ErrCodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestRecording_Delete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec := &Recording{ID: 5, Name: "r", Size: 1, MimeType: "audio/mp3", Payload: []byte{0}}
	if err := s.InsertRecording(ctx, rec); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := s.DeleteRecording(ctx, 5); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Recording(ctx, 5); !apperrors.IsCode(err, apperrors.ErrCodeNotFound) {
		t.Errorf("expected NOT_FOUND after delete, got %v", err)
	}
}

func TestFragments_OrderedRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// Insert out of order; retrieval must come back by sequence index.
	for _, seq := range []int{2, 0, 1} {
		f := Fragment{RecordingID: 1, Seq: seq, Data: []byte{byte(seq)}}
		if err := s.PutFragment(ctx, f); err != nil {
			t.Fatalf("put fragment %d: %v", seq, err)
		}
	}

	frags, err := s.Fragments(ctx, 1)
	if err != nil {
		t.Fatalf("fragments: %v", err)
	}
	if len(frags) != 3 {
		t.Fatalf("expected 3 fragments, got %d", len(frags))
	}
	for i, f := range frags {
		if f.Seq != i {
			t.Errorf("position %d: expected seq %d, got %d", i, i, f.Seq)
		}
	}

	if err := s.DeleteFragments(ctx, 1); err != nil {
		t.Fatalf("delete fragments: %v", err)
	}
	frags, err = s.Fragments(ctx, 1)
	if err != nil {
		t.Fatalf("fragments after delete: %v", err)
	}
	if len(frags) != 0 {
		t.Errorf("expected no fragments after delete, got %d", len(frags))
	}
}

func TestVocabulary_CaseInsensitiveLookup(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	item := VocabularyItem{ID: 1, Word: "API", Description: "application programming interface"}
	if err := s.InsertVocabularyItem(ctx, item); err != nil {
		t.Fatalf("insert: %v", err)
	}

	for _, word := range []string{"API", "api", "Api"} {
		ok, err := s.HasVocabularyWord(ctx, word)
		if err != nil {
			t.Fatalf("lookup %q: %v", word, err)
		}
		if !ok {
			t.Errorf("expected %q to match existing entry", word)
		}
	}

	ok, err := s.HasVocabularyWord(ctx, "gRPC")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if ok {
		t.Error("expected no match for unknown word")
	}
}

func TestVocabulary_UpdateAndDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.InsertVocabularyItem(ctx, VocabularyItem{ID: 1, Word: "kubernetes"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := s.UpdateVocabularyItem(ctx, VocabularyItem{ID: 1, Word: "Kubernetes", Description: "k8s"}); err != nil {
		t.Fatalf("update: %v", err)
	}

	items, err := s.Vocabulary(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].Word != "Kubernetes" || items[0].Description != "k8s" {
		t.Errorf("unexpected items: %v", items)
	}

	if err := s.DeleteVocabularyItem(ctx, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.UpdateVocabularyItem(ctx, VocabularyItem{ID: 1, Word: "x"}); !apperrors.IsCode(err, apperrors.ErrCodeNotFound) {
		t.Errorf("expected NOT_FOUND after delete, got %v", err)
	}
}

func TestSettings_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, found, err := s.Setting(ctx, SettingLastInstruction); err != nil || found {
		t.Fatalf("expected absent setting, found=%v err=%v", found, err)
	}

	if err := s.SetSetting(ctx, SettingLastInstruction, "summarize action items"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.SetSetting(ctx, SettingLastInstruction, "bullet points"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	v, found, err := s.Setting(ctx, SettingLastInstruction)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !found || v != "bullet points" {
		t.Errorf("expected overwritten value, got %q found=%v", v, found)
	}

	all, err := s.Settings(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if all[SettingLastInstruction] != "bullet points" {
		t.Errorf("unexpected settings map: %v", all)
	}
}

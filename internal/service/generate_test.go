package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/mbuchner/millwright/internal/model"
	"github.com/mbuchner/millwright/internal/profile"
	"github.com/mbuchner/millwright/internal/store"
)

func testSetup() *model.Setup {
	return &model.Setup{
		Stock: model.StockDescription{
			Shape:    model.StockRectangular,
			Width:    100,
			Length:   80,
			Height:   20,
			Material: "aluminum",
		},
		Operations: []model.Operation{
			{
				Type:         model.OpCircularPocket,
				X:            50,
				Y:            40,
				ZDepth:       5,
				Diameter:     30,
				ToolType:     model.ToolEndMill,
				ToolDiameter: 10,
				FeedRate:     500,
				SpindleSpeed: 3000,
				StepDown:     2,
			},
		},
		Explanation: "Circular pocket in the plate center.",
	}
}

type fakeProposer struct {
	setup *model.Setup
	err   error

	lastPrompt  string
	lastCurrent *model.Setup
	imageCalls  int
}

func (f *fakeProposer) ProposeSetup(ctx context.Context, request string, current *model.Setup) (*model.Setup, error) {
	f.lastPrompt = request
	f.lastCurrent = current
	return f.setup, f.err
}

func (f *fakeProposer) ProposeSetupFromImage(ctx context.Context, request string, image []byte, mimeType string) (*model.Setup, error) {
	f.imageCalls++
	f.lastPrompt = request
	return f.setup, f.err
}

func (f *fakeProposer) Model() string { return "fake-model" }

type fakeStore struct {
	sessions map[string]store.SessionInput
	programs map[string]store.ProgramInput

	sessionErr    error
	collideOnce   bool // next UpsertProgram fails with ErrAlreadyExists
	lastProgramID string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		sessions: make(map[string]store.SessionInput),
		programs: make(map[string]store.ProgramInput),
	}
}

func (f *fakeStore) UpsertSession(ctx context.Context, id string, in store.SessionInput) (*store.SessionRecord, error) {
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	f.sessions[id] = in
	rec := &store.SessionRecord{
		ID:       surrealmodels.RecordID{Table: "session", ID: id},
		Prompts:  in.Prompts,
		Revision: in.Revision,
	}
	return rec, nil
}

func (f *fakeStore) GetSession(ctx context.Context, id string) (*store.SessionRecord, error) {
	in, ok := f.sessions[id]
	if !ok {
		return nil, nil
	}
	setupJSON, err := json.Marshal(in.Setup)
	if err != nil {
		return nil, err
	}
	return &store.SessionRecord{
		ID:        surrealmodels.RecordID{Table: "session", ID: id},
		Prompts:   in.Prompts,
		SetupJSON: string(setupJSON),
		Revision:  in.Revision,
	}, nil
}

func (f *fakeStore) UpsertProgram(ctx context.Context, id string, in store.ProgramInput) (*store.ProgramRecord, bool, error) {
	if f.collideOnce {
		f.collideOnce = false
		return nil, false, store.ErrAlreadyExists
	}
	f.programs[id] = in
	f.lastProgramID = id
	rec := &store.ProgramRecord{
		ID:       surrealmodels.RecordID{Table: "program", ID: id},
		Name:     in.Name,
		Slug:     store.Slugify(in.Name),
		Text:     in.Text,
		Model:    in.Model,
		Revision: in.Revision,
	}
	return rec, true, nil
}

func TestRequestAdvancesSession(t *testing.T) {
	prop := &fakeProposer{setup: testSetup()}
	svc := NewGenerateService(prop, newFakeStore(), nil, nil)

	sess := svc.NewSession()
	if sess.ID == "" || len(sess.ID) != 8 {
		t.Fatalf("expected 8-char session ID, got %q", sess.ID)
	}

	res, err := svc.Request(context.Background(), sess.ID, "mill a pocket")
	if err != nil {
		t.Fatalf("Request() error: %v", err)
	}
	if res.Revision != 1 {
		t.Errorf("revision = %d, want 1", res.Revision)
	}
	if prop.lastCurrent != nil {
		t.Errorf("first request should not carry a current setup")
	}
	if !strings.Contains(res.Text, "POCKET4") {
		t.Errorf("emitted text missing circular pocket cycle:\n%s", res.Text)
	}
	if !strings.Contains(res.Text, "; generated by millwright") {
		t.Errorf("emitted text missing header:\n%s", res.Text)
	}

	res2, err := svc.Request(context.Background(), sess.ID, "make it deeper")
	if err != nil {
		t.Fatalf("second Request() error: %v", err)
	}
	if res2.Revision != 2 {
		t.Errorf("revision = %d, want 2", res2.Revision)
	}
	if prop.lastCurrent == nil {
		t.Errorf("revision request should carry the current setup")
	}
	if got := svc.Session(sess.ID); len(got.Prompts) != 2 {
		t.Errorf("prompts = %v, want 2 entries", got.Prompts)
	}
}

func TestRequestUnknownSession(t *testing.T) {
	svc := NewGenerateService(&fakeProposer{setup: testSetup()}, nil, nil, nil)
	if _, err := svc.Request(context.Background(), "nope", "anything"); err == nil {
		t.Fatal("expected error for unknown session")
	}
}

func TestRequestOracleErrorLeavesSessionUntouched(t *testing.T) {
	prop := &fakeProposer{err: errors.New("model offline")}
	svc := NewGenerateService(prop, nil, nil, nil)
	sess := svc.NewSession()

	if _, err := svc.Request(context.Background(), sess.ID, "mill a pocket"); err == nil {
		t.Fatal("expected oracle error to propagate")
	}
	if sess.Revision != 0 || len(sess.Prompts) != 0 {
		t.Errorf("failed request must not advance the session: rev=%d prompts=%v", sess.Revision, sess.Prompts)
	}
}

func TestRequestRejectsMachineLimitViolation(t *testing.T) {
	prof := &profile.Profile{
		Machine: "small mill",
		Limits:  profile.Limits{MaxSpindleRPM: 2000},
	}
	prop := &fakeProposer{setup: testSetup()} // spindle_speed 3000
	svc := NewGenerateService(prop, nil, prof, nil)
	sess := svc.NewSession()

	_, err := svc.Request(context.Background(), sess.ID, "mill a pocket")
	if err == nil {
		t.Fatal("expected limit violation error")
	}
	if !strings.Contains(err.Error(), "machine limits") {
		t.Errorf("error = %v, want machine limits mention", err)
	}
	if !strings.Contains(err.Error(), "operations[0].spindle_speed") {
		t.Errorf("error = %v, want offending field named", err)
	}
	if sess.Revision != 0 {
		t.Errorf("rejected proposal must not advance the session")
	}
}

func TestRequestPersistsSession(t *testing.T) {
	st := newFakeStore()
	svc := NewGenerateService(&fakeProposer{setup: testSetup()}, st, nil, nil)
	sess := svc.NewSession()

	if _, err := svc.Request(context.Background(), sess.ID, "mill a pocket"); err != nil {
		t.Fatalf("Request() error: %v", err)
	}
	in, ok := st.sessions[sess.ID]
	if !ok {
		t.Fatalf("session %q not persisted", sess.ID)
	}
	if in.Revision != 1 || len(in.Prompts) != 1 {
		t.Errorf("persisted rev=%d prompts=%v", in.Revision, in.Prompts)
	}
	if in.ProgramID != nil {
		t.Errorf("unsaved session must not link a program")
	}
}

func TestRequestSurvivesStoreFailure(t *testing.T) {
	st := newFakeStore()
	st.sessionErr = errors.New("connection refused")
	svc := NewGenerateService(&fakeProposer{setup: testSetup()}, st, nil, nil)
	sess := svc.NewSession()

	res, err := svc.Request(context.Background(), sess.ID, "mill a pocket")
	if err != nil {
		t.Fatalf("a dead database must not fail the request: %v", err)
	}
	if res.Revision != 1 {
		t.Errorf("revision = %d, want 1", res.Revision)
	}
}

func TestRequestFromImageRequiresImage(t *testing.T) {
	svc := NewGenerateService(&fakeProposer{setup: testSetup()}, nil, nil, nil)
	sess := svc.NewSession()
	if _, err := svc.RequestFromImage(context.Background(), sess.ID, "", nil, "image/png"); err == nil {
		t.Fatal("expected error for empty image")
	}
}

func TestSaveLinksSession(t *testing.T) {
	st := newFakeStore()
	svc := NewGenerateService(&fakeProposer{setup: testSetup()}, st, nil, nil)
	sess := svc.NewSession()

	if _, err := svc.Request(context.Background(), sess.ID, "mill a pocket"); err != nil {
		t.Fatalf("Request() error: %v", err)
	}
	rec, err := svc.Save(context.Background(), sess.ID, "Flange Plate")
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if rec.Name != "Flange Plate" {
		t.Errorf("name = %q", rec.Name)
	}
	if rec.Model != "fake-model" {
		t.Errorf("model = %q, want fake-model", rec.Model)
	}
	if rec.Revision != 1 {
		t.Errorf("revision = %d, want 1", rec.Revision)
	}

	in := st.sessions[sess.ID]
	if in.ProgramID == nil || *in.ProgramID != st.lastProgramID {
		t.Errorf("session not linked to saved program: %v", in.ProgramID)
	}
}

func TestSaveRetriesOnSlugCollision(t *testing.T) {
	st := newFakeStore()
	st.collideOnce = true
	svc := NewGenerateService(&fakeProposer{setup: testSetup()}, st, nil, nil)
	sess := svc.NewSession()

	if _, err := svc.Request(context.Background(), sess.ID, "mill a pocket"); err != nil {
		t.Fatalf("Request() error: %v", err)
	}
	rec, err := svc.Save(context.Background(), sess.ID, "Flange Plate")
	if err != nil {
		t.Fatalf("Save() after collision error: %v", err)
	}
	if !strings.Contains(rec.Name, sess.ID) {
		t.Errorf("retry name %q should carry the session ID", rec.Name)
	}
}

func TestResumeFromStore(t *testing.T) {
	st := newFakeStore()
	first := NewGenerateService(&fakeProposer{setup: testSetup()}, st, nil, nil)
	sess := first.NewSession()
	if _, err := first.Request(context.Background(), sess.ID, "mill a pocket"); err != nil {
		t.Fatalf("Request() error: %v", err)
	}

	// A fresh service has no in-memory sessions; it must restore from the store.
	second := NewGenerateService(&fakeProposer{setup: testSetup()}, st, nil, nil)
	resumed, err := second.Resume(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("Resume() error: %v", err)
	}
	if resumed.Revision != 1 || len(resumed.Prompts) != 1 {
		t.Errorf("resumed rev=%d prompts=%v", resumed.Revision, resumed.Prompts)
	}
	if resumed.Setup == nil || len(resumed.Setup.Operations) != 1 {
		t.Errorf("resumed setup not restored: %+v", resumed.Setup)
	}
	if !strings.Contains(resumed.Text, "POCKET4") {
		t.Errorf("resumed text not re-emitted:\n%s", resumed.Text)
	}

	// A second request continues the prompt history.
	res, err := second.Request(context.Background(), sess.ID, "add a drill")
	if err != nil {
		t.Fatalf("Request() after resume error: %v", err)
	}
	if res.Revision != 2 {
		t.Errorf("revision = %d, want 2", res.Revision)
	}
}

func TestResumeUnknownSession(t *testing.T) {
	svc := NewGenerateService(&fakeProposer{setup: testSetup()}, newFakeStore(), nil, nil)
	if _, err := svc.Resume(context.Background(), "missing1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveRequiresProgram(t *testing.T) {
	svc := NewGenerateService(&fakeProposer{setup: testSetup()}, newFakeStore(), nil, nil)
	sess := svc.NewSession()
	if _, err := svc.Save(context.Background(), sess.ID, "Empty"); err == nil {
		t.Fatal("expected error for session without a program")
	}
}

func TestSaveWithoutStore(t *testing.T) {
	svc := NewGenerateService(&fakeProposer{setup: testSetup()}, nil, nil, nil)
	sess := svc.NewSession()
	if _, err := svc.Save(context.Background(), sess.ID, "Anything"); err == nil {
		t.Fatal("expected error when no database is configured")
	}
}

// Package service provides business logic for millwright operations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mbuchner/millwright/internal/metrics"
	"github.com/mbuchner/millwright/internal/model"
	"github.com/mbuchner/millwright/internal/post"
	"github.com/mbuchner/millwright/internal/profile"
	"github.com/mbuchner/millwright/internal/store"
	"github.com/mbuchner/millwright/internal/toolpath"
)

// Proposer asks the oracle for setups.
type Proposer interface {
	ProposeSetup(ctx context.Context, request string, current *model.Setup) (*model.Setup, error)
	ProposeSetupFromImage(ctx context.Context, request string, image []byte, mimeType string) (*model.Setup, error)
	Model() string
}

// SessionStore persists sessions and saved programs.
type SessionStore interface {
	UpsertSession(ctx context.Context, id string, in store.SessionInput) (*store.SessionRecord, error)
	GetSession(ctx context.Context, id string) (*store.SessionRecord, error)
	UpsertProgram(ctx context.Context, id string, in store.ProgramInput) (*store.ProgramRecord, bool, error)
}

// Session accumulates one conversation with the oracle. Every request
// extends the prompt history and replaces the setup wholesale; the
// program text is always re-emitted from the full setup.
type Session struct {
	ID       string
	Prompts  []string
	Setup    *model.Setup
	Revision int
	Text     string
	Warnings []string

	mu sync.Mutex
}

// Result is the outcome of one generation round trip.
type Result struct {
	SessionID string
	Revision  int
	Setup     *model.Setup
	Text      string
	Warnings  []string
}

// GenerateService drives generation sessions: oracle proposal, machine
// limit checks, program emission, and persistence.
type GenerateService struct {
	oracle    Proposer
	store     SessionStore // nil when running without a database
	profile   *profile.Profile
	opts      post.Options
	collector *metrics.Collector

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewGenerateService creates a generate service. The store and collector
// may be nil; the profile defaults when nil.
func NewGenerateService(oracle Proposer, st SessionStore, prof *profile.Profile, collector *metrics.Collector) *GenerateService {
	if prof == nil {
		prof = profile.Default()
	}
	return &GenerateService{
		oracle:    oracle,
		store:     st,
		profile:   prof,
		opts:      prof.PostOptions(),
		collector: collector,
	}
}

// NewSession registers and returns a fresh session.
func (s *GenerateService) NewSession() *Session {
	sess := &Session{
		ID: uuid.New().String()[:8], // Short ID for convenience
	}

	s.mu.Lock()
	if s.sessions == nil {
		s.sessions = make(map[string]*Session)
	}
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	slog.Info("session created", "session_id", sess.ID, "model", s.oracle.Model())
	return sess
}

// Session retrieves a session by ID, nil if unknown.
func (s *GenerateService) Session(id string) *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[id]
}

// Resume returns the in-memory session for id, falling back to the stored
// record so a fresh process can continue an earlier invocation's session.
func (s *GenerateService) Resume(ctx context.Context, id string) (*Session, error) {
	if sess := s.Session(id); sess != nil {
		return sess, nil
	}
	if s.store == nil {
		return nil, fmt.Errorf("unknown session %q and no database to resume it from", id)
	}

	dbStart := time.Now()
	rec, err := s.store.GetSession(ctx, id)
	if s.collector != nil {
		s.collector.RecordTiming(metrics.OpDBQuery, time.Since(dbStart))
	}
	if err != nil {
		return nil, fmt.Errorf("load session %q: %w", id, err)
	}
	if rec == nil {
		return nil, fmt.Errorf("session %q: %w", id, store.ErrNotFound)
	}

	sess := &Session{
		ID:       id,
		Prompts:  rec.Prompts,
		Revision: rec.Revision,
	}
	if rec.SetupJSON != "" {
		setup, err := rec.DecodeSetup()
		if err != nil {
			return nil, fmt.Errorf("session %q: %w", id, err)
		}
		sess.Setup = setup
		sess.Text = post.EmitSetup(setup, s.opts)
	}

	s.mu.Lock()
	if s.sessions == nil {
		s.sessions = make(map[string]*Session)
	}
	s.sessions[id] = sess
	s.mu.Unlock()

	slog.Info("session resumed", "session_id", id, "revision", sess.Revision)
	return sess, nil
}

// Request runs one generation round trip: the prompt plus the session's
// current setup go to the oracle, the proposal is checked against the
// machine profile, and on success the session advances one revision.
// A rejected proposal leaves the session untouched.
func (s *GenerateService) Request(ctx context.Context, sessionID, prompt string) (*Result, error) {
	return s.request(ctx, sessionID, prompt, nil, "")
}

// RequestFromImage is Request with a part drawing or photo attached.
// Image requests always start the proposal from the image, but still
// extend the session they belong to.
func (s *GenerateService) RequestFromImage(ctx context.Context, sessionID, prompt string, image []byte, mimeType string) (*Result, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("empty image")
	}
	return s.request(ctx, sessionID, prompt, image, mimeType)
}

func (s *GenerateService) request(ctx context.Context, sessionID, prompt string, image []byte, mimeType string) (*Result, error) {
	sess := s.Session(sessionID)
	if sess == nil {
		return nil, fmt.Errorf("unknown session %q", sessionID)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	var setup *model.Setup
	var err error
	if image != nil {
		setup, err = s.oracle.ProposeSetupFromImage(ctx, prompt, image, mimeType)
	} else {
		setup, err = s.oracle.ProposeSetup(ctx, prompt, sess.Setup)
	}
	if err != nil {
		return nil, err
	}

	if errs := s.profile.CheckOperations(setup.Operations); len(errs) > 0 {
		lines := make([]string, len(errs))
		for i, e := range errs {
			lines[i] = e.Error()
		}
		return nil, fmt.Errorf("proposal violates machine limits:\n%s", strings.Join(lines, "\n"))
	}

	emitStart := time.Now()
	text := post.EmitSetup(setup, s.opts)
	if s.collector != nil {
		s.collector.RecordTiming(metrics.OpEmit, time.Since(emitStart))
	}

	pathStart := time.Now()
	pp := toolpath.BuildProgram(setup.Operations, toolpath.Options{SafeHeight: s.opts.SafeHeight})
	if s.collector != nil {
		s.collector.RecordTiming(metrics.OpToolpath, time.Since(pathStart))
	}
	var warnings []string
	for _, oc := range pp.Ops {
		warnings = append(warnings, oc.Warnings...)
	}

	sess.Prompts = append(sess.Prompts, prompt)
	sess.Setup = setup
	sess.Revision++
	sess.Text = text
	sess.Warnings = warnings

	s.persistSession(ctx, sess, nil)

	slog.Info("generation round trip complete",
		"session_id", sess.ID,
		"revision", sess.Revision,
		"operations", len(setup.Operations),
		"warnings", len(warnings))

	return &Result{
		SessionID: sess.ID,
		Revision:  sess.Revision,
		Setup:     setup,
		Text:      text,
		Warnings:  warnings,
	}, nil
}

// persistSession writes the session state, logging instead of failing:
// a dead database should not lose an interactive session.
// Caller must hold sess.mu.
func (s *GenerateService) persistSession(ctx context.Context, sess *Session, programID *string) {
	if s.store == nil || sess.Setup == nil {
		return
	}
	dbStart := time.Now()
	_, err := s.store.UpsertSession(ctx, sess.ID, store.SessionInput{
		Prompts:   sess.Prompts,
		Setup:     sess.Setup,
		Revision:  sess.Revision,
		ProgramID: programID,
	})
	if s.collector != nil {
		s.collector.RecordTiming(metrics.OpDBQuery, time.Since(dbStart))
	}
	if err != nil {
		slog.Warn("failed to persist session", "session_id", sess.ID, "error", err)
	}
}

// Save stores the session's current program under the given name and
// links the session to it. A slug collision gets one retry with the
// session ID appended.
func (s *GenerateService) Save(ctx context.Context, sessionID, name string) (*store.ProgramRecord, error) {
	if s.store == nil {
		return nil, fmt.Errorf("no database configured")
	}
	sess := s.Session(sessionID)
	if sess == nil {
		return nil, fmt.Errorf("unknown session %q", sessionID)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.Setup == nil {
		return nil, fmt.Errorf("session %q has no program to save", sessionID)
	}
	if name == "" {
		return nil, fmt.Errorf("program name required")
	}

	id := uuid.New().String()[:8]
	input := store.ProgramInput{
		Name:     name,
		Setup:    sess.Setup,
		Text:     sess.Text,
		Model:    s.oracle.Model(),
		Revision: sess.Revision,
	}

	dbStart := time.Now()
	rec, _, err := s.store.UpsertProgram(ctx, id, input)
	if errors.Is(err, store.ErrAlreadyExists) {
		input.Name = fmt.Sprintf("%s %s", name, sess.ID)
		rec, _, err = s.store.UpsertProgram(ctx, id, input)
	}
	if s.collector != nil {
		s.collector.RecordTiming(metrics.OpDBQuery, time.Since(dbStart))
	}
	if err != nil {
		return nil, fmt.Errorf("save program: %w", err)
	}

	s.persistSession(ctx, sess, &id)

	slog.Info("program saved", "session_id", sess.ID, "program_id", id, "name", input.Name)
	return rec, nil
}

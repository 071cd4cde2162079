package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"github.com/wricardo/statecraft/game/engine"
	"github.com/wricardo/statecraft/game/service"
)

const fileExt = ".jsonl.zst"

// Entry kinds
const (
	KindOpen   = "open"
	KindIntent = "intent"
)

// Entry is one journal line. The open entry carries everything needed to
// rebuild the engine; intent entries follow in dispatch order.
type Entry struct {
	ID      string    `json:"id"`
	Run     string    `json:"run"`
	Session string    `json:"session"`
	Seq     uint64    `json:"seq"`
	Kind    string    `json:"kind"`
	At      time.Time `json:"at"`

	Config  string              `json:"config,omitempty"`
	Seed    uint64              `json:"seed,omitempty"`
	Players []engine.PlayerSpec `json:"players,omitempty"`
	State   *engine.WorldState  `json:"state,omitempty"`
	Entropy []byte              `json:"entropy,omitempty"`

	Intent *engine.Intent `json:"intent,omitempty"`
}

type sessionFile struct {
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
	seq uint64
}

// Writer journals applied intents as compressed JSON lines, one file per
// session per process run: <dir>/<session>/<started>-<run>.jsonl.zst
type Writer struct {
	dir    string
	run    string
	logger *zap.Logger

	mu    sync.Mutex
	files map[string]*sessionFile
}

var _ service.Recorder = (*Writer)(nil)

// NewWriter creates a journal writer rooted at dir
func NewWriter(dir string, logger *zap.Logger) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{
		dir:    dir,
		run:    uuid.NewString(),
		logger: logger,
		files:  make(map[string]*sessionFile),
	}, nil
}

// Run returns the ID stamped on every entry written by this writer
func (w *Writer) Run() string { return w.run }

// Begin opens the session's file for this run and writes the open entry
// with the world as it stands before the next dispatch
func (w *Writer) Begin(sess *service.Session) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.files[sess.ID]; ok {
		return nil
	}

	entropy, err := sess.Engine.EntropyState()
	if err != nil {
		return fmt.Errorf("failed to capture entropy: %w", err)
	}

	dir := filepath.Join(w.dir, sess.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	name := fmt.Sprintf("%s-%s%s", time.Now().UTC().Format("20060102T150405"), w.run[:8], fileExt)
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	sf := &sessionFile{f: f, enc: enc, w: bufio.NewWriterSize(enc, 64*1024)}
	w.files[sess.ID] = sf

	w.logger.Debug("journal opened", zap.String("session", sess.ID), zap.String("file", name))
	return w.writeLocked(sf, Entry{
		Session: sess.ID,
		Kind:    KindOpen,
		Config:  sess.ConfigName,
		Seed:    sess.Engine.Seed(),
		Players: sess.Players,
		State:   sess.Engine.State(),
		Entropy: entropy,
	})
}

// Record appends an applied intent to the session's file
func (w *Writer) Record(sess *service.Session, in engine.Intent) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	sf, ok := w.files[sess.ID]
	if !ok {
		return fmt.Errorf("journal for session %s was not opened", sess.ID)
	}
	return w.writeLocked(sf, Entry{Session: sess.ID, Kind: KindIntent, Intent: &in})
}

// writeLocked stamps and writes one entry, then flushes it to disk as a
// complete zstd block so a crash loses at most the entry in flight
func (w *Writer) writeLocked(sf *sessionFile, e Entry) error {
	sf.seq++
	e.ID = uuid.NewString()
	e.Run = w.run
	e.Seq = sf.seq
	e.At = time.Now().UTC()

	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if _, err := sf.w.Write(b); err != nil {
		return err
	}
	if err := sf.w.WriteByte('\n'); err != nil {
		return err
	}
	if err := sf.w.Flush(); err != nil {
		return err
	}
	return sf.enc.Flush()
}

// CloseSession finishes the file of one session, e.g. after it is deleted
func (w *Writer) CloseSession(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	sf, ok := w.files[id]
	if !ok {
		return nil
	}
	delete(w.files, id)
	return sf.close()
}

// Close finishes every open file
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var first error
	for id, sf := range w.files {
		if err := sf.close(); err != nil && first == nil {
			first = err
		}
		delete(w.files, id)
	}
	return first
}

func (sf *sessionFile) close() error {
	_ = sf.w.Flush()
	err := sf.enc.Close()
	if cerr := sf.f.Close(); err == nil {
		err = cerr
	}
	return err
}

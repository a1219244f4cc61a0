package trace

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
)

var nameCleaner = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// DefaultFrameInterval bounds how often buffered snapshot frames flush to
// disk: a 5Hz replay cadence.
const DefaultFrameInterval = 200 * time.Millisecond

type frameBlob struct {
	Tick       uint64
	CapturedAt time.Time
	Payload    []byte
}

// Manifest describes the trace bundle layout so tooling can locate artifacts.
type Manifest struct {
	Version         int    `json:"version"`
	CreatedAt       string `json:"created_at"`
	FrameIntervalMs int    `json:"frame_interval_ms"`
	EventsPath      string `json:"events_path"`
	FramesPath      string `json:"frames_path"`
}

// Writer streams engine events and per-tick snapshot frames to disk.
type Writer struct {
	mu            sync.Mutex
	dir           string
	now           func() time.Time
	frameInterval time.Duration
	eventFile     *os.File
	eventStream   *snappy.Writer
	frameFile     *os.File
	frameStream   *zstd.Encoder
	pending       []frameBlob
	lastFlush     time.Time
	protocolHash  uint64
}

// NewWriter prepares the trace directory and opens compressed sinks under
// root/<name>-<timestamp>/.
func NewWriter(root, name string, protocolHash uint64, clock func() time.Time) (*Writer, Manifest, error) {
	if root == "" {
		return nil, Manifest{}, fmt.Errorf("trace root must be provided")
	}
	if clock == nil {
		clock = time.Now
	}
	cleaned := nameCleaner.ReplaceAllString(name, "")
	if cleaned == "" {
		cleaned = "session"
	}
	created := clock().UTC()
	folder := fmt.Sprintf("%s-%s", cleaned, created.Format("20060102T150405Z"))
	path := filepath.Join(root, folder)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, Manifest{}, err
	}

	eventsPath := filepath.Join(path, "events.jsonl.sz")
	framesPath := filepath.Join(path, "frames.bin.zst")
	manifestPath := filepath.Join(path, "manifest.json")

	eventFile, err := os.Create(eventsPath)
	if err != nil {
		return nil, Manifest{}, err
	}
	eventStream := snappy.NewBufferedWriter(eventFile)

	frameFile, err := os.Create(framesPath)
	if err != nil {
		eventFile.Close()
		return nil, Manifest{}, err
	}
	frameStream, err := zstd.NewWriter(frameFile)
	if err != nil {
		eventStream.Close()
		eventFile.Close()
		frameFile.Close()
		return nil, Manifest{}, err
	}

	manifest := Manifest{
		Version:         1,
		CreatedAt:       created.Format(time.RFC3339Nano),
		FrameIntervalMs: int(DefaultFrameInterval / time.Millisecond),
		EventsPath:      "events.jsonl.sz",
		FramesPath:      "frames.bin.zst",
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		frameStream.Close()
		frameFile.Close()
		eventStream.Close()
		eventFile.Close()
		return nil, Manifest{}, err
	}
	if err := os.WriteFile(manifestPath, data, 0o644); err != nil {
		frameStream.Close()
		frameFile.Close()
		eventStream.Close()
		eventFile.Close()
		return nil, Manifest{}, err
	}

	w := &Writer{
		dir:           path,
		now:           clock,
		frameInterval: DefaultFrameInterval,
		eventFile:     eventFile,
		eventStream:   eventStream,
		frameFile:     frameFile,
		frameStream:   frameStream,
		protocolHash:  protocolHash,
	}
	return w, manifest, nil
}

// Directory exposes the directory backing the trace bundle.
func (w *Writer) Directory() string {
	if w == nil {
		return ""
	}
	return w.dir
}

// AppendEvent writes one JSON event line to the compressed event log.
func (w *Writer) AppendEvent(tick uint64, eventType string, payload []byte) error {
	if w == nil {
		return fmt.Errorf("trace: writer not initialised")
	}
	captured := w.now().UTC()

	w.mu.Lock()
	defer w.mu.Unlock()

	record := struct {
		Tick       uint64 `json:"tick"`
		CapturedAt string `json:"captured_at"`
		Type       string `json:"type"`
		PayloadB64 string `json:"payload_b64"`
	}{
		Tick:       tick,
		CapturedAt: captured.Format(time.RFC3339Nano),
		Type:       eventType,
		PayloadB64: base64.StdEncoding.EncodeToString(payload),
	}
	line, err := json.Marshal(record)
	if err != nil {
		return err
	}
	if _, err := w.eventStream.Write(line); err != nil {
		return err
	}
	if _, err := w.eventStream.Write([]byte("\n")); err != nil {
		return err
	}
	return w.eventStream.Flush()
}

// AppendFrame buffers a binary snapshot frame until the configured cadence is reached.
func (w *Writer) AppendFrame(tick uint64, payload []byte) error {
	if w == nil {
		return fmt.Errorf("trace: writer not initialised")
	}
	captured := w.now().UTC()
	clone := append([]byte(nil), payload...)

	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending = append(w.pending, frameBlob{Tick: tick, CapturedAt: captured, Payload: clone})
	if w.lastFlush.IsZero() {
		w.lastFlush = captured
		return nil
	}
	if captured.Sub(w.lastFlush) >= w.frameInterval {
		if err := w.flushLocked(); err != nil {
			return err
		}
		w.lastFlush = captured
	}
	return nil
}

// Flush forces pending frames to be written regardless of cadence.
func (w *Writer) Flush() error {
	if w == nil {
		return fmt.Errorf("trace: writer not initialised")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.flushLocked(); err != nil {
		return err
	}
	w.lastFlush = w.now().UTC()
	return nil
}

// Close flushes all buffers, writes the header, and releases file handles.
func (w *Writer) Close() error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	var firstErr error
	headerPath := filepath.Join(w.dir, "header.json")
	header := Header{SchemaVersion: HeaderSchemaVersion, ProtocolHash: w.protocolHash, FilePointer: "manifest.json"}
	if err := WriteHeader(headerPath, header); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := w.flushLocked(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := w.eventStream.Flush(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := w.eventStream.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := w.eventFile.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := w.frameStream.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := w.frameFile.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func (w *Writer) flushLocked() error {
	if len(w.pending) == 0 {
		return nil
	}
	for _, frame := range w.pending {
		header := make([]byte, 8+8+4)
		binary.LittleEndian.PutUint64(header[0:8], frame.Tick)
		binary.LittleEndian.PutUint64(header[8:16], uint64(frame.CapturedAt.UnixNano()))
		binary.LittleEndian.PutUint32(header[16:20], uint32(len(frame.Payload)))
		if _, err := w.frameStream.Write(header); err != nil {
			return err
		}
		if _, err := w.frameStream.Write(frame.Payload); err != nil {
			return err
		}
	}
	w.pending = w.pending[:0]
	return nil
}

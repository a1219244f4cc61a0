package trace

import (
	"bufio"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
)

// EventEntry is one decoded line from the event stream.
type EventEntry struct {
	Tick       uint64
	CapturedAt time.Time
	Type       string
	Payload    []byte
}

// FrameEntry is one decoded snapshot frame.
type FrameEntry struct {
	Tick       uint64
	CapturedAt time.Time
	Payload    []byte
}

// Reader rehydrates a trace bundle written by Writer, for offline
// inspection and tooling.
type Reader struct {
	Header Header
}

// Open validates that dir contains a trace bundle and loads its header.
func Open(dir string) (*Reader, error) {
	header, err := ReadHeader(filepath.Join(dir, "header.json"))
	if err != nil {
		return nil, err
	}
	return &Reader{Header: header}, nil
}

// ReadEvents decodes every event line from dir's compressed event stream.
func ReadEvents(dir string) ([]EventEntry, error) {
	file, err := os.Open(filepath.Join(dir, "events.jsonl.sz"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(snappy.NewReader(file))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var entries []EventEntry
	for scanner.Scan() {
		var record struct {
			Tick       uint64 `json:"tick"`
			CapturedAt string `json:"captured_at"`
			Type       string `json:"type"`
			PayloadB64 string `json:"payload_b64"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			return nil, fmt.Errorf("trace: decode event line: %w", err)
		}
		captured, err := time.Parse(time.RFC3339Nano, record.CapturedAt)
		if err != nil {
			return nil, fmt.Errorf("trace: parse event captured_at: %w", err)
		}
		payload, err := base64.StdEncoding.DecodeString(record.PayloadB64)
		if err != nil {
			return nil, fmt.Errorf("trace: decode event payload: %w", err)
		}
		entries = append(entries, EventEntry{Tick: record.Tick, CapturedAt: captured, Type: record.Type, Payload: payload})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// ReadFrames decodes every snapshot frame from dir's compressed frame stream.
func ReadFrames(dir string) ([]FrameEntry, error) {
	file, err := os.Open(filepath.Join(dir, "frames.bin.zst"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decoder, err := zstd.NewReader(file)
	if err != nil {
		return nil, err
	}
	defer decoder.Close()

	var entries []FrameEntry
	header := make([]byte, 8+8+4)
	for {
		if _, err := io.ReadFull(decoder, header); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("trace: read frame header: %w", err)
		}
		tick := binary.LittleEndian.Uint64(header[0:8])
		capturedNano := int64(binary.LittleEndian.Uint64(header[8:16]))
		length := binary.LittleEndian.Uint32(header[16:20])

		payload := make([]byte, length)
		if _, err := io.ReadFull(decoder, payload); err != nil {
			return nil, fmt.Errorf("trace: read frame payload: %w", err)
		}
		entries = append(entries, FrameEntry{Tick: tick, CapturedAt: time.Unix(0, capturedNano).UTC(), Payload: payload})
	}
	return entries, nil
}

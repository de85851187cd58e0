package transport

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/within-protocol/within-go/pkg/log"
)

// Framing constants.
const (
	// LengthPrefixSize is the size of the big-endian length prefix.
	LengthPrefixSize = 4

	// DefaultMaxMessageSize bounds a single payload (1 MiB).
	DefaultMaxMessageSize = 1 << 20

	// MaxLogFrameDataSize bounds the bytes copied into a FrameEvent.
	MaxLogFrameDataSize = 4096
)

// Framing errors.
var (
	ErrMessageTooLarge = errors.New("message too large")
	ErrMessageEmpty    = errors.New("message is empty")
	ErrFrameTruncated  = errors.New("frame truncated")
)

// frameLog is the optional protocol capture shared by reader and writer.
type frameLog struct {
	logger log.Logger
	connID string
	remote string
}

func (fl *frameLog) record(data []byte, dir log.Direction) {
	if fl.logger == nil {
		return
	}
	logged, truncated := data, false
	if len(logged) > MaxLogFrameDataSize {
		logged, truncated = logged[:MaxLogFrameDataSize], true
	}
	fl.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: fl.connID,
		Direction:    dir,
		Layer:        log.LayerTransport,
		Category:     log.CategoryMessage,
		RemoteAddr:   fl.remote,
		Frame: &log.FrameEvent{
			Size:      LengthPrefixSize + len(data),
			Data:      append([]byte(nil), logged...),
			Truncated: truncated,
		},
	})
}

// Framer reads and writes length-prefixed frames on a stream.
// Writes are serialized; reads must come from one goroutine at a time.
type Framer struct {
	rw      io.ReadWriter
	maxSize uint32
	writeMu sync.Mutex
	lenBuf  [LengthPrefixSize]byte
	log     frameLog
}

// NewFramer returns a framer with DefaultMaxMessageSize.
func NewFramer(rw io.ReadWriter) *Framer {
	return NewFramerWithMaxSize(rw, DefaultMaxMessageSize)
}

// NewFramerWithMaxSize returns a framer that rejects payloads above maxSize.
func NewFramerWithMaxSize(rw io.ReadWriter, maxSize uint32) *Framer {
	if maxSize == 0 {
		maxSize = DefaultMaxMessageSize
	}
	return &Framer{rw: rw, maxSize: maxSize}
}

// SetLogger enables frame capture. Pass nil to disable.
func (f *Framer) SetLogger(logger log.Logger, connID, remote string) {
	f.log = frameLog{logger: logger, connID: connID, remote: remote}
}

// WriteFrame writes data with its length prefix in a single write.
func (f *Framer) WriteFrame(data []byte) error {
	if len(data) == 0 {
		return ErrMessageEmpty
	}
	if uint64(len(data)) > uint64(f.maxSize) {
		return fmt.Errorf("%w: %d > %d", ErrMessageTooLarge, len(data), f.maxSize)
	}

	buf := make([]byte, LengthPrefixSize+len(data))
	binary.BigEndian.PutUint32(buf, uint32(len(data)))
	copy(buf[LengthPrefixSize:], data)

	f.writeMu.Lock()
	_, err := f.rw.Write(buf)
	f.writeMu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}

	f.log.record(data, log.DirectionOut)
	return nil
}

// ReadFrame reads one frame and returns its payload. A clean end of stream
// before a prefix returns io.EOF.
func (f *Framer) ReadFrame() ([]byte, error) {
	if _, err := io.ReadFull(f.rw, f.lenBuf[:]); err != nil {
		switch {
		case errors.Is(err, io.EOF):
			return nil, io.EOF
		case errors.Is(err, io.ErrUnexpectedEOF):
			return nil, ErrFrameTruncated
		default:
			return nil, fmt.Errorf("failed to read length prefix: %w", err)
		}
	}

	length := binary.BigEndian.Uint32(f.lenBuf[:])
	if length == 0 {
		return nil, ErrMessageEmpty
	}
	if length > f.maxSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrMessageTooLarge, length, f.maxSize)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(f.rw, payload); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrFrameTruncated
		}
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}

	f.log.record(payload, log.DirectionIn)
	return payload, nil
}

// FrameSize returns the on-wire size of a payload of n bytes.
func FrameSize(n int) int {
	return LengthPrefixSize + n
}

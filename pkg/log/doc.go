// Package log captures protocol events exchanged with a Within agent.
//
// Protocol capture is separate from operational logging (slog): it records
// a machine-readable trace of frames, calls, replies and state changes that
// can be replayed with the within-log tool.
//
// # Basic Usage
//
//	// Console output via slog at debug level
//	cfg.ProtocolLogger = log.NewSlogAdapter(slog.Default())
//
//	// Binary capture file
//	fl, _ := log.NewFileLogger("session.wlog")
//	defer fl.Close()
//	cfg.ProtocolLogger = fl
//
//	// Both
//	cfg.ProtocolLogger = log.NewMultiLogger(log.NewSlogAdapter(slog.Default()), fl)
//
// # Layers
//
//   - Transport: raw frames (FrameEvent)
//   - Wire: decoded calls and replies (MessageEvent)
//   - Session: session and listener state changes (StateChangeEvent)
//
// Errors at any layer use ErrorEventData.
//
// # File Format
//
// Capture files are a stream of CBOR-encoded Events with integer keys.
package log

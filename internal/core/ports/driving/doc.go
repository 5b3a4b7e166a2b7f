// Package driving defines interfaces external actors (the WebDAV handler,
// the CLI) use to drive the application, plus the one capability contract
// the design calls out as swappable on this side of the hexagon:
// FileProcessor, the unit the worker loop invokes per task.
//
// Implementations live in internal/worker (FileProcessor) and
// internal/notifier (Notifier).
package driving

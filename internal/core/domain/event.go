package domain

import "time"

// ChangeKind classifies a FileChangeEvent.
type ChangeKind string

const (
	ChangeCreated  ChangeKind = "Created"
	ChangeModified ChangeKind = "Modified"
	ChangeDeleted  ChangeKind = "Deleted"
	ChangeRenamed  ChangeKind = "Renamed"
	ChangeCopied   ChangeKind = "Copied"
	ChangeMoved    ChangeKind = "Moved"
)

// ChangeOrigin distinguishes events raised by the OS-level watcher from
// those reported in-process by the WebDAV handler (or any other mutator).
type ChangeOrigin string

const (
	OriginWebDAV     ChangeOrigin = "WebDav"
	OriginFileSystem ChangeOrigin = "FileSystem"
)

// FileChangeEvent is the notifier's unit of delivery, merging OS watcher
// events with application-originated change notifications.
type FileChangeEvent struct {
	Kind         ChangeKind
	Origin       ChangeOrigin
	RelativePath string
	PhysicalPath string
	IsDirectory  bool

	OldRelativePath *string
	OldPhysicalPath *string

	TimestampUTC time.Time
}

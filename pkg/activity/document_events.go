package activity

import (
	"strings"
	"time"
)

// Verbs and object types emitted for document lifecycle changes.
const (
	VerbDocumentCreated  = "document.created"
	VerbDocumentWritten  = "document.written"
	VerbDocumentArchived = "document.archived"

	ObjectTypeDocument = "document"
)

// DocumentEventInput describes the common fields for document events.
type DocumentEventInput struct {
	ActorID    string
	Name       string
	Scope      string
	Path       string
	SnapshotID string
	Slot       int
	Channel    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildDocumentCreatedEvent describes a document initialized on first read.
func BuildDocumentCreatedEvent(input DocumentEventInput) Event {
	return buildDocumentEvent(VerbDocumentCreated, input)
}

// BuildDocumentWrittenEvent describes a committed document write.
func BuildDocumentWrittenEvent(input DocumentEventInput) Event {
	return buildDocumentEvent(VerbDocumentWritten, input)
}

// BuildDocumentArchivedEvent describes the live document being copied into
// archive slot 0 ahead of a write.
func BuildDocumentArchivedEvent(input DocumentEventInput) Event {
	event := buildDocumentEvent(VerbDocumentArchived, input)
	event.Metadata = ensureMetadata(event.Metadata)
	event.Metadata["slot"] = input.Slot
	return event
}

func buildDocumentEvent(verb string, input DocumentEventInput) Event {
	metadata := cloneMap(input.Metadata)
	if input.Scope != "" {
		metadata = ensureMetadata(metadata)
		metadata["scope"] = input.Scope
	}
	if input.Path != "" {
		metadata = ensureMetadata(metadata)
		metadata["path"] = input.Path
	}
	if input.SnapshotID != "" {
		metadata = ensureMetadata(metadata)
		metadata["snapshot_id"] = input.SnapshotID
	}

	objectID := strings.TrimSpace(input.Name)
	if objectID == "" {
		objectID = strings.TrimSpace(input.Path)
	}
	if objectID == "" {
		objectID = ObjectTypeDocument
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		ObjectType: ObjectTypeDocument,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}

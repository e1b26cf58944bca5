package usersink_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-artificial-world/pkg/activity"
	"github.com/goliatone/go-artificial-world/pkg/activity/usersink"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

type recordingSink struct {
	records []usertypes.ActivityRecord
	err     error
}

func (s *recordingSink) Log(_ context.Context, record usertypes.ActivityRecord) error {
	s.records = append(s.records, record)
	return s.err
}

func TestHookNotifyMapsDocumentEvent(t *testing.T) {
	sink := &recordingSink{}
	tenantID := uuid.New()
	hook := usersink.Hook{Sink: sink, TenantID: tenantID}

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	actorID := uuid.New()

	event := activity.BuildDocumentWrittenEvent(activity.DocumentEventInput{
		ActorID:    actorID.String(),
		Name:       "settings.json",
		Scope:      "primary",
		SnapshotID: "snap-1",
		Channel:    "documents",
		OccurredAt: now,
	})

	if err := hook.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}

	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	record := sink.records[0]
	if record.ActorID != actorID || record.UserID != actorID {
		t.Fatalf("expected actor %s got actor=%s user=%s", actorID, record.ActorID, record.UserID)
	}
	if record.TenantID != tenantID {
		t.Fatalf("expected tenant %s got %s", tenantID, record.TenantID)
	}
	if record.Verb != activity.VerbDocumentWritten || record.ObjectType != activity.ObjectTypeDocument || record.ObjectID != "settings.json" {
		t.Fatalf("unexpected record payload: %+v", record)
	}
	if record.Channel != "documents" {
		t.Fatalf("expected channel documents got %q", record.Channel)
	}
	if !record.OccurredAt.Equal(now) {
		t.Fatalf("expected occurred_at %v got %v", now, record.OccurredAt)
	}
	if record.Data["snapshot_id"] != "snap-1" || record.Data["scope"] != "primary" {
		t.Fatalf("expected metadata passthrough got %v", record.Data)
	}
	if _, ok := record.Data["actor"]; ok {
		t.Fatalf("uuid actors should not be copied into data: %v", record.Data)
	}
}

func TestHookNotifyKeepsNamedActorInData(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	err := hook.Notify(context.Background(), activity.Event{
		Verb:       activity.VerbDocumentWritten,
		ActorID:    "listener",
		ObjectType: activity.ObjectTypeDocument,
		ObjectID:   "world.json",
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	record := sink.records[0]
	if record.ActorID != uuid.Nil {
		t.Fatalf("expected nil actor uuid, got %s", record.ActorID)
	}
	if record.Data["actor"] != "listener" {
		t.Fatalf("expected actor name in data, got %v", record.Data)
	}
}

func TestHookNotifySkipsMissingVerb(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	_ = hook.Notify(context.Background(), activity.Event{})

	if len(sink.records) != 0 {
		t.Fatalf("expected no records for empty event, got %d", len(sink.records))
	}
}

func TestHookNotifyDefaultsTimestamp(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	err := hook.Notify(context.Background(), activity.Event{
		Verb:       activity.VerbDocumentCreated,
		ObjectType: activity.ObjectTypeDocument,
		ObjectID:   "1",
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	if sink.records[0].OccurredAt.IsZero() {
		t.Fatalf("expected occurred_at to be defaulted")
	}
}

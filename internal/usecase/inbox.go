package usecase

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/seabird-social/seabird/internal/domain"
)

var inboxTracer = otel.Tracer("inbox")

// InboxUsecase drives the ingestion pipeline for inbound Like activities.
// The pipeline short-circuits on the first failing step.
type InboxUsecase struct {
	instance domain.Instance
	actors   RemoteActorResolver
	notes    NoteRepository
	fetcher  ProfileFetcher
}

func NewInboxUsecase(instance domain.Instance, actors RemoteActorResolver, notes NoteRepository, fetcher ProfileFetcher) *InboxUsecase {
	return &InboxUsecase{
		instance: instance,
		actors:   actors,
		notes:    notes,
		fetcher:  fetcher,
	}
}

// ProcessLike accepts a federated Like of a local note: it validates the
// activity, resolves the remote actor's profile, resolves the local target
// and persists the like edge together with the actor in one unit of work.
func (uc *InboxUsecase) ProcessLike(ctx context.Context, activity domain.LikeActivity) error {
	ctx, span := inboxTracer.Start(ctx, "Inbox.ProcessLike")
	defer span.End()

	if !strings.EqualFold(activity.Type, "like") {
		return domain.ErrUnsupportedActivity
	}
	if !activity.Validate() {
		return domain.ValidationError{Reason: "malformed activity"}
	}

	// Why would anyone send us a like one of our own actors did
	if uc.instance.IsSameHost(activity.Actor) {
		return domain.ErrSelfLike
	}

	profile, err := uc.fetcher.Fetch(ctx, activity.Actor)
	if err != nil {
		span.RecordError(err)
		slog.WarnContext(ctx, "failed to resolve actor of activity",
			slog.String("activity", activity.ID),
			slog.String("error", err.Error()),
			slog.String("module", "inbox"),
		)
		return domain.ErrActorResolution
	}

	if !uc.instance.IsSameHost(activity.Object) {
		// this inbox is definitely the wrong place for a like of a foreign object
		return domain.ErrForeignTarget
	}

	localID, err := localIDOf(activity.Object)
	if err != nil {
		return domain.ValidationError{Reason: "failed to parse local ID of object"}
	}

	note, err := uc.notes.GetByID(ctx, localID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NotFoundError{Resource: "object"}
		}
		return err
	}

	actor, err := uc.actors.ResolveOrCreateRemoteActor(ctx, profile.ID, profile.PreferredUsername, profile.Name)
	if err != nil {
		span.RecordError(err)
		return pkgerrors.Wrap(domain.ErrProcessingFailed, err.Error())
	}

	if err := uc.notes.Like(ctx, actor, note.ID); err != nil {
		span.RecordError(err)
		slog.ErrorContext(ctx, "failed to process like activity",
			slog.String("activity", activity.ID),
			slog.String("error", err.Error()),
			slog.String("module", "inbox"),
		)
		return pkgerrors.Wrap(domain.ErrProcessingFailed, err.Error())
	}

	return nil
}

// localIDOf extracts the final path segment of the object URI and parses it
// as a note ID token.
func localIDOf(raw string) (uuid.UUID, error) {
	uri, err := url.Parse(raw)
	if err != nil {
		return uuid.Nil, err
	}
	segments := strings.Split(strings.TrimSuffix(uri.Path, "/"), "/")
	last := segments[len(segments)-1]
	return uuid.Parse(last)
}

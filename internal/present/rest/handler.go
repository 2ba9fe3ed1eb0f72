package rest

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/seabird-social/seabird/internal/domain"
	"github.com/seabird-social/seabird/internal/present/rest/middleware"
	"github.com/seabird-social/seabird/internal/present/rest/presenter"
	"github.com/seabird-social/seabird/internal/usecase"
)

type Handler struct {
	instance domain.Instance
	actor    *usecase.ActorUsecase
	note     *usecase.NoteUsecase
	ceremony *usecase.CeremonyUsecase
	inbox    *usecase.InboxUsecase
	sessions usecase.AuthSessionStore
}

func NewHandler(
	instance domain.Instance,
	actor *usecase.ActorUsecase,
	note *usecase.NoteUsecase,
	ceremony *usecase.CeremonyUsecase,
	inbox *usecase.InboxUsecase,
	sessions usecase.AuthSessionStore,
) *Handler {
	return &Handler{
		instance: instance,
		actor:    actor,
		note:     note,
		ceremony: ceremony,
		inbox:    inbox,
		sessions: sessions,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo, session *middleware.SessionMiddleware) {
	e.GET("/.well-known/webfinger", h.handleWebfinger)
	e.GET("/.well-known/nodeinfo", h.handleNodeInfo)
	e.GET("/.well-known/nodeinfo/2.0", h.handleNodeInfo2)

	e.GET("/api/actor/:id", h.handleActorProfile)
	e.GET("/api/actor/:id/outbox", h.handleActorOutbox)
	e.GET("/api/actor/:id/inbox", h.handleActorInbox)
	e.POST("/api/actor/:id/inbox", h.handleInboxPost)
	e.GET("/api/note/:id", h.handleNote)
	e.GET("/api/note/:id/likes", h.handleNoteLikes)

	e.POST("/api/actor/note", h.handlePublishNote, session.RequireIdentity)
	e.GET("/api/actor/note", h.handleOwnNotes, session.RequireIdentity)

	auth := e.Group("/api/authenticate", session.EnsureSession)
	auth.POST("/attestation/options", h.handleAttestationOptions)
	auth.POST("/attestation/make", h.handleAttestationMake)
	auth.POST("/assertion/options", h.handleAssertionOptions)
	auth.POST("/assertion/make", h.handleAssertionMake)
	auth.GET("/me", h.handleMe, session.RequireIdentity)
}

func (h *Handler) handleActorProfile(c echo.Context) error {
	ctx := c.Request().Context()

	actor, err := h.actor.ResolveByIdentifier(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrIdentifierNotRecognized) {
			return presenter.BadRequestMessage(c, "ID format not recognized.")
		}
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "user not found.")
		}
		return presenter.InternalError(c, err)
	}

	return presenter.Activity(c, presenter.NewActorView(h.instance.BaseURL, actor))
}

func (h *Handler) handleActorOutbox(c echo.Context) error {
	ctx := c.Request().Context()

	actor, err := h.actor.ResolveByIdentifier(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrIdentifierNotRecognized) {
			return presenter.BadRequestMessage(c, "ID format not recognized.")
		}
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "user not found.")
		}
		return presenter.InternalError(c, err)
	}

	limit := 100
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		limitInt, err := strconv.Atoi(limitStr)
		if err != nil {
			return presenter.BadRequestMessage(c, "invalid limit parameter")
		}
		limit = limitInt
	}
	if limit > 100 {
		limit = 100
	}
	offset := 0
	if offsetStr := c.QueryParam("offset"); offsetStr != "" {
		offsetInt, err := strconv.Atoi(offsetStr)
		if err != nil {
			return presenter.BadRequestMessage(c, "invalid offset parameter")
		}
		offset = offsetInt
	}

	notes, total, err := h.note.ListByAuthor(ctx, actor, limit, offset)
	if err != nil {
		return presenter.InternalError(c, err)
	}

	views := make([]presenter.NoteView, 0, len(notes))
	for _, n := range notes {
		views = append(views, presenter.NewNoteView(h.instance.BaseURL, actor, n))
	}
	return presenter.Activity(c, presenter.NewOrderedCollection("", total, views))
}

func (h *Handler) handleActorInbox(c echo.Context) error {
	return presenter.Activity(c, presenter.NewOrderedCollection("Actually, this is not implemented", 0, []presenter.NoteView{}))
}

func (h *Handler) handleInboxPost(c echo.Context) error {
	ctx := c.Request().Context()

	var activity domain.LikeActivity
	if err := c.Bind(&activity); err != nil {
		return presenter.BadRequest(c, err)
	}

	err := h.inbox.ProcessLike(ctx, activity)
	switch {
	case err == nil:
		return presenter.OK(c, echo.Map{"status": "ok"})
	case errors.Is(err, domain.ErrUnsupportedActivity):
		return c.JSON(http.StatusMethodNotAllowed, echo.Map{
			"error": "Activities of type " + activity.Type + " are not supported (yet).",
		})
	case errors.Is(err, domain.ErrSelfLike):
		return presenter.BadRequestMessage(c, "Actor of like is on this instance, like Activity is therefore nonsensical.")
	case errors.Is(err, domain.ErrActorResolution):
		return presenter.BadRequestMessage(c, "Could not resolve activity actor.")
	case errors.Is(err, domain.ErrForeignTarget):
		return presenter.BadRequestMessage(c, "Target of like is not any object on this Instance.")
	case errors.Is(err, domain.ErrNotFound):
		return presenter.NotFound(c, "Object not found (Looked for: Note).")
	case errors.Is(err, domain.ErrInvalid):
		return presenter.BadRequest(c, err)
	default:
		return presenter.InternalError(c, err)
	}
}

func (h *Handler) handleNote(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid note id")
	}

	note, err := h.note.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "note not found")
		}
		return presenter.InternalError(c, err)
	}

	accept := c.Request().Header.Get("Accept")
	if strings.Contains(accept, "activity+json") || strings.Contains(accept, "ld+json") {
		return presenter.Activity(c, presenter.NewNoteView(h.instance.BaseURL, note.Author, note))
	}
	return presenter.OK(c, presenter.NewSimpleNoteView(note))
}

func (h *Handler) handleNoteLikes(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid note id")
	}

	note, err := h.note.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "note not found")
		}
		return presenter.InternalError(c, err)
	}

	actors, err := h.note.ListLikes(ctx, note)
	if err != nil {
		return presenter.InternalError(c, err)
	}

	items := make([]string, 0, len(actors))
	for _, a := range actors {
		if a.IsRemote() {
			items = append(items, a.URI)
		} else {
			items = append(items, h.instance.BaseURL+"/api/actor/"+a.ID.String())
		}
	}
	return presenter.Activity(c, presenter.NewOrderedCollection("", int64(len(items)), items))
}

type noteCreateRequest struct {
	Content string `json:"content"`
}

func (h *Handler) handlePublishNote(c echo.Context) error {
	ctx := c.Request().Context()

	var req noteCreateRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	actor, err := h.requester(c)
	if err != nil {
		return err
	}

	note, err := h.note.Publish(ctx, actor, req.Content)
	if err != nil {
		if errors.Is(err, domain.ErrInvalid) {
			return presenter.BadRequest(c, err)
		}
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, presenter.NewSimpleNoteView(note))
}

func (h *Handler) handleOwnNotes(c echo.Context) error {
	ctx := c.Request().Context()

	actor, err := h.requester(c)
	if err != nil {
		return err
	}

	notes, _, err := h.note.ListByAuthor(ctx, actor, 100, 0)
	if err != nil {
		return presenter.InternalError(c, err)
	}

	views := make([]presenter.SimpleNoteView, 0, len(notes))
	for _, n := range notes {
		n.Author = actor
		views = append(views, presenter.NewSimpleNoteView(n))
	}
	return presenter.OK(c, views)
}

func (h *Handler) handleAttestationOptions(c echo.Context) error {
	ctx := c.Request().Context()

	username := c.FormValue("username")
	if username == "" {
		return presenter.BadRequestMessage(c, "username is required")
	}
	displayName := c.FormValue("displayName")
	attestation := c.FormValue("attType")

	challenge, err := h.ceremony.BeginRegistration(ctx, sessionID(c), username, displayName, attestation)
	if err != nil {
		if errors.Is(err, domain.ErrInvalid) {
			return presenter.BadRequest(c, err)
		}
		return presenter.InternalError(c, err)
	}
	return c.JSONBlob(http.StatusOK, challenge)
}

func (h *Handler) handleAttestationMake(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	bound, actor, err := h.ceremony.CompleteRegistration(ctx, sessionID(c), body)
	switch {
	case err == nil:
		return presenter.OK(c, echo.Map{
			"status":     "ok",
			"credential": bound,
			"actor":      presenter.NewProfileView(actor),
		})
	case errors.Is(err, domain.ErrMissingCeremonyState):
		return presenter.BadRequestMessage(c, "no pending registration challenge, request attestation options first")
	case errors.Is(err, domain.ErrDuplicateCredential):
		return presenter.Conflict(c, "credential is already registered")
	case errors.Is(err, domain.ErrVerification), errors.Is(err, domain.ErrInvalid):
		return presenter.BadRequest(c, err)
	default:
		return presenter.InternalError(c, err)
	}
}

func (h *Handler) handleAssertionOptions(c echo.Context) error {
	ctx := c.Request().Context()

	username := c.FormValue("username")
	if username == "" {
		return presenter.BadRequestMessage(c, "username is required")
	}

	challenge, err := h.ceremony.BeginAssertion(ctx, sessionID(c), username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "Username not found")
		}
		return presenter.InternalError(c, err)
	}
	return c.JSONBlob(http.StatusOK, challenge)
}

func (h *Handler) handleAssertionMake(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	actor, err := h.ceremony.CompleteAssertion(ctx, sessionID(c), body)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrMissingCeremonyState):
		return presenter.BadRequestMessage(c, "no pending assertion challenge, request assertion options first")
	case errors.Is(err, domain.ErrNotFound):
		return presenter.NotFound(c, "credential not recognized")
	case errors.Is(err, domain.ErrVerification), errors.Is(err, domain.ErrInvalid):
		return presenter.BadRequest(c, err)
	default:
		return presenter.InternalError(c, err)
	}

	token, err := h.sessions.IssueAuthSession(ctx, actor.Username)
	if err != nil {
		return presenter.InternalError(c, err)
	}
	c.SetCookie(&http.Cookie{
		Name:     domain.AuthCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})

	return presenter.OK(c, presenter.NewProfileView(actor))
}

func (h *Handler) handleMe(c echo.Context) error {
	actor, err := h.requester(c)
	if err != nil {
		return err
	}
	return presenter.OK(c, presenter.NewProfileView(actor))
}

// requester resolves the authenticated actor from the request context. The
// session outliving the actor row is treated as a stale identity.
func (h *Handler) requester(c echo.Context) (domain.Actor, error) {
	ctx := c.Request().Context()

	username, ok := ctx.Value(domain.RequesterNameCtxKey).(string)
	if !ok || username == "" {
		return domain.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	actor, err := h.actor.ResolveByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Actor{}, echo.NewHTTPError(http.StatusBadRequest, "Failed to look up Actor information, try signing in again")
		}
		return domain.Actor{}, echo.NewHTTPError(http.StatusInternalServerError, "failed to resolve requester")
	}
	return actor, nil
}

func sessionID(c echo.Context) string {
	id, _ := c.Request().Context().Value(domain.SessionIDCtxKey).(string)
	return id
}

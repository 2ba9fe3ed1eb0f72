package rest

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/seabird-social/seabird/internal/domain"
	"github.com/seabird-social/seabird/internal/present/rest/presenter"
)

const softwareVersion = "1.0.0"

func (h *Handler) handleWebfinger(c echo.Context) error {
	ctx := c.Request().Context()

	resource := c.QueryParam("resource")
	if !strings.HasPrefix(resource, "acct:") || !strings.Contains(resource, "@") {
		return c.NoContent(204)
	}

	parts := strings.SplitN(resource, "@", 2)
	if !strings.EqualFold(parts[1], h.instance.FQDN) {
		return presenter.BadRequestMessage(c, "Unrecognized Host")
	}
	username := strings.TrimPrefix(parts[0], "acct:")

	actor, err := h.actor.ResolveByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "user not found")
		}
		return presenter.InternalError(c, err)
	}

	return presenter.OK(c, presenter.NewWebfingerView(h.instance, actor))
}

func (h *Handler) handleNodeInfo(c echo.Context) error {
	return presenter.OK(c, echo.Map{
		"links": []echo.Map{
			{
				"rel":  "http://nodeinfo.diaspora.software/ns/schema/2.0",
				"href": h.instance.BaseURL + "/.well-known/nodeinfo/2.0",
			},
		},
	})
}

func (h *Handler) handleNodeInfo2(c echo.Context) error {
	return presenter.OK(c, presenter.NewNodeInfoView(h.instance, softwareVersion))
}

package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/crewboard/crewboard-api/internal/core/ports"
	"github.com/crewboard/crewboard-api/internal/realtime"
)

const heartbeatInterval = 30 * time.Second

// EventsHandler serves the live event stream over Server-Sent Events.
type EventsHandler struct {
	hub      *realtime.Hub
	projects ports.ProjectService
}

func NewEventsHandler(hub *realtime.Hub, projects ports.ProjectService) *EventsHandler {
	return &EventsHandler{hub: hub, projects: projects}
}

// Stream handles GET /v1/events/stream. The requester is always joined to
// their personal channel; the projects query parameter joins the project
// channels the requester can read, silently skipping the rest.
//
// @Summary      Subscribe to live events (SSE)
// @Tags         events
// @Produce      text/event-stream
// @Security     BearerAuth
// @Param        projects  query  string  false  "Comma-separated project IDs to also listen on"
// @Success      200  "event stream"
// @Failure      401  {object}  errorResponse
// @Router       /v1/events/stream [get]
func (h *EventsHandler) Stream(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	channels := []string{ports.UserChannel(actor.ID)}
	if raw := c.QueryParam("projects"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			if _, err := h.projects.Get(c.Request().Context(), actor, id); err != nil {
				continue
			}
			channels = append(channels, ports.ProjectChannel(id))
		}
	}

	sub := h.hub.Subscribe(channels...)
	defer h.hub.Unsubscribe(sub)

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-heartbeat.C:
			if _, err := fmt.Fprint(res, ": ping\n\n"); err != nil {
				return nil
			}
			res.Flush()
		case ev, ok := <-sub.Events():
			if !ok {
				return nil
			}
			if err := writeEvent(res, ev); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}

func writeEvent(res *echo.Response, ev realtime.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(res, "event: %s\ndata: %s\n\n", ev.Name, data)
	return err
}

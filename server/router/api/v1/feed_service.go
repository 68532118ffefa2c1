package v1

import (
	"net/http"
	"time"

	"github.com/gorilla/feeds"
	"github.com/labstack/echo/v4"

	"github.com/snapcal/snapcal/server/service/event"
)

// Feed serves upcoming events as RSS, soonest first.
func (s *APIV1Service) Feed(c echo.Context) error {
	now := time.Now()
	events, err := s.Events.List(c.Request().Context(), event.ListRequest{From: &now})
	if err != nil {
		return respondError(c, err)
	}

	baseURL := c.Scheme() + "://" + c.Request().Host
	feed := &feeds.Feed{
		Title:       "SnapCal: upcoming events",
		Link:        &feeds.Link{Href: baseURL + "/api/v1/feed.rss"},
		Description: "Events captured from posters and notes",
		Created:     now,
	}

	for _, ev := range events {
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          ev.UID,
			Title:       ev.Title,
			Link:        &feeds.Link{Href: baseURL + "/api/v1/events/" + ev.UID},
			Description: ev.Description,
			Created:     ev.StartTime(),
		})
	}

	rss, err := feed.ToRss()
	if err != nil {
		return respondError(c, err)
	}
	return c.Blob(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(rss))
}

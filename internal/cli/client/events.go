package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/evently-dev/evently/internal/cli/gateway"
)

const (
	eventsPath        = "events/events/"
	eventPath         = "events/events/%d/"
	packagesPath      = "packages/packages/"
	announcementsPath = "announcements/announcements/"
)

// CreateEventRequest is the form for a new event
type CreateEventRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description"`
	Date        string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Location    string  `json:"location"`
	EventType   string  `json:"event_type"`
	PackageID   string  `json:"package_id"`
	Image       *Upload `json:"-"`
}

// ListEvents returns all events
func (c *Client) ListEvents(ctx context.Context) ([]Event, error) {
	var events []Event
	if err := c.gw.Do(ctx, http.MethodGet, eventsPath, nil, &events); err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// GetEvent returns one event
func (c *Client) GetEvent(ctx context.Context, id int64) (*Event, error) {
	var event Event
	if err := c.gw.Do(ctx, http.MethodGet, resourcePath(eventPath, id), nil, &event); err != nil {
		return nil, fmt.Errorf("failed to get event %d: %w", id, err)
	}
	return &event, nil
}

// CreateEvent submits a new event as multipart form data, with the image
// under the "images" field when one is given
func (c *Client) CreateEvent(ctx context.Context, req CreateEventRequest) (*Event, error) {
	if err := c.check(req); err != nil {
		return nil, err
	}

	fields := map[string]string{
		"title":       req.Title,
		"description": req.Description,
		"date":        req.Date,
		"location":    req.Location,
		"event_type":  req.EventType,
		"package_id":  req.PackageID,
	}

	var files []gateway.File
	if req.Image != nil {
		files = append(files, gateway.File{Field: "images", Name: req.Image.Name, Content: req.Image.Content})
	}

	var event Event
	if err := c.gw.Upload(ctx, http.MethodPost, eventsPath, fields, files, &event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return &event, nil
}

// ListPackages returns the event packages on offer
func (c *Client) ListPackages(ctx context.Context) ([]Package, error) {
	var packages []Package
	if err := c.gw.Do(ctx, http.MethodGet, packagesPath, nil, &packages); err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}
	return packages, nil
}

// ListAnnouncements returns platform announcements
func (c *Client) ListAnnouncements(ctx context.Context) ([]Announcement, error) {
	var announcements []Announcement
	if err := c.gw.Do(ctx, http.MethodGet, announcementsPath, nil, &announcements); err != nil {
		return nil, fmt.Errorf("failed to list announcements: %w", err)
	}
	return announcements, nil
}

package client

import (
	"context"
	"fmt"
	"net/http"
)

const (
	testimonialsPath         = "testimonials/testimonials/"
	publicTestimonialsPath   = "testimonials/testimonials/public/"
	featuredTestimonialsPath = "testimonials/testimonials/featured/"
	pendingTestimonialsPath  = "testimonials/testimonials/pending/"
	approveTestimonialPath   = "testimonials/testimonials/%d/approve/"
	rejectTestimonialPath    = "testimonials/testimonials/%d/reject/"
)

// CreateTestimonialRequest is a new review. It starts pending moderation.
type CreateTestimonialRequest struct {
	Title     string `json:"title" validate:"required,max=200"`
	Content   string `json:"content" validate:"required"`
	Rating    int    `json:"rating" validate:"min=1,max=5"`
	EventType string `json:"event_type,omitempty"`
	EventDate string `json:"event_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Location  string `json:"location,omitempty"`
}

// ListTestimonials returns every testimonial the current user may see
func (c *Client) ListTestimonials(ctx context.Context) ([]Testimonial, error) {
	return c.listTestimonials(ctx, testimonialsPath)
}

// PublicTestimonials returns approved testimonials
func (c *Client) PublicTestimonials(ctx context.Context) ([]Testimonial, error) {
	return c.listTestimonials(ctx, publicTestimonialsPath)
}

// FeaturedTestimonials returns approved testimonials marked as featured
func (c *Client) FeaturedTestimonials(ctx context.Context) ([]Testimonial, error) {
	return c.listTestimonials(ctx, featuredTestimonialsPath)
}

// PendingTestimonials returns testimonials awaiting moderation (admin)
func (c *Client) PendingTestimonials(ctx context.Context) ([]Testimonial, error) {
	return c.listTestimonials(ctx, pendingTestimonialsPath)
}

func (c *Client) listTestimonials(ctx context.Context, path string) ([]Testimonial, error) {
	var testimonials []Testimonial
	if err := c.gw.Do(ctx, http.MethodGet, path, nil, &testimonials); err != nil {
		return nil, fmt.Errorf("failed to list testimonials: %w", err)
	}
	return testimonials, nil
}

// CreateTestimonial submits a review
func (c *Client) CreateTestimonial(ctx context.Context, req CreateTestimonialRequest) (*Testimonial, error) {
	if err := c.check(req); err != nil {
		return nil, err
	}

	var testimonial Testimonial
	if err := c.gw.Do(ctx, http.MethodPost, testimonialsPath, req, &testimonial); err != nil {
		return nil, fmt.Errorf("failed to create testimonial: %w", err)
	}
	return &testimonial, nil
}

// ApproveTestimonial publishes a pending testimonial (admin)
func (c *Client) ApproveTestimonial(ctx context.Context, id int64) (string, error) {
	return c.moderate(ctx, approveTestimonialPath, id)
}

// RejectTestimonial rejects a pending testimonial (admin)
func (c *Client) RejectTestimonial(ctx context.Context, id int64) (string, error) {
	return c.moderate(ctx, rejectTestimonialPath, id)
}

func (c *Client) moderate(ctx context.Context, format string, id int64) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	if err := c.gw.Do(ctx, http.MethodPost, resourcePath(format, id), nil, &resp); err != nil {
		return "", fmt.Errorf("failed to moderate testimonial %d: %w", id, err)
	}
	return resp.Message, nil
}

package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/evently-dev/evently/internal/cli/gateway"
	"github.com/evently-dev/evently/internal/cli/session"
)

const (
	profileUpdatePath      = "core/profile/update/"
	profileUploadImagePath = "core/profile/upload-image/"
)

// ProfileUpdate holds the profile fields to change. Empty fields are left
// untouched on the backend.
type ProfileUpdate struct {
	Username    string `json:"username,omitempty"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Bio         string `json:"bio,omitempty"`
	Address     string `json:"address,omitempty"`
	City        string `json:"city,omitempty"`
	Country     string `json:"country,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
	Language    string `json:"language,omitempty"`
}

// Empty reports whether no field is set
func (p ProfileUpdate) Empty() bool {
	return p == ProfileUpdate{}
}

// UpdateProfile patches the current user's profile and returns the user as
// the backend now sees it
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*session.User, error) {
	if update.Empty() {
		return nil, fmt.Errorf("%w: no profile fields to update", gateway.ErrValidation)
	}
	if err := c.check(update); err != nil {
		return nil, err
	}

	var user session.User
	if err := c.gw.Do(ctx, http.MethodPatch, profileUpdatePath, update, &user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return &user, nil
}

// UploadProfileImage replaces the profile picture
func (c *Client) UploadProfileImage(ctx context.Context, image Upload) (*session.User, error) {
	if image.Content == nil {
		return nil, fmt.Errorf("%w: profile_image is required", gateway.ErrValidation)
	}

	files := []gateway.File{{Field: "profile_image", Name: image.Name, Content: image.Content}}

	var user session.User
	if err := c.gw.Upload(ctx, http.MethodPatch, profileUploadImagePath, nil, files, &user); err != nil {
		return nil, fmt.Errorf("failed to upload profile image: %w", err)
	}
	return &user, nil
}

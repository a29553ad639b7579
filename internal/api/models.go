package api

import (
	"strings"

	"github.com/usersync/users-service/internal/domain"
	"github.com/usersync/users-service/internal/service/auth"
)

// SyncRequest carries the seed fields used when an identity signs in for the
// first time. Every field is optional at this layer; the resolver decides what
// a new user needs. Fields are ignored for users that already exist.
type SyncRequest struct {
	Email          string  `json:"email"           validate:"omitempty,email,max=254"`
	FirstName      string  `json:"first_name"      validate:"max=100"`
	LastName       string  `json:"last_name"       validate:"max=100"`
	Username       string  `json:"username"        validate:"max=30"`
	ProfilePicture *string `json:"profile_picture" validate:"omitempty,url,max=2048"`
}

// Seed builds the profile seed, filling gaps from claims the identity
// provider vouched for.
func (r SyncRequest) Seed(identity *auth.Identity) *domain.ProfileSeed {
	seed := &domain.ProfileSeed{
		Email:          r.Email,
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		Username:       r.Username,
		ProfilePicture: r.ProfilePicture,
	}
	if identity == nil {
		return seed
	}
	if seed.Email == "" {
		seed.Email = identity.Email
	}
	if seed.FirstName == "" && seed.LastName == "" && identity.Name != "" {
		first, last, _ := strings.Cut(strings.TrimSpace(identity.Name), " ")
		seed.FirstName, seed.LastName = first, strings.TrimSpace(last)
	}
	if seed.ProfilePicture == nil && identity.Picture != "" {
		picture := identity.Picture
		seed.ProfilePicture = &picture
	}
	return seed
}

// UpdateProfileRequest is a partial update; omitted fields are unchanged and
// an empty profile_picture clears the picture.
type UpdateProfileRequest struct {
	Email          *string `json:"email"           validate:"omitempty,email,max=254"`
	FirstName      *string `json:"first_name"      validate:"omitempty,max=100"`
	LastName       *string `json:"last_name"       validate:"omitempty,max=100"`
	Username       *string `json:"username"        validate:"omitempty,max=30"`
	ProfilePicture *string `json:"profile_picture" validate:"omitempty,max=2048"`
}

// ToUpdate converts the request to a domain update.
func (r UpdateProfileRequest) ToUpdate() domain.ProfileUpdate {
	return domain.ProfileUpdate{
		Email:          r.Email,
		Username:       r.Username,
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		ProfilePicture: r.ProfilePicture,
	}
}

// AddInterestsRequest lists interest ids to add to the caller's set.
type AddInterestsRequest struct {
	InterestIDs []int64 `json:"interest_ids" validate:"required,min=1,max=100,dive,gt=0"`
}

// SyncResponse is returned by the sync endpoint.
type SyncResponse struct {
	Created bool            `json:"created"`
	Profile *domain.Profile `json:"profile"`
}

// PublicProfileResponse is a profile as seen by users other than its owner.
type PublicProfileResponse struct {
	domain.UserSummary
	Interests []domain.Interest `json:"interests"`
}

// RemoveInterestResponse reports whether the interest was held.
type RemoveInterestResponse struct {
	Removed bool `json:"removed"`
}

// DeleteAccountResponse confirms an account deletion.
type DeleteAccountResponse struct {
	ID      int64 `json:"id"`
	Deleted bool  `json:"deleted"`
}

// InterestListResponse wraps a list of interests.
type InterestListResponse struct {
	Interests []domain.Interest `json:"interests"`
}

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// profileView returns the owner's full profile or the public view for
// everyone else.
func profileView(actorID int64, p *domain.Profile) interface{} {
	if p.ID == actorID {
		return p
	}
	interests := p.Interests
	if interests == nil {
		interests = []domain.Interest{}
	}
	return PublicProfileResponse{UserSummary: p.Summary(), Interests: interests}
}

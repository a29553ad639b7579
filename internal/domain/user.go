package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Field limits.
const (
	MinUsernameLength       = 3
	MaxUsernameLength       = 30
	MaxNameLength           = 100
	MaxEmailLength          = 254
	MaxProfilePictureLength = 2048
)

var (
	usernamePattern = regexp.MustCompile(`^[a-z0-9._-]+$`)
	usernameStrip   = regexp.MustCompile(`[^a-z0-9._-]+`)

	validate = validator.New()
)

// User is one account. ID, ExternalID and CreatedAt never change after creation.
type User struct {
	ID             int64     `json:"id"`
	ExternalID     string    `json:"-"`
	Email          string    `json:"email"`
	Username       string    `json:"username"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	ProfilePicture *string   `json:"profile_picture"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ProfileSeed carries the fields used only when an identity is seen for the
// first time.
type ProfileSeed struct {
	Email          string
	FirstName      string
	LastName       string
	Username       string
	ProfilePicture *string
}

// ProfileUpdate is a partial update; nil fields are left unchanged. An empty
// ProfilePicture clears the picture.
type ProfileUpdate struct {
	Email          *string
	Username       *string
	FirstName      *string
	LastName       *string
	ProfilePicture *string
}

// IsEmpty reports whether the update changes nothing.
func (p ProfileUpdate) IsEmpty() bool {
	return p.Email == nil && p.Username == nil && p.FirstName == nil &&
		p.LastName == nil && p.ProfilePicture == nil
}

// Validate checks the fields present in the update, so malformed input is
// rejected before the stored user is read.
func (p ProfileUpdate) Validate() error {
	if p.IsEmpty() {
		return NewValidationError("", "no fields to update", nil)
	}
	if p.Email != nil {
		if err := ValidateEmail(NormalizeEmail(*p.Email)); err != nil {
			return err
		}
	}
	if p.Username != nil {
		if err := ValidateUsername(NormalizeUsername(*p.Username)); err != nil {
			return err
		}
	}
	if p.FirstName != nil {
		if err := validateName("first_name", SanitizeText(*p.FirstName)); err != nil {
			return err
		}
	}
	if p.LastName != nil {
		if err := validateName("last_name", SanitizeText(*p.LastName)); err != nil {
			return err
		}
	}
	if p.ProfilePicture != nil {
		return validatePicture(normalizePicture(p.ProfilePicture))
	}
	return nil
}

// NewUser builds a validated, not yet persisted User for externalID.
// A missing username is derived from the e-mail local part.
func NewUser(externalID string, seed ProfileSeed, now time.Time) (*User, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, NewValidationError("firebase_uid", "is required", nil)
	}

	email := NormalizeEmail(seed.Email)
	username := NormalizeUsername(seed.Username)
	if username == "" {
		username = DeriveUsername(email)
	}

	u := &User{
		ExternalID:     externalID,
		Email:          email,
		Username:       username,
		FirstName:      SanitizeText(seed.FirstName),
		LastName:       SanitizeText(seed.LastName),
		ProfilePicture: normalizePicture(seed.ProfilePicture),
		CreatedAt:      now.UTC(),
		UpdatedAt:      now.UTC(),
	}

	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

// Validate checks the mutable profile fields.
func (u *User) Validate() error {
	if u.ExternalID == "" {
		return NewValidationError("firebase_uid", "is required", nil)
	}
	if err := ValidateEmail(u.Email); err != nil {
		return err
	}
	if err := ValidateUsername(u.Username); err != nil {
		return err
	}
	if err := validateName("first_name", u.FirstName); err != nil {
		return err
	}
	if err := validateName("last_name", u.LastName); err != nil {
		return err
	}
	return validatePicture(u.ProfilePicture)
}

func validateName(field, name string) error {
	if name == "" {
		return NewValidationError(field, "is required", nil)
	}
	if len(name) > MaxNameLength {
		return NewValidationError(field, "is too long", nil)
	}
	return nil
}

func validatePicture(p *string) error {
	if p == nil {
		return nil
	}
	if len(*p) > MaxProfilePictureLength || validate.Var(*p, "http_url") != nil {
		return NewValidationError("profile_picture", "must be an http(s) URL", nil)
	}
	return nil
}

// Apply merges update into u after normalization. It returns whether any
// field changed. u is left untouched when the result would be invalid.
func (u *User) Apply(update ProfileUpdate, now time.Time) (bool, error) {
	next := *u

	if update.Email != nil {
		next.Email = NormalizeEmail(*update.Email)
	}
	if update.Username != nil {
		next.Username = NormalizeUsername(*update.Username)
	}
	if update.FirstName != nil {
		next.FirstName = SanitizeText(*update.FirstName)
	}
	if update.LastName != nil {
		next.LastName = SanitizeText(*update.LastName)
	}
	if update.ProfilePicture != nil {
		next.ProfilePicture = normalizePicture(update.ProfilePicture)
	}

	if err := next.Validate(); err != nil {
		return false, err
	}

	changed := next.Email != u.Email ||
		next.Username != u.Username ||
		next.FirstName != u.FirstName ||
		next.LastName != u.LastName ||
		!samePicture(next.ProfilePicture, u.ProfilePicture)
	if !changed {
		return false, nil
	}

	next.UpdatedAt = now.UTC()
	*u = next
	return true, nil
}

// NormalizeEmail trims and lower-cases an e-mail address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeUsername trims and lower-cases a username.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// ValidateEmail checks presence, length and format.
func ValidateEmail(email string) error {
	if email == "" {
		return NewValidationError("email", "is required", nil)
	}
	if len(email) > MaxEmailLength || validate.Var(email, "email") != nil {
		return NewValidationError("email", "has invalid format", nil)
	}
	return nil
}

// ValidateUsername checks length and the allowed character set.
func ValidateUsername(username string) error {
	if len(username) < MinUsernameLength || len(username) > MaxUsernameLength {
		return NewValidationError("username", "must be between 3 and 30 characters", nil)
	}
	if !usernamePattern.MatchString(username) {
		return NewValidationError("username", "may only contain letters, digits, '.', '_' and '-'", nil)
	}
	return nil
}

// DeriveUsername builds a username candidate from an e-mail local part.
func DeriveUsername(email string) string {
	local, _, _ := strings.Cut(NormalizeEmail(email), "@")
	name := usernameStrip.ReplaceAllString(local, "")
	if len(name) < MinUsernameLength {
		name += "_user"
	}
	if len(name) > MaxUsernameLength {
		name = name[:MaxUsernameLength]
	}
	return name
}

func normalizePicture(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}

func samePicture(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

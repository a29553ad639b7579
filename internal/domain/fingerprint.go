package domain

import (
	"encoding/hex"
	"encoding/json"
	"slices"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// fingerprintInput is the canonical form hashed by Fingerprint. Field order
// is fixed by the struct; interest ids are sorted.
type fingerprintInput struct {
	View           string  `json:"v"`
	Username       string  `json:"u"`
	Email          string  `json:"e,omitempty"`
	FirstName      string  `json:"f"`
	LastName       string  `json:"l"`
	ProfilePicture *string `json:"p"`
	Interests      []int64 `json:"i"`
}

const (
	ownerView  = "owner"
	publicView = "public"
)

// Fingerprint returns a strong entity tag over the owner's view of p:
// username, e-mail, names, profile picture and the interest set. Identifiers
// and timestamps are excluded.
func Fingerprint(p *Profile) string {
	return fingerprint(p, ownerView)
}

// PublicFingerprint is the tag of the view other users receive. The e-mail is
// withheld from that view, so it is not hashed either.
func PublicFingerprint(p *Profile) string {
	return fingerprint(p, publicView)
}

// FingerprintFor returns the tag of the view actorID is served for p.
func FingerprintFor(actorID int64, p *Profile) string {
	if p.ID == actorID {
		return Fingerprint(p)
	}
	return PublicFingerprint(p)
}

func fingerprint(p *Profile, view string) string {
	ids := make([]int64, 0, len(p.Interests))
	for _, interest := range p.Interests {
		ids = append(ids, interest.ID)
	}
	slices.Sort(ids)

	in := fingerprintInput{
		View:           view,
		Username:       p.Username,
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		ProfilePicture: p.ProfilePicture,
		Interests:      ids,
	}
	if view == ownerView {
		in.Email = p.Email
	}

	// Marshalling a struct of strings and ints cannot fail.
	payload, _ := json.Marshal(in)
	sum := blake2b.Sum256(payload)
	return `"` + hex.EncodeToString(sum[:]) + `"`
}

// FingerprintMatches reports whether a client-supplied If-None-Match value
// matches current. The value may be "*", a single tag, or a comma-separated
// list; weak tags compare by their opaque part.
func FingerprintMatches(clientValue, current string) bool {
	clientValue = strings.TrimSpace(clientValue)
	if clientValue == "" || current == "" {
		return false
	}
	if clientValue == "*" {
		return true
	}

	want := strings.TrimPrefix(current, "W/")
	for _, candidate := range strings.Split(clientValue, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == want {
			return true
		}
	}
	return false
}

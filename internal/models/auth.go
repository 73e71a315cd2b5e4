package models

import (
	"fmt"
	"strconv"
)

// TokenPair is the access/refresh credential pair issued by the accounts API.
type TokenPair struct {
	Access  string `json:"access" yaml:"access"`
	Refresh string `json:"refresh" yaml:"refresh"`
}

// IsZero reports whether neither token is set
func (t TokenPair) IsZero() bool {
	return t.Access == "" && t.Refresh == ""
}

// User mirrors the last known authenticated user as returned by the backend.
// The backend owns its shape, so it is kept as an open mapping and read
// through the accessors below.
type User map[string]any

// Profile is the optional nested profile record of a user.
type Profile struct {
	State        string `json:"state,omitempty" yaml:"state,omitempty"`
	District     string `json:"district,omitempty" yaml:"district,omitempty"`
	Pincode      string `json:"pincode,omitempty" yaml:"pincode,omitempty"`
	CurrentClass string `json:"current_class,omitempty" yaml:"current_class,omitempty"`
	Village      string `json:"village,omitempty" yaml:"village,omitempty"`
	ProfileImage string `json:"profile_image,omitempty" yaml:"profile_image,omitempty"`
}

func (u User) ID() string           { return u.str("id") }
func (u User) FullName() string     { return u.str("full_name") }
func (u User) MobileNumber() string { return u.str("mobile_number") }
func (u User) Email() string        { return u.str("email") }

// Profile returns the nested profile. Older payloads carry the profile fields
// on the user itself, those are used as a fallback.
func (u User) Profile() Profile {
	nested, _ := u["profile"].(map[string]any)
	pick := func(key string) string {
		if v := User(nested).str(key); v != "" {
			return v
		}
		return u.str(key)
	}
	image := pick("profile_image")
	if image == "" {
		image = pick("profile_picture")
	}
	return Profile{
		State:        pick("state"),
		District:     pick("district"),
		Pincode:      pick("pincode"),
		CurrentClass: pick("current_class"),
		Village:      pick("village"),
		ProfileImage: image,
	}
}

func (u User) str(key string) string {
	if u == nil {
		return ""
	}
	switch v := u[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		// JSON numbers, ids are integers in practice
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

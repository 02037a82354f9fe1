// Package model contains domain models passed between layers.
package model

import "strconv"

// anonymousPrefix prefixes the id of users that never set a name.
const anonymousPrefix = "Anonymous #"

// User is a site member. Empty Name, Nickname and Email mean "not set".
type User struct {
	ID          int64
	Name        string
	Nickname    string
	Email       string
	Admin       bool
	DraftAccess bool
}

// EligibleForDisplay reports whether the user may appear on the leaderboard.
func (u User) EligibleForDisplay() bool {
	return !u.Admin && !u.DraftAccess
}

// DisplayName resolves the name shown to other users:
// name, then nickname, then "Anonymous #<id>".
func DisplayName(u User) string {
	switch {
	case u.Name != "":
		return u.Name
	case u.Nickname != "":
		return u.Nickname
	default:
		return anonymousPrefix + strconv.FormatInt(u.ID, 10)
	}
}

// RealName returns the stored name without any fallback.
func (u User) RealName() string { return u.Name }

// NeedsNameRefresh is false once both nickname and email are known; profile
// data from the identity provider is then no longer copied over.
func (u User) NeedsNameRefresh() bool {
	return u.Nickname == "" || u.Email == ""
}

// ProfileUpdate carries the fields a user may change about themselves.
// It has no Admin or DraftAccess field: privileges never change through it.
type ProfileUpdate struct {
	Name     string
	Nickname string
	Email    string
}

// Apply returns a copy of u with the profile fields replaced.
func (u User) Apply(p ProfileUpdate) User {
	u.Name = p.Name
	u.Nickname = p.Nickname
	u.Email = p.Email
	return u
}

// EligibleForDisplay keeps the users that may appear on the leaderboard.
func EligibleForDisplay(users []User) []User {
	out := make([]User, 0, len(users))
	for _, u := range users {
		if u.EligibleForDisplay() {
			out = append(out, u)
		}
	}
	return out
}

// Admins keeps the users with the admin flag.
func Admins(users []User) []User {
	out := make([]User, 0, len(users))
	for _, u := range users {
		if u.Admin {
			out = append(out, u)
		}
	}
	return out
}

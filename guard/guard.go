// Package guard gates navigation on session state. Guards are pure
// functions over a session snapshot: they perform no I/O and return a
// Decision the router acts on. Because the snapshot is taken synchronously
// from the store, a 401 that clears the session mid-navigation is visible
// to the very next evaluation.
package guard

import (
	"net/url"

	"github.com/learnkit/learnkit-go/session"
)

// RoleAdmin is the role value RequireAdmin accepts.
const RoleAdmin = "admin"

// Snapshot is a point-in-time view of the session store.
type Snapshot struct {
	HasSession bool
	Role       string
}

// Snap reads the store into a Snapshot. Take a fresh one on every
// navigation; snapshots go stale the moment a 401 clears the store.
func Snap(s session.Store) Snapshot {
	return Snapshot{
		HasSession: session.HasSession(s),
		Role:       session.Role(s),
	}
}

// Decision is the outcome of evaluating a guard: render the route or
// redirect elsewhere.
type Decision struct {
	Allow      bool
	RedirectTo string
}

// Guard decides whether the route at attempted may render for the given
// snapshot.
type Guard func(snap Snapshot, attempted string) Decision

func allow() Decision {
	return Decision{Allow: true}
}

func redirect(to string) Decision {
	return Decision{RedirectTo: to}
}

// PublicOnly guards routes that only make sense anonymously (login,
// signup): an existing session is sent home, never rendered the child.
func PublicOnly(home string) Guard {
	return func(snap Snapshot, _ string) Decision {
		if snap.HasSession {
			return redirect(home)
		}
		return allow()
	}
}

// RequireAuth guards authenticated routes. Anonymous navigation is sent to
// login with the attempted location preserved for post-login return.
func RequireAuth(login string) Guard {
	return func(snap Snapshot, attempted string) Decision {
		if snap.HasSession {
			return allow()
		}
		to := login
		if attempted != "" {
			to = login + "?from=" + url.QueryEscape(attempted)
		}
		return redirect(to)
	}
}

// RequireAdmin guards admin routes. Compose it beneath RequireAuth; it only
// checks the role and sends non-admins home.
func RequireAdmin(home string) Guard {
	return func(snap Snapshot, _ string) Decision {
		if snap.Role != RoleAdmin {
			return redirect(home)
		}
		return allow()
	}
}

// Chain composes guards; the first one that does not allow wins.
func Chain(guards ...Guard) Guard {
	return func(snap Snapshot, attempted string) Decision {
		for _, g := range guards {
			if d := g(snap, attempted); !d.Allow {
				return d
			}
		}
		return allow()
	}
}

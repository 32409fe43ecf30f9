// Package session holds the authentication and activation state of a single
// tracking session and the transitions driven by collector responses.
//
// States
//
//	Disconnected -> no usable token, or the last request failed
//	Connected    -> a usable token exists
//	Active       -> the start handshake yielded both an actor and an object id
//
// Active is derived from extracted fields only; it is not guaranteed to imply
// Connected. Transport failures reset the flags explicitly.
package session

import (
	"strings"
	"sync"

	"github.com/ggoodman/tracker-go/internal/extract"
)

// Status summarizes the session flags.
type Status int

const (
	Disconnected Status = iota
	Connected
	Active
)

func (s Status) String() string {
	switch s {
	case Connected:
		return "connected"
	case Active:
		return "active"
	default:
		return "disconnected"
	}
}

const bearerPrefix = "Bearer "

// Field names read from collector responses.
const (
	fieldToken     = "token"
	fieldAuthToken = "authToken"
	fieldObjectID  = "objectId"
	fieldActor     = "actor"
	fieldStatus    = "status"
)

// field extracts a scalar value. An empty value counts as missing.
func field(body, name string) (string, bool) {
	v, ok := extract.Scalar(body, name)
	return v, ok && v != ""
}

// StripBearer removes a leading "Bearer " from tok.
func StripBearer(tok string) string {
	return strings.TrimPrefix(tok, bearerPrefix)
}

// Snapshot is a point-in-time copy of the session fields.
type Snapshot struct {
	UserToken    string
	TrackingCode string
	Actor        string
	ObjectID     string
	Health       string
	Connected    bool
	Active       bool
}

// Status derives the summary state from the flags.
func (s Snapshot) Status() Status {
	switch {
	case s.Active:
		return Active
	case s.Connected:
		return Connected
	default:
		return Disconnected
	}
}

// State is the mutable session. It is safe for concurrent use; every
// transition is applied under a single lock.
type State struct {
	mu sync.RWMutex

	userToken    string
	trackingCode string
	actor        string
	objectID     string
	health       string
	connected    bool
	active       bool
}

// New creates a disconnected session.
func New(userToken, trackingCode string) *State {
	return &State{
		userToken:    StripBearer(userToken),
		trackingCode: trackingCode,
	}
}

// Snapshot returns a copy of the current fields.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		UserToken:    s.userToken,
		TrackingCode: s.trackingCode,
		Actor:        s.actor,
		ObjectID:     s.objectID,
		Health:       s.health,
		Connected:    s.connected,
		Active:       s.active,
	}
}

// Status returns the summary state.
func (s *State) Status() Status {
	return s.Snapshot().Status()
}

// UserToken returns the bearer credential, without prefix.
func (s *State) UserToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userToken
}

// TrackingCode returns the game tracking code.
func (s *State) TrackingCode() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.trackingCode
}

// SetUserToken replaces the bearer credential.
func (s *State) SetUserToken(tok string) {
	s.mu.Lock()
	s.userToken = StripBearer(tok)
	s.mu.Unlock()
}

// SetTrackingCode replaces the game tracking code.
func (s *State) SetTrackingCode(code string) {
	s.mu.Lock()
	s.trackingCode = code
	s.mu.Unlock()
}

// LoginResult reports what a login response carried.
type LoginResult struct {
	TokenFound bool
}

// ApplyLogin handles a successful login response. A token moves the session
// to Connected; a response without one leaves it Disconnected.
func (s *State) ApplyLogin(body string) LoginResult {
	tok, ok := field(body, fieldToken)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !ok {
		s.connected = false
		return LoginResult{}
	}
	s.userToken = StripBearer(tok)
	s.connected = true
	return LoginResult{TokenFound: true}
}

// FailLogin handles a failed login request.
func (s *State) FailLogin() {
	s.mu.Lock()
	s.connected = false
	s.mu.Unlock()
}

// StartResult reports which fields a start response carried.
type StartResult struct {
	AuthTokenFound bool
	ObjectIDFound  bool
	ActorFound     bool
}

// ApplyStart handles a successful start response. Each field is extracted
// independently; missing fields leave their previous values in place. Active
// is recomputed from the actor and object id afterwards.
func (s *State) ApplyStart(body string) StartResult {
	var res StartResult

	authToken, tokOK := field(body, fieldAuthToken)
	objectID, objOK := field(body, fieldObjectID)
	actor, actorOK := extract.Object(body, fieldActor)

	s.mu.Lock()
	defer s.mu.Unlock()

	if tokOK {
		s.userToken = StripBearer(authToken)
		s.connected = true
		res.AuthTokenFound = true
	}
	if objOK {
		if !strings.HasSuffix(objectID, "/") {
			objectID += "/"
		}
		s.objectID = objectID
		res.ObjectIDFound = true
	}
	if actorOK {
		s.actor = actor
		res.ActorFound = true
	}

	s.active = s.actor != "" && s.objectID != ""
	return res
}

// FailStart handles a failed start request.
func (s *State) FailStart() {
	s.mu.Lock()
	s.connected = false
	s.active = false
	s.mu.Unlock()
}

// ApplyLocalStart handles a start under local storage, where the session is
// usable exactly when a storage backend is available.
func (s *State) ApplyLocalStart(available bool) {
	s.mu.Lock()
	s.connected = available
	s.active = available
	s.mu.Unlock()
}

// ApplyHealth records the status reported by a health probe. It reports
// whether the response carried one. The session flags are untouched.
func (s *State) ApplyHealth(body string) (string, bool) {
	status, ok := field(body, fieldStatus)
	if !ok {
		return "", false
	}
	s.mu.Lock()
	s.health = status
	s.mu.Unlock()
	return status, true
}

// FailTrack handles a failed delivery of a batch.
func (s *State) FailTrack() {
	s.mu.Lock()
	s.connected = false
	s.active = false
	s.mu.Unlock()
}

// Package auth tracks whether the visitor is signed in, who they are and the
// last authentication error.
package auth

import (
	"fmt"

	"storefront/internal/domain"
)

// State is the visible auth status. After a completed login or register
// exactly one of User and Error is set.
type State struct {
	User            *domain.User `json:"user"`
	IsAuthenticated bool         `json:"isAuthenticated"`
	IsLoading       bool         `json:"isLoading"`
	IsInitialized   bool         `json:"isInitialized"`
	Error           string       `json:"error,omitempty"`
}

type Action interface{ authAction() }

type (
	LoginStart      struct{}
	LoginSuccess    struct{ User domain.User }
	LoginFailure    struct{ Message string }
	RegisterStart   struct{}
	RegisterSuccess struct{ User domain.User }
	RegisterFailure struct{ Message string }
	Logout          struct{}
	UpdateUser      struct{ Patch domain.UserPatch }
	ClearError      struct{}
	// Initialized ends startup. A nil User means no valid session was found.
	// Superseded marks startup done without touching the rest of the state.
	Initialized struct {
		User       *domain.User
		Superseded bool
	}
)

func (LoginStart) authAction()      {}
func (LoginSuccess) authAction()    {}
func (LoginFailure) authAction()    {}
func (RegisterStart) authAction()   {}
func (RegisterSuccess) authAction() {}
func (RegisterFailure) authAction() {}
func (Logout) authAction()          {}
func (UpdateUser) authAction()      {}
func (ClearError) authAction()      {}
func (Initialized) authAction()     {}

func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case LoginStart, RegisterStart:
		s.IsLoading = true
		s.Error = ""
		return s
	case LoginSuccess:
		return signedIn(s, a.User)
	case RegisterSuccess:
		return signedIn(s, a.User)
	case LoginFailure:
		return failed(s, a.Message)
	case RegisterFailure:
		return failed(s, a.Message)
	case Logout:
		s.User = nil
		s.IsAuthenticated = false
		s.IsLoading = false
		s.Error = ""
		return s
	case UpdateUser:
		if s.User == nil {
			return s
		}
		u := a.Patch.Apply(*s.User)
		s.User = &u
		return s
	case ClearError:
		s.Error = ""
		return s
	case Initialized:
		s.IsInitialized = true
		if a.Superseded {
			return s
		}
		s.IsLoading = false
		if a.User == nil {
			s.User = nil
			s.IsAuthenticated = false
			return s
		}
		u := *a.User
		s.User = &u
		s.IsAuthenticated = true
		return s
	default:
		panic(fmt.Sprintf("auth: unhandled action %T", a))
	}
}

func signedIn(s State, u domain.User) State {
	s.User = &u
	s.IsAuthenticated = true
	s.IsLoading = false
	s.IsInitialized = true
	s.Error = ""
	return s
}

func failed(s State, msg string) State {
	s.User = nil
	s.IsAuthenticated = false
	s.IsLoading = false
	s.IsInitialized = true
	s.Error = msg
	return s
}

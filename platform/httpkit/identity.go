// Package httpkit provides HTTP utilities including identity abstraction.
package httpkit

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Identity represents the authenticated caller's identity and tenant scope.
// A caller is either a member of a firm (FirmID set) or a solo lawyer
// (FirmID nil, IsSoloLawyer true); case ownership is scoped to exactly
// one of the two. Handlers access identity through this interface without
// depending on Gin.
type Identity interface {
	// UserID returns the authenticated user's ID.
	UserID() uuid.UUID
	// FirmID returns the user's firm ID, or nil for solo lawyers.
	FirmID() *uuid.UUID
	// IsSoloLawyer reports whether the caller runs a solo practice.
	IsSoloLawyer() bool
	// IsAuthenticated returns true if the user is authenticated.
	IsAuthenticated() bool
}

// identity is the concrete implementation of Identity.
type identity struct {
	userID        uuid.UUID
	firmID        *uuid.UUID
	solo          bool
	authenticated bool
}

func (i *identity) UserID() uuid.UUID {
	return i.userID
}

func (i *identity) FirmID() *uuid.UUID {
	return i.firmID
}

func (i *identity) IsSoloLawyer() bool {
	return i.solo
}

func (i *identity) IsAuthenticated() bool {
	return i.authenticated
}

// NewIdentity constructs an authenticated Identity. Intended for service
// wiring and tests; HTTP requests get theirs from the auth middleware.
func NewIdentity(userID uuid.UUID, firmID *uuid.UUID) Identity {
	return &identity{
		userID:        userID,
		firmID:        firmID,
		solo:          firmID == nil,
		authenticated: true,
	}
}

// GetIdentity extracts the Identity from a Gin context.
// Returns an unauthenticated identity if user info is not present.
func GetIdentity(c *gin.Context) Identity {
	userID, userOK := c.Get(ContextUserIDKey)
	if !userOK {
		return &identity{authenticated: false}
	}

	uid, ok := userID.(uuid.UUID)
	if !ok {
		return &identity{authenticated: false}
	}

	var firmID *uuid.UUID
	if firmValue, ok := c.Get(ContextFirmIDKey); ok {
		if fid, ok := firmValue.(uuid.UUID); ok {
			firmID = &fid
		}
	}

	return &identity{
		userID:        uid,
		firmID:        firmID,
		solo:          firmID == nil,
		authenticated: true,
	}
}

// MustGetIdentity extracts the Identity from a Gin context.
// If the user is not authenticated, it aborts with 401 Unauthorized and returns nil.
func MustGetIdentity(c *gin.Context) Identity {
	id := GetIdentity(c)
	if !id.IsAuthenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil
	}
	return id
}

// Package access decides whether a requester may perform an action on a
// user or audio-file resource. Every function is a pure predicate over the
// requester identity and a descriptor of the target; none of them perform
// I/O, so handlers and services can call them before touching storage.
//
// Admins may act on any resource. Other requesters may act only on
// resources they own.
package access

import (
	"github.com/sbilibin2017/audio-vault/internal/common"
	"github.com/sbilibin2017/audio-vault/internal/models"
)

// Deny reasons returned to clients.
const (
	ReasonAccessDenied   = "Forbidden: Access denied"
	ReasonAdminRequired  = "Forbidden: Admin access required"
	ReasonOwnAccountOnly = "Forbidden: You can only delete your own account"
	ReasonOwnFilesOnly   = "Forbidden: you may only delete your own files"
)

// Decision is the verdict for a single action.
type Decision struct {
	Allowed bool
	Reason  string // empty when Allowed
}

var allow = Decision{Allowed: true}

func deny(reason string) Decision {
	return Decision{Reason: reason}
}

// Err returns nil for an allowed decision and a *DeniedError otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &DeniedError{Reason: d.Reason}
}

// DeniedError carries the deny reason. It matches common.ErrForbidden.
type DeniedError struct {
	Reason string
}

func (e *DeniedError) Error() string {
	return e.Reason
}

// Is makes errors.Is(err, common.ErrForbidden) hold for denials.
func (e *DeniedError) Is(target error) bool {
	return target == common.ErrForbidden
}

func ownerOrAdmin(requester models.Identity, ownerID int64, reason string) Decision {
	if requester.IsAdmin() || requester.ID == ownerID {
		return allow
	}
	return deny(reason)
}

// ViewUserProfile allows a requester to read their own profile, or any
// profile when admin.
func ViewUserProfile(requester models.Identity, targetUsername string) Decision {
	if requester.IsAdmin() || requester.Username == targetUsername {
		return allow
	}
	return deny(ReasonAccessDenied)
}

// ReadUserRecord confirms after lookup that a non-admin requester matched
// by username is the account the token was issued for. A username can be
// registered again after its account is deleted.
func ReadUserRecord(requester models.Identity, userID int64) Decision {
	return ownerOrAdmin(requester, userID, ReasonAccessDenied)
}

// ListAllUsers is admin only.
func ListAllUsers(requester models.Identity) Decision {
	if requester.IsAdmin() {
		return allow
	}
	return deny(ReasonAdminRequired)
}

// UpdateUserPassword allows self or admin.
func UpdateUserPassword(requester models.Identity, targetID int64) Decision {
	return ownerOrAdmin(requester, targetID, ReasonAccessDenied)
}

// DeleteUser allows self or admin.
func DeleteUser(requester models.Identity, targetID int64) Decision {
	return ownerOrAdmin(requester, targetID, ReasonOwnAccountOnly)
}

// DeleteAudioFile allows the file owner or admin.
func DeleteAudioFile(requester models.Identity, ownerID int64) Decision {
	return ownerOrAdmin(requester, ownerID, ReasonOwnFilesOnly)
}

// AccessAudioFiles gates listing or playing files in ownerID's scope.
// Requesters always reach their own scope; other scopes need admin.
func AccessAudioFiles(requester models.Identity, ownerID int64) Decision {
	return ownerOrAdmin(requester, ownerID, ReasonAccessDenied)
}

// UploadAudioFile is allowed for any authenticated requester; uploads
// always land in the requester's own scope.
func UploadAudioFile(requester models.Identity) Decision {
	return allow
}

// ListOwnAudioFiles is allowed for any authenticated requester.
func ListOwnAudioFiles(requester models.Identity) Decision {
	return allow
}

// PlayAudioFile is allowed for any authenticated requester on their own files.
func PlayAudioFile(requester models.Identity) Decision {
	return allow
}

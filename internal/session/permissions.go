package session

import (
	"fmt"
	"time"

	"github.com/vbonduro/branchadmin/internal/domain"
)

// HasPermission reports whether the signed-in user may act on branchID at the
// required level. Admins may act on every branch.
func (s *Session) HasPermission(branchID int64, required domain.PermissionLevel) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return false
	}
	if s.user.Role == domain.RoleAdmin {
		return true
	}

	perm := findPermission(s.user.BranchPermissions, branchID)
	if perm == nil {
		return false
	}
	if required == domain.PermissionFullAccess {
		return perm.PermissionLevel == domain.PermissionFullAccess
	}
	return true
}

func findPermission(perms []domain.BranchPermission, branchID int64) *domain.BranchPermission {
	for i := range perms {
		if perms[i].BranchID == branchID {
			return &perms[i]
		}
	}
	return nil
}

// UserBranches lists the branches the user holds a grant for. Fields missing
// from the nested branch record are filled with placeholders.
func (s *Session) UserBranches() []domain.Branch {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return []domain.Branch{}
	}

	now := s.now()
	branches := make([]domain.Branch, 0, len(s.user.BranchPermissions))
	for _, perm := range s.user.BranchPermissions {
		branches = append(branches, branchFromPermission(perm, now))
	}
	return branches
}

func branchFromPermission(perm domain.BranchPermission, now time.Time) domain.Branch {
	b := domain.Branch{
		ID:        perm.BranchID,
		Name:      fmt.Sprintf("Branch %d", perm.BranchID),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	ref := perm.Branch
	if ref == nil {
		return b
	}
	if ref.Name != nil && *ref.Name != "" {
		b.Name = *ref.Name
	}
	b.Location = deref(ref.Location)
	b.Address = deref(ref.Address)
	b.Phone = deref(ref.Phone)
	b.Email = deref(ref.Email)
	if ref.IsActive != nil {
		b.IsActive = *ref.IsActive
	}
	if ref.CreatedAt != nil {
		b.CreatedAt = *ref.CreatedAt
	}
	if ref.UpdatedAt != nil {
		b.UpdatedAt = *ref.UpdatedAt
	}
	return b
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

package services

import "github.com/BradenHooton/userdesk/internal/models"

// CanDelete reports whether target may be deleted given the current number
// of administrators. The last remaining admin can never be deleted.
func CanDelete(target *models.User, adminCount int64) bool {
	if adminCount <= 1 && target.IsAdmin() {
		return false
	}
	return true
}

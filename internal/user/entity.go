// AngelaMos | 2026
// entity.go

package user

import (
	"time"

	"github.com/carterperez-dev/airline-directory/internal/rbac"
)

type User struct {
	ID           string     `db:"id"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	Name         string     `db:"name"`
	Role         rbac.Role  `db:"role"`
	IsActive     bool       `db:"is_active"`
	Avatar       string     `db:"avatar"`
	TokenVersion int        `db:"token_version"`
	LastLoginAt  *time.Time `db:"last_login_at"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

const temporaryPasswordLength = 12

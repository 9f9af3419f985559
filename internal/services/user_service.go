// internal/services/user_service.go
package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/repuestos-py/marketplace/internal/models"
	"github.com/repuestos-py/marketplace/internal/store"
)

type UserService struct {
	store   *store.Store
	timeout time.Duration
}

type UpdateUserRoleRequest struct {
	Role models.Role `json:"role" validate:"required,role"`
}

func NewUserService(st *store.Store, timeout time.Duration) *UserService {
	return &UserService{store: st, timeout: timeout}
}

func (s *UserService) GetUsers(ctx context.Context) ([]models.User, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	users, err := s.store.Users.List(ctx)
	if err != nil {
		return nil, classify("list users", err)
	}
	return users, nil
}

func (s *UserService) GetUserByID(ctx context.Context, uid string) (*models.User, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	user, err := s.store.Users.Get(ctx, uid)
	if err != nil {
		return nil, classify("load user", err)
	}
	return user, nil
}

// UpdateUserRole changes another user's role. Admins cannot change their own.
func (s *UserService) UpdateUserRole(ctx context.Context, adminID, uid string, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, validationError("unknown role %q", role)
	}
	if adminID == uid {
		return nil, ErrForbidden
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	user, err := s.store.Users.Get(ctx, uid)
	if err != nil {
		return nil, classify("load user", err)
	}
	oldRole := user.Role

	if err := s.store.Users.SetRole(ctx, uid, role); err != nil {
		return nil, classify("update user role", err)
	}
	user.Role = role

	createAuditLog(ctx, s.store.Audit, adminID, ActionUpdateUserRole, "user", uid,
		map[string]interface{}{"role": oldRole}, map[string]interface{}{"role": role})

	logrus.WithFields(logrus.Fields{
		"user_id":  uid,
		"admin_id": adminID,
		"role":     role,
	}).Info("User role updated")

	return user, nil
}

// DeleteUser removes the marketplace record only; the identity provider
// account is untouched.
func (s *UserService) DeleteUser(ctx context.Context, adminID, uid string) error {
	if adminID == uid {
		return ErrForbidden
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	user, err := s.store.Users.Get(ctx, uid)
	if err != nil {
		return classify("load user", err)
	}
	if err := s.store.Users.Delete(ctx, uid); err != nil {
		return classify("delete user", err)
	}

	createAuditLog(ctx, s.store.Audit, adminID, ActionDeleteUser, "user", uid,
		map[string]interface{}{"email": user.Email, "role": user.Role}, nil)
	return nil
}

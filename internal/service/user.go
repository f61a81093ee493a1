package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"docuisine/internal/core/auth"
	"docuisine/internal/domain"
	"docuisine/internal/repo"
	"docuisine/pkg/utils"
)

// Users layers the credential rules on the user entity: passwords are
// hashed before they reach storage and checked only through the hash.
type Users struct {
	*Entity[domain.User, domain.UserPatch]
	hash utils.Argon2Params
	jwt  *auth.JWTer
	log  *zap.Logger
}

type NewUser struct {
	Username string
	Password string
	Email    *string
	Role     domain.Role
}

func NewUsers(db *repo.DB, l *zap.Logger, hash utils.Argon2Params, jwt *auth.JWTer) *Users {
	if l == nil {
		l = zap.NewNop()
	}
	schema := Schema[domain.User]{
		Name:       "user",
		KeyColumns: []string{"username"},
		Key:        func(u *domain.User) string { return u.Username },
		Validate: func(_ *gorm.DB, u *domain.User) error {
			if u.Username == "" {
				return domain.InvalidArgument("username must not be empty")
			}
			if !u.Role.Valid() {
				return domain.InvalidArgument("unknown role %q", u.Role)
			}
			return nil
		},
		// drivers do not report which unique index fired
		Conflict: func(u *domain.User) error {
			if u.Email != nil {
				return domain.Exists("user", "username %q or email %q is already in use", u.Username, *u.Email)
			}
			return domain.Exists("user", "user %q already exists", u.Username)
		},
		BeforeDelete: func(tx *gorm.DB, u *domain.User) error {
			n, err := repo.Table[domain.Recipe]{}.Count(tx, "user_id = ?", u.ID)
			if err != nil {
				return err
			}
			if n > 0 {
				return domain.InUse("user", "user %q still owns %d recipe(s)", u.Username, n)
			}
			return nil
		},
	}
	return &Users{
		Entity: NewEntity[domain.User, domain.UserPatch](db, l, schema),
		hash:   hash,
		jwt:    jwt,
		log:    l.With(zap.String("entity", "user")),
	}
}

// CreateUser hashes in.Password and stores the user. A taken username or
// email is a conflict.
func (s *Users) CreateUser(ctx context.Context, in NewUser) (*domain.User, error) {
	if in.Password == "" {
		return nil, domain.InvalidArgument("password must not be empty")
	}
	hashed, err := utils.HashPassword(in.Password, s.hash)
	if err != nil {
		return nil, err
	}
	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	u := &domain.User{
		Username: strings.TrimSpace(in.Username),
		Email:    normEmail(in.Email),
		Password: hashed,
		Role:     role,
	}
	return s.Create(ctx, u)
}

// GetByUsername is the natural key lookup.
func (s *Users) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.GetByKey(ctx, username)
}

// GetByEmail finds a user by email address.
func (s *Users) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := repo.Table[domain.User]{}.GetBy(s.db.Conn(ctx), []string{"email"}, []any{strings.TrimSpace(email)})
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.NotFound("user", "user with email %s not found", email)
	}
	return u, nil
}

// VerifyPassword reports whether candidate matches u's stored hash.
func (s *Users) VerifyPassword(u *domain.User, candidate string) bool {
	if u == nil || candidate == "" {
		return false
	}
	return utils.CheckPassword(candidate, u.Password)
}

// UpdatePassword replaces the password after checking the current one.
func (s *Users) UpdatePassword(ctx context.Context, id int64, oldPassword, newPassword string) (*domain.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.VerifyPassword(u, oldPassword) {
		return nil, domain.InvalidCredential("current password is incorrect")
	}
	return s.SetPassword(ctx, id, newPassword)
}

// SetPassword replaces the password without checking the old one; callers
// must have authorized the change.
func (s *Users) SetPassword(ctx context.Context, id int64, newPassword string) (*domain.User, error) {
	if newPassword == "" {
		return nil, domain.InvalidArgument("password must not be empty")
	}
	hashed, err := utils.HashPassword(newPassword, s.hash)
	if err != nil {
		return nil, err
	}
	return s.Update(ctx, id, domain.UserPatch{Password: &hashed})
}

// UpdateEmail sets or clears (empty string) the email. An address held by
// another user yields a duplicate email conflict.
func (s *Users) UpdateEmail(ctx context.Context, id int64, email string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	u, err := s.Update(ctx, id, domain.UserPatch{Email: &email})
	if errors.Is(err, domain.ErrConflict) {
		return nil, domain.DuplicateEmail(email).WithCause(err)
	}
	return u, err
}

// SetRole changes a user's access level.
func (s *Users) SetRole(ctx context.Context, id int64, role domain.Role) (*domain.User, error) {
	if !role.Valid() {
		return nil, domain.InvalidArgument("unknown role %q", role)
	}
	return s.Update(ctx, id, domain.UserPatch{Role: &role})
}

// Authenticate returns the user for a username/password pair. Unknown
// usernames and wrong passwords are indistinguishable to the caller.
func (s *Users) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	u, err := s.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.InvalidCredential("invalid username or password")
	}
	if err != nil {
		return nil, err
	}
	if !s.VerifyPassword(u, password) {
		s.log.Info("login rejected", zap.Int64("user_id", u.ID))
		return nil, domain.InvalidCredential("invalid username or password")
	}
	return u, nil
}

func (s *Users) IssueToken(u *domain.User) (string, error) {
	if s.jwt == nil {
		return "", errors.New("token issuer not configured")
	}
	return s.jwt.Issue(u.ID, u.Role)
}

func (s *Users) HasUsers(ctx context.Context) (bool, error) {
	n, err := s.Count(ctx)
	return n > 0, err
}

// CreateFirstUser bootstraps an empty installation with an admin. Once any
// user exists it is forbidden.
func (s *Users) CreateFirstUser(ctx context.Context, in NewUser) (*domain.User, error) {
	exists, err := s.HasUsers(ctx)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.Forbidden("root user already exists")
	}
	in.Role = domain.RoleAdmin
	u, err := s.CreateUser(ctx, in)
	if err != nil {
		return nil, err
	}
	s.log.Info("first user created", zap.Int64("user_id", u.ID), zap.String("username", u.Username))
	return u, nil
}

// Search pages through users whose username or email contains q, newest
// first. An empty q matches everyone.
func (s *Users) Search(ctx context.Context, q string, offset, limit int) ([]domain.User, int64, error) {
	db := s.db.Conn(ctx).Model(&domain.User{})
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		db = db.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}
	db = db.Session(&gorm.Session{})
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, s.storageError("search", err)
	}
	var out []domain.User
	if err := db.Order("created_at DESC").Order("id DESC").Offset(offset).Limit(limit).Find(&out).Error; err != nil {
		return nil, 0, s.storageError("search", err)
	}
	return out, total, nil
}

func normEmail(e *string) *string {
	if e == nil {
		return nil
	}
	v := strings.TrimSpace(*e)
	if v == "" {
		return nil
	}
	return &v
}

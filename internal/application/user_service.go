package application

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/rizkypratama/authguard/internal/domain/entity"
	repo "github.com/rizkypratama/authguard/internal/domain/repository"
	"github.com/rizkypratama/authguard/pkg/helpers"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user is deactivated")
	ErrUnconfirmed        = errors.New("email not confirmed")
	ErrEmailTaken         = errors.New("email already registered")
)

type Service struct {
	Users  repo.UserRepository
	Roles  repo.RoleRepository
	Audit  repo.AuditRepository
	JWT    *helpers.JWTManager
	Hasher *helpers.Hasher
	Redis  *redis.Client
	Logger *logrus.Logger

	GCS          *storage.Client
	GCSBucket    string
	ES           *elasticsearch.Client
	ESUsersIndex string

	ConfirmRequired bool
	SessionTTL      time.Duration
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func NewService(users repo.UserRepository, roles repo.RoleRepository, jwt *helpers.JWTManager, hasher *helpers.Hasher, rdb *redis.Client, logger *logrus.Logger, confirmRequired bool, sessionTTL time.Duration) *Service {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &Service{
		Users:           users,
		Roles:           roles,
		JWT:             jwt,
		Hasher:          hasher,
		Redis:           rdb,
		Logger:          logger,
		ConfirmRequired: confirmRequired,
		SessionTTL:      sessionTTL,
	}
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// Register creates an inactive-confirmation user and grants the base role.
// The caller is responsible for sending confirmation instructions.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{
		Email:        in.Email,
		PasswordHash: hash,
		Name:         in.Name,
		Active:       true,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	if role, rErr := s.Roles.FindOrCreate(ctx, "user", "default role"); rErr == nil {
		if aErr := s.Roles.AddToUser(ctx, u.ID, role.ID); aErr == nil {
			u.Roles = []entity.Role{*role}
		}
	} else if s.Logger != nil {
		s.Logger.WithError(rErr).Warn("base role grant failed")
	}
	_ = s.indexUser(ctx, u)
	return u, nil
}

// Authenticate validates email/password and the account state.
// It does not issue tokens and does not touch the login trail.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil || u == nil {
		// burn a hash comparison so the miss is not observable by timing
		_ = s.Hasher.Verify("$2a$10$0000000000000000000000000000000000000000000000000000", password)
		return nil, ErrInvalidCredentials
	}
	if !s.Hasher.Verify(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if !u.Active {
		return nil, ErrUserInactive
	}
	if s.ConfirmRequired && !u.Confirmed() {
		return nil, ErrUnconfirmed
	}
	return u, nil
}

// IssueTokens generates access/refresh tokens and records a session in Redis.
func (s *Service) IssueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	sid := uuid.NewString()
	access, aexp, err := s.JWT.GenerateAccessToken(u.ID, sid)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.ID, sid)
	if err != nil {
		return TokenPair{}, err
	}

	if s.Redis != nil {
		roles, _ := s.Roles.RolesForUser(ctx, u.ID)
		fields := map[string]any{
			"user_id":    u.ID,
			"email":      u.Email,
			"name":       u.Name,
			"sid":        sid,
			"roles":      joinRoleNames(roles),
			"created_at": nowRFC3339(),
		}
		key := helpers.KeySession(u.ID)
		pipe := s.Redis.Pipeline()
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, s.SessionTTL)
		if _, rErr := pipe.Exec(ctx); rErr != nil && s.Logger != nil {
			s.Logger.WithError(rErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}

	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

type LoginResult struct {
	User *entity.User
	Pair TokenPair
}

// Login authenticates, shifts the login trail and opens a session.
func (s *Service) Login(ctx context.Context, email, password, ip string) (*LoginResult, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	trail := repo.LoginTrail{At: time.Now().UTC(), IP: ip}
	if err := s.Users.RecordLogin(ctx, u.ID, trail); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("login trail update failed")
		}
	} else {
		// mirror the single-statement shift so the returned user and the
		// search index carry the fresh trail
		u.LastLoginAt = u.CurrentLoginAt
		u.LastLoginIP = u.CurrentLoginIP
		at := trail.At
		u.CurrentLoginAt = &at
		u.CurrentLoginIP = trail.IP
		u.LoginCount++
		_ = s.indexUser(ctx, u)
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: u, Pair: pair}, nil
}

// Refresh rotates the session id and both tokens. The refresh token must
// carry the session id currently stored in Redis.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, string, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, "", ErrInvalidCredentials
	}
	u, err := s.Users.GetByID(ctx, claims.UserID)
	if err != nil || u == nil {
		return TokenPair{}, "", ErrInvalidCredentials
	}
	if !u.Active {
		return TokenPair{}, "", ErrUserInactive
	}
	if s.Redis != nil {
		key := helpers.KeySession(u.ID)
		data, rErr := s.Redis.HGetAll(ctx, key).Result()
		if rErr != nil || len(data) == 0 || data["sid"] != claims.SessionID {
			return TokenPair{}, "", ErrInvalidCredentials
		}
	}
	sid := uuid.NewString()
	access, aexp, err := s.JWT.GenerateAccessToken(u.ID, sid)
	if err != nil {
		return TokenPair{}, "", err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.ID, sid)
	if err != nil {
		return TokenPair{}, "", err
	}
	if s.Redis != nil {
		key := helpers.KeySession(u.ID)
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, map[string]any{
			"sid":        sid,
			"updated_at": nowRFC3339(),
		})
		pipe.Expire(ctx, key, s.SessionTTL)
		_, _ = pipe.Exec(ctx)
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, u.ID, nil
}

// Logout destroys the user's session.
func (s *Service) Logout(ctx context.Context, userID string) {
	if s.Redis == nil || userID == "" {
		return
	}
	if err := s.Redis.Del(ctx, helpers.KeySession(userID)).Err(); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Warn("session delete failed")
	}
}

// Confirm stamps confirmed_at for the user.
func (s *Service) Confirm(ctx context.Context, userID string) error {
	return s.Users.SetConfirmed(ctx, userID)
}

// GetUserByEmail fetches a user without a password check (reset flow).
func (s *Service) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// GetProfile loads the user along with their roles.
func (s *Service) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}
	if roles, rErr := s.Roles.RolesForUser(ctx, userID); rErr == nil {
		u.Roles = roles
	}
	return u, nil
}

type UpdateProfileInput struct {
	Name      string
	AvatarURL string
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}
	if in.Name != "" {
		u.Name = in.Name
	}
	if in.AvatarURL != "" {
		u.AvatarURL = in.AvatarURL
	}
	if err := s.Users.Update(ctx, u); err != nil {
		return nil, err
	}
	if s.Redis != nil {
		key := helpers.KeySession(u.ID)
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, map[string]any{
			"name":       u.Name,
			"updated_at": nowRFC3339(),
		})
		if ttl, tErr := s.Redis.TTL(ctx, key).Result(); tErr == nil && ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		if _, pErr := pipe.Exec(ctx); pErr != nil && s.Logger != nil {
			s.Logger.WithError(pErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}
	_ = s.indexUser(ctx, u)
	return u, nil
}

// SetPassword hashes and stores a new password (reset confirm flow).
func (s *Service) SetPassword(ctx context.Context, userID, plain string) error {
	hash, err := s.Hasher.Hash(plain)
	if err != nil {
		return err
	}
	return s.Users.UpdatePassword(ctx, userID, hash)
}

// ChangePassword re-authenticates with the current password first, then
// invalidates the session so every device has to log in again.
func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil || u == nil {
		return ErrUserNotFound
	}
	if !s.Hasher.Verify(u.PasswordHash, current) {
		return ErrInvalidCredentials
	}
	if err := s.SetPassword(ctx, userID, next); err != nil {
		return err
	}
	s.Logout(ctx, userID)
	return nil
}

func joinRoleNames(roles []entity.Role) string {
	out := ""
	for i, r := range roles {
		if i > 0 {
			out += ","
		}
		out += r.Name
	}
	return out
}

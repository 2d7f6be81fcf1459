package account

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"chemnitz-facilities-api/internal/auth"
	"chemnitz-facilities-api/internal/database"
	"chemnitz-facilities-api/internal/facility"
	"chemnitz-facilities-api/internal/metrics"
	"chemnitz-facilities-api/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

var (
	ErrDuplicateIdentity    = errors.New("username or email already exists")
	ErrAuthenticationFailed = errors.New("incorrect username or password")
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidInput         = errors.New("invalid input")
)

const TokenType = "bearer"

type SignupInput struct {
	Username string
	Email    string
	Password string
	models.Profile
}

// UpdateInput changes only the fields that are non-nil.
type UpdateInput struct {
	FullName    *string
	Address     *string
	HouseNumber *string
	PLZ         *string
	Password    *string
}

type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Service registers users, checks credentials and manages tokens.
type Service struct {
	store   database.Store
	tokens  *auth.TokenManager
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewService(store database.Store, tokens *auth.TokenManager, m *metrics.Metrics, logger *zap.Logger) *Service {
	return &Service{store: store, tokens: tokens, metrics: m, logger: logger}
}

func (s *Service) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := validateSignup(in); err != nil {
		return nil, err
	}

	for _, filter := range []bson.M{{"username": in.Username}, {"email": in.Email}} {
		_, err := s.store.FindOne(ctx, database.UsersCollection, filter)
		if err == nil {
			return nil, ErrDuplicateIdentity
		}
		if !errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("check existing user: %w", err)
		}
	}

	hashed, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	doc := bson.M{
		"username":        in.Username,
		"email":           in.Email,
		"hashed_password": hashed,
		"address":         in.Address,
		"plz":             in.PLZ,
	}
	if in.FullName != "" {
		doc["full_name"] = in.FullName
	}
	if in.HouseNumber != "" {
		doc["house_number"] = in.HouseNumber
	}

	// The unique indexes catch a concurrent signup that slipped past the checks above.
	id, err := s.store.Insert(ctx, database.UsersCollection, doc)
	if err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	s.metrics.IncrementUsersCreated()
	s.logger.Info("user registered", zap.String("username", in.Username), zap.String("id", id))
	return s.Get(ctx, in.Username)
}

// Authenticate never tells the caller which half of the credentials was wrong.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.Get(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrAuthenticationFailed
		}
		return nil, err
	}
	if !auth.CheckPasswordHash(password, user.HashedPassword) {
		return nil, ErrAuthenticationFailed
	}
	return user, nil
}

func (s *Service) Login(ctx context.Context, username, password string) (*Token, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	accessToken, expiresAt, err := s.tokens.Issue(user.Username)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Token{AccessToken: accessToken, TokenType: TokenType, ExpiresAt: expiresAt}, nil
}

// UserFromToken resolves a bearer token to its account. A valid token whose
// account has since been deleted is reported as an invalid token.
func (s *Service) UserFromToken(ctx context.Context, token string) (*models.User, error) {
	username, err := s.tokens.Validate(token)
	if err != nil {
		return nil, err
	}
	user, err := s.Get(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, auth.ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}

func (s *Service) Get(ctx context.Context, username string) (*models.User, error) {
	doc, err := s.store.FindOne(ctx, database.UsersCollection, bson.M{"username": username})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return DecodeUser(doc, s.logger)
}

func (s *Service) UpdateProfile(ctx context.Context, username string, in UpdateInput) (*models.User, error) {
	fields := bson.M{}
	if in.FullName != nil {
		fields["full_name"] = *in.FullName
	}
	if in.Address != nil {
		fields["address"] = *in.Address
	}
	if in.HouseNumber != nil {
		fields["house_number"] = *in.HouseNumber
	}
	if in.PLZ != nil {
		fields["plz"] = *in.PLZ
	}
	if in.Password != nil {
		if *in.Password == "" {
			return nil, fmt.Errorf("%w: password must not be empty", ErrInvalidInput)
		}
		hashed, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		fields["hashed_password"] = hashed
	}
	if len(fields) == 0 {
		return s.Get(ctx, username)
	}

	result, err := s.store.UpdateFields(ctx, database.UsersCollection, bson.M{"username": username}, fields)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	if result.Matched == 0 {
		return nil, ErrUserNotFound
	}
	return s.Get(ctx, username)
}

func (s *Service) Delete(ctx context.Context, username string) error {
	deleted, err := s.store.DeleteOne(ctx, database.UsersCollection, bson.M{"username": username})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if deleted == 0 {
		return ErrUserNotFound
	}
	s.logger.Info("user deleted", zap.String("username", username))
	return nil
}

// DecodeUser maps a stored user document, including its favorite snapshot.
// A snapshot that no longer decodes is logged and leaves Favorite nil; the
// raw FavoriteSnapshot is kept so it can still be cleared.
func DecodeUser(doc bson.M, logger *zap.Logger) (*models.User, error) {
	data, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode user: %w", err)
	}
	var user models.User
	if err := bson.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	if user.FavoriteSnapshot != nil {
		fav, err := facility.DecodeSnapshot(user.FavoriteSnapshot)
		if err != nil {
			logger.Warn("stored favorite facility could not be decoded",
				zap.String("username", user.Username), zap.Error(err))
		} else {
			user.Favorite = fav
		}
	}
	return &user, nil
}

func validateSignup(in SignupInput) error {
	switch {
	case in.Username == "":
		return fmt.Errorf("%w: username is required", ErrInvalidInput)
	case in.Password == "":
		return fmt.Errorf("%w: password is required", ErrInvalidInput)
	case in.Address == "":
		return fmt.Errorf("%w: address is required", ErrInvalidInput)
	case in.PLZ == "":
		return fmt.Errorf("%w: plz is required", ErrInvalidInput)
	}
	addr, err := mail.ParseAddress(in.Email)
	if err != nil || addr.Address != in.Email {
		return fmt.Errorf("%w: email is not a valid address", ErrInvalidInput)
	}
	return nil
}

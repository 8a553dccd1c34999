package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/speechpal-backend/internal/logger"
	"github.com/yungbote/speechpal-backend/internal/repos"
	"github.com/yungbote/speechpal-backend/internal/requestdata"
	"github.com/yungbote/speechpal-backend/internal/types"
	"github.com/yungbote/speechpal-backend/internal/utils"
)

type JWTClaims struct {
	jwt.RegisteredClaims
}

type AuthService interface {
	RegisterUser(ctx context.Context, user *types.User) (string, string, error)
	LoginUser(ctx context.Context, email, password string) (string, string, error)
	RefreshUser(ctx context.Context, refreshToken string) (string, string, error)
	LogoutUser(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	profileRepo   repos.UserProfileRepo
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	profileRepo repos.UserProfileRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	return &authService{
		db:            db,
		log:           log.With("service", "AuthService"),
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		profileRepo:   profileRepo,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (as *authService) GetAccessTTL() time.Duration { return as.accessTTL }

func (as *authService) RegisterUser(ctx context.Context, user *types.User) (string, string, error) {
	utils.NormalizeUserFields(user)
	if vErr := utils.ValidateRegistration(user); vErr != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidPayload, vErr)
	}
	exists, eErr := as.userRepo.EmailExists(ctx, nil, user.Email)
	if eErr != nil {
		return "", "", fmt.Errorf("Failed to check email: %w", eErr)
	}
	if exists {
		return "", "", fmt.Errorf("%w: email already registered", ErrInvalidPayload)
	}
	if hErr := utils.HashPassword(user); hErr != nil {
		return "", "", hErr
	}

	var accessToken, refreshToken string
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user.ID = uuid.New()
		if cErr := as.userRepo.Create(ctx, tx, user); cErr != nil {
			return fmt.Errorf("Failed to create user: %w", cErr)
		}
		if _, pErr := as.profileRepo.GetOrCreateByUserID(ctx, tx, user.ID); pErr != nil {
			return fmt.Errorf("Failed to create user profile: %w", pErr)
		}
		at, rt, tErr := as.issueTokens(ctx, tx, user)
		if tErr != nil {
			return tErr
		}
		accessToken, refreshToken = at, rt
		return nil
	})
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (string, string, error) {
	probe := &types.User{Email: email}
	utils.NormalizeUserFields(probe)

	user, uErr := as.userRepo.GetByEmail(ctx, nil, probe.Email)
	if uErr != nil {
		return "", "", fmt.Errorf("Error retrieving user by email: %w", uErr)
	}
	if user == nil {
		return "", "", ErrInvalidCredentials
	}
	if hErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); hErr != nil {
		return "", "", ErrInvalidCredentials
	}

	var accessToken, refreshToken string
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if dErr := as.userTokenRepo.DeleteByUserID(ctx, tx, user.ID); dErr != nil {
			return fmt.Errorf("Failed to clear previous session: %w", dErr)
		}
		at, rt, tErr := as.issueTokens(ctx, tx, user)
		if tErr != nil {
			return tErr
		}
		accessToken, refreshToken = at, rt
		return nil
	})
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (as *authService) RefreshUser(ctx context.Context, refreshToken string) (string, string, error) {
	if refreshToken == "" {
		return "", "", fmt.Errorf("%w: missing refresh token", ErrInvalidPayload)
	}

	var newAccess, newRefresh string
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, ftErr := as.userTokenRepo.GetByRefreshToken(ctx, tx, refreshToken)
		if ftErr != nil {
			return fmt.Errorf("Error fetching refresh token: %w", ftErr)
		}
		if existing == nil {
			return ErrInvalidCredentials
		}
		if existing.ExpiresAt.Before(time.Now()) {
			if dErr := as.userTokenRepo.DeleteByUserID(ctx, tx, existing.UserID); dErr != nil {
				return fmt.Errorf("Failed to delete expired token: %w", dErr)
			}
			return ErrInvalidCredentials
		}
		user, uErr := as.userRepo.GetByID(ctx, tx, existing.UserID)
		if uErr != nil {
			return fmt.Errorf("Failed to load user for refresh: %w", uErr)
		}
		if user == nil {
			return ErrInvalidCredentials
		}
		if dErr := as.userTokenRepo.DeleteByUserID(ctx, tx, user.ID); dErr != nil {
			return fmt.Errorf("Failed to rotate refresh token: %w", dErr)
		}
		at, rt, tErr := as.issueTokens(ctx, tx, user)
		if tErr != nil {
			return tErr
		}
		newAccess, newRefresh = at, rt
		return nil
	})
	if err != nil {
		return "", "", err
	}
	return newAccess, newRefresh, nil
}

func (as *authService) LogoutUser(ctx context.Context) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return fmt.Errorf("No request data found in context")
	}
	return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if dErr := as.userTokenRepo.DeleteByUserID(ctx, tx, rd.UserID); dErr != nil {
			return fmt.Errorf("Error deleting user token: %w", dErr)
		}
		return nil
	})
}

func (as *authService) issueTokens(ctx context.Context, tx *gorm.DB, user *types.User) (string, string, error) {
	accessToken, genErr := as.generateAccessToken(user)
	if genErr != nil {
		return "", "", fmt.Errorf("Generate access token error: %w", genErr)
	}
	refreshToken := uuid.New().String()
	userToken := &types.UserToken{
		ID:           uuid.New(),
		UserID:       user.ID,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(as.refreshTTL),
	}
	if cErr := as.userTokenRepo.Create(ctx, tx, userToken); cErr != nil {
		return "", "", fmt.Errorf("Create user token error: %w", cErr)
	}
	return accessToken, refreshToken, nil
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, fmt.Errorf("%w: empty token", ErrInvalidCredentials)
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		return ctx, fmt.Errorf("Failed to parse token: %w", err)
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, fmt.Errorf("%w: invalid or expired token", ErrInvalidCredentials)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("Invalid user id in token: %w", err)
	}
	return requestdata.WithRequestData(ctx, &requestdata.RequestData{
		TokenString: tokenString,
		UserID:      userID,
	}), nil
}

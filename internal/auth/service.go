package auth

import (
	"context"
	"errors"
	"time"

	"backend-presence/internal/db"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const deviceTokenTTL = 30 * 24 * time.Hour

type Service struct {
	secret []byte
	db     db.Querier
}

type Claims struct {
	DeviceID string `json:"device_id"`
	jwt.RegisteredClaims
}

func NewService(secret string, db db.Querier) *Service {
	return &Service{
		secret: []byte(secret),
		db:     db,
	}
}

// RegisterDevice stores a new reporting device with a hashed pairing secret.
func (s *Service) RegisterDevice(ctx context.Context, req RegisterRequest) (Device, error) {
	if req.Name == "" || req.Secret == "" {
		return Device{}, errors.New("name and secret required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Secret), bcrypt.DefaultCost)
	if err != nil {
		return Device{}, err
	}

	device := Device{
		ID:         uuid.NewString(),
		Name:       req.Name,
		SecretHash: string(hash),
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO devices (id, name, secret_hash)
		VALUES ($1,$2,$3)
		RETURNING created_at
	`, device.ID, device.Name, device.SecretHash)
	if err := row.Scan(&device.CreatedAt); err != nil {
		return Device{}, err
	}
	return device, nil
}

// Pair verifies a device's secret and issues an access token.
func (s *Service) Pair(ctx context.Context, req PairRequest) (TokenResponse, error) {
	row := s.db.QueryRow(ctx, `
		SELECT secret_hash FROM devices WHERE id = $1
	`, req.DeviceID)

	var hash string
	if err := row.Scan(&hash); err != nil {
		return TokenResponse{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Secret)); err != nil {
		return TokenResponse{}, errors.New("invalid credentials")
	}

	token, err := s.signToken(req.DeviceID, deviceTokenTTL)
	if err != nil {
		return TokenResponse{}, err
	}
	return TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(deviceTokenTTL.Seconds()),
	}, nil
}

func (s *Service) ValidateAccessToken(token string) (string, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return "", err
	}
	return claims.DeviceID, nil
}

func (s *Service) signToken(deviceID string, ttl time.Duration) (string, error) {
	claims := Claims{
		DeviceID: deviceID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Service) parseToken(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("token invalid")
	}
	return claims, nil
}

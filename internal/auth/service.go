package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/argon2"
)

var (
	// ErrInvalidCredentials is returned when the username or password does
	// not match the provisioned user.
	ErrInvalidCredentials = errors.New("incorrect email or password")

	// ErrInvalidToken is returned for malformed, mis-signed, or expired tokens
	ErrInvalidToken = errors.New("could not validate credentials")
)

// argon2id parameters, tuned for an interactive login path
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
	argonSaltLen = 16
)

// Service handles credential verification and JWT issuance
type Service struct {
	secretKey   []byte
	tokenExpiry time.Duration
	user        User
	now         func() time.Time
}

// NewService creates an auth service with a single user provisioned from
// configuration. The plaintext password is hashed at startup and discarded.
func NewService(secretKey, userEmail, userPassword string, tokenExpiry time.Duration) (*Service, error) {
	hash, err := HashPassword(userPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash user password: %w", err)
	}
	return &Service{
		secretKey:   []byte(secretKey),
		tokenExpiry: tokenExpiry,
		user: User{
			Email:        normalizeEmail(userEmail),
			PasswordHash: hash,
		},
		now: time.Now,
	}, nil
}

// Authenticate verifies the credentials and returns the matching user
func (s *Service) Authenticate(email, password string) (*User, error) {
	if normalizeEmail(email) != s.user.Email {
		// Burn a hash anyway so the miss is not observable through timing
		_ = VerifyPassword(password, s.user.PasswordHash)
		return nil, ErrInvalidCredentials
	}
	if !VerifyPassword(password, s.user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	user := s.user
	return &user, nil
}

// CreateAccessToken issues an HS256 JWT with the user's email as subject
func (s *Service) CreateAccessToken(user *User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub": user.Email,
		"exp": now.Add(s.tokenExpiry).Unix(),
		"iat": now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken validates signature and expiry and returns the subject email
func (s *Service) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secretKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	if sub == "" || sub != s.user.Email {
		return "", ErrInvalidToken
	}
	return sub, nil
}

// HashPassword derives an argon2id digest in the standard encoded form
func HashPassword(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// VerifyPassword checks a plaintext password against an encoded argon2id digest
func VerifyPassword(password, encoded string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false
	}

	var memory, iterations uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false
	}

	key := argon2.IDKey([]byte(password), salt, iterations, memory, threads, uint32(len(expected)))
	return subtle.ConstantTimeCompare(key, expected) == 1
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Package session manages user accounts and the signed-in user cookie.
//
// Login always succeeds for a non-empty email/password pair: when the
// email belongs to a persisted account and the password verifies, the
// stored profile is returned, otherwise a demo profile is fabricated.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Record is the signed-in user profile carried in the session cookie.
type Record struct {
	ID          string `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Nationality string `json:"nationality"`
	Avatar      string `json:"avatar"`
}

// SignupParams are the fields collected by the signup form.
type SignupParams struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Nationality string `json:"nationality"`
	Password    string `json:"password"`
}

var ErrMissingCredentials = errors.New("email and password are required")

const (
	loginDelay  = 800 * time.Millisecond
	signupDelay = 1000 * time.Millisecond

	demoPhone       = "+212 123456789"
	demoNationality = "Morocco"
	demoAvatar      = "/images/avatar.jpg"
)

// Store authenticates users against the users table.
type Store struct {
	db    *sql.DB
	sleep func(ctx context.Context, d time.Duration) error
}

type Option func(*Store)

// WithSleep replaces the simulated-latency delay, for tests.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(s *Store) { s.sleep = sleep }
}

func NewStore(db *sql.DB, opts ...Option) *Store {
	s := &Store{
		db: db,
		sleep: func(ctx context.Context, d time.Duration) error {
			t := time.NewTimer(d)
			defer t.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-t.C:
				return nil
			}
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login resolves a profile for the given credentials. Any non-empty pair
// succeeds: a persisted account with a matching password wins, anything
// else gets a fabricated demo profile under the given email.
func (s *Store) Login(ctx context.Context, email, password string) (Record, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return Record{}, ErrMissingCredentials
	}

	if err := s.sleep(ctx, loginDelay); err != nil {
		return Record{}, err
	}

	var rec Record
	var passwordHash string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, first_name, last_name, phone, nationality, avatar
		FROM users WHERE email = ?
	`, email).Scan(&rec.ID, &rec.Email, &passwordHash, &rec.FirstName, &rec.LastName, &rec.Phone, &rec.Nationality, &rec.Avatar)
	switch {
	case err == nil:
		if bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)) == nil {
			return rec, nil
		}
	case errors.Is(err, sql.ErrNoRows):
		// Fall through to the demo profile.
	default:
		return Record{}, fmt.Errorf("looking up account: %w", err)
	}

	return demoRecord(email), nil
}

// Signup persists a new account and returns its profile. An existing
// account under the same email is replaced, so signup never fails on a
// duplicate.
func (s *Store) Signup(ctx context.Context, params SignupParams) (Record, error) {
	params.Email = strings.TrimSpace(strings.ToLower(params.Email))
	if params.Email == "" || params.Password == "" {
		return Record{}, ErrMissingCredentials
	}

	if err := s.sleep(ctx, signupDelay); err != nil {
		return Record{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return Record{}, fmt.Errorf("hashing password: %w", err)
	}

	rec := Record{
		ID:          uuid.NewString(),
		FirstName:   params.FirstName,
		LastName:    params.LastName,
		Email:       params.Email,
		Phone:       params.Phone,
		Nationality: params.Nationality,
		Avatar:      demoAvatar,
	}
	if rec.Phone == "" {
		rec.Phone = demoPhone
	}
	if rec.Nationality == "" {
		rec.Nationality = demoNationality
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, first_name, last_name, phone, nationality, avatar)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET
			password_hash = excluded.password_hash,
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			phone = excluded.phone,
			nationality = excluded.nationality,
			avatar = excluded.avatar
	`, rec.ID, rec.Email, string(hash), rec.FirstName, rec.LastName, rec.Phone, rec.Nationality, rec.Avatar)
	if err != nil {
		return Record{}, fmt.Errorf("saving account: %w", err)
	}

	// The upsert keeps the original id for a replaced account.
	if err := s.db.QueryRowContext(ctx, `SELECT id FROM users WHERE email = ?`, rec.Email).Scan(&rec.ID); err != nil {
		return Record{}, fmt.Errorf("reading account id: %w", err)
	}
	return rec, nil
}

func demoRecord(email string) Record {
	return Record{
		ID:          uuid.NewString(),
		FirstName:   "Demo",
		LastName:    "User",
		Email:       email,
		Phone:       demoPhone,
		Nationality: demoNationality,
		Avatar:      demoAvatar,
	}
}

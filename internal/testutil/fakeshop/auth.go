package fakeshop

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// tokenIssuer signs RS256 access tokens and publishes its key as PEM.
type tokenIssuer struct {
	key       *rsa.PrivateKey
	publicPEM string
}

func newTokenIssuer() (*tokenIssuer, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA key: %w", err)
	}
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to encode public key: %w", err)
	}
	block := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	return &tokenIssuer{key: key, publicPEM: string(block)}, nil
}

func (t *tokenIssuer) issue(u *user) (string, error) {
	now := time.Now()
	role := "CUSTOMER"
	if u.Admin {
		role = "ADMIN"
	}
	claims := jwt.MapClaims{
		"iss":   "fakeshop-auth",
		"sub":   u.ID,
		"email": u.Email,
		"roles": []string{role},
		"iat":   now.Unix(),
		"exp":   now.Add(15 * time.Minute).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(t.key)
}

func (t *tokenIssuer) subject(raw string) (string, error) {
	token, err := jwt.Parse(raw, func(*jwt.Token) (any, error) {
		return &t.key.PublicKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
	if err != nil {
		return "", err
	}
	return token.Claims.GetSubject()
}

// ForgeToken signs a token for subject with a throwaway key, for tests that
// need a token the published key rejects.
func ForgeToken(subject string) (string, error) {
	other, err := newTokenIssuer()
	if err != nil {
		return "", err
	}
	return other.issue(&user{ID: subject})
}

// IssueToken signs a valid token for subject with the shop's key.
func (s *Shop) IssueToken(subject string) (string, error) {
	return s.tokens.issue(&user{ID: subject})
}

type user struct {
	ID       string
	Email    string
	Password string
	Name     string
	Admin    bool
}

// addUser must be called with s.mu held.
func (s *Shop) addUser(email, password, name string, admin bool) *user {
	u := &user{ID: uuid.NewString(), Email: email, Password: password, Name: name, Admin: admin}
	s.users[strings.ToLower(email)] = u
	return u
}

func (s *Shop) userByID(id string) *user {
	for _, u := range s.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

var errNoBearer = errors.New("missing bearer token")

// caller resolves the bearer token to a user.
func (s *Shop) caller(r *http.Request) (*user, error) {
	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || raw == "" {
		return nil, errNoBearer
	}
	subject, err := s.tokens.subject(raw)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.userByID(subject)
	if u == nil {
		return nil, fmt.Errorf("unknown subject %s", subject)
	}
	return u, nil
}

func (s *Shop) authenticated(next func(w http.ResponseWriter, r *http.Request, u *user)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := s.caller(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		next(w, r, u)
	}
}

func (s *Shop) adminOnly(next func(w http.ResponseWriter, r *http.Request, u *user)) http.HandlerFunc {
	return s.authenticated(func(w http.ResponseWriter, r *http.Request, u *user) {
		if !u.Admin {
			writeError(w, http.StatusForbidden, "admin role required")
			return
		}
		next(w, r, u)
	})
}

func (s *Shop) authRoutes(r chi.Router) {
	r.Get("/auth/public-key", s.publicKey)
	r.Post("/auth/login", s.faulty(OpAuthLogin, s.login))
	r.Post("/auth/register", s.faulty(OpAuthRegister, s.register))
	r.Post("/auth/refresh", s.refreshToken)
	r.Post("/auth/validate", s.validate)
}

func (s *Shop) publicKey(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(s.tokens.publicPEM))
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (s *Shop) session(w http.ResponseWriter, status int, u *user) {
	token, err := s.tokens.issue(u)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	refresh := uuid.NewString()

	s.mu.Lock()
	s.refresh[refresh] = u.ID
	s.mu.Unlock()

	writeJSON(w, status, map[string]any{
		"accessToken":  token,
		"refreshToken": refresh,
		"tokenType":    "Bearer",
		"expiresIn":    900,
		"userId":       u.ID,
	})
}

func (s *Shop) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	u := s.users[strings.ToLower(req.Email)]
	s.mu.Unlock()

	switch {
	case u == nil:
		writeError(w, http.StatusNotFound, "user not found")
	case u.Password != req.Password:
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	default:
		s.session(w, http.StatusOK, u)
	}
}

func (s *Shop) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	if existing := s.users[strings.ToLower(req.Email)]; existing != nil {
		s.mu.Unlock()
		writeError(w, http.StatusConflict, "email already registered")
		return
	}
	u := s.addUser(req.Email, req.Password, req.Name, false)
	conflict := s.registerConflict
	s.mu.Unlock()

	if conflict {
		writeError(w, http.StatusConflict, "email already registered")
		return
	}
	s.session(w, http.StatusCreated, u)
}

func (s *Shop) refreshToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	u := s.userByID(s.refresh[req.RefreshToken])
	s.mu.Unlock()
	if u == nil {
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}
	s.session(w, http.StatusOK, u)
}

func (s *Shop) validate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if !decode(w, r, &req) {
		return
	}
	subject, err := s.tokens.subject(req.Token)
	writeJSON(w, http.StatusOK, map[string]any{"valid": err == nil, "userId": subject})
}

func userView(u *user) map[string]any {
	return map[string]any{"userId": u.ID, "email": u.Email, "name": u.Name}
}

func (s *Shop) userRoutes(r chi.Router) {
	r.Get("/users/internal/{id}", s.requireSecret(s.internalUser))
	r.Get("/users/me", s.authenticated(func(w http.ResponseWriter, _ *http.Request, u *user) {
		writeJSON(w, http.StatusOK, userView(u))
	}))

	r.Get("/addresses", s.authenticated(s.listAddresses))
	r.Post("/addresses", s.faulty(OpAddressCreate, s.authenticated(s.createAddress)))
	r.Patch("/addresses/{id}/default-shipping", s.faulty(OpDefaultShipping, s.authenticated(s.defaultAddress("shipping"))))
	r.Patch("/addresses/{id}/default-billing", s.authenticated(s.defaultAddress("billing")))
}

func (s *Shop) internalUser(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	u := s.userByID(chi.URLParam(r, "id"))
	s.mu.Unlock()
	if u == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, userView(u))
}

type addressRecord struct {
	AddressID       string `json:"addressId"`
	Label           string `json:"label"`
	Country         string `json:"country"`
	State           string `json:"state"`
	City            string `json:"city"`
	Zip             string `json:"zip"`
	Street          string `json:"street"`
	Number          string `json:"number"`
	Complement      string `json:"complement"`
	DefaultShipping bool   `json:"defaultShipping"`
	DefaultBilling  bool   `json:"defaultBilling"`
}

func (s *Shop) listAddresses(w http.ResponseWriter, _ *http.Request, u *user) {
	s.mu.Lock()
	list := append([]*addressRecord{}, s.addresses[u.ID]...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, list)
}

func (s *Shop) createAddress(w http.ResponseWriter, r *http.Request, u *user) {
	var req addressRecord
	if !decode(w, r, &req) {
		return
	}
	req.AddressID = uuid.NewString()

	s.mu.Lock()
	s.addresses[u.ID] = append(s.addresses[u.ID], &req)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, req)
}

func (s *Shop) defaultAddress(kind string) func(w http.ResponseWriter, r *http.Request, u *user) {
	return func(w http.ResponseWriter, r *http.Request, u *user) {
		id := chi.URLParam(r, "id")

		s.mu.Lock()
		defer s.mu.Unlock()
		var found *addressRecord
		for _, addr := range s.addresses[u.ID] {
			match := addr.AddressID == id
			if kind == "shipping" {
				addr.DefaultShipping = match
			} else {
				addr.DefaultBilling = match
			}
			if match {
				found = addr
			}
		}
		if found == nil {
			writeError(w, http.StatusNotFound, "address not found")
			return
		}
		writeJSON(w, http.StatusOK, found)
	}
}

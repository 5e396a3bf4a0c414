// Package httpserver exposes the catalog HTTP API handlers.
package httpserver

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/and161185/goph-catalog/internal/model"
	"github.com/and161185/goph-catalog/internal/service"
)

const maxBody = 1 << 20

// Server wires services into HTTP handlers.
type Server struct {
	auth     service.AuthService
	products service.ProductService
	tokens   TokenVerifier
	log      *zap.Logger

	trustProxy bool
}

// Option configures optional Server behaviour.
type Option func(*Server)

// WithTrustProxy makes the client address come from X-Forwarded-For or
// X-Real-IP. Enable only behind a proxy that overwrites those headers.
func WithTrustProxy(trust bool) Option {
	return func(s *Server) { s.trustProxy = trust }
}

// New constructs the HTTP API with injected services.
func New(auth service.AuthService, products service.ProductService, tokens TokenVerifier, log *zap.Logger, opts ...Option) *Server {
	s := &Server{auth: auth, products: products, tokens: tokens, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes builds the router with middleware and all endpoints mounted.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	if s.trustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(Logging(s.log), Recover(s.log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", s.Register)
		r.Post("/login", s.Login)
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", s.ListProducts)
		r.Get("/{id}", s.GetProduct)

		r.Group(func(r chi.Router) {
			r.Use(AuthGate(s.tokens, s.log))
			r.Post("/", s.CreateProduct)
			r.Put("/{id}", s.UpdateProduct)
			r.Delete("/{id}", s.DeleteProduct)
			r.Delete("/", s.DeleteProducts)
		})
	})
	return r
}

// --- Auth ---

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates a new user account.
func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if !decodeBody(w, r, &in) {
		return
	}
	if _, err := s.auth.Register(r.Context(), in.Username, in.Password); err != nil {
		s.writeError(w, r, err, msgUserExists)
		return
	}
	writeMessage(w, http.StatusCreated, "User registered successfully")
}

// Login authenticates a user and returns an access token.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if !decodeBody(w, r, &in) {
		return
	}
	tok, err := s.auth.LoginWithIP(r.Context(), in.Username, in.Password, remoteIP(r))
	if err != nil {
		s.writeError(w, r, err, msgBadCredentials)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": tok.AccessToken})
}

func remoteIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// --- Products ---

// ListProducts filters and paginates the catalog.
func (s *Server) ListProducts(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	q := service.ParseProductQuery(v.Get("name"), v.Get("minPrice"), v.Get("maxPrice"), v.Get("page"), v.Get("limit"))
	page, err := s.products.List(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err, msgProductNotFound)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// GetProduct returns one product by id.
func (s *Server) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.products.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err, msgProductNotFound)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// CreateProduct stores a new product under a generated id.
func (s *Server) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in model.NewProduct
	if !decodeBody(w, r, &in) {
		return
	}
	p, err := s.products.Create(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err, msgProductNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// UpdateProduct merges the supplied fields onto an existing product.
func (s *Server) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var patch model.ProductPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	p, err := s.products.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		s.writeError(w, r, err, msgProductNotFound)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DeleteProduct removes one product.
func (s *Server) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := s.products.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err, msgProductNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteProducts removes every product listed in {"ids": [...]}.
func (s *Server) DeleteProducts(w http.ResponseWriter, r *http.Request) {
	var in struct {
		IDs json.RawMessage `json:"ids"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	var ids []string
	if err := json.Unmarshal(in.IDs, &ids); err != nil || ids == nil {
		writeMessage(w, http.StatusBadRequest, "IDs should be an array")
		return
	}
	if _, err := s.products.DeleteMany(r.Context(), ids); err != nil {
		s.writeError(w, r, err, msgNothingDeleted)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

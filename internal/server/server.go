package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"uccdatahub/internal/importer"
	"uccdatahub/internal/payments"
	"uccdatahub/internal/store"
	"uccdatahub/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-chi/cors"
	"github.com/go-playground/form/v4"
	"github.com/sirupsen/logrus"
)

var decoder = form.NewDecoder()

// Store interfaces are the slices of the repositories the handlers
// touch; tests stand in fakes.

type UserStore interface {
	UserByEmail(ctx context.Context, email string) (*types.User, error)
	Create(ctx context.Context, user *types.User) error
	StampLastLogin(ctx context.Context, userID string) error
}

type ProfileStore interface {
	Upsert(ctx context.Context, profile *types.Profile) error
	ProfilesByUser(ctx context.Context, userID string) ([]*types.Profile, error)
}

type ConfigurationStore interface {
	Upsert(ctx context.Context, state string, mapping types.ColumnMapping) error
	Configuration(ctx context.Context, state string) (*types.Configuration, error)
}

type FilingStore interface {
	SecuredParties(ctx context.Context, states []string) ([]string, error)
	Search(ctx context.Context, state string, q store.SearchQuery) (*store.StateResult, error)
}

type TransactionStore interface {
	Record(ctx context.Context, transaction *types.Transaction) error
	TransactionsByUser(ctx context.Context, userID string) ([]*types.Transaction, error)
	TransactionForDownload(ctx context.Context, transactionID, userID string) (*types.Transaction, error)
}

type UploadImporter interface {
	Run(ctx context.Context, req importer.Request) (*importer.Result, error)
}

type Service struct {
	logger *logrus.Logger
	config *types.Config

	users          UserStore
	profiles       ProfileStore
	configurations ConfigurationStore
	filings        FilingStore
	transactions   TransactionStore

	importer UploadImporter
	capturer payments.OrderCapturer
	pricing  payments.Pricing

	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	users UserStore,
	profiles ProfileStore,
	configurations ConfigurationStore,
	filings FilingStore,
	transactions TransactionStore,
	uploadImporter UploadImporter,
	capturer payments.OrderCapturer,
) (*Service, error) {
	mux := flow.New()

	s := &Service{
		logger: logger,
		config: config,

		users:          users,
		profiles:       profiles,
		configurations: configurations,
		filings:        filings,
		transactions:   transactions,

		importer: uploadImporter,
		capturer: capturer,
		pricing: payments.Pricing{
			PerRecordCents:       config.PricePerRecordCents,
			DiscountCode:         config.DiscountCode,
			DiscountedTotalCents: config.DiscountedTotalCents,
		},

		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	s.buildRouter(mux)

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.StripTrailingSlash)
	r.Use(s.LoggingMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.HandleFunc("/api/healthz", s.handleHealth, http.MethodGet)

	r.HandleFunc("/api/register", s.handleRegister, http.MethodPost)
	r.HandleFunc("/api/login", s.handleLogin, http.MethodPost)

	r.HandleFunc("/api/secured-parties", s.handleSecuredParties, http.MethodGet)
	r.HandleFunc("/api/generate-csv", s.handleGenerateCSV, http.MethodPost)

	r.HandleFunc("/api/save-profile", s.handleSaveProfile, http.MethodPost)
	r.HandleFunc("/api/load-profiles", s.handleLoadProfiles, http.MethodGet)

	r.HandleFunc("/api/save-configuration", s.handleSaveConfiguration, http.MethodPost)
	r.HandleFunc("/api/load-configuration", s.handleLoadConfiguration, http.MethodGet)

	r.HandleFunc("/api/upload", s.handleUpload, http.MethodPost)

	r.HandleFunc("/api/verify-payment", s.handleVerifyPayment, http.MethodPost)
	r.HandleFunc("/api/transactions/:userID", s.handleTransactions, http.MethodGet)
	r.HandleFunc("/api/download-transaction/:transactionID/:userID", s.handleDownloadTransaction, http.MethodGet)
}

// isAdminEmail applies the admin allow-list. An empty list leaves the
// gate open for single-operator deployments.
func (s *Service) isAdminEmail(email string) bool {
	if len(s.config.AdminEmails) == 0 {
		return true
	}
	for _, allowed := range s.config.AdminEmails {
		if strings.EqualFold(strings.TrimSpace(allowed), strings.TrimSpace(email)) {
			return true
		}
	}
	return false
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

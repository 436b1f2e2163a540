package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"uccdatahub/internal/importer"
	"uccdatahub/internal/payments"
	"uccdatahub/internal/store"
	"uccdatahub/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

var errUnexpectedCall = errors.New("unexpected call")

type fakeUserStore struct {
	userByEmail    func(ctx context.Context, email string) (*types.User, error)
	create         func(ctx context.Context, user *types.User) error
	stampLastLogin func(ctx context.Context, userID string) error
}

func (f *fakeUserStore) UserByEmail(ctx context.Context, email string) (*types.User, error) {
	if f.userByEmail == nil {
		return nil, errUnexpectedCall
	}
	return f.userByEmail(ctx, email)
}

func (f *fakeUserStore) Create(ctx context.Context, user *types.User) error {
	if f.create == nil {
		return errUnexpectedCall
	}
	return f.create(ctx, user)
}

func (f *fakeUserStore) StampLastLogin(ctx context.Context, userID string) error {
	if f.stampLastLogin == nil {
		return errUnexpectedCall
	}
	return f.stampLastLogin(ctx, userID)
}

type fakeProfileStore struct {
	upsert         func(ctx context.Context, profile *types.Profile) error
	profilesByUser func(ctx context.Context, userID string) ([]*types.Profile, error)
}

func (f *fakeProfileStore) Upsert(ctx context.Context, profile *types.Profile) error {
	if f.upsert == nil {
		return errUnexpectedCall
	}
	return f.upsert(ctx, profile)
}

func (f *fakeProfileStore) ProfilesByUser(ctx context.Context, userID string) ([]*types.Profile, error) {
	if f.profilesByUser == nil {
		return nil, errUnexpectedCall
	}
	return f.profilesByUser(ctx, userID)
}

type fakeConfigurationStore struct {
	upsert        func(ctx context.Context, state string, mapping types.ColumnMapping) error
	configuration func(ctx context.Context, state string) (*types.Configuration, error)
}

func (f *fakeConfigurationStore) Upsert(ctx context.Context, state string, mapping types.ColumnMapping) error {
	if f.upsert == nil {
		return errUnexpectedCall
	}
	return f.upsert(ctx, state, mapping)
}

func (f *fakeConfigurationStore) Configuration(ctx context.Context, state string) (*types.Configuration, error) {
	if f.configuration == nil {
		return nil, errUnexpectedCall
	}
	return f.configuration(ctx, state)
}

type fakeFilingStore struct {
	securedParties func(ctx context.Context, states []string) ([]string, error)
	search         func(ctx context.Context, state string, q store.SearchQuery) (*store.StateResult, error)
}

func (f *fakeFilingStore) SecuredParties(ctx context.Context, states []string) ([]string, error) {
	if f.securedParties == nil {
		return nil, errUnexpectedCall
	}
	return f.securedParties(ctx, states)
}

func (f *fakeFilingStore) Search(ctx context.Context, state string, q store.SearchQuery) (*store.StateResult, error) {
	if f.search == nil {
		return nil, errUnexpectedCall
	}
	return f.search(ctx, state, q)
}

type fakeTransactionStore struct {
	record                 func(ctx context.Context, transaction *types.Transaction) error
	transactionsByUser     func(ctx context.Context, userID string) ([]*types.Transaction, error)
	transactionForDownload func(ctx context.Context, transactionID, userID string) (*types.Transaction, error)
}

func (f *fakeTransactionStore) Record(ctx context.Context, transaction *types.Transaction) error {
	if f.record == nil {
		return errUnexpectedCall
	}
	return f.record(ctx, transaction)
}

func (f *fakeTransactionStore) TransactionsByUser(ctx context.Context, userID string) ([]*types.Transaction, error) {
	if f.transactionsByUser == nil {
		return nil, errUnexpectedCall
	}
	return f.transactionsByUser(ctx, userID)
}

func (f *fakeTransactionStore) TransactionForDownload(ctx context.Context, transactionID, userID string) (*types.Transaction, error) {
	if f.transactionForDownload == nil {
		return nil, errUnexpectedCall
	}
	return f.transactionForDownload(ctx, transactionID, userID)
}

type fakeImporter struct {
	run func(ctx context.Context, req importer.Request) (*importer.Result, error)
}

func (f *fakeImporter) Run(ctx context.Context, req importer.Request) (*importer.Result, error) {
	if f.run == nil {
		return nil, errUnexpectedCall
	}
	return f.run(ctx, req)
}

type fakeCapturer struct {
	captureOrder func(ctx context.Context, orderID string) (*payments.Capture, error)
}

func (f *fakeCapturer) CaptureOrder(ctx context.Context, orderID string) (*payments.Capture, error) {
	if f.captureOrder == nil {
		return nil, errUnexpectedCall
	}
	return f.captureOrder(ctx, orderID)
}

type testDeps struct {
	config         *types.Config
	users          *fakeUserStore
	profiles       *fakeProfileStore
	configurations *fakeConfigurationStore
	filings        *fakeFilingStore
	transactions   *fakeTransactionStore
	importer       *fakeImporter
	capturer       *fakeCapturer
}

func newTestService(t *testing.T, deps testDeps) *Service {
	t.Helper()

	if deps.config == nil {
		deps.config = &types.Config{
			ServerPort:           3001,
			PricePerRecordCents:  5,
			DiscountCode:         "FREEUCC2024",
			DiscountedTotalCents: 1,
			UploadDir:            t.TempDir(),
			MaxUploadBytes:       1 << 20,
			AllowedOrigins:       []string{"*"},
		}
	}
	if deps.users == nil {
		deps.users = &fakeUserStore{}
	}
	if deps.profiles == nil {
		deps.profiles = &fakeProfileStore{}
	}
	if deps.configurations == nil {
		deps.configurations = &fakeConfigurationStore{}
	}
	if deps.filings == nil {
		deps.filings = &fakeFilingStore{}
	}
	if deps.transactions == nil {
		deps.transactions = &fakeTransactionStore{}
	}
	if deps.importer == nil {
		deps.importer = &fakeImporter{}
	}
	if deps.capturer == nil {
		deps.capturer = &fakeCapturer{}
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	s, err := New(
		deps.config,
		logger,
		deps.users,
		deps.profiles,
		deps.configurations,
		deps.filings,
		deps.transactions,
		deps.importer,
		deps.capturer,
	)
	require.NoError(t, err)
	return s
}

func (s *Service) serve(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	s.server.Handler.ServeHTTP(rr, req)
	return rr
}

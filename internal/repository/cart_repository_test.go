package repository_test

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

type cartRepositorySuite struct {
	suite.Suite

	repo      port.CartStorage
	pool      *pgxpool.Pool
	container *postgres.PostgresContainer
}

// entry point to run the tests in the suite
func TestCartRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("requires docker")
	}
	suite.Run(t, new(cartRepositorySuite))
}

// before all tests in the suite
func (suite *cartRepositorySuite) SetupSuite() {
	ctx := suite.T().Context()

	container, connStr, err := startPostgres(ctx)
	suite.Require().NoError(err)
	suite.container = container

	suite.pool, err = pgxpool.New(ctx, connStr)
	suite.Require().NoError(err)

	suite.repo = repository.NewCart(suite.pool)
}

// after all tests in the suite
func (suite *cartRepositorySuite) TearDownSuite() {
	if suite.pool != nil {
		suite.pool.Close()
	}
	if err := testcontainers.TerminateContainer(suite.container); err != nil {
		suite.T().Logf("terminate container: %v", err)
	}
}

func (suite *cartRepositorySuite) TestSave() {
	defer suite.deleteAll()

	tests := []struct {
		name      string
		key       string
		lines     []domain.CartLine
		wantError string
	}{
		{
			name:  "save lines: ok",
			key:   gofakeit.UUID(),
			lines: randomLines(3),
		},
		{
			name:  "save empty collection: ok",
			key:   gofakeit.UUID(),
			lines: []domain.CartLine{},
		},
		{
			name: "save line without captured price: ok",
			key:  gofakeit.UUID(),
			lines: []domain.CartLine{
				{Name: gofakeit.ProductName(), Quantity: 2},
			},
		},
		{
			name:      "save with empty key: error",
			key:       "",
			lines:     randomLines(1),
			wantError: "key is empty",
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()
			ctx := t.Context()

			err := suite.repo.Save(ctx, tt.key, tt.lines)
			if tt.wantError != "" {
				require.EqualError(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)

			lines, err := suite.repo.Load(ctx, tt.key)
			require.NoError(t, err)
			assertLines(t, tt.lines, lines)
		})
	}
}

func (suite *cartRepositorySuite) TestSaveOverwrite() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()
	key := gofakeit.UUID()

	first := randomLines(2)
	second := randomLines(1)

	require.NoError(t, suite.repo.Save(ctx, key, first))
	require.NoError(t, suite.repo.Save(ctx, key, second))

	lines, err := suite.repo.Load(ctx, key)
	require.NoError(t, err)
	assertLines(t, second, lines)

	version, err := repository.Version(ctx, suite.pool, key)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	// unchanged content keeps the version
	require.NoError(t, suite.repo.Save(ctx, key, second))
	version, err = repository.Version(ctx, suite.pool, key)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)
}

func (suite *cartRepositorySuite) TestLoad() {
	defer suite.deleteAll()

	tests := []struct {
		name      string
		key       string
		raw       string
		wantLines []domain.CartLine
		wantError string
	}{
		{
			name:      "load missing record: empty",
			key:       gofakeit.UUID(),
			wantLines: []domain.CartLine{},
		},
		{
			name:      "load corrupt record: error",
			key:       gofakeit.UUID(),
			raw:       `{"name": "not an array"}`,
			wantError: "DecodeLines",
		},
		{
			name:      "load with empty key: error",
			key:       "",
			wantError: "key is empty",
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()
			ctx := t.Context()

			if tt.raw != "" {
				_, err := suite.pool.Exec(ctx,
					"INSERT INTO cart_records (record_key, payload) VALUES ($1, $2::jsonb)", tt.key, tt.raw)
				require.NoError(t, err)
			}

			lines, err := suite.repo.Load(ctx, tt.key)
			if tt.wantError != "" {
				require.ErrorContains(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)
			assertLines(t, tt.wantLines, lines)
		})
	}
}

func (suite *cartRepositorySuite) TestDelete() {
	defer suite.deleteAll()

	tests := []struct {
		name        string
		key         string
		setup       []domain.CartLine
		wantDeleted bool
		wantError   string
	}{
		{
			name:        "delete existing record: ok",
			key:         gofakeit.UUID(),
			setup:       randomLines(2),
			wantDeleted: true,
		},
		{
			name:        "delete missing record: not found",
			key:         gofakeit.UUID(),
			wantDeleted: false,
		},
		{
			name:      "delete with empty key: error",
			key:       "",
			wantError: "key is empty",
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()
			ctx := t.Context()

			if tt.setup != nil {
				require.NoError(t, suite.repo.Save(ctx, tt.key, tt.setup))
			}

			deleted, err := suite.repo.Delete(ctx, tt.key)
			if tt.wantError != "" {
				require.EqualError(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDeleted, deleted)
		})
	}
}

func (suite *cartRepositorySuite) TestSaveWithTx() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()
	key := gofakeit.UUID()

	tx, err := suite.pool.Begin(ctx)
	require.NoError(t, err)

	txRepo := repository.NewCartWithTx(tx)
	require.NoError(t, txRepo.Save(ctx, key, randomLines(1)))
	require.NoError(t, tx.Rollback(ctx))

	lines, err := suite.repo.Load(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func (suite *cartRepositorySuite) TestMigrateIsIdempotent() {
	defer suite.deleteAll()
	ctx := suite.T().Context()

	key := gofakeit.UUID()
	lines := randomLines(2)
	suite.Require().NoError(suite.repo.Save(ctx, key, lines))

	suite.Require().NoError(repository.Migrate(ctx, suite.pool))
	suite.Require().NoError(repository.Migrate(ctx, suite.pool))

	loaded, err := suite.repo.Load(ctx, key)
	suite.Require().NoError(err)
	assertLines(suite.T(), lines, loaded)
}

func (suite *cartRepositorySuite) deleteAll() {
	_, err := suite.pool.Exec(suite.T().Context(), "TRUNCATE TABLE cart_records")
	suite.NoError(err)
}

package repository

import (
	"context"
	"database/sql"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"gnsnode/internal/identity"
	models "gnsnode/internal/identity/model"
	"gnsnode/pkg/logger"
)

var testDB *bun.DB

func TestMain(m *testing.M) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("gns"),
		postgres.WithUsername("gns"),
		postgres.WithPassword("password"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		// no container runtime: the postgres half of the suite is skipped
		log.Printf("failed to start container: %s", err)
		os.Exit(m.Run())
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable", "application_name=test")
	if err != nil {
		log.Fatalf("failed to get connection string: %v", err)
	}

	sqlDB := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(connStr)))
	testDB = bun.NewDB(sqlDB, pgdialect.New())
	if err := sqlDB.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping db: %v", err)
	}

	tables := []any{
		(*models.Record)(nil),
		(*models.Alias)(nil),
		(*models.Reservation)(nil),
		(*models.Epoch)(nil),
	}
	for _, t := range tables {
		if _, err := testDB.NewCreateTable().Model(t).IfNotExists().Exec(ctx); err != nil {
			log.Fatalf("failed to create table for %T: %v", t, err)
		}
	}

	code := m.Run()

	testDB.Close()
	if err := pgContainer.Terminate(ctx); err != nil {
		log.Printf("failed to terminate container: %s", err)
	}
	os.Exit(code)
}

// forEachRepo runs fn against the memory store and, when a container is
// available, against Postgres.
func forEachRepo(t *testing.T, fn func(t *testing.T, repo identity.Repository)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, NewMemoryRepository())
	})
	t.Run("postgres", func(t *testing.T) {
		if testDB == nil {
			t.Skip("postgres container not available")
		}
		t.Cleanup(func() {
			_, err := testDB.ExecContext(context.Background(),
				`TRUNCATE TABLE identity_records, aliases, handle_reservations, epochs`)
			require.NoError(t, err)
		})
		fn(t, NewIdentityRepository(testDB, logger.Logger{}))
	})
}

func pk(c byte) string {
	b := make([]byte, 64)
	for i := range b {
		b[i] = c
	}
	return string(b)
}

func record(pkRoot string, updated time.Time) *models.Record {
	return &models.Record{
		PkRoot:     pkRoot,
		Version:    1,
		RecordJSON: `{"pk_root":"` + pkRoot + `"}`,
		Signature:  "sig",
		CreatedAt:  updated,
		UpdatedAt:  updated,
		SyncedAt:   time.Now().UTC(),
	}
}

func Test_UpsertRecordIfNewer(t *testing.T) {
	forEachRepo(t, func(t *testing.T, repo identity.Repository) {
		ctx := context.Background()
		t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		a := pk('a')

		applied, err := repo.UpsertRecordIfNewer(ctx, record(a, t0))
		require.NoError(t, err)
		assert.True(t, applied)

		newer := record(a, t0.Add(time.Hour))
		newer.Version = 2
		applied, err = repo.UpsertRecordIfNewer(ctx, newer)
		require.NoError(t, err)
		assert.True(t, applied)

		for _, ts := range []time.Time{t0, t0.Add(time.Hour)} {
			stale := record(a, ts)
			stale.Version = 99
			applied, err = repo.UpsertRecordIfNewer(ctx, stale)
			require.NoError(t, err)
			assert.False(t, applied)
		}

		got, err := repo.GetRecord(ctx, a)
		require.NoError(t, err)
		assert.Equal(t, 2, got.Version)
	})
}

func Test_GetRecord_NotFound(t *testing.T) {
	forEachRepo(t, func(t *testing.T, repo identity.Repository) {
		_, err := repo.GetRecord(context.Background(), pk('f'))
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func Test_CreateAlias_ConcurrentClaims(t *testing.T) {
	forEachRepo(t, func(t *testing.T, repo identity.Repository) {
		ctx := context.Background()
		claimants := []string{pk('a'), pk('b'), pk('c'), pk('d')}

		var wg sync.WaitGroup
		errs := make([]error, len(claimants))
		for i, owner := range claimants {
			wg.Add(1)
			go func(i int, owner string) {
				defer wg.Done()
				errs[i] = repo.CreateAlias(ctx, &models.Alias{
					Handle: "alice", PkRoot: owner, BreadcrumbCount: 150, TrustScore: 40,
					ProofJSON: `{}`, Signature: "sig", SyncedAt: time.Now().UTC(),
				})
			}(i, owner)
		}
		wg.Wait()

		wins := 0
		for _, err := range errs {
			if err == nil {
				wins++
				continue
			}
			assert.ErrorIs(t, err, ErrDuplicate)
		}
		assert.Equal(t, 1, wins)
	})
}

func Test_CreateAlias_ConsumesReservation(t *testing.T) {
	forEachRepo(t, func(t *testing.T, repo identity.Repository) {
		ctx := context.Background()
		now := time.Now().UTC()
		a := pk('a')

		require.NoError(t, repo.CreateReservation(ctx, &models.Reservation{
			Handle: "alice", PkRoot: a, ReservedAt: now, ExpiresAt: now.Add(time.Hour),
		}, now))
		require.NoError(t, repo.CreateAlias(ctx, &models.Alias{
			Handle: "alice", PkRoot: a, ProofJSON: `{}`, Signature: "sig", SyncedAt: now,
		}))

		_, err := repo.GetReservation(ctx, "alice")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func Test_CreateReservation(t *testing.T) {
	forEachRepo(t, func(t *testing.T, repo identity.Repository) {
		ctx := context.Background()
		now := time.Now().UTC()

		t.Run("happy path", func(t *testing.T) {
			require.NoError(t, repo.CreateReservation(ctx, &models.Reservation{
				Handle: "bob", PkRoot: pk('a'), ReservedAt: now, ExpiresAt: now.Add(time.Hour),
			}, now))
		})

		t.Run("sad path - live hold", func(t *testing.T) {
			err := repo.CreateReservation(ctx, &models.Reservation{
				Handle: "bob", PkRoot: pk('b'), ReservedAt: now, ExpiresAt: now.Add(time.Hour),
			}, now)
			assert.ErrorIs(t, err, ErrDuplicate)
		})

		t.Run("happy path - lapsed hold is replaced", func(t *testing.T) {
			later := now.Add(2 * time.Hour)
			require.NoError(t, repo.CreateReservation(ctx, &models.Reservation{
				Handle: "bob", PkRoot: pk('b'), ReservedAt: later, ExpiresAt: later.Add(time.Hour),
			}, later))
			got, err := repo.GetReservation(ctx, "bob")
			require.NoError(t, err)
			assert.Equal(t, pk('b'), got.PkRoot)
		})

		t.Run("sweep", func(t *testing.T) {
			n, err := repo.DeleteExpiredReservations(ctx, now.Add(10*time.Hour))
			require.NoError(t, err)
			assert.Equal(t, 1, n)
		})
	})
}

func Test_Epochs(t *testing.T) {
	forEachRepo(t, func(t *testing.T, repo identity.Repository) {
		ctx := context.Background()
		a := pk('a')
		h0 := "h0"

		require.NoError(t, repo.CreateEpoch(ctx, &models.Epoch{PkRoot: a, EpochIndex: 0, MerkleRoot: "m0", Signature: "s", EpochHash: h0, SyncedAt: time.Now().UTC()}))
		require.NoError(t, repo.CreateEpoch(ctx, &models.Epoch{PkRoot: a, EpochIndex: 1, MerkleRoot: "m1", PrevEpochHash: &h0, Signature: "s", EpochHash: "h1", SyncedAt: time.Now().UTC()}))

		err := repo.CreateEpoch(ctx, &models.Epoch{PkRoot: a, EpochIndex: 1, MerkleRoot: "other", Signature: "s", EpochHash: "hx"})
		assert.ErrorIs(t, err, ErrDuplicate)

		got, err := repo.GetEpoch(ctx, a, 1)
		require.NoError(t, err)
		assert.Equal(t, "m1", got.MerkleRoot)
		require.NotNil(t, got.PrevEpochHash)
		assert.Equal(t, h0, *got.PrevEpochHash)

		list, err := repo.ListEpochs(ctx, a)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, 0, list[0].EpochIndex)
		assert.Equal(t, 1, list[1].EpochIndex)

		_, err = repo.GetEpoch(ctx, a, 2)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func Test_ListSince(t *testing.T) {
	forEachRepo(t, func(t *testing.T, repo identity.Repository) {
		ctx := context.Background()
		base := time.Now().UTC().Truncate(time.Millisecond)

		for i, c := range []byte{'a', 'b', 'c'} {
			rec := record(pk(c), base)
			rec.SyncedAt = base.Add(time.Duration(i) * time.Second)
			_, err := repo.UpsertRecordIfNewer(ctx, rec)
			require.NoError(t, err)
		}

		all, err := repo.ListRecordsSince(ctx, time.Time{}, 0)
		require.NoError(t, err)
		assert.Len(t, all, 3)

		page, err := repo.ListRecordsSince(ctx, base, 1)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, pk('b'), page[0].PkRoot)
	})
}

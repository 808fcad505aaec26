package repository_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/glassline/erp-api/internal/domain"
	"github.com/glassline/erp-api/internal/repository"
	"github.com/glassline/erp-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberSequenceRepository_NextNumber(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	org := testutil.CreateTestOrganization(t, db, "Pane & Co")
	repo := repository.NewNumberSequenceRepository(db, sql.LevelSerializable)

	for want := 1; want <= 3; want++ {
		got, err := repo.NextNumber(ctx, org.ID, domain.DocTypeQuote, 2024)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	seq, err := repo.Get(ctx, org.ID, domain.DocTypeQuote)
	require.NoError(t, err)
	assert.Equal(t, 4, seq.NextNumber)
	assert.Equal(t, 2024, seq.Year)
	assert.Equal(t, "Q{YYYY}-{####}", seq.Pattern)

	got, err := repo.NextNumber(ctx, org.ID, domain.DocTypeQuote, 2025)
	require.NoError(t, err)
	assert.Equal(t, 1, got, "a new year restarts the counter")
}

func TestNumberSequenceRepository_NextNumberConcurrent(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	org := testutil.CreateTestOrganization(t, db, "Pane & Co")
	repo := repository.NewNumberSequenceRepository(db, sql.LevelSerializable)

	// seed the row so every goroutine takes the update path
	_, err := repo.NextNumber(ctx, org.ID, domain.DocTypeOrder, 2024)
	require.NoError(t, err)

	const workers = 10
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		issued = make(map[int]bool)
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := repo.NextNumber(ctx, org.ID, domain.DocTypeOrder, 2024)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			issued[n] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, issued, workers, "every issued number is distinct")
}

func TestNumberSequenceRepository_Repair(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	org := testutil.CreateTestOrganization(t, db, "Pane & Co")
	repo := repository.NewNumberSequenceRepository(db, sql.LevelSerializable)

	testutil.CreateTestOrderNumbers(t, db, org.ID,
		"O2024-0002", "O2024-0009", "O2024-12345", "O2024-00A1", "O2023-0500")

	outcome, err := repo.Repair(ctx, org.ID, domain.DocTypeOrder, 2024)
	require.NoError(t, err)
	assert.Equal(t, 10, outcome.NextNumber)
	assert.Equal(t, 9, outcome.Highest)
	assert.Equal(t, 4, outcome.Scanned)
	assert.ElementsMatch(t, []string{"O2024-12345", "O2024-00A1"}, outcome.Skipped)

	seq, err := repo.Get(ctx, org.ID, domain.DocTypeOrder)
	require.NoError(t, err)
	assert.Equal(t, 10, seq.NextNumber)

	var count int64
	require.NoError(t, db.Model(&domain.NumberSequence{}).Where("organization_id = ?", org.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count, "repair upserts a single row")
}

func TestNumberSequenceRepository_RepairUnknownType(t *testing.T) {
	db := testutil.SetupTestDB(t)
	org := testutil.CreateTestOrganization(t, db, "Pane & Co")
	repo := repository.NewNumberSequenceRepository(db, sql.LevelSerializable)

	_, err := repo.Repair(context.Background(), org.ID, domain.DocType("RECEIPT"), 2024)
	assert.ErrorIs(t, err, repository.ErrUnknownDocType)
}

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		page, pageSize         int
		wantPage, wantPageSize int
	}{
		{0, 0, 1, 20},
		{-3, 10, 1, 10},
		{2, 500, 2, repository.MaxPageSize},
		{5, 50, 5, 50},
	}
	for _, tt := range tests {
		page, pageSize := repository.NormalizePage(tt.page, tt.pageSize)
		assert.Equal(t, tt.wantPage, page)
		assert.Equal(t, tt.wantPageSize, pageSize)
	}
}

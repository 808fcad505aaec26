package service_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/glassline/erp-api/internal/domain"
	"github.com/glassline/erp-api/internal/repository"
	"github.com/glassline/erp-api/internal/service"
	"github.com/glassline/erp-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func fixedClock(year int) func() time.Time {
	return func() time.Time {
		return time.Date(year, time.June, 15, 10, 0, 0, 0, time.UTC)
	}
}

func setupSequenceService(t *testing.T, year int) (*service.NumberSequenceService, *gorm.DB, *domain.Organization) {
	db := testutil.SetupTestDB(t)
	org := testutil.CreateTestOrganization(t, db, "Clearview Glass")

	repo := repository.NewNumberSequenceRepository(db, sql.LevelSerializable)
	orgRepo := repository.NewOrganizationRepository(db)
	svc := service.NewNumberSequenceService(repo, orgRepo, testutil.NewLogger()).WithClock(fixedClock(year))
	return svc, db, org
}

func TestNumberSequenceService_Repair(t *testing.T) {
	ctx := context.Background()

	t.Run("uses highest suffix rather than document count", func(t *testing.T) {
		svc, db, org := setupSequenceService(t, 2024)
		testutil.CreateTestQuoteNumbers(t, db, org.ID,
			"Q2024-0001", "Q2024-0002", "Q2024-0003",
			"Q2024-0005", "Q2024-0006", "Q2024-0007")

		next, err := svc.Repair(ctx, org.ID, domain.DocTypeQuote)
		require.NoError(t, err)
		assert.Equal(t, 8, next)
	})

	t.Run("repairing twice yields the same next number", func(t *testing.T) {
		svc, db, org := setupSequenceService(t, 2024)
		testutil.CreateTestQuoteNumbers(t, db, org.ID, "Q2024-0001", "Q2024-0012")

		first, err := svc.Repair(ctx, org.ID, domain.DocTypeQuote)
		require.NoError(t, err)
		second, err := svc.Repair(ctx, org.ID, domain.DocTypeQuote)
		require.NoError(t, err)

		assert.Equal(t, 13, first)
		assert.Equal(t, first, second)
	})

	t.Run("no documents starts at one and creates the sequence", func(t *testing.T) {
		svc, _, org := setupSequenceService(t, 2024)

		next, err := svc.Repair(ctx, org.ID, domain.DocTypeInvoice)
		require.NoError(t, err)
		assert.Equal(t, 1, next)

		seq, err := svc.Get(ctx, org.ID, domain.DocTypeInvoice)
		require.NoError(t, err)
		assert.Equal(t, "INV{YYYY}-{####}", seq.Pattern)
		assert.Equal(t, 1, seq.NextNumber)
		assert.Equal(t, 2024, seq.Year)
	})

	t.Run("ignores other years and other organizations", func(t *testing.T) {
		svc, db, org := setupSequenceService(t, 2024)
		other := testutil.CreateTestOrganization(t, db, "Other Glass")
		testutil.CreateTestQuoteNumbers(t, db, org.ID, "Q2023-0099", "Q2024-0002")
		testutil.CreateTestQuoteNumbers(t, db, other.ID, "Q2024-0050")

		next, err := svc.Repair(ctx, org.ID, domain.DocTypeQuote)
		require.NoError(t, err)
		assert.Equal(t, 3, next)
	})

	t.Run("malformed numbers are skipped", func(t *testing.T) {
		svc, db, org := setupSequenceService(t, 2024)
		testutil.CreateTestQuoteNumbers(t, db, org.ID,
			"Q2024-0003", "Q2024-12", "Q2024-ABCD", "Q2024-00099")

		results := svc.RepairAll(ctx, org.ID)
		require.Len(t, results, 3)
		assert.Equal(t, domain.DocTypeQuote, results[0].DocType)
		assert.Equal(t, 4, results[0].NextNumber)
		assert.Equal(t, 3, results[0].Skipped)
	})

	t.Run("lowers a counter that drifted past the documents", func(t *testing.T) {
		svc, db, org := setupSequenceService(t, 2024)
		testutil.CreateTestOrderNumbers(t, db, org.ID, "O2024-0004")
		require.NoError(t, db.Create(&domain.NumberSequence{
			OrganizationID: org.ID,
			DocType:        domain.DocTypeOrder,
			Pattern:        domain.DocTypeOrder.DefaultPattern(),
			NextNumber:     40,
			Year:           2024,
		}).Error)

		next, err := svc.Repair(ctx, org.ID, domain.DocTypeOrder)
		require.NoError(t, err)
		assert.Equal(t, 5, next)

		seq, err := svc.Get(ctx, org.ID, domain.DocTypeOrder)
		require.NoError(t, err)
		assert.Equal(t, 5, seq.NextNumber)
	})

	t.Run("rejects unknown document type", func(t *testing.T) {
		svc, _, org := setupSequenceService(t, 2024)

		_, err := svc.Repair(ctx, org.ID, domain.DocType("RECEIPT"))
		assert.ErrorIs(t, err, service.ErrInvalidDocType)
	})
}

func TestNumberSequenceService_RepairAll(t *testing.T) {
	ctx := context.Background()

	t.Run("repairs every document type", func(t *testing.T) {
		svc, db, org := setupSequenceService(t, 2024)
		testutil.CreateTestQuoteNumbers(t, db, org.ID, "Q2024-0007")
		testutil.CreateTestOrderNumbers(t, db, org.ID, "O2024-0002")
		testutil.CreateTestInvoiceNumbers(t, db, org.ID, "INV2024-0001")

		results := svc.RepairAll(ctx, org.ID)
		require.Len(t, results, 3)

		want := map[domain.DocType]int{
			domain.DocTypeQuote:   8,
			domain.DocTypeOrder:   3,
			domain.DocTypeInvoice: 2,
		}
		for _, r := range results {
			assert.Equal(t, domain.SequenceRepaired, r.Status, r.DocType)
			assert.Equal(t, want[r.DocType], r.NextNumber, r.DocType)
			assert.Empty(t, r.Error)
		}
	})

	t.Run("a failing type does not abort the others", func(t *testing.T) {
		svc, db, org := setupSequenceService(t, 2024)
		testutil.CreateTestQuoteNumbers(t, db, org.ID, "Q2024-0004")
		testutil.CreateTestInvoiceNumbers(t, db, org.ID, "INV2024-0009")
		require.NoError(t, db.Migrator().DropTable(&domain.Order{}))

		results := svc.RepairAll(ctx, org.ID)
		require.Len(t, results, 3)

		assert.Equal(t, domain.DocTypeQuote, results[0].DocType)
		assert.Equal(t, domain.SequenceRepaired, results[0].Status)
		assert.Equal(t, 5, results[0].NextNumber)

		assert.Equal(t, domain.DocTypeOrder, results[1].DocType)
		assert.Equal(t, domain.SequenceFailed, results[1].Status)
		assert.Zero(t, results[1].NextNumber)
		assert.NotEmpty(t, results[1].Error)

		assert.Equal(t, domain.DocTypeInvoice, results[2].DocType)
		assert.Equal(t, domain.SequenceRepaired, results[2].Status)
		assert.Equal(t, 10, results[2].NextNumber)
	})
}

func TestNumberSequenceService_RepairAllOrganizations(t *testing.T) {
	ctx := context.Background()
	svc, db, org := setupSequenceService(t, 2024)
	other := testutil.CreateTestOrganization(t, db, "Second Glass")
	testutil.CreateTestQuoteNumbers(t, db, org.ID, "Q2024-0003")
	testutil.CreateTestQuoteNumbers(t, db, other.ID, "Q2024-0011")

	all, err := svc.RepairAllOrganizations(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 4, all[org.ID][0].NextNumber)
	assert.Equal(t, 12, all[other.ID][0].NextNumber)
}

func TestNumberSequenceService_NextNumber(t *testing.T) {
	ctx := context.Background()

	t.Run("first issuance creates the sequence", func(t *testing.T) {
		svc, _, org := setupSequenceService(t, 2024)

		number, seq, err := svc.NextNumber(ctx, org.ID, domain.DocTypeQuote)
		require.NoError(t, err)
		assert.Equal(t, "Q2024-0001", number)
		assert.Equal(t, 1, seq)

		number, seq, err = svc.NextNumber(ctx, org.ID, domain.DocTypeQuote)
		require.NoError(t, err)
		assert.Equal(t, "Q2024-0002", number)
		assert.Equal(t, 2, seq)
	})

	t.Run("continues after repair", func(t *testing.T) {
		svc, db, org := setupSequenceService(t, 2024)
		testutil.CreateTestInvoiceNumbers(t, db, org.ID, "INV2024-0001", "INV2024-0017")

		_, err := svc.Repair(ctx, org.ID, domain.DocTypeInvoice)
		require.NoError(t, err)

		number, _, err := svc.NextNumber(ctx, org.ID, domain.DocTypeInvoice)
		require.NoError(t, err)
		assert.Equal(t, "INV2024-0018", number)
	})

	t.Run("restarts at one in a new year", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		org := testutil.CreateTestOrganization(t, db, "Year Glass")
		repo := repository.NewNumberSequenceRepository(db, sql.LevelSerializable)
		orgRepo := repository.NewOrganizationRepository(db)

		svc2024 := service.NewNumberSequenceService(repo, orgRepo, testutil.NewLogger()).WithClock(fixedClock(2024))
		_, _, err := svc2024.NextNumber(ctx, org.ID, domain.DocTypeOrder)
		require.NoError(t, err)
		_, _, err = svc2024.NextNumber(ctx, org.ID, domain.DocTypeOrder)
		require.NoError(t, err)

		svc2025 := service.NewNumberSequenceService(repo, orgRepo, testutil.NewLogger()).WithClock(fixedClock(2025))
		number, _, err := svc2025.NextNumber(ctx, org.ID, domain.DocTypeOrder)
		require.NoError(t, err)
		assert.Equal(t, "O2025-0001", number)
	})

	t.Run("unknown organization sequences are independent", func(t *testing.T) {
		svc, _, org := setupSequenceService(t, 2024)

		_, _, err := svc.NextNumber(ctx, org.ID, domain.DocTypeQuote)
		require.NoError(t, err)
		number, _, err := svc.NextNumber(ctx, uuid.New(), domain.DocTypeQuote)
		require.NoError(t, err)
		assert.Equal(t, "Q2024-0001", number)
	})
}

func TestNumberSequenceService_List(t *testing.T) {
	ctx := context.Background()
	svc, _, org := setupSequenceService(t, 2024)

	_ = svc.RepairAll(ctx, org.ID)

	sequences, err := svc.List(ctx, org.ID)
	require.NoError(t, err)
	require.Len(t, sequences, 3)
	assert.Equal(t, domain.DocTypeInvoice, sequences[0].DocType)
	assert.Equal(t, domain.DocTypeOrder, sequences[1].DocType)
	assert.Equal(t, domain.DocTypeQuote, sequences[2].DocType)

	_, err = svc.Get(ctx, uuid.New(), domain.DocTypeQuote)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

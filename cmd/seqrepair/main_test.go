package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/glassline/erp-api/internal/domain"
	"github.com/glassline/erp-api/internal/repository"
	"github.com/glassline/erp-api/internal/service"
	"github.com/glassline/erp-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*gorm.DB, *service.NumberSequenceService) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svc := service.NewNumberSequenceService(
		repository.NewNumberSequenceRepository(db, sql.LevelSerializable),
		repository.NewOrganizationRepository(db),
		testutil.NewLogger(),
	).WithClock(func() time.Time {
		return time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)
	})
	return db, svc
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    options
		wantErr bool
	}{
		{"org only", options{org: "7b0e3a57-5c5a-4a8e-9b57-3f6e1d2f0a11"}, false},
		{"org and type", options{org: "7b0e3a57-5c5a-4a8e-9b57-3f6e1d2f0a11", docType: "invoice"}, false},
		{"all", options{all: true}, false},
		{"neither", options{}, true},
		{"both", options{org: "7b0e3a57-5c5a-4a8e-9b57-3f6e1d2f0a11", all: true}, true},
		{"bad org", options{org: "acme"}, true},
		{"bad type", options{org: "7b0e3a57-5c5a-4a8e-9b57-3f6e1d2f0a11", docType: "RECEIPT"}, true},
		{"type with all", options{all: true, docType: "QUOTE"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRepair_SingleType(t *testing.T) {
	db, svc := newTestService(t)
	org := testutil.CreateTestOrganization(t, db, "Northern Glass")
	testutil.CreateTestInvoiceNumbers(t, db, org.ID, "INV2024-0003", "INV2024-0011")

	var out bytes.Buffer
	err := repair(context.Background(), &out, svc, options{org: org.ID.String(), docType: "INVOICE"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "INVOICE  next=12")
}

func TestRepair_OrganizationJSON(t *testing.T) {
	db, svc := newTestService(t)
	org := testutil.CreateTestOrganization(t, db, "Northern Glass")

	var out bytes.Buffer
	err := repair(context.Background(), &out, svc, options{org: org.ID.String(), outputJSON: true})
	require.NoError(t, err)

	var report []orgResults
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	require.Len(t, report, 1)
	assert.Equal(t, org.ID, report[0].OrganizationID)
	require.Len(t, report[0].Results, 3)
	for _, r := range report[0].Results {
		assert.Equal(t, domain.SequenceRepaired, r.Status)
		assert.Equal(t, 1, r.NextNumber)
	}
}

func TestRepair_FailureSetsError(t *testing.T) {
	db, svc := newTestService(t)
	org := testutil.CreateTestOrganization(t, db, "Northern Glass")
	require.NoError(t, db.Migrator().DropTable(&domain.Order{}))

	var out bytes.Buffer
	err := repair(context.Background(), &out, svc, options{org: org.ID.String()})
	assert.Error(t, err)
	assert.Contains(t, out.String(), "ORDER    FAILED")
	assert.Contains(t, out.String(), "QUOTE    next=1")
}

func TestRepair_AllOrganizations(t *testing.T) {
	db, svc := newTestService(t)
	testutil.CreateTestOrganization(t, db, "Northern Glass")
	testutil.CreateTestOrganization(t, db, "Southern Glass")

	var out bytes.Buffer
	err := repair(context.Background(), &out, svc, options{all: true, outputJSON: true})
	require.NoError(t, err)

	var report []orgResults
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Len(t, report, 2)
}

func TestRepair_AllOrganizationsStoppedEarly(t *testing.T) {
	db, _ := newTestService(t)
	testutil.CreateTestOrganization(t, db, "Northern Glass")
	testutil.CreateTestOrganization(t, db, "Southern Glass")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cancel once the first organization has repaired all three types.
	repaired := 0
	core, _ := observer.New(zapcore.InfoLevel)
	log := zap.New(core, zap.Hooks(func(e zapcore.Entry) error {
		if e.Message == "repaired number sequence" {
			repaired++
			if repaired == len(domain.AllDocTypes()) {
				cancel()
			}
		}
		return nil
	}))
	svc := service.NewNumberSequenceService(
		repository.NewNumberSequenceRepository(db, sql.LevelSerializable),
		repository.NewOrganizationRepository(db),
		log,
	).WithClock(func() time.Time {
		return time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)
	})

	var out bytes.Buffer
	err := repair(ctx, &out, svc, options{all: true, outputJSON: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Contains(t, err.Error(), "stopped after 1 organization(s)")

	var report []orgResults
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	require.Len(t, report, 1, "the partial report is still written")
	assert.Len(t, report[0].Results, 3)
}

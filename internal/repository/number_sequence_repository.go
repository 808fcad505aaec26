package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/glassline/erp-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrUnknownDocType is returned for document types without a backing table
var ErrUnknownDocType = errors.New("unknown document type")

// RepairOutcome describes what a sequence repair found and wrote
type RepairOutcome struct {
	NextNumber int
	Highest    int
	Scanned    int
	// Skipped lists document numbers carrying the year prefix but not
	// followed by exactly four digits. They do not affect NextNumber.
	Skipped []string
}

// NumberSequenceRepository handles database operations for number sequences.
// A sequence is keyed by organization and document type; issuance and repair
// both lock the sequence row inside a transaction.
type NumberSequenceRepository struct {
	db        *gorm.DB
	txOptions *sql.TxOptions
}

// NewNumberSequenceRepository creates a new NumberSequenceRepository. The
// isolation level applies to repair transactions; issuance relies on the row
// lock alone and runs at the database default.
func NewNumberSequenceRepository(db *gorm.DB, isolation sql.IsolationLevel) *NumberSequenceRepository {
	return &NumberSequenceRepository{
		db:        db,
		txOptions: &sql.TxOptions{Isolation: isolation},
	}
}

// NextNumber atomically issues the next counter value for an organization and
// document type in the given year. A missing sequence is created starting at 1;
// a sequence left over from an earlier year restarts at 1.
//
// Returns the issued value (the stored next_number is already advanced).
func (r *NumberSequenceRepository) NextNumber(ctx context.Context, organizationID uuid.UUID, docType domain.DocType, year int) (int, error) {
	var issued int

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seq domain.NumberSequence
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("organization_id = ? AND doc_type = ?", organizationID, docType).
			First(&seq)

		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			seq = domain.NumberSequence{
				OrganizationID: organizationID,
				DocType:        docType,
				Pattern:        docType.DefaultPattern(),
				NextNumber:     2,
				Year:           year,
			}
			if err := tx.Create(&seq).Error; err != nil {
				return fmt.Errorf("failed to create number sequence: %w", err)
			}
			issued = 1
			return nil
		}
		if result.Error != nil {
			return fmt.Errorf("failed to get number sequence: %w", result.Error)
		}

		issued = seq.NextNumber
		if seq.Year != year || issued < 1 {
			issued = 1
		}
		if err := tx.Model(&seq).Updates(map[string]interface{}{
			"next_number": issued + 1,
			"year":        year,
			"updated_at":  time.Now(),
		}).Error; err != nil {
			return fmt.Errorf("failed to update number sequence: %w", err)
		}
		return nil
	})

	if err != nil {
		return 0, err
	}
	return issued, nil
}

// Repair recomputes next_number from the documents already issued in the
// given year: it scans every number of the type carrying the year prefix,
// takes the highest four-digit suffix and stores highest+1. The scan and the
// upsert run in one transaction with the sequence row locked, so a concurrent
// issuance or repair cannot interleave.
func (r *NumberSequenceRepository) Repair(ctx context.Context, organizationID uuid.UUID, docType domain.DocType, year int) (*RepairOutcome, error) {
	model, err := documentModel(docType)
	if err != nil {
		return nil, err
	}
	prefix := docType.NumberPrefix(year)

	var outcome RepairOutcome
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seq domain.NumberSequence
		lock := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("organization_id = ? AND doc_type = ?", organizationID, docType).
			Limit(1).
			Find(&seq)
		if lock.Error != nil {
			return fmt.Errorf("failed to lock number sequence: %w", lock.Error)
		}

		var numbers []string
		if err := tx.Model(model).
			Where("organization_id = ? AND number LIKE ?", organizationID, prefix+"%").
			Pluck("number", &numbers).Error; err != nil {
			return fmt.Errorf("failed to scan %s numbers: %w", docType, err)
		}

		highest := 0
		for _, n := range numbers {
			suffix, ok := domain.ParseDocumentSuffix(prefix, n)
			if !ok {
				outcome.Skipped = append(outcome.Skipped, n)
				continue
			}
			if suffix > highest {
				highest = suffix
			}
		}

		outcome.Scanned = len(numbers)
		outcome.Highest = highest
		outcome.NextNumber = highest + 1

		upsert := domain.NumberSequence{
			OrganizationID: organizationID,
			DocType:        docType,
			Pattern:        docType.DefaultPattern(),
			NextNumber:     outcome.NextNumber,
			Year:           year,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "organization_id"}, {Name: "doc_type"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"next_number": outcome.NextNumber,
				"year":        year,
				"updated_at":  time.Now(),
			}),
		}).Create(&upsert).Error; err != nil {
			return fmt.Errorf("failed to upsert number sequence: %w", err)
		}
		return nil
	}, r.txOptions)

	if err != nil {
		return nil, err
	}
	return &outcome, nil
}

// Get returns the sequence for an organization and document type, or
// gorm.ErrRecordNotFound.
func (r *NumberSequenceRepository) Get(ctx context.Context, organizationID uuid.UUID, docType domain.DocType) (*domain.NumberSequence, error) {
	var seq domain.NumberSequence
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND doc_type = ?", organizationID, docType).
		First(&seq).Error
	if err != nil {
		return nil, err
	}
	return &seq, nil
}

// ListByOrganization returns all sequences of an organization
func (r *NumberSequenceRepository) ListByOrganization(ctx context.Context, organizationID uuid.UUID) ([]domain.NumberSequence, error) {
	var sequences []domain.NumberSequence
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Order("doc_type ASC").
		Find(&sequences).Error
	return sequences, err
}

func documentModel(docType domain.DocType) (interface{}, error) {
	switch docType {
	case domain.DocTypeQuote:
		return &domain.Quote{}, nil
	case domain.DocTypeOrder:
		return &domain.Order{}, nil
	case domain.DocTypeInvoice:
		return &domain.Invoice{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDocType, docType)
	}
}

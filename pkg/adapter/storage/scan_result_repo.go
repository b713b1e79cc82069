package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gitlab.apk-group.net/siem/qa/discovery-harness/internal/scan/domain"
	scanPort "gitlab.apk-group.net/siem/qa/discovery-harness/internal/scan/port"
	"gitlab.apk-group.net/siem/qa/discovery-harness/pkg/adapter/storage/types"
	"gitlab.apk-group.net/siem/qa/discovery-harness/pkg/adapter/storage/types/mapper"
	"gitlab.apk-group.net/siem/qa/discovery-harness/pkg/logger"
)

// NewScanResultRepo creates the shared scan result repository
func NewScanResultRepo(db *gorm.DB) scanPort.ResultStore {
	return &scanResultRepository{
		db: db,
	}
}

type scanResultRepository struct {
	db *gorm.DB
}

// Find returns the stored result for the identity key, or nil when no worker
// has recorded one yet.
func (r *scanResultRepository) Find(ctx context.Context, identityKey string) (*domain.ScanResult, error) {
	var row types.ScanResult
	err := r.db.WithContext(ctx).
		Where("identity_key = ?", identityKey).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		logger.ErrorContext(ctx, "Repository: failed to look up scan result %s: %v", identityKey, err)
		return nil, err
	}

	return mapper.ScanResultStorage2Domain(row), nil
}

// Save upserts the result under its identity key. The last writer wins;
// results for one key are equivalent by construction.
func (r *scanResultRepository) Save(ctx context.Context, result domain.ScanResult) error {
	row := mapper.ScanResultDomain2Storage(result)

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(row).Error
	if err != nil {
		logger.ErrorContext(ctx, "Repository: failed to save scan result %s: %v", result.IdentityKey, err)
		return err
	}
	return nil
}

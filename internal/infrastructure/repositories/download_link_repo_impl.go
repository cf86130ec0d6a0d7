package repositories

import (
	"context"
	"time"

	"digimarket.backend/internal/domain/entities"
	"digimarket.backend/internal/infrastructure/models"
	"digimarket.backend/pkg/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DownloadLinkRepository implements download link operations
type DownloadLinkRepository struct {
	db *gorm.DB
}

// NewDownloadLinkRepository creates a new download link repository
func NewDownloadLinkRepository(db *gorm.DB) *DownloadLinkRepository {
	return &DownloadLinkRepository{db: db}
}

func (r *DownloadLinkRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*entities.DownloadLink, error) {
	var m models.DownloadLink
	if err := GetDB(ctx, r.db).Where("order_id = ?", orderID).First(&m).Error; err != nil {
		return nil, translateReadError(err)
	}
	return r.toEntity(&m), nil
}

func (r *DownloadLinkRepository) ListByOrderIDs(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID]*entities.DownloadLink, error) {
	out := make(map[uuid.UUID]*entities.DownloadLink, len(orderIDs))
	if len(orderIDs) == 0 {
		return out, nil
	}
	var rows []models.DownloadLink
	if err := GetDB(ctx, r.db).Where("order_id IN ?", orderIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		out[rows[i].OrderID] = r.toEntity(&rows[i])
	}
	return out, nil
}

// Upsert inserts the link or, on an existing order_id, refreshes file, expiry,
// active flag and limit. download_count is left untouched.
func (r *DownloadLinkRepository) Upsert(ctx context.Context, link *entities.DownloadLink) error {
	now := time.Now().UTC()
	m := &models.DownloadLink{
		ID:           utils.GenerateUUIDv7(),
		OrderID:      link.OrderID,
		FileRef:      link.FileRef,
		ExpiresAt:    link.ExpiresAt.UTC(),
		IsActive:     link.IsActive,
		MaxDownloads: link.MaxDownloads,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	db := GetDB(ctx, r.db)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"file_ref", "expires_at", "is_active", "max_downloads", "updated_at"}),
	}).Create(m).Error
	if err != nil {
		return err
	}

	var stored models.DownloadLink
	if err := db.Where("order_id = ?", link.OrderID).First(&stored).Error; err != nil {
		return translateReadError(err)
	}
	*link = *r.toEntity(&stored)
	return nil
}

// Consume is a single conditional UPDATE; concurrent callers cannot push the
// count past max_downloads.
func (r *DownloadLinkRepository) Consume(ctx context.Context, orderID uuid.UUID, now time.Time) (bool, error) {
	now = now.UTC()
	result := GetDB(ctx, r.db).Model(&models.DownloadLink{}).
		Where("order_id = ? AND is_active = ? AND expires_at > ? AND download_count < max_downloads", orderID, true, now).
		Updates(map[string]interface{}{
			"download_count": gorm.Expr("download_count + 1"),
			"updated_at":     now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *DownloadLinkRepository) toEntity(m *models.DownloadLink) *entities.DownloadLink {
	return &entities.DownloadLink{
		ID:            m.ID,
		OrderID:       m.OrderID,
		FileRef:       m.FileRef,
		ExpiresAt:     m.ExpiresAt,
		IsActive:      m.IsActive,
		MaxDownloads:  m.MaxDownloads,
		DownloadCount: m.DownloadCount,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Store provides persistence for synthesis history and the voice catalog.
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewStore creates a new store over an open database handle.
func NewStore(db *gorm.DB, logger *slog.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger,
	}
}

// CreateAudioHistory inserts a synthesis record.
func (s *Store) CreateAudioHistory(ctx context.Context, rec *AudioHistory) error {
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("failed to create history record: %w", err)
	}
	return nil
}

// ListAudioHistory returns a page of records ordered newest first. A
// non-empty search filters on a case-insensitive substring of the text.
func (s *Store) ListAudioHistory(ctx context.Context, page, limit int, search string) ([]AudioHistory, Pagination, error) {
	page, limit = NormalizePage(page, limit)

	query := s.db.WithContext(ctx).Model(&AudioHistory{})
	if search != "" {
		query = query.Where("text ILIKE ?", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, Pagination{}, fmt.Errorf("failed to count history: %w", err)
	}

	records := make([]AudioHistory, 0, limit)
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("failed to list history: %w", err)
	}

	return records, Paginate(page, limit, total), nil
}

// GetAudioHistory returns one record by id.
func (s *Store) GetAudioHistory(ctx context.Context, id string) (*AudioHistory, error) {
	var rec AudioHistory
	err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get history record: %w", err)
	}
	return &rec, nil
}

// DeleteAudioHistory deletes one record by id.
func (s *Store) DeleteAudioHistory(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&AudioHistory{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete history record: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// BatchDeleteAudioHistory deletes each id independently. Ids that do not
// exist are skipped without counting as failures; only query errors do.
func (s *Store) BatchDeleteAudioHistory(ctx context.Context, ids []string) (deleted, failed int) {
	for _, id := range ids {
		res := s.db.WithContext(ctx).Delete(&AudioHistory{}, "id = ?", id)
		if res.Error != nil {
			s.logger.Warn("batch delete entry failed", "id", id, "error", res.Error)
			failed++
			continue
		}
		if res.RowsAffected > 0 {
			deleted++
		}
	}
	return deleted, failed
}

// StatsOverview aggregates totals across every synthesis record.
type StatsOverview struct {
	TotalGenerations int64 `json:"totalGenerations"`
	TotalCharacters  int64 `json:"totalCharacters"`
	TotalDuration    int64 `json:"totalDuration"`
	TotalFileSize    int64 `json:"totalFileSize"`
}

// VoiceUsage is one voice's share of the records that name a voice.
type VoiceUsage struct {
	VoiceID    string `json:"voiceId"`
	VoiceName  string `json:"voiceName"`
	Count      int64  `json:"count"`
	Percentage int    `json:"percentage"`
}

// ActivityEntry is a row in the recent-activity feed.
type ActivityEntry struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Stats bundles the aggregate views served by the stats endpoint.
type Stats struct {
	Overview       StatsOverview   `json:"overview"`
	VoiceUsage     []VoiceUsage    `json:"voiceUsage"`
	RecentActivity []ActivityEntry `json:"recentActivity"`
}

// Stats computes overview totals, the top voices by usage, and the most
// recent records.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	var overview StatsOverview
	err := s.db.WithContext(ctx).
		Model(&AudioHistory{}).
		Select("COUNT(*) AS total_generations, " +
			"COALESCE(SUM(LENGTH(text)), 0) AS total_characters, " +
			"COALESCE(SUM(duration), 0) AS total_duration, " +
			"COALESCE(SUM(file_size), 0) AS total_file_size").
		Scan(&overview).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute overview: %w", err)
	}

	usage, err := s.voiceUsage(ctx)
	if err != nil {
		return nil, err
	}

	activity := make([]ActivityEntry, 0, 10)
	err = s.db.WithContext(ctx).
		Model(&AudioHistory{}).
		Select("id, text, created_at").
		Order("created_at DESC").
		Limit(10).
		Scan(&activity).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent activity: %w", err)
	}

	return &Stats{
		Overview:       overview,
		VoiceUsage:     usage,
		RecentActivity: activity,
	}, nil
}

func (s *Store) voiceUsage(ctx context.Context) ([]VoiceUsage, error) {
	var totalWithVoice int64
	err := s.db.WithContext(ctx).
		Model(&AudioHistory{}).
		Where("voice_id IS NOT NULL").
		Count(&totalWithVoice).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count voiced records: %w", err)
	}

	type usageRow struct {
		VoiceID string
		Count   int64
	}
	var rows []usageRow
	err = s.db.WithContext(ctx).
		Model(&AudioHistory{}).
		Select("voice_id, COUNT(*) AS count").
		Where("voice_id IS NOT NULL").
		Group("voice_id").
		Order("count DESC").
		Limit(10).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute voice usage: %w", err)
	}

	names := make(map[string]string)
	if len(rows) > 0 {
		ids := make([]string, 0, len(rows))
		for _, row := range rows {
			ids = append(ids, row.VoiceID)
		}
		var voices []VoiceModel
		if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&voices).Error; err != nil {
			return nil, fmt.Errorf("failed to resolve voice names: %w", err)
		}
		for _, v := range voices {
			names[v.ID] = v.Name
		}
	}

	usage := make([]VoiceUsage, 0, len(rows))
	for _, row := range rows {
		name := names[row.VoiceID]
		if name == "" {
			name = row.VoiceID
		}
		pct := 0
		if totalWithVoice > 0 {
			pct = int(math.Round(float64(row.Count) / float64(totalWithVoice) * 100))
		}
		usage = append(usage, VoiceUsage{
			VoiceID:    row.VoiceID,
			VoiceName:  name,
			Count:      row.Count,
			Percentage: pct,
		})
	}
	return usage, nil
}

// ListVoiceModels returns the voice catalog, defaults first, newest next.
func (s *Store) ListVoiceModels(ctx context.Context) ([]VoiceModel, error) {
	var voices []VoiceModel
	err := s.db.WithContext(ctx).
		Order("is_default DESC, created_at DESC").
		Find(&voices).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list voices: %w", err)
	}
	return voices, nil
}

// CreateVoiceModel inserts a voice catalog entry, assigning an id when
// the caller left it empty.
func (s *Store) CreateVoiceModel(ctx context.Context, voice *VoiceModel) error {
	if voice.ID == "" {
		voice.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(voice).Error; err != nil {
		return fmt.Errorf("failed to create voice: %w", err)
	}
	return nil
}

// VoiceModelUpdate carries the mutable subset of a voice entry. Nil
// fields are left untouched.
type VoiceModelUpdate struct {
	Name        *string
	Description *string
	IsDefault   *bool
}

// UpdateVoiceModel applies a partial update and returns the updated row.
func (s *Store) UpdateVoiceModel(ctx context.Context, id string, update VoiceModelUpdate) (*VoiceModel, error) {
	fields := map[string]any{}
	if update.Name != nil {
		fields["name"] = *update.Name
	}
	if update.Description != nil {
		fields["description"] = *update.Description
	}
	if update.IsDefault != nil {
		fields["is_default"] = *update.IsDefault
	}

	if len(fields) > 0 {
		fields["updated_at"] = time.Now().UTC()
		res := s.db.WithContext(ctx).
			Model(&VoiceModel{}).
			Where("id = ?", id).
			Updates(fields)
		if res.Error != nil {
			return nil, fmt.Errorf("failed to update voice: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}

	var voice VoiceModel
	err := s.db.WithContext(ctx).First(&voice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load voice: %w", err)
	}
	return &voice, nil
}

// DeleteVoiceModel deletes one voice entry by id.
func (s *Store) DeleteVoiceModel(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&VoiceModel{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete voice: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementVoiceUsage bumps a voice's usage counter.
func (s *Store) IncrementVoiceUsage(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).
		Model(&VoiceModel{}).
		Where("id = ?", id).
		Update("usage_count", gorm.Expr("usage_count + 1")).Error
	if err != nil {
		return fmt.Errorf("failed to increment voice usage: %w", err)
	}
	return nil
}

// SeedDefaultVoices populates the catalog on first boot. An already
// populated table is left alone.
func (s *Store) SeedDefaultVoices(ctx context.Context) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&VoiceModel{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count voices: %w", err)
	}
	if count > 0 {
		return nil
	}

	seeds := []VoiceModel{
		{ID: "zh-CN-XiaoxiaoNeural", Name: "晓晓（女声）", ReferenceID: "zh-CN-XiaoxiaoNeural", IsDefault: true},
		{ID: "zh-CN-YunxiNeural", Name: "云希（男声）", ReferenceID: "zh-CN-YunxiNeural"},
		{ID: "zh-CN-YunyangNeural", Name: "云扬（男声）", ReferenceID: "zh-CN-YunyangNeural"},
		{ID: "zh-CN-XiaoyiNeural", Name: "晓伊（女声）", ReferenceID: "zh-CN-XiaoyiNeural"},
		{ID: "en-US-JennyNeural", Name: "Jenny (Female)", ReferenceID: "en-US-JennyNeural"},
		{ID: "en-US-GuyNeural", Name: "Guy (Male)", ReferenceID: "en-US-GuyNeural"},
	}
	if err := s.db.WithContext(ctx).Create(&seeds).Error; err != nil {
		return fmt.Errorf("failed to seed voices: %w", err)
	}

	s.logger.Info("seeded default voice catalog", "count", len(seeds))
	return nil
}

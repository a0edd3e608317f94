package history

import "time"

// AudioHistory is one persisted synthesis record. Audio bytes are returned
// inline to the client, so AudioURL and AudioKey are bookkeeping fields
// rather than fetchable locations.
type AudioHistory struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Text      string    `gorm:"not null" json:"text"`
	VoiceID   *string   `gorm:"column:voice_id" json:"voiceId"`
	AudioURL  string    `gorm:"column:audio_url;not null" json:"audioUrl"`
	AudioKey  string    `gorm:"column:audio_key;not null" json:"audioKey"`
	Model     string    `gorm:"not null" json:"model"`
	Format    string    `gorm:"not null" json:"format"`
	FileSize  int64     `gorm:"column:file_size" json:"fileSize"`
	Duration  int       `json:"duration"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

// TableName overrides GORM's pluralized default.
func (AudioHistory) TableName() string {
	return "audio_history"
}

// VoiceModel is a selectable voice in the catalog.
type VoiceModel struct {
	ID                string    `gorm:"primaryKey" json:"id"`
	Name              string    `gorm:"not null" json:"name"`
	Description       *string   `json:"description"`
	ReferenceID       string    `gorm:"column:reference_id;not null" json:"referenceId"`
	ReferenceAudioURL *string   `gorm:"column:reference_audio_url" json:"referenceAudioUrl"`
	ReferenceAudioKey *string   `gorm:"column:reference_audio_key" json:"referenceAudioKey"`
	IsDefault         bool      `gorm:"column:is_default" json:"isDefault"`
	UsageCount        int64     `gorm:"column:usage_count" json:"usageCount"`
	CreatedAt         time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt         time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

// TableName overrides GORM's pluralized default.
func (VoiceModel) TableName() string {
	return "voice_models"
}

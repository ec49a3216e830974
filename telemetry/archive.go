package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SkirmishRecord is one finished skirmish in the archive.
type SkirmishRecord struct {
	ID              uint `gorm:"primarykey"`
	CreatedAt       time.Time
	Seed            int64 `gorm:"index"`
	Ticks           int32
	Friends         int
	Foes            int
	FriendViability float64
	FoeViability    float64
	Winner          string        `gorm:"size:8"`
	Crafts          []CraftRecord `gorm:"foreignKey:SkirmishID"`
}

// CraftRecord is the lifetime of one craft within an archived skirmish.
type CraftRecord struct {
	ID              uint `gorm:"primarykey"`
	SkirmishID      uint `gorm:"index"`
	CraftID         int
	Alignment       string `gorm:"size:8"`
	Layout          string `gorm:"size:64"`
	SpawnTick       int32
	SurvivalTimeSec float32
	Destroyed       bool
	ShotsFired      int
	Hits            int
	DamageDealt     float32
	DamageTaken     float32
	Kills           int
	CellsLost       int
}

// NewCraftRecord converts a lifetime row for storage.
func NewCraftRecord(row LifetimeRow) CraftRecord {
	return CraftRecord{
		CraftID:         row.CraftID,
		Alignment:       row.Alignment,
		Layout:          row.Layout,
		SpawnTick:       row.SpawnTick,
		SurvivalTimeSec: row.SurvivalTimeSec,
		Destroyed:       row.Destroyed,
		ShotsFired:      row.ShotsFired,
		Hits:            row.Hits,
		DamageDealt:     row.DamageDealt,
		DamageTaken:     row.DamageTaken,
		Kills:           row.Kills,
		CellsLost:       row.CellsLost,
	}
}

// Archive stores skirmish results in a SQLite database.
type Archive struct {
	db *gorm.DB
}

// OpenArchive opens (creating if needed) the archive at path and migrates
// its schema. An empty path opens a private in-memory database.
func OpenArchive(path string) (*Archive, error) {
	dsn := path
	if dsn == "" {
		dsn = "file::memory:"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		CreateBatchSize: 500,
		Logger:          logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening archive %q: %w", path, err)
	}
	if path == "" {
		// Each pooled connection would get its own empty memory database.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	if err := db.AutoMigrate(&SkirmishRecord{}, &CraftRecord{}); err != nil {
		return nil, fmt.Errorf("migrating archive: %w", err)
	}
	return &Archive{db: db}, nil
}

// Save inserts a skirmish and its crafts in one transaction. The record's
// ID is set on return.
func (a *Archive) Save(ctx context.Context, rec *SkirmishRecord) error {
	if err := a.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("archiving skirmish: %w", err)
	}
	return nil
}

// Recent returns up to limit skirmishes, newest first, with their crafts.
func (a *Archive) Recent(ctx context.Context, limit int) ([]SkirmishRecord, error) {
	var out []SkirmishRecord
	err := a.db.WithContext(ctx).
		Preload("Crafts", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Order("id desc").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("reading archive: %w", err)
	}
	return out, nil
}

// WinRate returns the fraction of archived skirmishes won by friends, and
// how many skirmishes were counted.
func (a *Archive) WinRate(ctx context.Context) (float64, int64, error) {
	var total, wins int64
	db := a.db.WithContext(ctx).Model(&SkirmishRecord{})
	if err := db.Count(&total).Error; err != nil {
		return 0, 0, fmt.Errorf("counting skirmishes: %w", err)
	}
	if total == 0 {
		return 0, 0, nil
	}
	if err := a.db.WithContext(ctx).Model(&SkirmishRecord{}).Where("winner = ?", WinnerFriends).Count(&wins).Error; err != nil {
		return 0, 0, fmt.Errorf("counting wins: %w", err)
	}
	return float64(wins) / float64(total), total, nil
}

// Close releases the database connection.
func (a *Archive) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Winner labels.
const (
	WinnerFriends = "friends"
	WinnerFoes    = "foes"
	WinnerNone    = "none"
)

// WinnerOf names the winning side from surviving fleet sizes.
func WinnerOf(friends, foes int) string {
	switch {
	case foes == 0 && friends > 0:
		return WinnerFriends
	case friends == 0 && foes > 0:
		return WinnerFoes
	default:
		return WinnerNone
	}
}

package offline

import (
	"encoding/json"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// record is a row in the single offline_records table; bucket plus id form
// the primary key, mirroring one object store per bucket.
type record struct {
	Bucket string `gorm:"primaryKey"`
	ID     string `gorm:"primaryKey;column:id"`
	Data   []byte
}

func (record) TableName() string { return "offline_records" }

type sqliteStore struct {
	db *gorm.DB
}

func openSQLite(path string) (Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&record{}); err != nil {
		return nil, err
	}
	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) SaveCollection(bucket string, items []Item) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("bucket = ?", bucket).Delete(&record{}).Error; err != nil {
			return err
		}
		for _, item := range items {
			row := record{Bucket: bucket, ID: item.ID, Data: item.Data}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *sqliteStore) GetCollection(bucket string) ([]Item, error) {
	var rows []record
	if err := s.db.Where("bucket = ?", bucket).Order("id asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]Item, len(rows))
	for i, row := range rows {
		items[i] = Item{ID: row.ID, Data: json.RawMessage(row.Data)}
	}
	return items, nil
}

func (s *sqliteStore) AddItem(bucket, id string, data json.RawMessage) error {
	row := record{Bucket: bucket, ID: id, Data: data}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "bucket"}, {Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data"}),
	}).Create(&row).Error
}

func (s *sqliteStore) RemoveItem(bucket, id string) (bool, error) {
	result := s.db.Where("bucket = ? AND id = ?", bucket, id).Delete(&record{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (s *sqliteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Package database implements the remote entity-service contract on an
// embedded gorm database. Rows are JSON documents keyed by uuid, one table
// per entity kind, so the schema never has to chase the entity types.
package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"StockDesk/app/remote"
)

// Store is a remote.Backend over a gorm connection. All calls are scoped to
// one user id, matching the hosted service's row-level scoping.
type Store struct {
	db     *gorm.DB
	userID string
	now    func() time.Time
}

// entityRow is one stored document.
type entityRow struct {
	ID        string `gorm:"primaryKey"`
	UserID    string `gorm:"index"`
	Data      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

var tables = []string{
	remote.TableProducts,
	remote.TableInventory,
	remote.TableSales,
	remote.TableClients,
	remote.TablePayments,
	remote.TableMeetings,
	remote.TableProductExpiries,
	remote.TableSuppliers,
	remote.TableSalesReturns,
	remote.TablePurchaseReturns,
}

// OpenSQLite opens (and migrates) a local database file. Pass ":memory:"
// for an ephemeral database.
func OpenSQLite(dbPath, userID string) (*Store, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// CGO-free driver
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to local database: %w", err)
	}
	return newStore(db, userID)
}

// OpenPostgres connects to a server database with the given DSN.
func OpenPostgres(dsn, userID string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return newStore(db, userID)
}

func newStore(db *gorm.DB, userID string) (*Store, error) {
	s := &Store{db: db, userID: userID, now: func() time.Time { return time.Now().UTC() }}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	for _, name := range tables {
		if err := s.db.Table(name).AutoMigrate(&entityRow{}); err != nil {
			return err
		}
	}
	return nil
}

// Table returns the entity service for one table.
func (s *Store) Table(name string) remote.EntityService {
	return &tableService{store: s, table: name}
}

type tableService struct {
	store *Store
	table string
}

func (t *tableService) scope(ctx context.Context) *gorm.DB {
	return t.store.db.WithContext(ctx).Table(t.table).Where("user_id = ?", t.store.userID)
}

func (t *tableService) List(ctx context.Context) ([]remote.Record, error) {
	var rows []entityRow
	if err := t.scope(ctx).Order("created_at desc").Find(&rows).Error; err != nil {
		return nil, remote.NewError(remote.KindNetwork, "list", t.table, "query failed", err)
	}
	recs := make([]remote.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := t.decodeRow(row)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func (t *tableService) Create(ctx context.Context, rec remote.Record) (remote.Record, error) {
	if rec == nil {
		return nil, remote.NewError(remote.KindValidation, "create", t.table, "nil record", nil)
	}
	now := t.store.now()
	stored := remote.Record{}
	for k, v := range rec {
		stored[k] = v
	}
	stored["id"] = uuid.NewString()
	stored["created_at"] = now.Format(time.RFC3339)
	stored["updated_at"] = now.Format(time.RFC3339)

	data, err := json.Marshal(stored)
	if err != nil {
		return nil, remote.NewError(remote.KindValidation, "create", t.table, "unencodable record", err)
	}
	row := entityRow{
		ID:        stored["id"].(string),
		UserID:    t.store.userID,
		Data:      string(data),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := t.store.db.WithContext(ctx).Table(t.table).Create(&row).Error; err != nil {
		return nil, remote.NewError(remote.KindNetwork, "create", t.table, "insert failed", err)
	}
	return stored, nil
}

func (t *tableService) Update(ctx context.Context, id string, patch remote.Record) (remote.Record, error) {
	var row entityRow
	err := t.scope(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, remote.NewError(remote.KindNotFound, "update", t.table, fmt.Sprintf("no row with id %s", id), nil)
	}
	if err != nil {
		return nil, remote.NewError(remote.KindNetwork, "update", t.table, "query failed", err)
	}

	rec, err := t.decodeRow(row)
	if err != nil {
		return nil, err
	}
	for k, v := range patch {
		rec[k] = v
	}
	now := t.store.now()
	rec["updated_at"] = now.Format(time.RFC3339)

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, remote.NewError(remote.KindValidation, "update", t.table, "unencodable record", err)
	}
	row.Data = string(data)
	row.UpdatedAt = now
	if err := t.store.db.WithContext(ctx).Table(t.table).Save(&row).Error; err != nil {
		return nil, remote.NewError(remote.KindNetwork, "update", t.table, "save failed", err)
	}
	return rec, nil
}

func (t *tableService) Delete(ctx context.Context, id string) error {
	res := t.scope(ctx).Where("id = ?", id).Delete(&entityRow{})
	if res.Error != nil {
		return remote.NewError(remote.KindNetwork, "delete", t.table, "delete failed", res.Error)
	}
	if res.RowsAffected == 0 {
		return remote.NewError(remote.KindNotFound, "delete", t.table, fmt.Sprintf("no row with id %s", id), nil)
	}
	return nil
}

// decodeRow unpacks the stored JSON and backfills the envelope fields so
// callers always see id and timestamps even on hand-written rows.
func (t *tableService) decodeRow(row entityRow) (remote.Record, error) {
	rec := remote.Record{}
	if row.Data != "" {
		if err := json.Unmarshal([]byte(row.Data), &rec); err != nil {
			return nil, remote.NewError(remote.KindValidation, "list", t.table, "corrupt stored record", err)
		}
	}
	if _, ok := rec["id"]; !ok {
		rec["id"] = row.ID
	}
	if _, ok := rec["created_at"]; !ok {
		rec["created_at"] = row.CreatedAt.Format(time.RFC3339)
	}
	if _, ok := rec["updated_at"]; !ok {
		rec["updated_at"] = row.UpdatedAt.Format(time.RFC3339)
	}
	return rec, nil
}

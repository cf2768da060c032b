package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/klauspost/compress/zstd"

	"tillpos/internal/domain/cart"
	"tillpos/internal/domain/catalog"
	"tillpos/internal/domain/invoice"
)

const (
	invoicesTable = "invoices"
	cartTable     = "cart"
	snapshotTable = "catalog_snapshot"
	cursorTable   = "sync_cursor"
)

// Store implements the catalog, cart and invoice repositories over four
// tables. The catalog snapshot is one zstd-compressed JSON blob; it is
// replaced whole on every sync, never patched row-wise.
type Store struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewStore creates the local persistent store.
func NewStore(txm *TxManager) (*Store, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &Store{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		encoder: encoder,
		decoder: decoder,
	}, nil
}

// Migrate creates the store tables when missing.
func (s *Store) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS invoices (
			id             TEXT PRIMARY KEY,
			date           TIMESTAMPTZ NOT NULL,
			synced         BOOLEAN NOT NULL DEFAULT FALSE,
			schema_version INT NOT NULL DEFAULT 1,
			payload        JSONB NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_invoices_date ON invoices (date DESC)`,
		`CREATE TABLE IF NOT EXISTS cart (
			slot       SMALLINT PRIMARY KEY DEFAULT 1,
			payload    JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS catalog_snapshot (
			slot       SMALLINT PRIMARY KEY DEFAULT 1,
			payload    BYTEA NOT NULL,
			taken_at   TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sync_cursor (
			slot      SMALLINT PRIMARY KEY DEFAULT 1,
			last_sync TEXT NOT NULL
		)`,
	}

	querier := s.txm.GetQuerier(ctx)
	for _, stmt := range statements {
		if _, err := querier.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate store: %w", err)
		}
	}
	return nil
}

// --- catalog.Repository ---

func (s *Store) SaveSnapshot(ctx context.Context, snap catalog.Snapshot) error {
	ctx, span := tracer.Start(ctx, "store.save_snapshot")
	defer span.End()

	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	compressed := s.encoder.EncodeAll(raw, nil)

	sql, args, err := s.builder.Insert(snapshotTable).
		Columns("slot", "payload", "taken_at").
		Values(1, compressed, snap.Timestamp).
		Suffix("ON CONFLICT (slot) DO UPDATE SET payload = EXCLUDED.payload, taken_at = EXCLUDED.taken_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build snapshot upsert: %w", err)
	}

	if _, err := s.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *Store) LoadSnapshot(ctx context.Context) (*catalog.Snapshot, error) {
	sql, args, err := s.builder.Select("payload").
		From(snapshotTable).
		Where(squirrel.Eq{"slot": 1}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build snapshot select: %w", err)
	}

	var compressed []byte
	row := s.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...)
	if err := row.Scan(&compressed); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	raw, err := s.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress snapshot: %w", err)
	}

	var snap catalog.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

func (s *Store) SaveCursor(ctx context.Context, lastSync string) error {
	sql, args, err := s.builder.Insert(cursorTable).
		Columns("slot", "last_sync").
		Values(1, lastSync).
		Suffix("ON CONFLICT (slot) DO UPDATE SET last_sync = EXCLUDED.last_sync").
		ToSql()
	if err != nil {
		return fmt.Errorf("build cursor upsert: %w", err)
	}

	if _, err := s.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("save cursor: %w", err)
	}
	return nil
}

func (s *Store) LoadCursor(ctx context.Context) (string, error) {
	sql, args, err := s.builder.Select("last_sync").
		From(cursorTable).
		Where(squirrel.Eq{"slot": 1}).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build cursor select: %w", err)
	}

	var lastSync string
	row := s.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...)
	if err := row.Scan(&lastSync); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("load cursor: %w", err)
	}
	return lastSync, nil
}

// --- cart.Repository ---

func (s *Store) SaveCart(ctx context.Context, items []cart.Item) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}

	sql, args, err := s.builder.Insert(cartTable).
		Columns("slot", "payload", "updated_at").
		Values(1, payload, time.Now()).
		Suffix("ON CONFLICT (slot) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build cart upsert: %w", err)
	}

	if _, err := s.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (s *Store) LoadCart(ctx context.Context) ([]cart.Item, error) {
	sql, args, err := s.builder.Select("payload").
		From(cartTable).
		Where(squirrel.Eq{"slot": 1}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build cart select: %w", err)
	}

	var payload []byte
	row := s.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...)
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load cart: %w", err)
	}

	var items []cart.Item
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}
	return items, nil
}

// --- invoice.Repository ---

type invoiceRow struct {
	ID            string    `db:"id"`
	Date          time.Time `db:"date"`
	Synced        bool      `db:"synced"`
	SchemaVersion int       `db:"schema_version"`
	Payload       []byte    `db:"payload"`
}

func (s *Store) AppendInvoice(ctx context.Context, inv invoice.Invoice) error {
	ctx, span := tracer.Start(ctx, "store.append_invoice")
	defer span.End()

	payload, err := json.Marshal(inv)
	if err != nil {
		return fmt.Errorf("marshal invoice: %w", err)
	}

	sql, args, err := s.builder.Insert(invoicesTable).
		Columns("id", "date", "synced", "schema_version", "payload").
		Values(inv.ID, inv.Date, inv.Synced, inv.SchemaVersion, payload).
		ToSql()
	if err != nil {
		return fmt.Errorf("build invoice insert: %w", err)
	}

	if _, err := s.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("append invoice: %w", err)
	}
	return nil
}

func (s *Store) SaveInvoice(ctx context.Context, inv invoice.Invoice) error {
	payload, err := json.Marshal(inv)
	if err != nil {
		return fmt.Errorf("marshal invoice: %w", err)
	}

	sql, args, err := s.builder.Update(invoicesTable).
		Set("synced", inv.Synced).
		Set("schema_version", inv.SchemaVersion).
		Set("payload", payload).
		Where(squirrel.Eq{"id": inv.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build invoice update: %w", err)
	}

	if _, err := s.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("save invoice: %w", err)
	}
	return nil
}

func (s *Store) GetInvoice(ctx context.Context, id string) (*invoice.Invoice, error) {
	sql, args, err := s.builder.Select("id", "date", "synced", "schema_version", "payload").
		From(invoicesTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build invoice select: %w", err)
	}

	var row invoiceRow
	if err := pgxscan.Get(ctx, s.txm.GetQuerier(ctx), &row, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return decodeInvoice(row)
}

func (s *Store) ListInvoices(ctx context.Context) ([]invoice.Invoice, error) {
	sql, args, err := s.builder.Select("id", "date", "synced", "schema_version", "payload").
		From(invoicesTable).
		OrderBy("date DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build invoice list: %w", err)
	}

	var rows []invoiceRow
	if err := pgxscan.Select(ctx, s.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}

	invoices := make([]invoice.Invoice, 0, len(rows))
	for _, row := range rows {
		inv, err := decodeInvoice(row)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, *inv)
	}
	return invoices, nil
}

func (s *Store) ClearInvoices(ctx context.Context) error {
	sql, args, err := s.builder.Delete(invoicesTable).ToSql()
	if err != nil {
		return fmt.Errorf("build invoice clear: %w", err)
	}
	if _, err := s.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("clear invoices: %w", err)
	}
	return nil
}

// decodeInvoice trusts the row columns over the payload copy for the fields
// that exist in both, so partial writes cannot desync the flags.
func decodeInvoice(row invoiceRow) (*invoice.Invoice, error) {
	var inv invoice.Invoice
	if err := json.Unmarshal(row.Payload, &inv); err != nil {
		return nil, fmt.Errorf("unmarshal invoice %s: %w", row.ID, err)
	}
	inv.ID = row.ID
	inv.Date = row.Date
	inv.Synced = row.Synced
	inv.SchemaVersion = row.SchemaVersion
	return &inv, nil
}

// Package repository содержит реализацию доступа к данным в PostgreSQL.
package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/shopspring/decimal"

	"github.com/mmeshcher/receiptly/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var (
	// ErrReceiptNotFound возвращается, если чека нет или он принадлежит другому пользователю.
	ErrReceiptNotFound = errors.New("receipt not found")
	// ErrImageNotFound возвращается, если у чека нет сохранённого изображения.
	ErrImageNotFound = errors.New("receipt image not found")
)

// Image описывает сохранённое изображение чека.
type Image struct {
	Data        []byte
	ContentType string
}

const receiptColumns = `id, user_id, vendor, receipt_date, total, image_url, created_at`

// PostgresRepository предоставляет доступ к хранилищу данных в PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository создаёт новый репозиторий и инициализирует схему БД через миграции.
func NewPostgresRepository(dsn string) (*PostgresRepository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	r := &PostgresRepository{pool: pool}

	if err := r.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return r, nil
}

func (r *PostgresRepository) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(r.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

var retryDelays = []time.Duration{1 * time.Second, 3 * time.Second, 5 * time.Second}

func (r *PostgresRepository) withRetry(ctx context.Context, fn func() error) error {
	var err error

	for i := 0; i <= len(retryDelays); i++ {
		err = fn()
		if err == nil || !retryable(err) || i == len(retryDelays) {
			return err
		}

		timer := time.NewTimer(retryDelays[i])
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}

	return err
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.SerializationFailure ||
			pgErr.Code == pgerrcode.DeadlockDetected ||
			pgerrcode.IsConnectionException(pgErr.Code)
	}

	return isConnectionError(err)
}

func isConnectionError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "connection reset by peer")
}

// Close закрывает пул соединений с БД.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// CreateReceipt сохраняет новый чек пользователя.
func (r *PostgresRepository) CreateReceipt(ctx context.Context, userID string, in model.ReceiptInput) (*model.Receipt, error) {
	id := uuid.New()

	var res *model.Receipt
	err := r.withRetry(ctx, func() error {
		row := r.pool.QueryRow(ctx,
			`INSERT INTO receipts (id, user_id, vendor, receipt_date, total, image_url)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING `+receiptColumns,
			id, userID, in.Vendor, in.Date, ToCents(in.Total), in.ImageURL,
		)

		var err error
		res, err = scanReceipt(row)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("insert receipt: %w", err)
	}

	return res, nil
}

// GetReceipt возвращает чек пользователя.
func (r *PostgresRepository) GetReceipt(ctx context.Context, userID, id string) (*model.Receipt, error) {
	rid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrReceiptNotFound
	}

	var res *model.Receipt
	err = r.withRetry(ctx, func() error {
		row := r.pool.QueryRow(ctx,
			`SELECT `+receiptColumns+` FROM receipts WHERE id = $1 AND user_id = $2`,
			rid, userID,
		)

		var err error
		res, err = scanReceipt(row)
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReceiptNotFound
		}
		return nil, fmt.Errorf("select receipt: %w", err)
	}

	return res, nil
}

// ListReceipts возвращает чеки пользователя, новые первыми.
func (r *PostgresRepository) ListReceipts(ctx context.Context, userID string) ([]model.Receipt, error) {
	var res []model.Receipt

	err := r.withRetry(ctx, func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+receiptColumns+`
			 FROM receipts
			 WHERE user_id = $1
			 ORDER BY created_at DESC`,
			userID,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		res = res[:0]
		for rows.Next() {
			rec, err := scanReceipt(rows)
			if err != nil {
				return err
			}
			res = append(res, *rec)
		}

		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("select receipts: %w", err)
	}

	return res, nil
}

// UpdateReceipt перезаписывает изменяемые поля чека. Пустой image_url не затирает сохранённый.
func (r *PostgresRepository) UpdateReceipt(ctx context.Context, userID, id string, in model.ReceiptInput) (*model.Receipt, error) {
	rid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrReceiptNotFound
	}

	var res *model.Receipt
	err = r.withRetry(ctx, func() error {
		row := r.pool.QueryRow(ctx,
			`UPDATE receipts
			 SET vendor = $3, receipt_date = $4, total = $5, image_url = COALESCE(NULLIF($6, ''), image_url)
			 WHERE id = $1 AND user_id = $2
			 RETURNING `+receiptColumns,
			rid, userID, in.Vendor, in.Date, ToCents(in.Total), in.ImageURL,
		)

		var err error
		res, err = scanReceipt(row)
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReceiptNotFound
		}
		return nil, fmt.Errorf("update receipt: %w", err)
	}

	return res, nil
}

// DeleteReceipt удаляет чек пользователя.
func (r *PostgresRepository) DeleteReceipt(ctx context.Context, userID, id string) error {
	rid, err := uuid.Parse(id)
	if err != nil {
		return ErrReceiptNotFound
	}

	var deleted int64
	err = r.withRetry(ctx, func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM receipts WHERE id = $1 AND user_id = $2`, rid, userID)
		if err != nil {
			return err
		}
		deleted = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete receipt: %w", err)
	}

	if deleted == 0 {
		return ErrReceiptNotFound
	}
	return nil
}

// CreateReceiptWithImage сохраняет новый чек вместе с изображением одной вставкой:
// чек без изображения после неудачной загрузки не остаётся.
func (r *PostgresRepository) CreateReceiptWithImage(ctx context.Context, userID string, in model.ReceiptInput, img Image) (*model.Receipt, error) {
	id := uuid.New()

	var res *model.Receipt
	err := r.withRetry(ctx, func() error {
		row := r.pool.QueryRow(ctx,
			`INSERT INTO receipts (id, user_id, vendor, receipt_date, total, image_url, image_data, image_type)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 RETURNING `+receiptColumns,
			id, userID, in.Vendor, in.Date, ToCents(in.Total), ImageURL(id.String()), img.Data, img.ContentType,
		)

		var err error
		res, err = scanReceipt(row)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("insert receipt with image: %w", err)
	}

	return res, nil
}

// GetImage возвращает изображение чека.
func (r *PostgresRepository) GetImage(ctx context.Context, userID, id string) (*Image, error) {
	rid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrReceiptNotFound
	}

	var (
		data        []byte
		contentType *string
	)
	err = r.withRetry(ctx, func() error {
		return r.pool.QueryRow(ctx,
			`SELECT image_data, image_type FROM receipts WHERE id = $1 AND user_id = $2`,
			rid, userID,
		).Scan(&data, &contentType)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReceiptNotFound
		}
		return nil, fmt.Errorf("select image: %w", err)
	}

	if len(data) == 0 {
		return nil, ErrImageNotFound
	}

	img := &Image{Data: data, ContentType: "image/jpeg"}
	if contentType != nil && *contentType != "" {
		img.ContentType = *contentType
	}
	return img, nil
}

// ImageURL возвращает путь, по которому сервис отдаёт изображение чека.
func ImageURL(id string) string {
	return "/api/receipts/" + id + "/image"
}

// ToCents переводит сумму в центы. nil остаётся nil.
func ToCents(total *float64) *int64 {
	if total == nil {
		return nil
	}
	v := decimal.NewFromFloat(*total).Shift(2).Round(0).IntPart()
	return &v
}

// FromCents переводит центы обратно в сумму.
func FromCents(cents *int64) *float64 {
	if cents == nil {
		return nil
	}
	v := decimal.New(*cents, -2).InexactFloat64()
	return &v
}

func scanReceipt(row pgx.Row) (*model.Receipt, error) {
	var (
		rec   model.Receipt
		id    uuid.UUID
		cents *int64
	)

	if err := row.Scan(&id, &rec.UserID, &rec.Vendor, &rec.Date, &cents, &rec.ImageURL, &rec.CreatedAt); err != nil {
		return nil, err
	}

	rec.ID = id.String()
	rec.Total = FromCents(cents)
	return &rec, nil
}

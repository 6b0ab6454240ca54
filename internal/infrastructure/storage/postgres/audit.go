package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	appctx "fabriq/internal/core/context"
	"fabriq/internal/core/id"
	"fabriq/internal/domain/quotation"
	"fabriq/pkg/logger"
)

// AuditEvent is the kind of lifecycle event recorded.
type AuditEvent string

const (
	AuditEventTransition   AuditEvent = "transition"
	AuditEventBurnedNumber AuditEvent = "burned_number"
)

// CompressionAlgo specifies the compression algorithm used for payloads.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// AuditEntry is one row of the quotation audit trail. Burned invoice
// numbers live here: the quotation record never references them, so this
// table is the only place a numbering gap can be explained from.
type AuditEntry struct {
	ID                id.ID           `db:"id"`
	QuotationID       id.ID           `db:"quotation_id"`
	Number            string          `db:"number"`
	Event             AuditEvent      `db:"event"`
	Payload           json.RawMessage `db:"payload"`
	PayloadCompressed []byte          `db:"payload_compressed"`
	CompressionAlgo   CompressionAlgo `db:"compression_algo"`
	UserID            string          `db:"user_id"`
	CreatedAt         time.Time       `db:"created_at"`
}

// AuditService writes the quotation audit trail. It implements
// quotation.AuditRecorder: write failures are logged, never propagated,
// so the trail cannot fail a business operation.
type AuditService struct {
	txManager         *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

// Ensure compile-time interface compliance.
var _ quotation.AuditRecorder = (*AuditService)(nil)

// NewAuditService creates a new audit service.
func NewAuditService(txManager *TxManager) (*AuditService, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &AuditService{
		txManager:         txManager,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: 4 * 1024,
	}, nil
}

// RecordTransition implements quotation.AuditRecorder.
func (s *AuditService) RecordTransition(ctx context.Context, quotationID id.ID, number string, from, to quotation.Status) {
	s.record(ctx, quotationID, number, AuditEventTransition, map[string]any{
		"from": string(from),
		"to":   string(to),
	})
}

// RecordBurnedNumber implements quotation.AuditRecorder.
func (s *AuditService) RecordBurnedNumber(ctx context.Context, quotationID id.ID, number string, reason error) {
	s.record(ctx, quotationID, number, AuditEventBurnedNumber, map[string]any{
		"reason": reason.Error(),
	})
}

func (s *AuditService) record(ctx context.Context, quotationID id.ID, number string, event AuditEvent, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error(ctx, "marshal audit payload failed", "event", string(event), "error", err)
		return
	}

	entry := AuditEntry{
		ID:              id.New(),
		QuotationID:     quotationID,
		Number:          number,
		Event:           event,
		Payload:         data,
		CompressionAlgo: CompressionNone,
		UserID:          appctx.GetUserID(ctx),
		CreatedAt:       time.Now().UTC(),
	}

	if len(entry.Payload) > s.compressThreshold {
		entry.PayloadCompressed = s.encoder.EncodeAll(entry.Payload, nil)
		entry.Payload = nil
		entry.CompressionAlgo = CompressionZstd
	}

	sql := `
		INSERT INTO sys_audit (
			id, quotation_id, number, event,
			payload, payload_compressed, compression_algo,
			user_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	querier := s.txManager.GetQuerier(ctx)
	_, err = querier.Exec(ctx, sql,
		entry.ID, entry.QuotationID, entry.Number, entry.Event,
		entry.Payload, entry.PayloadCompressed, entry.CompressionAlgo,
		entry.UserID, entry.CreatedAt,
	)
	if err != nil {
		logger.Error(ctx, "write audit entry failed",
			"event", string(event),
			"quotation_id", quotationID,
			"error", err)
	}
}

// History retrieves the audit trail for a quotation, newest first.
func (s *AuditService) History(ctx context.Context, quotationID id.ID, limit int) ([]AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	sql := `
		SELECT id, quotation_id, number, event,
			   payload, payload_compressed, compression_algo,
			   user_id, created_at
		FROM sys_audit
		WHERE quotation_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := s.txManager.GetQuerier(ctx).Query(ctx, sql, quotationID, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit history: %w", err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		err := rows.Scan(
			&e.ID, &e.QuotationID, &e.Number, &e.Event,
			&e.Payload, &e.PayloadCompressed, &e.CompressionAlgo,
			&e.UserID, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}

		if e.CompressionAlgo == CompressionZstd && len(e.PayloadCompressed) > 0 {
			decompressed, err := s.decoder.DecodeAll(e.PayloadCompressed, nil)
			if err != nil {
				return nil, fmt.Errorf("decompress audit payload: %w", err)
			}
			e.Payload = decompressed
			e.PayloadCompressed = nil
		}

		entries = append(entries, e)
	}

	return entries, rows.Err()
}

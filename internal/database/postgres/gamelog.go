package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/IdleCultivation_Go/internal/repository"
)

type gameLogRepository struct {
	db *pgxpool.Pool
}

// NewGameLogRepository creates a new PostgreSQL game log repository
func NewGameLogRepository(db *pgxpool.Pool) repository.GameLog {
	return &gameLogRepository{db: db}
}

// LogEvent stores an event in the database
func (r *gameLogRepository) LogEvent(ctx context.Context, eventType string, characterID *string, payload, metadata map[string]interface{}) error {
	query := `
		INSERT INTO game_events (event_type, character_id, payload, metadata)
		VALUES ($1, $2, $3, $4)
	`

	if payload == nil {
		payload = map[string]interface{}{}
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return repository.WrapInfra(opMarshalEventFields, err)
	}

	var metadataJSON []byte
	if metadata != nil {
		metadataJSON, err = json.Marshal(metadata)
		if err != nil {
			return repository.WrapInfra(opMarshalEventFields, err)
		}
	}

	if _, err = r.db.Exec(ctx, query, eventType, characterID, payloadJSON, metadataJSON); err != nil {
		return repository.WrapInfra(opLogEvent, err)
	}
	return nil
}

// GetEventsByCharacter retrieves the newest events of a character
func (r *gameLogRepository) GetEventsByCharacter(ctx context.Context, characterID string, limit int) ([]repository.GameLogEntry, error) {
	query := `
		SELECT id, event_type, character_id, payload, metadata, created_at
		FROM game_events
		WHERE character_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`
	// LIMIT NULL returns every row
	var limitArg *int
	if limit > 0 {
		limitArg = &limit
	}

	rows, err := r.db.Query(ctx, query, characterID, limitArg)
	if err != nil {
		return nil, repository.WrapInfra(opGetEvents, err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return nil, repository.WrapInfra(opGetEvents, err)
	}
	return entries, nil
}

// CleanupOldEvents removes events older than the specified number of days
func (r *gameLogRepository) CleanupOldEvents(ctx context.Context, retentionDays int) (int64, error) {
	query := `
		DELETE FROM game_events
		WHERE created_at < NOW() - INTERVAL '1 day' * $1
	`

	result, err := r.db.Exec(ctx, query, retentionDays)
	if err != nil {
		return 0, repository.WrapInfra(opCleanupEvents, err)
	}

	return result.RowsAffected(), nil
}

// scanEntries scans rows into GameLogEntry structs
func scanEntries(rows pgx.Rows) ([]repository.GameLogEntry, error) {
	var entries []repository.GameLogEntry

	for rows.Next() {
		var e repository.GameLogEntry
		var payloadJSON, metadataJSON []byte

		err := rows.Scan(
			&e.ID,
			&e.EventType,
			&e.CharacterID,
			&payloadJSON,
			&metadataJSON,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if err := json.Unmarshal(payloadJSON, &e.Payload); err != nil {
			return nil, err
		}

		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &e.Metadata); err != nil {
				return nil, err
			}
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

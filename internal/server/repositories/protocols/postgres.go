package protocols

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sterilpoint/protokol/internal/common"
	"github.com/sterilpoint/protokol/internal/dbx"
	"github.com/sterilpoint/protokol/internal/models"
)

// PostgresRepository implements protocol storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const entryColumns = `date, packages, service, comment, tools,
	return_date, return_packages, return_tools, signatures,
	courier_pending, point_pending, courier_planned_date`

func (r *PostgresRepository) Ensure(ctx context.Context, clientID, month string) error {
	query := `
		INSERT INTO protocols (client_id, month) VALUES ($1, $2)
		ON CONFLICT (client_id, month) DO NOTHING;
	`
	if _, err := r.db.ExecContext(ctx, query, clientID, month); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetLedger(ctx context.Context, clientID, month string) (*models.Protocol, error) {
	query := `SELECT ` + entryColumns + ` FROM protocol_entries
		WHERE client_id=$1 AND month=$2 ORDER BY position`
	rows, err := r.db.QueryContext(ctx, query, clientID, month)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	p := &models.Protocol{ClientID: clientID, Month: month, Entries: []models.Entry{}}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		p.Entries = append(p.Entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	p.RecalcTotals()
	return p, nil
}

func (r *PostgresRepository) ListSummaries(ctx context.Context) ([]models.ProtocolSummary, error) {
	query := `
		SELECT p.client_id, p.month,
			COUNT(e.position), COALESCE(SUM(e.packages), 0)
		FROM protocols p
		LEFT JOIN protocol_entries e ON e.client_id = p.client_id AND e.month = p.month
		GROUP BY p.client_id, p.month
		ORDER BY p.month DESC, p.client_id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.ProtocolSummary
	for rows.Next() {
		var s models.ProtocolSummary
		if err := rows.Scan(&s.ClientID, &s.Month, &s.EntryCount, &s.TotalPackages); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) AppendEntry(ctx context.Context, clientID, month string, e *models.Entry) (int, error) {
	tools, returnTools, signatures, err := marshalEntry(e)
	if err != nil {
		return 0, err
	}
	query := `
		INSERT INTO protocol_entries (client_id, month, position, ` + entryColumns + `)
		SELECT $1, $2, COALESCE(MAX(position) + 1, 0),
			$3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		FROM protocol_entries WHERE client_id=$1 AND month=$2
		RETURNING position;
	`
	var position int
	err = r.db.QueryRowContext(ctx, query, clientID, month,
		e.Date, e.Packages, string(e.Service), e.Comment, tools,
		e.ReturnDate, e.ReturnPackages, returnTools, signatures,
		e.Queue.CourierPending, e.Queue.PointPending, e.Queue.CourierPlannedDate,
	).Scan(&position)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return position, nil
}

func (r *PostgresRepository) GetEntry(ctx context.Context, clientID, month string, index int) (*models.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM protocol_entries
		WHERE client_id=$1 AND month=$2 AND position=$3`
	row := r.db.QueryRowContext(ctx, query, clientID, month, index)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *PostgresRepository) UpdateEntry(ctx context.Context, clientID, month string, index int, e *models.Entry) error {
	tools, returnTools, signatures, err := marshalEntry(e)
	if err != nil {
		return err
	}
	query := `
		UPDATE protocol_entries SET
			date=$4, packages=$5, service=$6, comment=$7, tools=$8,
			return_date=$9, return_packages=$10, return_tools=$11, signatures=$12,
			courier_pending=$13, point_pending=$14, courier_planned_date=$15
		WHERE client_id=$1 AND month=$2 AND position=$3;
	`
	res, err := r.db.ExecContext(ctx, query, clientID, month, index,
		e.Date, e.Packages, string(e.Service), e.Comment, tools,
		e.ReturnDate, e.ReturnPackages, returnTools, signatures,
		e.Queue.CourierPending, e.Queue.PointPending, e.Queue.CourierPlannedDate,
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireOneRow(res)
}

func (r *PostgresRepository) DeleteEntry(ctx context.Context, clientID, month string, index int) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM protocol_entries WHERE client_id=$1 AND month=$2 AND position=$3`,
		clientID, month, index)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if err := requireOneRow(res); err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`UPDATE protocol_entries SET position = position - 1
			WHERE client_id=$1 AND month=$2 AND position > $3`,
		clientID, month, index)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListSignQueue(ctx context.Context, queueType models.QueueType, month string) ([]models.SignQueueItem, error) {
	flag := "e.courier_pending"
	if queueType == models.QueuePoint {
		flag = "e.point_pending"
	}
	query := `
		SELECT e.client_id, COALESCE(c.name, e.client_id), e.month, e.position,
			e.courier_planned_date, ` + entryColumns + `
		FROM protocol_entries e
		LEFT JOIN clients c ON c.id = e.client_id
		WHERE ` + flag + ` AND ($1 = '' OR e.month = $1)
		ORDER BY e.month, e.client_id, e.position`
	rows, err := r.db.QueryContext(ctx, query, month)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.SignQueueItem
	for rows.Next() {
		var item models.SignQueueItem
		var e models.Entry
		var tools, returnTools, signatures []byte
		if err := rows.Scan(
			&item.ClientID, &item.ClientName, &item.Month, &item.Index,
			&item.PlannedDate,
			&e.Date, &e.Packages, &e.Service, &e.Comment, &tools,
			&e.ReturnDate, &e.ReturnPackages, &returnTools, &signatures,
			&e.Queue.CourierPending, &e.Queue.PointPending, &e.Queue.CourierPlannedDate,
		); err != nil {
			return nil, err
		}
		if err := unmarshalEntryJSON(&e, tools, returnTools, signatures); err != nil {
			return nil, err
		}
		item.Type = queueType
		item.Entry = e
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*models.Entry, error) {
	var e models.Entry
	var tools, returnTools, signatures []byte
	err := row.Scan(
		&e.Date, &e.Packages, &e.Service, &e.Comment, &tools,
		&e.ReturnDate, &e.ReturnPackages, &returnTools, &signatures,
		&e.Queue.CourierPending, &e.Queue.PointPending, &e.Queue.CourierPlannedDate,
	)
	if err != nil {
		return nil, err
	}
	if err := unmarshalEntryJSON(&e, tools, returnTools, signatures); err != nil {
		return nil, err
	}
	return &e, nil
}

func marshalEntry(e *models.Entry) (tools, returnTools, signatures []byte, err error) {
	if tools, err = json.Marshal(models.NormalizeTools(e.Tools)); err != nil {
		return nil, nil, nil, err
	}
	if returnTools, err = json.Marshal(models.NormalizeTools(e.ReturnTools)); err != nil {
		return nil, nil, nil, err
	}
	if signatures, err = json.Marshal(e.Signatures); err != nil {
		return nil, nil, nil, err
	}
	return tools, returnTools, signatures, nil
}

func unmarshalEntryJSON(e *models.Entry, tools, returnTools, signatures []byte) error {
	if len(tools) > 0 {
		if err := json.Unmarshal(tools, &e.Tools); err != nil {
			return fmt.Errorf("tools: %w", err)
		}
	}
	if len(returnTools) > 0 {
		if err := json.Unmarshal(returnTools, &e.ReturnTools); err != nil {
			return fmt.Errorf("return tools: %w", err)
		}
	}
	if len(signatures) > 0 {
		if err := json.Unmarshal(signatures, &e.Signatures); err != nil {
			return fmt.Errorf("signatures: %w", err)
		}
	}
	return nil
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turtacn/ChemSAR/internal/domain/dataset"
	"github.com/turtacn/ChemSAR/internal/domain/molecule"
	"github.com/turtacn/ChemSAR/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemSAR/pkg/errors"
	"github.com/turtacn/ChemSAR/pkg/types/chem"
	"github.com/turtacn/ChemSAR/pkg/types/common"
)

// StoredMolecule is the persistence representation of one clustered dataset
// row.  Descriptors and fingerprints are serialised as JSONB.
type StoredMolecule struct {
	ID           common.ID
	StructureKey string
	SMILES       string
	Name         string
	Active       bool
	ClusterLabel int
	Dataset      string
	Descriptors  *chem.Descriptors
	Fingerprints map[chem.FingerprintType][]byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FromRecord converts a parsed, clustered dataset record into its
// persistence representation.
func FromRecord(r *dataset.Record, datasetName string) *StoredMolecule {
	m := &StoredMolecule{
		ID:           r.Molecule.ID,
		StructureKey: r.Molecule.StructureKey,
		SMILES:       r.SMILES,
		Name:         r.Name,
		Active:       r.Active,
		ClusterLabel: r.Label,
		Dataset:      datasetName,
		Descriptors:  r.Molecule.Descriptors,
	}
	if len(r.Molecule.Fingerprints) > 0 {
		m.Fingerprints = make(map[chem.FingerprintType][]byte, len(r.Molecule.Fingerprints))
		for t, fp := range r.Molecule.Fingerprints {
			m.Fingerprints[t] = fp.Bits
		}
	}
	return m
}

// MoleculeRepository persists clustered molecules in PostgreSQL.
type MoleculeRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewMoleculeRepository constructs a ready-to-use MoleculeRepository.
func NewMoleculeRepository(pool *pgxpool.Pool, log logging.Logger) *MoleculeRepository {
	return &MoleculeRepository{pool: pool, logger: log.Named("molecule_repo")}
}

// Save upserts a single molecule keyed by (dataset, structure_key).
func (r *MoleculeRepository) Save(ctx context.Context, m *StoredMolecule) error {
	descJSON, err := json.Marshal(m.Descriptors)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "serialising descriptors")
	}
	fpJSON, err := json.Marshal(m.Fingerprints)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "serialising fingerprints")
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO molecules (
			id, structure_key, smiles, name, active, cluster_label,
			dataset, descriptors, fingerprints, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,now(),now())
		ON CONFLICT (dataset, structure_key) DO UPDATE SET
			smiles = EXCLUDED.smiles,
			name = EXCLUDED.name,
			active = EXCLUDED.active,
			cluster_label = EXCLUDED.cluster_label,
			descriptors = EXCLUDED.descriptors,
			fingerprints = EXCLUDED.fingerprints,
			updated_at = now()`,
		m.ID, m.StructureKey, m.SMILES, m.Name, m.Active, m.ClusterLabel,
		m.Dataset, descJSON, fpJSON,
	)
	if err != nil {
		r.logger.Error("save failed", logging.String("structure_key", m.StructureKey), logging.Err(err))
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "inserting molecule")
	}
	return nil
}

// BatchSave inserts molecules in one round-trip using the COPY protocol.
// Rows already present for the dataset cause the copy to fail; callers
// ingest a dataset once or delete it first.
func (r *MoleculeRepository) BatchSave(ctx context.Context, molecules []*StoredMolecule) error {
	if len(molecules) == 0 {
		return nil
	}

	columns := []string{
		"id", "structure_key", "smiles", "name", "active",
		"cluster_label", "dataset", "descriptors", "fingerprints",
		"created_at", "updated_at",
	}
	now := time.Now().UTC()

	rows := make([][]interface{}, 0, len(molecules))
	for _, m := range molecules {
		descJSON, err := json.Marshal(m.Descriptors)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeSerialization, "serialising descriptors")
		}
		fpJSON, err := json.Marshal(m.Fingerprints)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeSerialization, "serialising fingerprints")
		}
		rows = append(rows, []interface{}{
			m.ID, m.StructureKey, m.SMILES, m.Name, m.Active,
			m.ClusterLabel, m.Dataset, descJSON, fpJSON,
			now, now,
		})
	}

	copied, err := r.pool.CopyFrom(ctx, pgx.Identifier{"molecules"}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		r.logger.Error("batch save failed", logging.Int("count", len(molecules)), logging.Err(err))
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "bulk inserting molecules")
	}
	r.logger.Info("batch save complete", logging.Int("rows", int(copied)))
	return nil
}

const moleculeColumns = `
	id, structure_key, smiles, name, active, cluster_label,
	dataset, descriptors, fingerprints, created_at, updated_at`

// FindByStructureKey looks up one molecule within a dataset.
func (r *MoleculeRepository) FindByStructureKey(ctx context.Context, dataset, structureKey string) (*StoredMolecule, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT`+moleculeColumns+`
		FROM molecules
		WHERE dataset = $1 AND structure_key = $2`,
		dataset, structureKey,
	)
	m, err := scanMolecule(row)
	if err == pgx.ErrNoRows {
		return nil, errors.New(errors.ErrCodeMoleculeNotFound, "molecule not found").
			WithDetail("structure_key=" + structureKey)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "querying molecule")
	}
	return m, nil
}

// FindBySMILES parses the query structure and looks it up by its canonical
// structure key, so equivalent SMILES spellings resolve to the same row.
func (r *MoleculeRepository) FindBySMILES(ctx context.Context, dataset, smiles string) (*StoredMolecule, error) {
	m, err := molecule.New(smiles)
	if err != nil {
		return nil, err
	}
	return r.FindByStructureKey(ctx, dataset, m.StructureKey)
}

// List returns a dataset's molecules ordered by cluster label then name.
func (r *MoleculeRepository) List(ctx context.Context, dataset string, limit, offset int) ([]*StoredMolecule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT`+moleculeColumns+`
		FROM molecules
		WHERE dataset = $1
		ORDER BY cluster_label, name
		LIMIT $2 OFFSET $3`,
		dataset, limit, offset,
	)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "listing molecules")
	}
	defer rows.Close()

	var out []*StoredMolecule
	for rows.Next() {
		m, err := scanMolecule(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "scanning molecule row")
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "iterating molecule rows")
	}
	return out, nil
}

// Count returns the number of molecules stored for a dataset.
func (r *MoleculeRepository) Count(ctx context.Context, dataset string) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM molecules WHERE dataset = $1`, dataset,
	).Scan(&n)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "counting molecules")
	}
	return n, nil
}

// DeleteDataset removes every molecule of a dataset and returns the number
// of rows deleted.
func (r *MoleculeRepository) DeleteDataset(ctx context.Context, dataset string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM molecules WHERE dataset = $1`, dataset)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "deleting dataset")
	}
	return tag.RowsAffected(), nil
}

func scanMolecule(row pgx.Row) (*StoredMolecule, error) {
	var (
		m        StoredMolecule
		descJSON []byte
		fpJSON   []byte
	)
	err := row.Scan(
		&m.ID, &m.StructureKey, &m.SMILES, &m.Name, &m.Active, &m.ClusterLabel,
		&m.Dataset, &descJSON, &fpJSON, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(descJSON) > 0 {
		if err := json.Unmarshal(descJSON, &m.Descriptors); err != nil {
			return nil, err
		}
	}
	if len(fpJSON) > 0 {
		if err := json.Unmarshal(fpJSON, &m.Fingerprints); err != nil {
			return nil, err
		}
	}
	return &m, nil
}

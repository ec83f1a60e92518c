package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ChemSAR/internal/application/screening"
	"github.com/turtacn/ChemSAR/internal/domain/dataset"
	"github.com/turtacn/ChemSAR/internal/infrastructure/database/postgres"
	"github.com/turtacn/ChemSAR/pkg/errors"
	"github.com/turtacn/ChemSAR/pkg/types/chem"
	"github.com/turtacn/ChemSAR/pkg/types/common"
)

// DatasetHandler serves dataset persistence endpoints.  It is only
// registered when PostgreSQL is configured.
type DatasetHandler struct {
	svc  *screening.Service
	repo *postgres.MoleculeRepository
}

// NewDatasetHandler constructs a DatasetHandler.
func NewDatasetHandler(svc *screening.Service, repo *postgres.MoleculeRepository) *DatasetHandler {
	return &DatasetHandler{svc: svc, repo: repo}
}

// Ingest handles POST /api/v1/datasets/:name: cluster the submitted
// structures and persist them under the named dataset.
func (h *DatasetHandler) Ingest(c *gin.Context) {
	name := c.Param("name")
	var req chem.IngestRequest
	if !bindJSON(c, &req) {
		return
	}
	if len(req.SMILES) == 0 {
		writeError(c, errors.New(errors.ErrCodeBadRequest, "smiles list must not be empty"))
		return
	}

	records := make([]*dataset.Record, len(req.SMILES))
	for i, sm := range req.SMILES {
		recName := ""
		if i < len(req.Names) {
			recName = req.Names[i]
		}
		if recName == "" {
			recName = "mol_" + strconv.Itoa(i+1)
		}
		records[i] = &dataset.Record{Row: i + 1, Name: recName, SMILES: sm}
	}

	ctx := c.Request.Context()
	labelled, numClusters, err := h.svc.ClusterTable(
		ctx, dataset.NewTable(records), req.Cutoff, req.FingerprintType)
	if err != nil {
		writeError(c, err)
		return
	}
	if labelled.Len() == 0 {
		writeError(c, errors.New(errors.ErrCodeDatasetEmpty, "no parseable structures in request"))
		return
	}

	if req.Replace {
		if _, err := h.repo.DeleteDataset(ctx, name); err != nil {
			writeError(c, err)
			return
		}
	}

	stored := make([]*postgres.StoredMolecule, labelled.Len())
	for i, r := range labelled.Records {
		stored[i] = postgres.FromRecord(r, name)
	}
	if err := h.repo.BatchSave(ctx, stored); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, chem.IngestResponse{
		Dataset:      name,
		NumMolecules: labelled.Len(),
		NumClusters:  numClusters,
	})
}

// List handles GET /api/v1/datasets/:name: page through stored molecules
// ordered by cluster label.
func (h *DatasetHandler) List(c *gin.Context) {
	name := c.Param("name")
	limit := queryInt(c, "limit", 100)
	offset := queryInt(c, "offset", 0)

	ctx := c.Request.Context()
	total, err := h.repo.Count(ctx, name)
	if err != nil {
		writeError(c, err)
		return
	}
	molecules, err := h.repo.List(ctx, name, limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := chem.DatasetListResponse{
		Dataset:   name,
		Total:     total,
		Molecules: make([]chem.MoleculeDTO, len(molecules)),
	}
	for i, m := range molecules {
		resp.Molecules[i] = chem.MoleculeDTO{
			BaseEntity: common.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			SMILES:       m.SMILES,
			StructureKey: m.StructureKey,
			Name:         m.Name,
			Active:       m.Active,
			Descriptors:  m.Descriptors,
			Fingerprints: m.Fingerprints,
			ClusterLabel: m.ClusterLabel,
		}
	}
	c.JSON(http.StatusOK, resp)
}

// Delete handles DELETE /api/v1/datasets/:name.
func (h *DatasetHandler) Delete(c *gin.Context) {
	name := c.Param("name")
	deleted, err := h.repo.DeleteDataset(c.Request.Context(), name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dataset": name, "deleted": deleted})
}

func queryInt(c *gin.Context, key string, def int) int {
	v := c.Query(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

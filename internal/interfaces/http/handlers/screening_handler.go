package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ChemSAR/internal/application/screening"
	"github.com/turtacn/ChemSAR/pkg/errors"
	"github.com/turtacn/ChemSAR/pkg/types/chem"
)

// ScreeningHandler serves the clustering, similarity, and descriptor
// endpoints.
type ScreeningHandler struct {
	svc *screening.Service
}

// NewScreeningHandler constructs a ScreeningHandler.
func NewScreeningHandler(svc *screening.Service) *ScreeningHandler {
	return &ScreeningHandler{svc: svc}
}

// Cluster handles POST /api/v1/cluster.
func (h *ScreeningHandler) Cluster(c *gin.Context) {
	var req chem.ClusterRequest
	if !bindJSON(c, &req) {
		return
	}
	if len(req.SMILES) == 0 {
		writeError(c, errors.New(errors.ErrCodeBadRequest, "smiles list must not be empty"))
		return
	}

	resp, err := h.svc.ClusterDataset(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Similarity handles POST /api/v1/similarity.
func (h *ScreeningHandler) Similarity(c *gin.Context) {
	var req chem.SimilarityRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Query == "" {
		writeError(c, errors.New(errors.ErrCodeBadRequest, "query must not be empty"))
		return
	}

	resp, err := h.svc.SimilaritySearch(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Descriptors handles POST /api/v1/descriptors.
func (h *ScreeningHandler) Descriptors(c *gin.Context) {
	var req chem.DescriptorRequest
	if !bindJSON(c, &req) {
		return
	}
	if len(req.SMILES) == 0 {
		writeError(c, errors.New(errors.ErrCodeBadRequest, "smiles list must not be empty"))
		return
	}

	resp, err := h.svc.ComputeDescriptors(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

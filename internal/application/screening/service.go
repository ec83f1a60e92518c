// Package screening provides the application-level service that orchestrates
// the clustering pipeline: parse structures, compute fingerprints (with
// cache), build the condensed distance matrix, run Butina clustering, and
// annotate the dataset with labels and descriptors.
package screening

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/turtacn/ChemSAR/internal/domain/cluster"
	"github.com/turtacn/ChemSAR/internal/domain/dataset"
	"github.com/turtacn/ChemSAR/internal/domain/molecule"
	"github.com/turtacn/ChemSAR/internal/infrastructure/cache"
	"github.com/turtacn/ChemSAR/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemSAR/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ChemSAR/pkg/errors"
	"github.com/turtacn/ChemSAR/pkg/types/chem"
	"github.com/turtacn/ChemSAR/pkg/types/common"
)

// Service orchestrates the screening pipeline over in-memory datasets.
type Service struct {
	clusterer cluster.Clusterer
	cache     cache.FingerprintCache
	metrics   *prometheus.Metrics
	logger    logging.Logger

	defaultCutoff float64
	defaultFPType chem.FingerprintType
	morganRadius  int
	fpBits        int
}

// Option customises a Service.
type Option func(*Service)

// WithClusterer overrides the clustering algorithm.
func WithClusterer(c cluster.Clusterer) Option {
	return func(s *Service) { s.clusterer = c }
}

// WithCache sets the fingerprint cache.
func WithCache(c cache.FingerprintCache) Option {
	return func(s *Service) { s.cache = c }
}

// WithMetrics sets the metric sink.
func WithMetrics(m *prometheus.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithDefaults overrides the built-in cutoff and fingerprint type used when
// a request leaves them unset.
func WithDefaults(cutoff float64, fpType chem.FingerprintType) Option {
	return func(s *Service) {
		s.defaultCutoff = cutoff
		s.defaultFPType = fpType
	}
}

// WithFingerprintParams overrides the Morgan radius and bit width applied
// whenever the service computes fingerprints.
func WithFingerprintParams(radius, bits int) Option {
	return func(s *Service) {
		s.morganRadius = radius
		s.fpBits = bits
	}
}

// NewService builds a Service with an in-memory cache and Butina clustering
// unless options say otherwise.
func NewService(log logging.Logger, opts ...Option) *Service {
	s := &Service{
		clusterer:     cluster.NewButinaClusterer(),
		cache:         cache.NewMemoryCache(),
		metrics:       prometheus.NewMetrics(),
		logger:        log.Named("screening"),
		defaultCutoff: cluster.DefaultCutoff,
		defaultFPType: chem.FPMorgan,
		morganRadius:  molecule.DefaultMorganRadius,
		fpBits:        molecule.DefaultFingerprintBits,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// buildTable converts raw SMILES plus optional names into a parsed table,
// excluding unparseable rows.  Row errors are logged and counted.
func (s *Service) buildTable(smiles, names []string) (*dataset.Table, []dataset.RowError) {
	records := make([]*dataset.Record, len(smiles))
	for i, sm := range smiles {
		name := ""
		if i < len(names) {
			name = names[i]
		}
		if name == "" {
			name = "mol_" + strconv.Itoa(i+1)
		}
		records[i] = &dataset.Record{Row: i + 1, Name: name, SMILES: sm}
	}

	table, rowErrs := dataset.NewTable(records).ParseStructures()
	s.metrics.MoleculesParsedTotal.WithLabelValues("ok").Add(float64(table.Len()))
	if len(rowErrs) > 0 {
		s.metrics.MoleculesParsedTotal.WithLabelValues("error").Add(float64(len(rowErrs)))
		for _, re := range rowErrs {
			s.logger.Warn("excluding unparseable structure",
				logging.Int("row", re.Row),
				logging.String("smiles", re.SMILES),
				logging.Err(re.Err))
		}
	}
	return table, rowErrs
}

// fingerprints computes the table's fingerprints through the cache.
func (s *Service) fingerprints(ctx context.Context, table *dataset.Table, fpType chem.FingerprintType) ([]*molecule.Fingerprint, error) {
	fps := make([]*molecule.Fingerprint, table.Len())
	for i, r := range table.Records {
		key := r.Molecule.StructureKey
		if fp, ok, err := s.cache.Get(ctx, key, fpType); err == nil && ok {
			s.metrics.CacheHitsTotal.Inc()
			r.Molecule.Fingerprints[fpType] = fp
			fps[i] = fp
			continue
		}
		s.metrics.CacheMissesTotal.Inc()

		fp, err := r.Molecule.CalculateFingerprintWith(fpType, s.morganRadius, s.fpBits)
		if err != nil {
			return nil, err
		}
		s.metrics.FingerprintsTotal.WithLabelValues(string(fpType)).Inc()
		if err := s.cache.Set(ctx, key, fp); err != nil {
			// Cache failures degrade to recomputation, never to a pipeline error.
			s.logger.Warn("fingerprint cache write failed", logging.Err(err))
		}
		fps[i] = fp
	}
	return fps, nil
}

// resolveParams fills unset request parameters with service defaults.
func (s *Service) resolveParams(cutoff float64, fpType chem.FingerprintType) (float64, chem.FingerprintType, error) {
	if cutoff == 0 {
		cutoff = s.defaultCutoff
	}
	if err := cluster.ValidateCutoff(cutoff); err != nil {
		return 0, "", err
	}
	if fpType == "" {
		fpType = s.defaultFPType
	}
	if !fpType.IsValid() {
		return 0, "", errors.New(errors.ErrCodeFingerprintUnsupported, "unknown fingerprint type").
			WithDetail("type=" + string(fpType))
	}
	return cutoff, fpType, nil
}

// ClusterDataset runs the full pipeline on the request's structures and
// returns per-molecule cluster labels.  Unparseable structures are excluded;
// their indices do not appear in the response members.
func (s *Service) ClusterDataset(ctx context.Context, req chem.ClusterRequest) (*chem.ClusterResponse, error) {
	cutoff, fpType, err := s.resolveParams(req.Cutoff, req.FingerprintType)
	if err != nil {
		s.metrics.ClusteringRunsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	start := time.Now()
	table, _ := s.buildTable(req.SMILES, req.Names)

	if table.Len() == 0 {
		s.metrics.ClusteringRunsTotal.WithLabelValues("ok").Inc()
		return &chem.ClusterResponse{Cutoff: cutoff, Members: []chem.ClusterMember{}}, nil
	}

	fps, err := s.fingerprints(ctx, table, fpType)
	if err != nil {
		s.metrics.ClusteringRunsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	dm, err := cluster.BuildDistances(fps)
	if err != nil {
		s.metrics.ClusteringRunsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	clusters, err := s.clusterer.Cluster(dm, cutoff)
	if err != nil {
		s.metrics.ClusteringRunsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	labels := cluster.AssignLabels(clusters, table.Len())
	if err := table.SetLabels(labels); err != nil {
		s.metrics.ClusteringRunsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	elapsed := time.Since(start)
	s.metrics.ClusteringRunsTotal.WithLabelValues("ok").Inc()
	s.metrics.ClusteringDuration.Observe(elapsed.Seconds())
	s.logger.Info("clustering complete",
		logging.Int("molecules", table.Len()),
		logging.Int("clusters", len(clusters)),
		logging.Float64("cutoff", cutoff),
		logging.Duration("elapsed", elapsed))

	resp := &chem.ClusterResponse{
		Cutoff:       cutoff,
		NumClusters:  len(clusters),
		NumMolecules: table.Len(),
		Members:      make([]chem.ClusterMember, table.Len()),
	}
	for i, r := range table.Records {
		resp.Members[i] = chem.ClusterMember{
			Index:  r.Row - 1,
			Name:   r.Name,
			SMILES: r.SMILES,
			Label:  r.Label,
		}
	}
	return resp, nil
}

// ClusterTable runs the pipeline over an already-loaded table and returns
// the labelled table of parseable records plus the cluster count.  The input
// table is not modified.
func (s *Service) ClusterTable(ctx context.Context, t *dataset.Table, cutoff float64, fpType chem.FingerprintType) (*dataset.Table, int, error) {
	cutoff, fpType, err := s.resolveParams(cutoff, fpType)
	if err != nil {
		s.metrics.ClusteringRunsTotal.WithLabelValues("error").Inc()
		return nil, 0, err
	}

	start := time.Now()
	parsed, rowErrs := t.ParseStructures()
	s.metrics.MoleculesParsedTotal.WithLabelValues("ok").Add(float64(parsed.Len()))
	if len(rowErrs) > 0 {
		s.metrics.MoleculesParsedTotal.WithLabelValues("error").Add(float64(len(rowErrs)))
		for _, re := range rowErrs {
			s.logger.Warn("excluding unparseable structure",
				logging.Int("row", re.Row),
				logging.String("smiles", re.SMILES),
				logging.Err(re.Err))
		}
	}
	if parsed.Len() == 0 {
		s.metrics.ClusteringRunsTotal.WithLabelValues("ok").Inc()
		return parsed, 0, nil
	}

	fps, err := s.fingerprints(ctx, parsed, fpType)
	if err != nil {
		s.metrics.ClusteringRunsTotal.WithLabelValues("error").Inc()
		return nil, 0, err
	}
	dm, err := cluster.BuildDistances(fps)
	if err != nil {
		s.metrics.ClusteringRunsTotal.WithLabelValues("error").Inc()
		return nil, 0, err
	}
	clusters, err := s.clusterer.Cluster(dm, cutoff)
	if err != nil {
		s.metrics.ClusteringRunsTotal.WithLabelValues("error").Inc()
		return nil, 0, err
	}
	labels := cluster.AssignLabels(clusters, parsed.Len())
	if err := parsed.SetLabels(labels); err != nil {
		s.metrics.ClusteringRunsTotal.WithLabelValues("error").Inc()
		return nil, 0, err
	}

	elapsed := time.Since(start)
	s.metrics.ClusteringRunsTotal.WithLabelValues("ok").Inc()
	s.metrics.ClusteringDuration.Observe(elapsed.Seconds())
	s.logger.Info("clustering complete",
		logging.Int("molecules", parsed.Len()),
		logging.Int("clusters", len(clusters)),
		logging.Float64("cutoff", cutoff),
		logging.Duration("elapsed", elapsed))

	return parsed, len(clusters), nil
}

// ComputeDescriptors annotates every parseable structure with its descriptor
// set.  Unparseable rows are excluded.
func (s *Service) ComputeDescriptors(_ context.Context, req chem.DescriptorRequest) (*chem.DescriptorResponse, error) {
	table, _ := s.buildTable(req.SMILES, nil)
	s.metrics.DescriptorRunsTotal.Inc()

	resp := &chem.DescriptorResponse{Rows: make([]chem.DescriptorRow, table.Len())}
	for i, r := range table.Records {
		d := r.Descriptors()
		resp.Rows[i] = chem.DescriptorRow{
			Index:       r.Row - 1,
			SMILES:      r.SMILES,
			Descriptors: d,
			Lipinski:    d.LipinskiPass(),
		}
	}
	return resp, nil
}

// SimilaritySearch scores the query against every parseable target and
// returns hits at or above the threshold, ordered by descending score.
// Rank is 1-based.  Limit of zero means all hits.
func (s *Service) SimilaritySearch(ctx context.Context, req chem.SimilarityRequest) (*chem.SimilarityResponse, error) {
	_, fpType, err := s.resolveParams(s.defaultCutoff, req.FingerprintType)
	if err != nil {
		return nil, err
	}

	query, err := molecule.New(req.Query)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidSMILES, "query structure invalid")
	}
	queryFP, err := query.CalculateFingerprintWith(fpType, s.morganRadius, s.fpBits)
	if err != nil {
		return nil, err
	}

	table, _ := s.buildTable(req.Targets, nil)
	fps, err := s.fingerprints(ctx, table, fpType)
	if err != nil {
		return nil, err
	}
	scores, err := molecule.BulkTanimoto(queryFP, fps)
	if err != nil {
		return nil, err
	}
	s.metrics.SimilaritySearchesTotal.Inc()

	hits := make([]chem.SimilarityHit, 0, len(scores))
	for i, score := range scores {
		if score < req.Threshold {
			continue
		}
		hits = append(hits, chem.SimilarityHit{
			Index:  table.Records[i].Row - 1,
			SMILES: table.Records[i].SMILES,
			Score:  score,
		})
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].Score > hits[b].Score })
	if req.Limit > 0 && len(hits) > req.Limit {
		hits = hits[:req.Limit]
	}
	for i := range hits {
		hits[i].Rank = i + 1
	}

	return &chem.SimilarityResponse{Query: req.Query, Hits: hits}, nil
}

// SelectRepresentatives clusters the table, sorts by the given column, and
// returns the first record of each cluster.  The table must already be
// parsed and labelled; this is the "sort then take first of each group"
// selection over a clustered dataset.
func (s *Service) SelectRepresentatives(table *dataset.Table, sortColumn string, order common.SortOrder) (*dataset.Table, error) {
	sorted, err := table.SortByColumn(sortColumn, order)
	if err != nil {
		return nil, err
	}
	return sorted.FirstPerCluster(), nil
}

package domain

// PartitionStats summarises the documents in one corpus partition.
type PartitionStats struct {
	Category  string `json:"category"`
	Partition string `json:"partition"`
	Exists    bool   `json:"exists"`
	FileCount int    `json:"file_count"`
	TotalSize int64  `json:"total_size"`
	Largest   int64  `json:"largest"`
	Smallest  int64  `json:"smallest"`
}

// AverageSize returns the mean file size in bytes.
func (s PartitionStats) AverageSize() float64 {
	if s.FileCount == 0 {
		return 0
	}
	return float64(s.TotalSize) / float64(s.FileCount)
}

// ProblemKind classifies a corpus validation problem.
type ProblemKind string

// Corpus validation problems.
const (
	ProblemMissingPartition ProblemKind = "missing_partition"
	ProblemEmptyPartition   ProblemKind = "empty_partition"
	ProblemTooShort         ProblemKind = "too_short"
	ProblemNoText           ProblemKind = "no_text"
	ProblemUnreadable       ProblemKind = "unreadable"
)

// Problem is one corpus validation finding.
type Problem struct {
	Kind    ProblemKind `json:"kind"`
	Path    string      `json:"path"`
	Message string      `json:"message"`
}

// KeywordHit is a document matched by keyword search.
type KeywordHit struct {
	Document  Document `json:"document"`
	Matches   int      `json:"matches"`
	Relevance float64  `json:"relevance"`
}

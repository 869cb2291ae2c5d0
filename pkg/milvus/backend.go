package milvus

import (
	"context"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"github.com/yami-cli/yami/pkg/config"
)

// Backend is the narrow surface the command layer programs against. The
// production implementation wraps the Milvus Go SDK; tests substitute a
// fake. Every method returns classified errors only.
type Backend interface {
	// Collections
	ListCollections(ctx context.Context) ([]string, error)
	CreateCollection(ctx context.Context, plan CreatePlan) error
	DescribeCollection(ctx context.Context, name string) (*CollectionInfo, error)
	DropCollection(ctx context.Context, name string) error
	HasCollection(ctx context.Context, name string) (bool, error)
	RenameCollection(ctx context.Context, oldName, newName string) error
	CollectionStats(ctx context.Context, name string) (map[string]string, error)

	// Databases
	CreateDatabase(ctx context.Context, name string) error
	ListDatabases(ctx context.Context) ([]string, error)
	DropDatabase(ctx context.Context, name string) error

	// Partitions
	CreatePartition(ctx context.Context, collection, name string) error
	DropPartition(ctx context.Context, collection, name string) error
	HasPartition(ctx context.Context, collection, name string) (bool, error)
	ListPartitions(ctx context.Context, collection string) ([]PartitionInfo, error)

	// Indexes
	CreateIndex(ctx context.Context, collection, field string, index entity.Index, name string) error
	DescribeIndex(ctx context.Context, collection, field string) ([]IndexInfo, error)
	ListIndexes(ctx context.Context, collection string) ([]IndexInfo, error)
	DropIndex(ctx context.Context, collection, field, name string) error

	// Data
	Insert(ctx context.Context, collection, partition string, rows []map[string]any) (*InsertResult, error)
	Upsert(ctx context.Context, collection, partition string, rows []map[string]any) (*UpsertResult, error)
	Delete(ctx context.Context, collection, partition, expr string) error
	DeleteByIDs(ctx context.Context, collection, partition string, ids []string) error

	// Queries
	Search(ctx context.Context, req SearchRequest) ([]SearchHit, error)
	Query(ctx context.Context, req QueryRequest) ([]map[string]any, error)
	Get(ctx context.Context, collection string, ids, outputFields, partitions []string) ([]map[string]any, error)
	HybridSearch(ctx context.Context, req HybridRequest) ([]SearchHit, error)

	// Load state
	LoadCollection(ctx context.Context, collection string, async bool) error
	ReleaseCollection(ctx context.Context, collection string) error
	LoadPartitions(ctx context.Context, collection string, partitions []string, async bool) error
	ReleasePartitions(ctx context.Context, collection string, partitions []string) error
	LoadState(ctx context.Context, collection string) (string, error)
	LoadProgress(ctx context.Context, collection string, partitions []string) (int64, error)

	// Aliases
	CreateAlias(ctx context.Context, collection, alias string) error
	AlterAlias(ctx context.Context, collection, alias string) error
	DropAlias(ctx context.Context, alias string) error

	// Users and roles
	CreateUser(ctx context.Context, username, password string) error
	DropUser(ctx context.Context, username string) error
	UpdatePassword(ctx context.Context, username, oldPassword, newPassword string) error
	ListUsers(ctx context.Context) ([]string, error)
	CreateRole(ctx context.Context, name string) error
	DropRole(ctx context.Context, name string) error
	ListRoles(ctx context.Context) ([]string, error)
	GrantRole(ctx context.Context, username, role string) error
	RevokeRole(ctx context.Context, username, role string) error

	// Maintenance
	Flush(ctx context.Context, collection string, async bool) error
	Compact(ctx context.Context, collection string) (int64, error)
	CompactionState(ctx context.Context, jobID int64) (string, error)
	CompactionPlans(ctx context.Context, jobID int64) (*CompactionPlans, error)
	PersistentSegments(ctx context.Context, collection string) ([]SegmentInfo, error)
	QuerySegments(ctx context.Context, collection string) ([]SegmentInfo, error)

	// Server
	Version(ctx context.Context) (string, error)

	Close() error
}

// ConnectFunc dials a backend for a resolved connection. The command
// layer holds one so tests can substitute a fake without a server.
type ConnectFunc func(ctx context.Context, conn config.Connection) (Backend, error)

// CreatePlan describes a collection create, including the indexes built
// right after and whether to load it for immediate use.
type CreatePlan struct {
	Schema *entity.Schema

	// Metrics maps vector field names to the metric used for their
	// auto-built AUTOINDEX. Fields absent from the map get no index.
	Metrics map[string]entity.MetricType

	ShardNum int32
	Load     bool
}

// CollectionInfo is the describe payload.
type CollectionInfo struct {
	Name             string      `json:"name"`
	ID               int64       `json:"id,omitempty"`
	Description      string      `json:"description,omitempty"`
	Fields           []FieldInfo `json:"fields"`
	Loaded           bool        `json:"loaded"`
	ShardNum         int32       `json:"shard_num,omitempty"`
	ConsistencyLevel string      `json:"consistency_level,omitempty"`
	DynamicField     bool        `json:"dynamic_field,omitempty"`
	AutoID           bool        `json:"auto_id,omitempty"`
}

// FieldInfo is one field of a collection schema.
type FieldInfo struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	PrimaryKey  bool   `json:"primary_key,omitempty"`
	AutoID      bool   `json:"auto_id,omitempty"`
	Dim         int    `json:"dim,omitempty"`
	MaxLength   int    `json:"max_length,omitempty"`
	ElementType string `json:"element_type,omitempty"`
	Description string `json:"description,omitempty"`
}

// PartitionInfo is one row of partition list.
type PartitionInfo struct {
	Name string `json:"name"`
	ID   int64  `json:"id"`
}

// IndexInfo is one row of index list/describe.
type IndexInfo struct {
	Field      string            `json:"field"`
	Name       string            `json:"name"`
	Type       string            `json:"type"`
	MetricType string            `json:"metric_type,omitempty"`
	Params     map[string]string `json:"params,omitempty"`
}

// InsertResult reports a bulk insert.
type InsertResult struct {
	InsertCount int   `json:"insert_count"`
	IDs         []any `json:"ids,omitempty"`
}

// UpsertResult reports a bulk upsert.
type UpsertResult struct {
	UpsertCount int   `json:"upsert_count"`
	IDs         []any `json:"ids,omitempty"`
}

// SegmentInfo is one row of segment list.
type SegmentInfo struct {
	ID           int64  `json:"id"`
	CollectionID int64  `json:"collection_id"`
	PartitionID  int64  `json:"partition_id"`
	NumRows      int64  `json:"num_rows"`
	State        string `json:"state"`
}

// CompactionPlans is the compact plans payload.
type CompactionPlans struct {
	JobID int64                `json:"job_id"`
	State string               `json:"state"`
	Plans []CompactionPlanInfo `json:"plans"`
}

// CompactionPlanInfo describes one segment merge.
type CompactionPlanInfo struct {
	Sources []int64 `json:"sources"`
	Target  int64   `json:"target"`
}

// SearchRequest carries one vector similarity search.
type SearchRequest struct {
	Collection   string
	Partitions   []string
	Vector       []float32
	VectorField  string
	Metric       entity.MetricType
	Expr         string
	OutputFields []string
	Limit        int
	Offset       int

	// Index-specific tuning; zero values select AUTOINDEX defaults.
	NProbe int
	Ef     int
}

// QueryRequest carries one scalar-filtered query.
type QueryRequest struct {
	Collection   string
	Partitions   []string
	Expr         string
	OutputFields []string
	Limit        int
	Offset       int
}

// SubSearch is one leg of a hybrid search.
type SubSearch struct {
	Field  string
	Vector []float32
	Expr   string
	Limit  int
	Metric entity.MetricType
	NProbe int
	Ef     int
}

// HybridRequest carries a multi-vector search with rank fusion. RRFK
// selects reciprocal rank fusion when positive; Weights selects a
// weighted reranker when non-empty.
type HybridRequest struct {
	Collection   string
	Partitions   []string
	Limit        int
	OutputFields []string
	Requests     []SubSearch
	RRFK         int
	Weights      []float64
}

// Package testutil provides the fake backend and envelope helpers the
// command tests are built on. It deliberately does not import pkg/cmd,
// so command tests can live in that package without a cycle.
package testutil

import (
	"context"
	"sync"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/yami-cli/yami/pkg/config"
	"github.com/yami-cli/yami/pkg/milvus"
)

// Fake is an in-memory milvus.Backend. Every call is recorded; canned
// fields supply return values; Err, when set, fails every operation.
type Fake struct {
	mu    sync.Mutex
	calls []string

	// Err fails every backend call when set. Tests simulate classified
	// faults by setting it to an *errcode.Error.
	Err error

	// DialErr fails the connect step itself.
	DialErr error

	// Dials counts connection attempts; LastConn keeps the most recent
	// resolved connection.
	Dials    int
	LastConn config.Connection

	// Closed counts Close calls, one per successful dispatch.
	Closed int

	// Canned results.
	Collections   []string
	Collection    *milvus.CollectionInfo
	Exists        bool
	Stats         map[string]string
	Databases     []string
	Partitions    []milvus.PartitionInfo
	Indexes       []milvus.IndexInfo
	InsertRes     *milvus.InsertResult
	UpsertRes     *milvus.UpsertResult
	Hits          []milvus.SearchHit
	Rows          []map[string]any
	State         string
	Users         []string
	Roles         []string
	ServerVersion string
	JobID         int64
	Plans         *milvus.CompactionPlans
	Segments      []milvus.SegmentInfo

	// Progress and CompactStates are consumed front to back by
	// LoadProgress and CompactionState, so wait loops can be scripted.
	// An exhausted queue reports the terminal value.
	Progress      []int64
	CompactStates []string

	// Captures of the most recent write-side arguments.
	LastPlan      milvus.CreatePlan
	LastRows      []map[string]any
	LastPartition string
	LastExpr      string
	LastIDs       []string
	LastIndex     entity.Index
	LastIndexName string
	LastSearch    milvus.SearchRequest
	LastQuery     milvus.QueryRequest
	LastHybrid    milvus.HybridRequest
	LastAsync     bool
	LastUser      string
	LastRole      string
}

// Connect returns a dialer handing out this fake, for cmd.Options.
func (f *Fake) Connect() milvus.ConnectFunc {
	return func(ctx context.Context, conn config.Connection) (milvus.Backend, error) {
		f.mu.Lock()
		f.Dials++
		f.LastConn = conn
		f.mu.Unlock()

		if f.DialErr != nil {
			return nil, f.DialErr
		}
		return f, nil
	}
}

// CallCount reports how often the named backend method ran.
func (f *Fake) CallCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

// TotalCalls reports how many backend methods ran in all.
func (f *Fake) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// Calls returns the recorded call sequence.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *Fake) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	return f.Err
}

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed++
	return nil
}

func (f *Fake) ListCollections(ctx context.Context) ([]string, error) {
	if err := f.record("ListCollections"); err != nil {
		return nil, err
	}
	return f.Collections, nil
}

func (f *Fake) CreateCollection(ctx context.Context, plan milvus.CreatePlan) error {
	f.LastPlan = plan
	return f.record("CreateCollection")
}

func (f *Fake) DescribeCollection(ctx context.Context, name string) (*milvus.CollectionInfo, error) {
	if err := f.record("DescribeCollection"); err != nil {
		return nil, err
	}
	return f.Collection, nil
}

func (f *Fake) DropCollection(ctx context.Context, name string) error {
	return f.record("DropCollection")
}

func (f *Fake) HasCollection(ctx context.Context, name string) (bool, error) {
	if err := f.record("HasCollection"); err != nil {
		return false, err
	}
	return f.Exists, nil
}

func (f *Fake) RenameCollection(ctx context.Context, oldName, newName string) error {
	return f.record("RenameCollection")
}

func (f *Fake) CollectionStats(ctx context.Context, name string) (map[string]string, error) {
	if err := f.record("CollectionStats"); err != nil {
		return nil, err
	}
	return f.Stats, nil
}

func (f *Fake) CreateDatabase(ctx context.Context, name string) error {
	return f.record("CreateDatabase")
}

func (f *Fake) ListDatabases(ctx context.Context) ([]string, error) {
	if err := f.record("ListDatabases"); err != nil {
		return nil, err
	}
	return f.Databases, nil
}

func (f *Fake) DropDatabase(ctx context.Context, name string) error {
	return f.record("DropDatabase")
}

func (f *Fake) CreatePartition(ctx context.Context, collection, name string) error {
	return f.record("CreatePartition")
}

func (f *Fake) DropPartition(ctx context.Context, collection, name string) error {
	return f.record("DropPartition")
}

func (f *Fake) HasPartition(ctx context.Context, collection, name string) (bool, error) {
	if err := f.record("HasPartition"); err != nil {
		return false, err
	}
	return f.Exists, nil
}

func (f *Fake) ListPartitions(ctx context.Context, collection string) ([]milvus.PartitionInfo, error) {
	if err := f.record("ListPartitions"); err != nil {
		return nil, err
	}
	return f.Partitions, nil
}

func (f *Fake) CreateIndex(ctx context.Context, collection, field string, index entity.Index, name string) error {
	f.LastIndex = index
	f.LastIndexName = name
	return f.record("CreateIndex")
}

func (f *Fake) DescribeIndex(ctx context.Context, collection, field string) ([]milvus.IndexInfo, error) {
	if err := f.record("DescribeIndex"); err != nil {
		return nil, err
	}
	return f.Indexes, nil
}

func (f *Fake) ListIndexes(ctx context.Context, collection string) ([]milvus.IndexInfo, error) {
	if err := f.record("ListIndexes"); err != nil {
		return nil, err
	}
	return f.Indexes, nil
}

func (f *Fake) DropIndex(ctx context.Context, collection, field, name string) error {
	f.LastIndexName = name
	return f.record("DropIndex")
}

func (f *Fake) Insert(ctx context.Context, collection, partition string, rows []map[string]any) (*milvus.InsertResult, error) {
	f.LastPartition = partition
	f.LastRows = rows
	if err := f.record("Insert"); err != nil {
		return nil, err
	}
	if f.InsertRes != nil {
		return f.InsertRes, nil
	}
	return &milvus.InsertResult{InsertCount: len(rows)}, nil
}

func (f *Fake) Upsert(ctx context.Context, collection, partition string, rows []map[string]any) (*milvus.UpsertResult, error) {
	f.LastPartition = partition
	f.LastRows = rows
	if err := f.record("Upsert"); err != nil {
		return nil, err
	}
	if f.UpsertRes != nil {
		return f.UpsertRes, nil
	}
	return &milvus.UpsertResult{UpsertCount: len(rows)}, nil
}

func (f *Fake) Delete(ctx context.Context, collection, partition, expr string) error {
	f.LastPartition = partition
	f.LastExpr = expr
	return f.record("Delete")
}

func (f *Fake) DeleteByIDs(ctx context.Context, collection, partition string, ids []string) error {
	f.LastPartition = partition
	f.LastIDs = ids
	return f.record("DeleteByIDs")
}

func (f *Fake) Search(ctx context.Context, req milvus.SearchRequest) ([]milvus.SearchHit, error) {
	f.LastSearch = req
	if err := f.record("Search"); err != nil {
		return nil, err
	}
	return f.Hits, nil
}

func (f *Fake) Query(ctx context.Context, req milvus.QueryRequest) ([]map[string]any, error) {
	f.LastQuery = req
	if err := f.record("Query"); err != nil {
		return nil, err
	}
	return f.Rows, nil
}

func (f *Fake) Get(ctx context.Context, collection string, ids, outputFields, partitions []string) ([]map[string]any, error) {
	f.LastIDs = ids
	if err := f.record("Get"); err != nil {
		return nil, err
	}
	return f.Rows, nil
}

func (f *Fake) HybridSearch(ctx context.Context, req milvus.HybridRequest) ([]milvus.SearchHit, error) {
	f.LastHybrid = req
	if err := f.record("HybridSearch"); err != nil {
		return nil, err
	}
	return f.Hits, nil
}

func (f *Fake) LoadCollection(ctx context.Context, collection string, async bool) error {
	f.LastAsync = async
	return f.record("LoadCollection")
}

func (f *Fake) ReleaseCollection(ctx context.Context, collection string) error {
	return f.record("ReleaseCollection")
}

func (f *Fake) LoadPartitions(ctx context.Context, collection string, partitions []string, async bool) error {
	f.LastAsync = async
	return f.record("LoadPartitions")
}

func (f *Fake) ReleasePartitions(ctx context.Context, collection string, partitions []string) error {
	return f.record("ReleasePartitions")
}

func (f *Fake) LoadState(ctx context.Context, collection string) (string, error) {
	if err := f.record("LoadState"); err != nil {
		return "", err
	}
	return f.State, nil
}

func (f *Fake) LoadProgress(ctx context.Context, collection string, partitions []string) (int64, error) {
	if err := f.record("LoadProgress"); err != nil {
		return 0, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Progress) == 0 {
		return 100, nil
	}
	p := f.Progress[0]
	f.Progress = f.Progress[1:]
	return p, nil
}

func (f *Fake) CreateAlias(ctx context.Context, collection, alias string) error {
	return f.record("CreateAlias")
}

func (f *Fake) AlterAlias(ctx context.Context, collection, alias string) error {
	return f.record("AlterAlias")
}

func (f *Fake) DropAlias(ctx context.Context, alias string) error {
	return f.record("DropAlias")
}

func (f *Fake) CreateUser(ctx context.Context, username, password string) error {
	return f.record("CreateUser")
}

func (f *Fake) DropUser(ctx context.Context, username string) error {
	return f.record("DropUser")
}

func (f *Fake) UpdatePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	return f.record("UpdatePassword")
}

func (f *Fake) ListUsers(ctx context.Context) ([]string, error) {
	if err := f.record("ListUsers"); err != nil {
		return nil, err
	}
	return f.Users, nil
}

func (f *Fake) CreateRole(ctx context.Context, name string) error {
	return f.record("CreateRole")
}

func (f *Fake) DropRole(ctx context.Context, name string) error {
	return f.record("DropRole")
}

func (f *Fake) ListRoles(ctx context.Context) ([]string, error) {
	if err := f.record("ListRoles"); err != nil {
		return nil, err
	}
	return f.Roles, nil
}

func (f *Fake) GrantRole(ctx context.Context, username, role string) error {
	f.LastUser = username
	f.LastRole = role
	return f.record("GrantRole")
}

func (f *Fake) RevokeRole(ctx context.Context, username, role string) error {
	f.LastUser = username
	f.LastRole = role
	return f.record("RevokeRole")
}

func (f *Fake) Flush(ctx context.Context, collection string, async bool) error {
	f.LastAsync = async
	return f.record("Flush")
}

func (f *Fake) Compact(ctx context.Context, collection string) (int64, error) {
	if err := f.record("Compact"); err != nil {
		return 0, err
	}
	return f.JobID, nil
}

func (f *Fake) CompactionState(ctx context.Context, jobID int64) (string, error) {
	if err := f.record("CompactionState"); err != nil {
		return "", err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.CompactStates) == 0 {
		return "Completed", nil
	}
	state := f.CompactStates[0]
	f.CompactStates = f.CompactStates[1:]
	return state, nil
}

func (f *Fake) CompactionPlans(ctx context.Context, jobID int64) (*milvus.CompactionPlans, error) {
	if err := f.record("CompactionPlans"); err != nil {
		return nil, err
	}
	return f.Plans, nil
}

func (f *Fake) PersistentSegments(ctx context.Context, collection string) ([]milvus.SegmentInfo, error) {
	if err := f.record("PersistentSegments"); err != nil {
		return nil, err
	}
	return f.Segments, nil
}

func (f *Fake) QuerySegments(ctx context.Context, collection string) ([]milvus.SegmentInfo, error) {
	if err := f.record("QuerySegments"); err != nil {
		return nil, err
	}
	return f.Segments, nil
}

func (f *Fake) Version(ctx context.Context) (string, error) {
	if err := f.record("Version"); err != nil {
		return "", err
	}
	return f.ServerVersion, nil
}

package milvus

import (
	"context"
	"sort"
	"strconv"

	"github.com/milvus-io/milvus-proto/go-api/v2/commonpb"
	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"github.com/yami-cli/yami/pkg/errcode"
)

// Client adapts the Milvus Go SDK to the Backend interface.
//
//	backend, err := milvus.Dial(ctx, conn)
//	if err != nil { ... }
//	defer backend.Close()
//
//	names, err := backend.ListCollections(ctx)
type Client struct {
	c client.Client
}

var _ Backend = (*Client)(nil)

func (m *Client) Close() error {
	return m.c.Close()
}

func (m *Client) ListCollections(ctx context.Context) ([]string, error) {
	colls, err := m.c.ListCollections(ctx)
	if err != nil {
		return nil, Translate(err)
	}
	names := make([]string, 0, len(colls))
	for _, coll := range colls {
		names = append(names, coll.Name)
	}
	sort.Strings(names)
	return names, nil
}

// CreateCollection creates the collection, builds an AUTOINDEX per
// planned vector field, and optionally loads it so it is queryable
// right away.
func (m *Client) CreateCollection(ctx context.Context, plan CreatePlan) error {
	shards := plan.ShardNum
	if shards <= 0 {
		shards = entity.DefaultShardNumber
	}
	if err := m.c.CreateCollection(ctx, plan.Schema, shards); err != nil {
		return Translate(err)
	}
	for _, field := range sortedKeys(plan.Metrics) {
		idx, err := entity.NewIndexAUTOINDEX(plan.Metrics[field])
		if err != nil {
			return Translate(err)
		}
		if err := m.c.CreateIndex(ctx, plan.Schema.CollectionName, field, idx, false); err != nil {
			return Translate(err)
		}
	}
	if plan.Load {
		if err := m.c.LoadCollection(ctx, plan.Schema.CollectionName, false); err != nil {
			return Translate(err)
		}
	}
	return nil
}

func (m *Client) DescribeCollection(ctx context.Context, name string) (*CollectionInfo, error) {
	coll, err := m.c.DescribeCollection(ctx, name)
	if err != nil {
		return nil, Translate(err)
	}
	info := &CollectionInfo{
		Name:             coll.Name,
		ID:               coll.ID,
		Loaded:           coll.Loaded,
		ShardNum:         coll.ShardNum,
		ConsistencyLevel: consistencyName(coll.ConsistencyLevel),
	}
	if coll.Schema != nil {
		info.Description = coll.Schema.Description
		info.DynamicField = coll.Schema.EnableDynamicField
		info.AutoID = coll.Schema.AutoID
		info.Fields = fieldInfos(coll.Schema.Fields)
	}
	return info, nil
}

func (m *Client) DropCollection(ctx context.Context, name string) error {
	return Translate(m.c.DropCollection(ctx, name))
}

func (m *Client) HasCollection(ctx context.Context, name string) (bool, error) {
	ok, err := m.c.HasCollection(ctx, name)
	if err != nil {
		return false, Translate(err)
	}
	return ok, nil
}

func (m *Client) RenameCollection(ctx context.Context, oldName, newName string) error {
	return Translate(m.c.RenameCollection(ctx, oldName, newName))
}

func (m *Client) CollectionStats(ctx context.Context, name string) (map[string]string, error) {
	stats, err := m.c.GetCollectionStatistics(ctx, name)
	if err != nil {
		return nil, Translate(err)
	}
	return stats, nil
}

func (m *Client) CreateDatabase(ctx context.Context, name string) error {
	return Translate(m.c.CreateDatabase(ctx, name))
}

func (m *Client) ListDatabases(ctx context.Context) ([]string, error) {
	dbs, err := m.c.ListDatabases(ctx)
	if err != nil {
		return nil, Translate(err)
	}
	names := make([]string, 0, len(dbs))
	for _, db := range dbs {
		names = append(names, db.Name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *Client) DropDatabase(ctx context.Context, name string) error {
	return Translate(m.c.DropDatabase(ctx, name))
}

func (m *Client) CreatePartition(ctx context.Context, collection, name string) error {
	return Translate(m.c.CreatePartition(ctx, collection, name))
}

func (m *Client) DropPartition(ctx context.Context, collection, name string) error {
	return Translate(m.c.DropPartition(ctx, collection, name))
}

func (m *Client) HasPartition(ctx context.Context, collection, name string) (bool, error) {
	ok, err := m.c.HasPartition(ctx, collection, name)
	if err != nil {
		return false, Translate(err)
	}
	return ok, nil
}

func (m *Client) ListPartitions(ctx context.Context, collection string) ([]PartitionInfo, error) {
	parts, err := m.c.ShowPartitions(ctx, collection)
	if err != nil {
		return nil, Translate(err)
	}
	infos := make([]PartitionInfo, 0, len(parts))
	for _, p := range parts {
		infos = append(infos, PartitionInfo{Name: p.Name, ID: p.ID})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

func (m *Client) CreateIndex(ctx context.Context, collection, field string, index entity.Index, name string) error {
	var opts []client.IndexOption
	if name != "" {
		opts = append(opts, client.WithIndexName(name))
	}
	return Translate(m.c.CreateIndex(ctx, collection, field, index, false, opts...))
}

func (m *Client) DescribeIndex(ctx context.Context, collection, field string) ([]IndexInfo, error) {
	idxs, err := m.c.DescribeIndex(ctx, collection, field)
	if err != nil {
		return nil, Translate(err)
	}
	infos := make([]IndexInfo, 0, len(idxs))
	for _, idx := range idxs {
		infos = append(infos, indexInfo(field, idx))
	}
	return infos, nil
}

// ListIndexes walks every schema field and collects its indexes.
// Fields without one are skipped rather than failing the listing.
func (m *Client) ListIndexes(ctx context.Context, collection string) ([]IndexInfo, error) {
	coll, err := m.c.DescribeCollection(ctx, collection)
	if err != nil {
		return nil, Translate(err)
	}
	infos := make([]IndexInfo, 0)
	if coll.Schema == nil {
		return infos, nil
	}
	for _, field := range coll.Schema.Fields {
		idxs, err := m.c.DescribeIndex(ctx, collection, field.Name)
		if err != nil {
			if ce, ok := errcode.From(Translate(err)); ok && ce.Code == errcode.NotFound {
				continue
			}
			return nil, Translate(err)
		}
		for _, idx := range idxs {
			infos = append(infos, indexInfo(field.Name, idx))
		}
	}
	return infos, nil
}

func (m *Client) DropIndex(ctx context.Context, collection, field, name string) error {
	var opts []client.IndexOption
	if name != "" {
		opts = append(opts, client.WithIndexName(name))
	}
	return Translate(m.c.DropIndex(ctx, collection, field, opts...))
}

func (m *Client) CreateAlias(ctx context.Context, collection, alias string) error {
	return Translate(m.c.CreateAlias(ctx, collection, alias))
}

func (m *Client) AlterAlias(ctx context.Context, collection, alias string) error {
	return Translate(m.c.AlterAlias(ctx, collection, alias))
}

func (m *Client) DropAlias(ctx context.Context, alias string) error {
	return Translate(m.c.DropAlias(ctx, alias))
}

func (m *Client) CreateUser(ctx context.Context, username, password string) error {
	return Translate(m.c.CreateCredential(ctx, username, password))
}

func (m *Client) DropUser(ctx context.Context, username string) error {
	return Translate(m.c.DeleteCredential(ctx, username))
}

func (m *Client) UpdatePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	return Translate(m.c.UpdateCredential(ctx, username, oldPassword, newPassword))
}

func (m *Client) ListUsers(ctx context.Context) ([]string, error) {
	users, err := m.c.ListCredUsers(ctx)
	if err != nil {
		return nil, Translate(err)
	}
	sort.Strings(users)
	return users, nil
}

func (m *Client) CreateRole(ctx context.Context, name string) error {
	return Translate(m.c.CreateRole(ctx, name))
}

func (m *Client) DropRole(ctx context.Context, name string) error {
	return Translate(m.c.DropRole(ctx, name))
}

func (m *Client) ListRoles(ctx context.Context) ([]string, error) {
	roles, err := m.c.ListRoles(ctx)
	if err != nil {
		return nil, Translate(err)
	}
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.Name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *Client) GrantRole(ctx context.Context, username, role string) error {
	return Translate(m.c.AddUserRole(ctx, username, role))
}

func (m *Client) RevokeRole(ctx context.Context, username, role string) error {
	return Translate(m.c.RemoveUserRole(ctx, username, role))
}

func (m *Client) LoadCollection(ctx context.Context, collection string, async bool) error {
	return Translate(m.c.LoadCollection(ctx, collection, async))
}

func (m *Client) ReleaseCollection(ctx context.Context, collection string) error {
	return Translate(m.c.ReleaseCollection(ctx, collection))
}

func (m *Client) LoadPartitions(ctx context.Context, collection string, partitions []string, async bool) error {
	return Translate(m.c.LoadPartitions(ctx, collection, partitions, async))
}

func (m *Client) ReleasePartitions(ctx context.Context, collection string, partitions []string) error {
	return Translate(m.c.ReleasePartitions(ctx, collection, partitions))
}

func (m *Client) LoadState(ctx context.Context, collection string) (string, error) {
	state, err := m.c.GetLoadState(ctx, collection, nil)
	if err != nil {
		return "", Translate(err)
	}
	return loadStateName(state), nil
}

func (m *Client) LoadProgress(ctx context.Context, collection string, partitions []string) (int64, error) {
	progress, err := m.c.GetLoadingProgress(ctx, collection, partitions)
	if err != nil {
		return 0, Translate(err)
	}
	return progress, nil
}

func (m *Client) Flush(ctx context.Context, collection string, async bool) error {
	return Translate(m.c.Flush(ctx, collection, async))
}

func (m *Client) Compact(ctx context.Context, collection string) (int64, error) {
	jobID, err := m.c.ManualCompaction(ctx, collection, 0)
	if err != nil {
		return 0, Translate(err)
	}
	return jobID, nil
}

func (m *Client) CompactionState(ctx context.Context, jobID int64) (string, error) {
	state, err := m.c.GetCompactionState(ctx, jobID)
	if err != nil {
		return "", Translate(err)
	}
	return compactionStateName(state), nil
}

func (m *Client) CompactionPlans(ctx context.Context, jobID int64) (*CompactionPlans, error) {
	state, plans, err := m.c.GetCompactionStateWithPlans(ctx, jobID)
	if err != nil {
		return nil, Translate(err)
	}
	out := &CompactionPlans{
		JobID: jobID,
		State: compactionStateName(state),
		Plans: make([]CompactionPlanInfo, 0, len(plans)),
	}
	for _, p := range plans {
		out.Plans = append(out.Plans, CompactionPlanInfo{Sources: p.Source, Target: p.Target})
	}
	return out, nil
}

func (m *Client) PersistentSegments(ctx context.Context, collection string) ([]SegmentInfo, error) {
	segs, err := m.c.GetPersistentSegmentInfo(ctx, collection)
	if err != nil {
		return nil, Translate(err)
	}
	return segmentInfos(segs), nil
}

func (m *Client) QuerySegments(ctx context.Context, collection string) ([]SegmentInfo, error) {
	segs, err := m.c.(*client.GrpcClient).GetQuerySegmentInfo(ctx, collection)
	if err != nil {
		return nil, Translate(err)
	}
	return segmentInfos(segs), nil
}

func (m *Client) Version(ctx context.Context) (string, error) {
	v, err := m.c.GetVersion(ctx)
	if err != nil {
		return "", Translate(err)
	}
	return v, nil
}

func fieldInfos(fields []*entity.Field) []FieldInfo {
	infos := make([]FieldInfo, 0, len(fields))
	for _, f := range fields {
		info := FieldInfo{
			Name:        f.Name,
			Type:        fieldTypeName(f.DataType),
			PrimaryKey:  f.PrimaryKey,
			AutoID:      f.AutoID,
			Description: f.Description,
		}
		info.Dim = typeParamInt(f.TypeParams, entity.TypeParamDim)
		info.MaxLength = typeParamInt(f.TypeParams, entity.TypeParamMaxLength)
		if f.DataType == entity.FieldTypeArray {
			info.ElementType = fieldTypeName(f.ElementType)
		}
		infos = append(infos, info)
	}
	return infos
}

func typeParamInt(params map[string]string, key string) int {
	n, err := strconv.Atoi(params[key])
	if err != nil {
		return 0
	}
	return n
}

func indexInfo(field string, idx entity.Index) IndexInfo {
	params := make(map[string]string, len(idx.Params()))
	for k, v := range idx.Params() {
		params[k] = v
	}
	info := IndexInfo{Field: field, Name: idx.Name(), Type: string(idx.IndexType())}
	if mt, ok := params["metric_type"]; ok {
		info.MetricType = mt
		delete(params, "metric_type")
	}
	delete(params, "index_type")
	if len(params) > 0 {
		info.Params = params
	}
	return info
}

func segmentInfos(segs []*entity.Segment) []SegmentInfo {
	infos := make([]SegmentInfo, 0, len(segs))
	for _, s := range segs {
		infos = append(infos, SegmentInfo{
			ID:           s.ID,
			CollectionID: s.CollectionID,
			PartitionID:  s.ParititionID,
			NumRows:      s.NumRows,
			State:        segmentStateName(s.State),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// segmentStateName resolves the proto enum through its name table so
// values newer than this SDK render as Unknown instead of a number.
func segmentStateName(s commonpb.SegmentState) string {
	if name, ok := commonpb.SegmentState_name[int32(s)]; ok {
		return name
	}
	return "Unknown"
}

func sortedKeys(m map[string]entity.MetricType) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// The SDK names field types after its Go constants; the CLI uses the
// same lowercase names the schema DSL accepts so describe output and
// create input line up.
func fieldTypeName(t entity.FieldType) string {
	switch t {
	case entity.FieldTypeBool:
		return "bool"
	case entity.FieldTypeInt8:
		return "int8"
	case entity.FieldTypeInt16:
		return "int16"
	case entity.FieldTypeInt32:
		return "int32"
	case entity.FieldTypeInt64:
		return "int64"
	case entity.FieldTypeFloat:
		return "float"
	case entity.FieldTypeDouble:
		return "double"
	case entity.FieldTypeVarChar:
		return "varchar"
	case entity.FieldTypeJSON:
		return "json"
	case entity.FieldTypeArray:
		return "array"
	case entity.FieldTypeFloatVector:
		return "float_vector"
	case entity.FieldTypeBinaryVector:
		return "binary_vector"
	case entity.FieldTypeFloat16Vector:
		return "float16_vector"
	case entity.FieldTypeBFloat16Vector:
		return "bfloat16_vector"
	case entity.FieldTypeSparseVector:
		return "sparse_vector"
	}
	return "unknown"
}

func consistencyName(cl entity.ConsistencyLevel) string {
	switch cl {
	case entity.ClStrong:
		return "Strong"
	case entity.ClBounded:
		return "Bounded"
	case entity.ClSession:
		return "Session"
	case entity.ClEventually:
		return "Eventually"
	case entity.ClCustomized:
		return "Customized"
	}
	return "Unknown"
}

func loadStateName(s entity.LoadState) string {
	switch s {
	case entity.LoadStateNotExist:
		return "NotExist"
	case entity.LoadStateNotLoad:
		return "NotLoad"
	case entity.LoadStateLoading:
		return "Loading"
	case entity.LoadStateLoaded:
		return "Loaded"
	}
	return "Unknown"
}

func compactionStateName(s entity.CompactionState) string {
	switch s {
	case entity.CompactionStateExecuting:
		return "Executing"
	case entity.CompactionStateCompleted:
		return "Completed"
	}
	return "Undefined"
}

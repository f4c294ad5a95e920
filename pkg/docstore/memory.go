package docstore

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Op 内存存储的操作类型，用于挂钩子
type Op string

const (
	OpInsert Op = "insert"
	OpFind   Op = "find"
	OpCount  Op = "count"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Hook 在操作执行前调用，返回错误时操作失败
type Hook func(ctx context.Context) error

// Memory 进程内文档存储，语义与 mongo 单文档原子写一致
type Memory struct {
	mu     sync.Mutex
	tables map[string]*memTable
	hooks  map[string]Hook
}

type memTable struct {
	mu      sync.RWMutex
	name    string
	docs    []bson.M
	indexes []Index
}

func NewMemory() *Memory {
	return &Memory{
		tables: make(map[string]*memTable),
		hooks:  make(map[string]Hook),
	}
}

// SetHook 为集合的某类操作设置钩子，fn 为 nil 时移除
func (m *Memory) SetHook(collection string, op Op, fn Hook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := collection + "/" + string(op)
	if fn == nil {
		delete(m.hooks, key)
		return
	}
	m.hooks[key] = fn
}

// FailOn 让集合的某类操作固定返回 err，err 为 nil 时恢复
func (m *Memory) FailOn(collection string, op Op, err error) {
	if err == nil {
		m.SetHook(collection, op, nil)
		return
	}
	m.SetHook(collection, op, func(context.Context) error { return err })
}

func (m *Memory) hook(ctx context.Context, collection string, op Op) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	fn := m.hooks[collection+"/"+string(op)]
	m.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (m *Memory) table(name string) *memTable {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[name]
	if !ok {
		t = &memTable{name: name}
		m.tables[name] = t
	}
	return t
}

// EnsureIndexes 注册索引，已有数据违反唯一约束时报错
func (m *Memory) EnsureIndexes(name string, indexes ...Index) error {
	t := m.table(name)
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, idx := range indexes {
		seen := make(map[string]struct{})
		for _, d := range t.docs {
			key, ok := indexKey(d, idx)
			if !idx.Unique || !ok {
				continue
			}
			if _, dup := seen[key]; dup {
				return errors.Wrapf(ErrDuplicateKey, "build index %s on %s", idx.Name, name)
			}
			seen[key] = struct{}{}
		}
		t.indexes = append(t.indexes, idx)
	}
	return nil
}

type memCollection[T any] struct {
	store *Memory
	t     *memTable
}

// NewMemoryCollection 返回绑定到 m 中某个集合的类型化视图
func NewMemoryCollection[T any](m *Memory, name string) Collection[T] {
	return &memCollection[T]{store: m, t: m.table(name)}
}

func (c *memCollection[T]) Name() string { return c.t.name }

func (c *memCollection[T]) Insert(ctx context.Context, doc *T) (string, error) {
	if err := c.store.hook(ctx, c.t.name, OpInsert); err != nil {
		return "", err
	}
	m, id, err := ToDocument(doc)
	if err != nil {
		return "", errors.Wrap(err, "encode document")
	}
	c.t.mu.Lock()
	defer c.t.mu.Unlock()
	if c.t.indexOf(id) >= 0 {
		return "", errors.Wrapf(ErrDuplicateKey, "%s _id %s", c.t.name, id)
	}
	if err := c.t.checkUnique(m, -1); err != nil {
		return "", err
	}
	c.t.docs = append(c.t.docs, m)
	if err := FromDocument(m, doc); err != nil {
		return "", errors.Wrap(err, "decode document")
	}
	return id, nil
}

func (c *memCollection[T]) FindByID(ctx context.Context, id string) (*T, error) {
	return c.FindOne(ctx, ByID(id))
}

func (c *memCollection[T]) FindOne(ctx context.Context, filter Filter) (*T, error) {
	list, err := c.FindMany(ctx, filter, FindOptions{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrNoDocuments
	}
	return list[0], nil
}

func (c *memCollection[T]) FindMany(ctx context.Context, filter Filter, opts FindOptions) ([]*T, error) {
	if err := c.store.hook(ctx, c.t.name, OpFind); err != nil {
		return nil, err
	}
	c.t.mu.RLock()
	matched := make([]bson.M, 0)
	for _, d := range c.t.docs {
		if matches(d, filter) {
			matched = append(matched, d)
		}
	}
	c.t.mu.RUnlock()

	sortDocs(matched, opts.Sort)
	if opts.Skip > 0 {
		if opts.Skip >= int64(len(matched)) {
			matched = nil
		} else {
			matched = matched[opts.Skip:]
		}
	}
	if opts.Limit > 0 && opts.Limit < int64(len(matched)) {
		matched = matched[:opts.Limit]
	}
	out := make([]*T, 0, len(matched))
	for _, d := range matched {
		v := new(T)
		if err := FromDocument(d, v); err != nil {
			return nil, errors.Wrap(err, "decode document")
		}
		out = append(out, v)
	}
	return out, nil
}

func (c *memCollection[T]) Count(ctx context.Context, filter Filter) (int64, error) {
	if err := c.store.hook(ctx, c.t.name, OpCount); err != nil {
		return 0, err
	}
	c.t.mu.RLock()
	defer c.t.mu.RUnlock()
	var n int64
	for _, d := range c.t.docs {
		if matches(d, filter) {
			n++
		}
	}
	return n, nil
}

func (c *memCollection[T]) UpdateByID(ctx context.Context, id string, update Update) (bool, error) {
	n, err := c.update(ctx, ByID(id), update, true)
	return n > 0, err
}

func (c *memCollection[T]) UpdateMany(ctx context.Context, filter Filter, update Update) (int64, error) {
	return c.update(ctx, filter, update, false)
}

func (c *memCollection[T]) update(ctx context.Context, filter Filter, update Update, one bool) (int64, error) {
	if err := update.validate(); err != nil {
		return 0, err
	}
	if err := c.store.hook(ctx, c.t.name, OpUpdate); err != nil {
		return 0, err
	}
	c.t.mu.Lock()
	defer c.t.mu.Unlock()
	var n int64
	for i, d := range c.t.docs {
		if !matches(d, filter) {
			continue
		}
		next, err := applyUpdate(d, update)
		if err != nil {
			return n, err
		}
		if err := c.t.checkUnique(next, i); err != nil {
			return n, err
		}
		c.t.docs[i] = next
		n++
		if one {
			break
		}
	}
	return n, nil
}

func (c *memCollection[T]) DeleteByID(ctx context.Context, id string) (bool, error) {
	n, err := c.delete(ctx, ByID(id), true)
	return n > 0, err
}

func (c *memCollection[T]) DeleteMany(ctx context.Context, filter Filter) (int64, error) {
	return c.delete(ctx, filter, false)
}

func (c *memCollection[T]) delete(ctx context.Context, filter Filter, one bool) (int64, error) {
	if err := c.store.hook(ctx, c.t.name, OpDelete); err != nil {
		return 0, err
	}
	c.t.mu.Lock()
	defer c.t.mu.Unlock()
	kept := c.t.docs[:0]
	var n int64
	for _, d := range c.t.docs {
		if (!one || n == 0) && matches(d, filter) {
			n++
			continue
		}
		kept = append(kept, d)
	}
	for i := len(kept); i < len(c.t.docs); i++ {
		c.t.docs[i] = nil
	}
	c.t.docs = kept
	return n, nil
}

func (t *memTable) indexOf(id string) int {
	for i, d := range t.docs {
		if d["_id"] == id {
			return i
		}
	}
	return -1
}

// checkUnique 调用方持有写锁；self 为文档自身下标，插入时为 -1
func (t *memTable) checkUnique(doc bson.M, self int) error {
	for _, idx := range t.indexes {
		if !idx.Unique {
			continue
		}
		key, ok := indexKey(doc, idx)
		if !ok {
			continue
		}
		for i, d := range t.docs {
			if i == self {
				continue
			}
			if other, ok := indexKey(d, idx); ok && other == key {
				return errors.Wrapf(ErrDuplicateKey, "%s index %s dup key %s", t.name, idx.Name, key)
			}
		}
	}
	return nil
}

func indexKey(doc bson.M, idx Index) (string, bool) {
	parts := make([]string, 0, len(idx.Fields))
	for _, f := range idx.Fields {
		v, ok := lookup(doc, f)
		if !ok {
			return "", false
		}
		parts = append(parts, fmt.Sprintf("%T:%v", normalize(v), normalize(v)))
	}
	return strings.Join(parts, "|"), true
}

// lookup 按 a.b 路径取值
func lookup(doc bson.M, path string) (any, bool) {
	var cur any = doc
	for _, seg := range strings.Split(path, ".") {
		switch m := cur.(type) {
		case bson.M:
			v, ok := m[seg]
			if !ok {
				return nil, false
			}
			cur = v
		case map[string]any:
			v, ok := m[seg]
			if !ok {
				return nil, false
			}
			cur = v
		case bson.D:
			found := false
			for _, e := range m {
				if e.Key == seg {
					cur, found = e.Value, true
					break
				}
			}
			if !found {
				return nil, false
			}
		default:
			return nil, false
		}
	}
	return cur, true
}

func asList(v any) ([]any, bool) {
	switch a := v.(type) {
	case bson.A:
		return a, true
	case []any:
		return a, true
	case []string:
		out := make([]any, len(a))
		for i, s := range a {
			out[i] = s
		}
		return out, true
	}
	return nil, false
}

func matches(doc bson.M, filter Filter) bool {
	for field, want := range filter {
		got, ok := lookup(doc, field)
		if cond, isCond := want.(bson.M); isCond {
			in, hasIn := cond["$in"]
			if !hasIn {
				return false
			}
			list, _ := asList(in)
			if !ok || !anyEqual(got, list) {
				return false
			}
			continue
		}
		if !ok {
			if want != nil {
				return false
			}
			continue
		}
		if !anyEqual(got, []any{want}) {
			return false
		}
	}
	return true
}

// anyEqual 字段值（数组时取其任一元素）是否等于 candidates 之一
func anyEqual(got any, candidates []any) bool {
	values := []any{got}
	if list, ok := asList(got); ok {
		values = list
	}
	for _, v := range values {
		for _, c := range candidates {
			if sameValue(v, c) {
				return true
			}
		}
	}
	return false
}

// normalize 数值统一为 float64，时间统一为毫秒
func normalize(v any) any {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case float32:
		return float64(x)
	case float64:
		return x
	case primitive.DateTime:
		return float64(x)
	case time.Time:
		return float64(x.UnixMilli())
	case primitive.ObjectID:
		return x.Hex()
	case nil:
		return nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	}
	return v
}

func sameValue(a, b any) bool {
	na, nb := normalize(a), normalize(b)
	if na == nil || nb == nil {
		return na == nil && nb == nil
	}
	if reflect.TypeOf(na).Comparable() && reflect.TypeOf(nb).Comparable() {
		return na == nb
	}
	return reflect.DeepEqual(na, nb)
}

func compare(a, b any) int {
	na, nb := normalize(a), normalize(b)
	rank := func(v any) int {
		switch v.(type) {
		case nil:
			return 0
		case float64:
			return 1
		case string:
			return 2
		case bool:
			return 3
		}
		return 4
	}
	if ra, rb := rank(na), rank(nb); ra != rb {
		return ra - rb
	}
	switch x := na.(type) {
	case float64:
		y := nb.(float64)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	case string:
		return strings.Compare(x, nb.(string))
	case bool:
		y := nb.(bool)
		if x == y {
			return 0
		}
		if !x {
			return -1
		}
		return 1
	}
	return 0
}

func sortDocs(docs []bson.M, fields []SortField) {
	sort.SliceStable(docs, func(i, j int) bool {
		for _, f := range fields {
			a, _ := lookup(docs[i], f.Field)
			b, _ := lookup(docs[j], f.Field)
			c := compare(a, b)
			if c == 0 {
				continue
			}
			if f.Desc {
				return c > 0
			}
			return c < 0
		}
		return compare(docs[i]["_id"], docs[j]["_id"]) < 0
	})
}

func applyUpdate(doc bson.M, u Update) (bson.M, error) {
	next := bson.M{}
	for k, v := range doc {
		next[k] = v
	}
	for k, v := range u.Set {
		next[k] = v
	}
	for k, v := range u.Inc {
		next[k] = addNumber(next[k], v)
	}
	for k, v := range u.AddToSet {
		list, _ := asList(next[k])
		if !anyEqual(v, list) {
			list = append(append(bson.A{}, list...), v)
		}
		next[k] = list
	}
	for k, v := range u.Push {
		list, _ := asList(next[k])
		next[k] = append(append(bson.A{}, list...), v)
	}
	for k, v := range u.Pull {
		list, _ := asList(next[k])
		kept := bson.A{}
		for _, e := range list {
			if !sameValue(e, v) {
				kept = append(kept, e)
			}
		}
		next[k] = kept
	}
	for k, v := range u.MoveToEnd {
		list, _ := asList(next[k])
		moved := bson.A{}
		for _, e := range list {
			if !sameValue(e, v) {
				moved = append(moved, e)
			}
		}
		next[k] = append(moved, v)
	}
	// 重新编码一遍，使时间、数值的表示与插入时一致
	raw, err := bson.Marshal(next)
	if err != nil {
		return nil, errors.Wrap(err, "encode updated document")
	}
	out := bson.M{}
	if err := bson.Unmarshal(raw, &out); err != nil {
		return nil, errors.Wrap(err, "decode updated document")
	}
	return out, nil
}

func addNumber(cur, delta any) any {
	ci, cInt := toInt64(cur)
	di, dInt := toInt64(delta)
	if (cInt || cur == nil) && dInt {
		return ci + di
	}
	cf, _ := normalize(cur).(float64)
	df, _ := normalize(delta).(float64)
	return cf + df
}

func toInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	}
	return 0, false
}

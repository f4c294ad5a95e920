package docstore

import "go.mongodb.org/mongo-driver/bson"

// Filter 查询条件，仅支持字段相等与集合成员两种形式
type Filter = bson.M

// Eq 字段相等；字段为数组时按成员匹配，支持 a.b 形式的路径
func Eq(field string, value any) Filter {
	return Filter{field: value}
}

// In 字段值属于 values
func In[V any](field string, values []V) Filter {
	list := make(bson.A, 0, len(values))
	for _, v := range values {
		list = append(list, v)
	}
	return Filter{field: bson.M{"$in": list}}
}

// And 合并多个条件
func And(filters ...Filter) Filter {
	out := Filter{}
	for _, f := range filters {
		for k, v := range f {
			out[k] = v
		}
	}
	return out
}

func ByID(id string) Filter {
	return Filter{"_id": id}
}

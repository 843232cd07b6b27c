package entity

import (
	"reflect"
	"strings"
	"testing"
)

// 两张记录表都必须带软删除标记对：IsDel 标志位 + DeletedAt 时间列。
// 缺了标志位，Delete 就变成物理删除，历史记录不可恢复。
func assertSoftDeletePair(t *testing.T, model any) {
	t.Helper()
	typ := reflect.TypeOf(model)
	isDel, ok := typ.FieldByName("IsDel")
	if !ok {
		t.Fatalf("%s: IsDel 字段缺失", typ.Name())
	}
	tag := isDel.Tag.Get("gorm")
	if !strings.Contains(tag, "softDelete:flag") || !strings.Contains(tag, "DeletedAtField:DeletedAt") {
		t.Fatalf("%s: IsDel 标签错误: %q", typ.Name(), tag)
	}
	deletedAt, ok := typ.FieldByName("DeletedAt")
	if !ok {
		t.Fatalf("%s: DeletedAt 字段缺失", typ.Name())
	}
	if !strings.Contains(deletedAt.Tag.Get("gorm"), "column:deleted_at") {
		t.Fatalf("%s: DeletedAt 标签错误: %q", typ.Name(), deletedAt.Tag.Get("gorm"))
	}
}

func TestRecordsSoftDelete(t *testing.T) {
	assertSoftDeletePair(t, SignalRecord{})
	assertSoftDeletePair(t, TradeRecord{})
}

package errors

import "errors"

// ErrOptimisticLock 条件更新冲突：记录已被其他操作抢先变更
// 状态机转换全部通过 "UPDATE ... WHERE status IN (期望状态)" 实现，
// 影响行数为 0 即返回本错误，由调用方决定是报错还是视为良性空操作
var ErrOptimisticLock = errors.New("记录已被其他操作修改")

package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// ErrStoreUnavailable 持久层不可用（基础设施错误，区别于业务校验错误）
var ErrStoreUnavailable = errors.New("存储服务不可用")

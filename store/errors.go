package store

import (
	"errors"
	"fmt"
)

// ErrNotFound 记录不存在或属于其他用户
// 两种情况刻意不作区分，避免跨用户泄露记录是否存在
var ErrNotFound = errors.New("记录不存在")

// ValidationError 查询参数校验错误，带出错字段，不会下发到存储层
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// PersistenceError 存储层读写失败
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("存储操作 %s 失败: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// AsValidationError 判断 err 是否为参数校验错误
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("record was modified by another request, please reload and retry")

// RevealKind reveal_contact 数据库函数失败的分类
type RevealKind int

const (
	// RevealKindUnknown 未识别的数据库错误
	RevealKindUnknown RevealKind = iota
	// RevealKindRateLimited 同一 IP 超出每小时揭示配额
	RevealKindRateLimited
)

func (k RevealKind) String() string {
	switch k {
	case RevealKindRateLimited:
		return "rate_limited"
	default:
		return "unknown"
	}
}

// RevealProcedureError reveal_contact 调用失败
// Message 为数据库函数给出的原始消息，需原样返回给客户端
type RevealProcedureError struct {
	Kind    RevealKind
	Message string
	Err     error
}

func (e *RevealProcedureError) Error() string { return e.Message }

func (e *RevealProcedureError) Unwrap() error { return e.Err }

// IsRevealRateLimited 判断错误链中是否包含限流类型的揭示错误
func IsRevealRateLimited(err error) bool {
	var re *RevealProcedureError
	return errors.As(err, &re) && re.Kind == RevealKindRateLimited
}

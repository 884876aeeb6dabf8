package cmd

import "fmt"

// 退出码
const (
	ExitFailure = 1
	ExitUsage   = 2
)

// ExitError 携带退出码的错误
type ExitError struct {
	Code   int
	Err    error
	Silent bool // 已经输出过结果，不再打印错误消息
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

func usageError(err error) error {
	return &ExitError{Code: ExitUsage, Err: err}
}

package errno

import (
	"errors"
	"fmt"
)

const (
	SuccessCode             = 0
	ServiceErrCode          = 10001
	InvalidReferenceErrCode = 10002
	NotFoundErrCode         = 10003
	UnauthorizedErrCode     = 10004
	ConflictErrCode         = 10005
	InvalidOperationErrCode = 10006
	UpstreamErrCode         = 10007
	ParamErrCode            = 10008
)

// ErrNo 业务错误码，按 ErrCode 比较
type ErrNo struct {
	ErrCode int64
	ErrMsg  string
	cause   error
}

func (e ErrNo) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("err_code=%d, err_msg=%s: %v", e.ErrCode, e.ErrMsg, e.cause)
	}
	return fmt.Sprintf("err_code=%d, err_msg=%s", e.ErrCode, e.ErrMsg)
}

// Is 只比较错误码，使 errors.Is(err, errno.NotFoundErr) 对任意消息成立
func (e ErrNo) Is(target error) bool {
	var t ErrNo
	if errors.As(target, &t) {
		return t.ErrCode == e.ErrCode
	}
	return false
}

func (e ErrNo) Unwrap() error {
	return e.cause
}

func NewErrNo(code int64, msg string) ErrNo {
	return ErrNo{ErrCode: code, ErrMsg: msg}
}

func (e ErrNo) WithMessage(msg string) ErrNo {
	e.ErrMsg = msg
	return e
}

// Wrap 保留底层原因，供上层 errors.Unwrap 使用
func (e ErrNo) Wrap(cause error) ErrNo {
	e.cause = cause
	return e
}

var (
	Success             = NewErrNo(SuccessCode, "Success")
	ServiceErr          = NewErrNo(ServiceErrCode, "Service is unable to start successfully")
	ParamErr            = NewErrNo(ParamErrCode, "Wrong Parameter has been given")
	InvalidReferenceErr = NewErrNo(InvalidReferenceErrCode, "Invalid reference id")
	NotFoundErr         = NewErrNo(NotFoundErrCode, "Resource not found")
	UnauthorizedErr     = NewErrNo(UnauthorizedErrCode, "Actor is not allowed to perform this action")
	ConflictErr         = NewErrNo(ConflictErrCode, "Resource already exists")
	InvalidOperationErr = NewErrNo(InvalidOperationErrCode, "Invalid operation")
	UpstreamErr         = NewErrNo(UpstreamErrCode, "Upstream store failure")
)

// ConvertErr convert error to Errno
func ConvertErr(err error) ErrNo {
	if err == nil {
		return Success
	}
	Err := ErrNo{}
	if errors.As(err, &Err) {
		return Err
	}
	s := ServiceErr
	s.ErrMsg = err.Error()
	return s
}

// Upstream 把存储/对象存储层的错误归为 UpstreamErr
func Upstream(err error) error {
	if err == nil {
		return nil
	}
	var e ErrNo
	if errors.As(err, &e) {
		return err
	}
	return UpstreamErr.WithMessage(err.Error()).Wrap(err)
}

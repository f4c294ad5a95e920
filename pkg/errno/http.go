package errno

import "github.com/cloudwego/hertz/pkg/protocol/consts"

// HTTPStatus 错误码到 HTTP 状态码的映射
func HTTPStatus(err error) int {
	switch ConvertErr(err).ErrCode {
	case SuccessCode:
		return consts.StatusOK
	case InvalidReferenceErrCode, InvalidOperationErrCode, ParamErrCode:
		return consts.StatusBadRequest
	case NotFoundErrCode:
		return consts.StatusNotFound
	case UnauthorizedErrCode:
		return consts.StatusForbidden
	case ConflictErrCode:
		return consts.StatusConflict
	default:
		return consts.StatusInternalServerError
	}
}

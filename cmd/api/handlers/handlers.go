package handlers

import (
	"context"
	"io"
	"strconv"

	aggregation "VidTube.com/cmd/aggregation/service"
	content "VidTube.com/cmd/content/service"
	integrity "VidTube.com/cmd/integrity/service"
	interaction "VidTube.com/cmd/interaction/service"
	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/docstore"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/utils"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
)

// Handler 持有各组件，路由层只做参数解析与响应封装
type Handler struct {
	Content     *content.ContentService
	Toggle      *interaction.ToggleService
	Aggregation *aggregation.AggregationService
	Cascade     *integrity.CascadeService
}

type Response struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
}

type ErrorResponse struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Errors     []string `json:"errors"`
	Success    bool     `json:"success"`
}

// SendResponse pack response
func SendResponse(c *app.RequestContext, err error, data interface{}) {
	status := errno.HTTPStatus(err)
	if err == nil {
		c.JSON(status, Response{StatusCode: status, Data: data, Message: "Success", Success: true})
		return
	}
	Err := errno.ConvertErr(err)
	errs := []string{}
	if cause := Err.Unwrap(); cause != nil {
		errs = append(errs, cause.Error())
	}
	c.JSON(status, ErrorResponse{StatusCode: status, Message: Err.ErrMsg, Errors: errs, Success: false})
}

const actorKey = "actor"

// RequireUser 身份由上游网关校验后写入 X-User-Id，这里只检查格式
func RequireUser() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		id := string(c.GetHeader(constants.UserIdHeader))
		if id == "" {
			SendResponse(c, errno.UnauthorizedErr.WithMessage("missing "+constants.UserIdHeader+" header"), nil)
			c.Abort()
			return
		}
		if !docstore.IsValidID(id) {
			SendResponse(c, errno.InvalidReferenceErr.WithMessage("invalid user id in header"), nil)
			c.Abort()
			return
		}
		c.Set(actorKey, id)
		c.Next(ctx)
	}
}

func actor(c *app.RequestContext) string {
	return c.GetString(actorKey)
}

// viewer 公开接口的可选身份，格式不对时当作匿名
func viewer(c *app.RequestContext) string {
	id := string(c.GetHeader(constants.UserIdHeader))
	if !docstore.IsValidID(id) {
		return ""
	}
	return id
}

func pageParams(c *app.RequestContext) (int64, int64) {
	return utils.Transfer(c.Query("page"), 1), utils.Transfer(c.Query("limit"), 0)
}

// formFile 读取上传文件，字段不存在时返回 nil
func formFile(c *app.RequestContext, name string) ([]byte, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, errno.ParamErr.WithMessage("multipart form expected").Wrap(err)
	}
	files := form.File[name]
	if len(files) == 0 {
		return nil, nil
	}
	f, err := files[0].Open()
	if err != nil {
		return nil, errno.ParamErr.WithMessage("open " + name + " failed").Wrap(err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errno.ParamErr.WithMessage("read " + name + " failed").Wrap(err)
	}
	return data, nil
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		hlog.Debugf("ignore malformed number %q", s)
		return 0
	}
	return v
}

// HealthCheck 存活检查
func (h *Handler) HealthCheck(ctx context.Context, c *app.RequestContext) {
	SendResponse(c, nil, map[string]string{"status": "ok"})
}

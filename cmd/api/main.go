package main

import (
	"context"
	"fmt"
	"time"

	aggregation "VidTube.com/cmd/aggregation/service"
	"VidTube.com/cmd/api/handlers"
	"VidTube.com/cmd/api/router"
	content "VidTube.com/cmd/content/service"
	"VidTube.com/cmd/dal"
	"VidTube.com/cmd/integrity/dal/db"
	integrity "VidTube.com/cmd/integrity/service"
	interaction "VidTube.com/cmd/interaction/service"
	"VidTube.com/config"
	"VidTube.com/config/pprof"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/mq"
	"VidTube.com/pkg/oss"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/middlewares/server/recovery"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/hertz-contrib/cors"
)

// journal MySQL 未配置或不可用时不记录级联
func journal() integrity.Journal {
	if config.ConfigInfo.Mysql.Addr == "" {
		return integrity.NopJournal{}
	}
	if err := db.Init(); err != nil {
		hlog.Warnf("Failed to init cascade journal, runs will not be recorded: %v", err)
		return integrity.NopJournal{}
	}
	return db.NewJournal(db.DB)
}

func main() {
	config.Init()
	pprof.Load(config.ConfigInfo.Server.PprofAddr)

	ctx := context.Background()
	store, err := dal.Init(ctx)
	if err != nil {
		hlog.Fatalf("Failed to init store: %v", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			hlog.Errorf("Failed to close store: %v", err)
		}
	}()
	blobs, err := oss.Init(ctx)
	if err != nil {
		hlog.Fatalf("Failed to init blob store: %v", err)
	}
	producer, closeProducer := mq.Init()
	defer closeProducer()

	h := &handlers.Handler{
		Content:     content.NewContentService(store, blobs),
		Toggle:      interaction.NewToggleService(store, producer),
		Aggregation: aggregation.NewAggregationService(store),
		Cascade:     integrity.NewCascadeService(store, blobs, journal(), producer),
	}

	r := server.New(
		server.WithHostPorts(config.ConfigInfo.Server.Addr),
		server.WithHandleMethodNotAllowed(true),
		server.WithMaxRequestBodySize(config.ConfigInfo.Server.MaxBodySize*1024*1024),
		server.WithExitWaitTime(3*time.Second),
	)

	r.Use(cors.New(cors.Config{
		AllowOrigins:     config.ConfigInfo.Server.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-User-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(recovery.Recovery(recovery.WithRecoveryHandler(
		func(ctx context.Context, c *app.RequestContext, err interface{}, stack []byte) {
			hlog.SystemLogger().CtxErrorf(ctx, "[Recovery] err=%v\nstack=%s", err, stack)
			handlers.SendResponse(c, errno.ServiceErr.WithMessage(fmt.Sprintf("[Recovery] err=%v", err)), nil)
		})))

	router.Register(r, h)
	r.Spin()
}

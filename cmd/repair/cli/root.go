package cli

import (
	"context"
	"io"
	"os/signal"
	"syscall"

	"VidTube.com/cmd/dal"
	"VidTube.com/cmd/integrity/dal/db"
	integrity "VidTube.com/cmd/integrity/service"
	"VidTube.com/config"
	"VidTube.com/pkg/mq"
	"VidTube.com/pkg/oss"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// RootOptions 全局参数
type RootOptions struct {
	Limit int
}

// Deps 命令运行所需的依赖，close 释放连接
type Deps struct {
	Repairer *Repairer
	Close    func()
}

// Loader 构造依赖，测试时替换
type Loader func(ctx context.Context, out io.Writer, opts *RootOptions) (*Deps, error)

func NewRootCommand(load Loader) *cobra.Command {
	opts := &RootOptions{}
	cmd := &cobra.Command{
		Use:           "repair",
		Short:         "Inspect and retry failed cascade deletes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().IntVar(&opts.Limit, "limit", 100, "max number of failed runs to handle")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List failed cascade runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd, load, opts, func(ctx context.Context, d *Deps) error {
				return d.Repairer.List(ctx, opts.Limit)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "retry",
		Short: "Re-run every failed cascade",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd, load, opts, func(ctx context.Context, d *Deps) error {
				fixed, failed, err := d.Repairer.RetryAll(ctx, opts.Limit)
				if err != nil {
					return err
				}
				cmd.Printf("fixed %d, still failing %d\n", fixed, failed)
				if failed > 0 {
					return errors.Errorf("%d cascade runs still failing", failed)
				}
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "watch",
		Short: "Consume cascade events and retry failures as they happen",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd, load, opts, func(ctx context.Context, d *Deps) error {
				consumer, err := mq.NewConsumer(mq.URL())
				if err != nil {
					return err
				}
				defer consumer.Close()
				return consumer.ConsumeCascadeEvents(ctx, d.Repairer)
			})
		},
	})
	return cmd
}

func withDeps(cmd *cobra.Command, load Loader, opts *RootOptions, fn func(ctx context.Context, d *Deps) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	d, err := load(ctx, cmd.OutOrStdout(), opts)
	if err != nil {
		return err
	}
	defer d.Close()
	return fn(ctx, d)
}

// LoadFromConfig 按配置连接 MongoDB、对象存储、MySQL 与 RabbitMQ
func LoadFromConfig(ctx context.Context, out io.Writer, _ *RootOptions) (*Deps, error) {
	config.Init()
	if err := db.Init(); err != nil {
		return nil, errors.WithMessage(err, "open cascade journal")
	}
	store, err := dal.Init(ctx)
	if err != nil {
		return nil, err
	}
	blobs, err := oss.Init(ctx)
	if err != nil {
		_ = store.Close(ctx)
		return nil, errors.WithMessage(err, "init blob store")
	}
	producer, closeProducer := mq.Init()
	journal := db.NewJournal(db.DB)
	cascades := integrity.NewCascadeService(store, blobs, journal, producer)
	return &Deps{
		Repairer: NewRepairer(journal, cascades, out, 3),
		Close: func() {
			_ = closeProducer()
			_ = store.Close(context.Background())
		},
	}, nil
}

// Execute 收到 SIGINT / SIGTERM 时取消 ctx，watch 随之退出
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return NewRootCommand(LoadFromConfig).ExecuteContext(ctx)
}

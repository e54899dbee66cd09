package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bookmarks-api/internal/bootstrap"
	"bookmarks-api/internal/core/config"
	"bookmarks-api/internal/core/logger"
)

type options struct {
	configPath string
}

// NewRootCmd bookmarkctl：运维用的命令行（迁移、用户管理）
func NewRootCmd() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:           "bookmarkctl",
		Short:         "Admin tooling for the bookmarks API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&o.configPath, "config", "c", os.Getenv("CONFIG_PATH"), "path to the YAML config file")

	root.AddCommand(newMigrateCmd(o), newUsersCmd(o))
	return root
}

func (o *options) load() (*config.Config, *zap.Logger, func(), error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	l, cleanup := logger.FromConfig(cfg.Log)
	return cfg, l, cleanup, nil
}

// withApp 组装完整依赖后执行 fn，结束时释放
func (o *options) withApp(ctx context.Context, fn func(*bootstrap.App) error) error {
	cfg, l, cleanup, err := o.load()
	if err != nil {
		return err
	}
	defer cleanup()

	cfg.DB.AutoMigrate = false
	app, err := bootstrap.New(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(app)
}

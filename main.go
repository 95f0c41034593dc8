package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stockdesk/krfeed/cmd"
	"github.com/stockdesk/krfeed/config"
)

const dbPathInfo = "DuckDB 文件路径"

var v *viper.Viper

// loadConfig 绑定命令行参数到 viper 键并解析最终配置.
// 未设置的参数依次回退到环境变量, 配置文件和默认值
func loadConfig(c *cobra.Command, bindings map[string]string) (*config.Config, error) {
	for key, flag := range bindings {
		if err := v.BindPFlag(key, c.Flags().Lookup(flag)); err != nil {
			return nil, fmt.Errorf("failed to bind --%s: %w", flag, err)
		}
	}
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}

	verbose, _ := c.Flags().GetBool("verbose")
	if err := cmd.SetupLogging(cfg.LogLevel, verbose); err != nil {
		return nil, err
	}
	return cfg, nil
}

var commonBindings = map[string]string{
	"work_dir":     "workdir",
	"http_timeout": "timeout",
	"insecure_tls": "insecure-tls",
}

func withCommon(extra map[string]string) map[string]string {
	m := make(map[string]string, len(commonBindings)+len(extra))
	for k, f := range commonBindings {
		m[k] = f
	}
	for k, f := range extra {
		m[k] = f
	}
	return m
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rootCmd = &cobra.Command{
		Use:           "krfeed",
		Short:         "Refresh the KRX stock list and the finance news feed as CSV",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(c *cobra.Command, args []string) error {
			var err error
			v, err = config.New()
			return err
		},
	}

	var stocksCmd = &cobra.Command{
		Use:   "stocks",
		Short: "Download KOSPI/KOSDAQ master files and write kr_stocks.csv",
		RunE: func(c *cobra.Command, args []string) error {
			cfg, err := loadConfig(c, withCommon(map[string]string{
				"stocks_csv":   "output",
				"kospi_url":    "kospi-url",
				"kosdaq_url":   "kosdaq-url",
				"parquet_path": "parquet",
			}))
			if err != nil {
				return err
			}
			return cmd.UpdateStocks(c.Context(), cfg)
		},
	}

	var newsCmd = &cobra.Command{
		Use:   "news",
		Short: "Fetch the RSS feed and write ai_news.csv",
		RunE: func(c *cobra.Command, args []string) error {
			cfg, err := loadConfig(c, withCommon(map[string]string{
				"news_csv": "output",
				"feed_url": "feed-url",
			}))
			if err != nil {
				return err
			}
			return cmd.UpdateNews(c.Context(), cfg)
		},
	}

	var loadCmd = &cobra.Command{
		Use:   "load",
		Short: "Import kr_stocks.csv and ai_news.csv into DuckDB",
		RunE: func(c *cobra.Command, args []string) error {
			cfg, err := loadConfig(c, withCommon(map[string]string{
				"db_path":    "dbpath",
				"stocks_csv": "stocks-csv",
				"news_csv":   "news-csv",
			}))
			if err != nil {
				return err
			}
			return cmd.LoadDB(c.Context(), cfg)
		},
	}

	var cronCmd = &cobra.Command{
		Use:   "cron",
		Short: "Run news, stocks and (with --dbpath) load in one go",
		RunE: func(c *cobra.Command, args []string) error {
			cfg, err := loadConfig(c, withCommon(map[string]string{
				"db_path":      "dbpath",
				"parquet_path": "parquet",
			}))
			if err != nil {
				return err
			}
			return cmd.Cron(c.Context(), cfg)
		},
	}

	var searchCmd = &cobra.Command{
		Use:   "search <name>",
		Short: "Search the loaded stock list by name fragment",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			cfg, err := loadConfig(c, withCommon(map[string]string{
				"db_path": "dbpath",
			}))
			if err != nil {
				return err
			}
			records, err := cmd.SearchStocks(c.Context(), cfg, args[0])
			if err != nil {
				return err
			}
			for _, r := range records {
				fmt.Fprintf(c.OutOrStdout(), "%s\t%s\t%s\n", r.Code, r.StandardCode, r.Name)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().String("workdir", ".", "master 文件下载与解压目录")
	rootCmd.PersistentFlags().Duration("timeout", 0, "HTTP 超时, 0 表示使用客户端默认值")
	rootCmd.PersistentFlags().Bool("insecure-tls", false, "下载 master 文件时跳过证书校验")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "输出 debug 日志")

	stocksCmd.Flags().String("output", "public/data/kr_stocks.csv", "股票列表 CSV 输出路径")
	stocksCmd.Flags().String("kospi-url", "", "KOSPI master 压缩包地址, 为空时使用默认地址")
	stocksCmd.Flags().String("kosdaq-url", "", "KOSDAQ master 压缩包地址, 为空时使用默认地址")
	stocksCmd.Flags().String("parquet", "", "同时导出 Parquet 文件的路径, 可选")

	newsCmd.Flags().String("output", "public/data/ai_news.csv", "新闻 CSV 输出路径")
	newsCmd.Flags().String("feed-url", "", "RSS 地址, 为空时使用默认地址")

	loadCmd.Flags().String("dbpath", "", dbPathInfo+" (必填)")
	loadCmd.Flags().String("stocks-csv", "public/data/kr_stocks.csv", "待导入的股票列表 CSV")
	loadCmd.Flags().String("news-csv", "public/data/ai_news.csv", "待导入的新闻 CSV")

	cronCmd.Flags().String("dbpath", "", dbPathInfo+", 为空时跳过导入")
	cronCmd.Flags().String("parquet", "", "股票列表 Parquet 导出路径, 可选")

	searchCmd.Flags().String("dbpath", "", dbPathInfo+" (必填)")

	rootCmd.AddCommand(stocksCmd)
	rootCmd.AddCommand(newsCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(cronCmd)
	rootCmd.AddCommand(searchCmd)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "🛑 错误: %v\n", err)
		os.Exit(1)
	}
}

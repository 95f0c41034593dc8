package workflow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/stockdesk/krfeed/database"
	"github.com/stockdesk/krfeed/model"
	"github.com/stockdesk/krfeed/mst"
	"github.com/stockdesk/krfeed/rss"
	"github.com/stockdesk/krfeed/utils"
)

const (
	TaskNameUpdateNews   = "update_news"
	TaskNameUpdateStocks = "update_stocks"
	TaskNameLoadDB       = "load_db"
)

var (
	TaskUpdateNews   *Task
	TaskUpdateStocks *Task
	TaskLoadDB       *Task
)

func init() {
	TaskUpdateNews = &Task{
		Name:     TaskNameUpdateNews,
		Executor: executeUpdateNews,
		OnError:  ErrorModeSkip,
	}

	TaskUpdateStocks = &Task{
		Name:     TaskNameUpdateStocks,
		Executor: executeUpdateStocks,
		OnError:  ErrorModeSkip,
	}

	TaskLoadDB = &Task{
		Name:      TaskNameLoadDB,
		DependsOn: []string{TaskNameUpdateNews, TaskNameUpdateStocks},
		SkipIf: func(ctx context.Context, args *TaskArgs) bool {
			return args.Config.DBPath == ""
		},
		Executor: executeLoadDB,
	}
}

func GetRegisteredTasks() map[string]*Task {
	return map[string]*Task{
		TaskUpdateNews.Name:   TaskUpdateNews,
		TaskUpdateStocks.Name: TaskUpdateStocks,
		TaskLoadDB.Name:       TaskLoadDB,
	}
}

// GetCronTaskNames lists what a scheduled run does, in preferred order.
func GetCronTaskNames() []string {
	return []string{TaskNameUpdateNews, TaskNameUpdateStocks, TaskNameLoadDB}
}

func executeUpdateNews(ctx context.Context, args *TaskArgs) (*TaskResult, error) {
	cfg := args.Config

	log.Infof("📰 fetching feed %s", cfg.FeedURL)
	entries, err := rss.NewFetcher(args.Client).WithClock(args.Now).Fetch(ctx, cfg.FeedURL)
	if err != nil {
		return nil, err
	}

	if err := rss.WriteNewsCSV(cfg.NewsCSV, entries); err != nil {
		return nil, err
	}

	log.Infof("✅ %d news entries saved to %s", len(entries), cfg.NewsCSV)
	return &TaskResult{State: StateCompleted, Rows: len(entries)}, nil
}

func executeUpdateStocks(ctx context.Context, args *TaskArgs) (*TaskResult, error) {
	cfg := args.Config

	if err := utils.CheckOutputDir(cfg.WorkDir); err != nil {
		return nil, err
	}

	client := args.Client
	if cfg.InsecureTLS {
		log.Warn("⚠️ TLS certificate verification disabled for master downloads")
		client = utils.NewHTTPClient(cfg.HTTPTimeout, utils.WithInsecureTLS())
	}

	masters := mst.Masters(cfg.KospiURL, cfg.KosdaqURL)
	sets := make([][]model.StockRecord, len(masters))
	for i, m := range masters {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		log.Infof("🛠️  downloading %s master file", m.Market)
		archive := filepath.Join(cfg.WorkDir, m.ArchiveName)
		if _, err := utils.FetchArchive(ctx, client, m.URL, archive, cfg.WorkDir); err != nil {
			return nil, fmt.Errorf("failed to fetch %s master: %w", m.Market, err)
		}

		records, err := mst.ParseFile(filepath.Join(cfg.WorkDir, m.FileName))
		if err != nil {
			return nil, err
		}
		log.WithField("market", m.Market).Debugf("parsed %d records", len(records))
		sets[i] = records
	}

	n, err := mst.WriteStocksCSV(cfg.StocksCSV, sets[0], sets[1])
	if err != nil {
		return nil, err
	}

	if cfg.ParquetPath != "" {
		if err := utils.WriteParquet(cfg.ParquetPath, mst.Merge(sets...)); err != nil {
			return nil, fmt.Errorf("failed to write parquet %s: %w", cfg.ParquetPath, err)
		}
		log.Infof("📦 parquet copy saved to %s", cfg.ParquetPath)
	}

	log.Infof("✅ stock list saved to %s (%d rows)", cfg.StocksCSV, n)
	return &TaskResult{State: StateCompleted, Rows: n}, nil
}

func executeLoadDB(ctx context.Context, args *TaskArgs) (*TaskResult, error) {
	cfg := args.Config
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("db_path is required")
	}

	imports := []struct {
		csv   string
		table *model.TableMeta
		load  func(database.DataRepository, string) error
	}{
		{cfg.StocksCSV, model.TableKrStocks, database.DataRepository.ImportKrStocks},
		{cfg.NewsCSV, model.TableNews, database.DataRepository.ImportNews},
	}

	var pending []int
	for i, imp := range imports {
		if _, err := os.Stat(imp.csv); err == nil {
			pending = append(pending, i)
		} else {
			log.Warnf("⚠️ %s not found, %s left unchanged", imp.csv, imp.table.TableName)
		}
	}
	if len(pending) == 0 {
		return nil, fmt.Errorf("nothing to load: neither %s nor %s exists", cfg.StocksCSV, cfg.NewsCSV)
	}

	if err := utils.EnsureParentDir(cfg.DBPath); err != nil {
		return nil, err
	}
	db, err := database.NewDuckDB(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create database driver: %w", err)
	}
	if err := db.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.InitSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	total := 0
	for _, i := range pending {
		imp := imports[i]
		if err := utils.CheckFile(imp.csv); err != nil {
			return nil, err
		}
		if err := imp.load(db, imp.csv); err != nil {
			return nil, fmt.Errorf("failed to import %s: %w", imp.csv, err)
		}
		n, err := db.CountRows(imp.table.TableName)
		if err != nil {
			return nil, err
		}
		log.Infof("📊 %s: %d rows", imp.table.TableName, n)
		total += int(n)
	}

	return &TaskResult{State: StateCompleted, Rows: total}, nil
}

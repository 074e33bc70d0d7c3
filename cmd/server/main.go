// Package main 是应用程序的入口点。
package main

import (
	"context"
	"drafting-wizard-go/internal/config"
	"drafting-wizard-go/internal/handler"
	"drafting-wizard-go/internal/middleware"
	"drafting-wizard-go/internal/pipeline"
	"drafting-wizard-go/internal/repository"
	"drafting-wizard-go/internal/service"
	"drafting-wizard-go/pkg/database"
	"drafting-wizard-go/pkg/es"
	"drafting-wizard-go/pkg/kafka"
	"drafting-wizard-go/pkg/log"
	"drafting-wizard-go/pkg/storage"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", "./configs/config.yaml", "配置文件路径")
	flag.Parse()

	// 1. 初始化配置
	config.Init(*configPath)
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()
	log.Info("日志记录器初始化成功")

	// 3. 初始化数据库
	database.InitMySQL(cfg.Database.MySQL)

	rootCtx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()

	// 4. 初始化 Repository
	categoryRepo := repository.NewCategoryRepository(database.DB)
	questionRepo := repository.NewQuestionRepository(database.DB)
	tagRepo := repository.NewTagRepository(database.DB)
	categoryTagRepo := repository.NewCategoryTagRepository(database.DB)
	draftTagRepo := repository.NewDraftTagRepository(database.DB)
	draftRepo := repository.NewDraftRepository(database.DB)

	// 5. 初始化归档相关的后端（对象存储、检索、消息队列），未配置的部分被跳过
	var backends service.DraftBackends
	var draftStore *storage.DraftStore
	var draftIndex *es.DraftIndex
	if cfg.MinIO.Endpoint != "" {
		store, err := storage.NewDraftStore(rootCtx, cfg.MinIO)
		if err != nil {
			log.Fatal("MinIO 初始化失败", err)
		}
		draftStore = store
		backends.Downloads = store
	}
	if cfg.Elasticsearch.Addresses != "" {
		client, err := es.NewClient(cfg.Elasticsearch)
		if err != nil {
			log.Fatal("Elasticsearch 客户端初始化失败", err)
		}
		draftIndex = es.NewDraftIndex(client, cfg.Elasticsearch.IndexName)
		if err := draftIndex.EnsureIndex(rootCtx); err != nil {
			log.Fatal("Elasticsearch 索引初始化失败", err)
		}
		backends.Search = draftIndex
	}

	var consumerWG sync.WaitGroup
	var producer *kafka.Producer
	if cfg.Draft.ArchiveEnabled {
		if draftStore == nil || draftIndex == nil || cfg.Kafka.Brokers == "" {
			log.Fatalf("draft.archive_enabled 需要同时配置 minio、elasticsearch 和 kafka")
		}
		database.InitRedis(cfg.Database.Redis)
		producer = kafka.NewProducer(cfg.Kafka)
		backends.Publisher = producer

		// 6. 初始化归档管道并启动后台 Kafka 消费者
		processor := pipeline.NewProcessor(draftRepo, categoryRepo, draftStore, draftIndex, cfg.Draft.DefaultTitle)
		consumer := kafka.NewConsumer(cfg.Kafka, processor, database.RDB)
		consumerWG.Add(1)
		go func() {
			defer consumerWG.Done()
			consumer.Run(rootCtx)
		}()
	}

	// 7. 初始化 Service (依赖注入)
	categoryService := service.NewCategoryService(categoryRepo, questionRepo, categoryTagRepo, tagRepo, cfg.Category.ProtectedIDs)
	tagService := service.NewTagService(tagRepo, draftRepo, draftTagRepo, cfg.Tag.DefaultColor)
	draftService := service.NewDraftService(categoryRepo, draftRepo, draftTagRepo, tagRepo, cfg.Draft, backends)

	// 7.1 写入内置分类，已存在则跳过
	if err := categoryService.SeedCategories(rootCtx, cfg.Category.Seeds); err != nil {
		log.Fatal("内置分类初始化失败", err)
	}

	// 8. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(middleware.RequestLogger(), middleware.CORS(cfg.CORS.AllowedOrigins), gin.Recovery())

	// 9. 注册路由
	handler.RegisterRoutes(r,
		handler.NewCategoryHandler(categoryService),
		handler.NewTagHandler(tagService),
		handler.NewDraftHandler(draftService, tagService),
	)

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP 服务监听失败: %s", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("HTTP 服务器关闭失败", err)
	}

	// 停止消费者并等待当前任务结束
	cancelRoot()
	consumerWG.Wait()
	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Error("关闭 Kafka 生产者失败", err)
		}
	}
	log.Info("服务已优雅关闭")
}

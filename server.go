package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"platform/config"
	"platform/db"
	"platform/metrics"
	"platform/mongodb"
	"platform/services"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Сервисы движка. Внешний API (HTTP, авторизация) живет в соседнем
// сервисе и ходит сюда через пакет services.
var (
	userService     *services.UserService
	followService   *services.FollowService
	favoriteService *services.FavoriteService
	postService     *services.PostService
	momentService   *services.MomentService
	feedService     *services.FeedService
)

// wsHandler подключает пользователя к менеджеру WebSocket-соединений,
// через который доставляются уведомления о новых постах
func wsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		http.Error(w, "invalid user_id", http.StatusBadRequest)
		return
	}
	if _, err := userService.GetByID(r.Context(), userID); err != nil {
		http.Error(w, "unknown user", http.StatusNotFound)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("failed to upgrade connection: %v", err)
		return
	}
	services.GlobalWSConnManager.Add(userID, conn)
	defer func() {
		services.GlobalWSConnManager.Remove(userID, conn)
		_ = conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	err := config.LoadConfig(configPath)
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}
	log.Println("Starting server...")

	if err := db.ConnectDB(); err != nil {
		panic("Failed to connect to the database: " + err.Error())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	connectCtx, connectCancel := context.WithTimeout(ctx, 10*time.Second)
	if err := mongodb.Connect(connectCtx); err != nil {
		connectCancel()
		panic("Failed to connect to the document store: " + err.Error())
	}
	if err := mongodb.EnsureIndexes(connectCtx); err != nil {
		connectCancel()
		panic("Failed to create document store indexes: " + err.Error())
	}
	connectCancel()

	if err := services.InitRedis(); err != nil {
		log.Printf("Redis unavailable, popular ranking disabled: %v", err)
	}
	defer services.CloseRedis()

	if err := services.InitRabbitMQ(); err != nil {
		log.Printf("RabbitMQ unavailable, falling back to direct WebSocket notifications: %v", err)
	} else {
		if err := services.StartPostEventConsumer(ctx, "post_events_ws"); err != nil {
			log.Printf("Failed to start post event consumer: %v", err)
		}
	}
	defer services.CloseRabbitMQ()

	metrics.StartServer(config.AppConfig.Metrics.Addr)

	postStore := mongodb.NewPostStore()
	momentStore := mongodb.NewMomentStore()

	users := services.NewUserService()
	ranking := services.NewRankingService()
	userService = users
	followService = services.NewFollowService(users)
	favoriteService = services.NewFavoriteService(users, postStore)
	postService = services.NewPostService(postStore, users, followService, ranking)
	momentService = services.NewMomentService(momentStore, users)
	feedService = services.NewFeedService(followService, favoriteService, users, postStore, momentStore)

	// Периодически логируем топ просмотров, чтобы было видно, что
	// рейтинг в Redis жив
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				popular, err := postService.PopularPosts(ctx, 10)
				if err != nil {
					log.Printf("failed to refresh popular posts: %v", err)
					continue
				}
				log.Printf("popular posts tracked: %d", len(popular))
			}
		}
	}()

	addr := fmt.Sprintf("%s:%d", config.AppConfig.Backend.Host, config.AppConfig.Backend.Port)
	if config.AppConfig.Backend.Port == 0 {
		addr = ":8080"
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler)
	go func() {
		log.Println("Listening on", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Printf("server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")
	cancel()

	closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer closeCancel()
	if err := mongodb.Close(closeCtx); err != nil {
		log.Printf("failed to close document store: %v", err)
	}
}

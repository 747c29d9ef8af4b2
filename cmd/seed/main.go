package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"strings"
	"time"

	"platform/config"
	"platform/db"
	"platform/models"
	"platform/mongodb"
	"platform/services"

	"github.com/brianvoe/gofakeit/v6"
)

// Наполняет обе базы тестовыми данными: пользователи и подписки в
// реляционной, посты и моменты в документной
func main() {
	var configPath string
	var userCount, postsPerUser, momentsPerUser int
	flag.StringVar(&configPath, "config", "config.yaml", "Path to the configuration file")
	flag.IntVar(&userCount, "users", 100, "Number of users to create")
	flag.IntVar(&postsPerUser, "posts", 5, "Posts per user")
	flag.IntVar(&momentsPerUser, "moments", 3, "Moments per user")
	flag.Parse()

	if err := config.LoadConfig(configPath); err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}
	if err := db.ConnectDB(); err != nil {
		log.Fatal("Failed to connect to the database: ", err)
	}

	ctx := context.Background()
	if err := mongodb.Connect(ctx); err != nil {
		log.Fatal("Failed to connect to the document store: ", err)
	}
	if err := mongodb.EnsureIndexes(ctx); err != nil {
		log.Fatal("Failed to create document store indexes: ", err)
	}
	defer mongodb.Close(ctx)

	postStore := mongodb.NewPostStore()
	momentStore := mongodb.NewMomentStore()
	users := services.NewUserService()
	follows := services.NewFollowService(users)
	posts := services.NewPostService(postStore, users, nil, nil)
	moments := services.NewMomentService(momentStore, users)

	created := make([]models.User, 0, userCount)
	for i := 0; i < userCount; i++ {
		name := gofakeit.FirstName()
		user := models.User{
			Username: strings.ToLower(name) + "_" + gofakeit.Numerify("######"),
			Email:    gofakeit.Email(),
			Password: gofakeit.Password(true, false, true, true, false, 10),
			Roles:    "user",
			Status:   models.UserActive,
		}
		if err := db.GetWriteDB(ctx).Create(&user).Error; err != nil {
			log.Fatal("Failed to create user: ", err)
		}
		created = append(created, user)
	}
	log.Printf("Created %d users", len(created))

	// Каждый подписывается на несколько случайных пользователей
	edges := 0
	for _, u := range created {
		for j := 0; j < 5; j++ {
			target := created[rand.Intn(len(created))]
			err := follows.Follow(ctx, u.ID, target.ID)
			if err != nil {
				continue // свои и повторные ребра пропускаем
			}
			edges++
		}
	}
	log.Printf("Created %d follow edges", edges)

	totalPosts := 0
	for _, u := range created {
		for j := 0; j < postsPerUser; j++ {
			post := &models.Post{
				Title:   gofakeit.Sentence(5),
				Content: gofakeit.Paragraph(3, 5, 10, " "),
				Tags:    []string{gofakeit.Word(), gofakeit.Word()},
			}
			saved, err := posts.Create(ctx, post, &u)
			if err != nil {
				log.Fatal("Failed to create post: ", err)
			}
			saved.Status = models.PostPublished
			saved.CreatedAt = gofakeit.DateRange(time.Now().AddDate(0, -6, 0), time.Now())
			if err := postStore.Save(ctx, saved); err != nil {
				log.Fatal("Failed to publish post: ", err)
			}
			totalPosts++
		}
	}
	log.Printf("Created %d posts", totalPosts)

	totalMoments := 0
	for _, u := range created {
		for j := 0; j < momentsPerUser; j++ {
			moment := &models.Moment{
				Content: gofakeit.Sentence(12),
				Images:  gofakeit.ImageURL(640, 480),
			}
			if _, err := moments.Create(ctx, moment, &u); err != nil {
				log.Fatal("Failed to create moment: ", err)
			}
			totalMoments++
		}
	}
	log.Printf("Created %d moments", totalMoments)
}

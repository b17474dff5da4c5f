package main

import (
	"fmt"
	"log"
	"os"

	"roomchat/backend/internal/config"
	"roomchat/backend/internal/models"
	"roomchat/backend/internal/storage"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}
	cfg := config.Load()

	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	storageSvc := storage.NewStorageService(db, nil) // No redis needed for admin CLI

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <rooms|user <name>|history <room>>")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "rooms":
		listRooms(storageSvc)
	case "user":
		if len(os.Args) < 3 {
			fmt.Println("Usage: admin user <name>")
			os.Exit(1)
		}
		showUser(storageSvc, os.Args[2])
	case "history":
		if len(os.Args) < 3 {
			fmt.Println("Usage: admin history <room>")
			os.Exit(1)
		}
		showHistory(storageSvc, os.Args[2])
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
}

func listRooms(s *storage.Service) {
	rooms, err := s.ListRooms()
	if err != nil {
		log.Fatalf("failed to list rooms: %v", err)
	}
	for _, room := range rooms {
		members, err := s.ListRoomMembers(room.Name)
		if err != nil {
			log.Fatalf("failed to list members of room %s: %v", room.Name, err)
		}
		fmt.Printf("%s\t%d members\tcreated %s\n", room.Name, len(members), room.CreatedAt.Format("2006-01-02 15:04"))
	}
}

func showUser(s *storage.Service, username string) {
	user, err := s.GetPresence(username)
	if err != nil {
		log.Fatalf("failed to read user %s: %v", username, err)
	}
	if user == nil {
		fmt.Printf("user %s not found\n", username)
		os.Exit(1)
	}

	fmt.Printf("username:  %s\n", user.Username)
	fmt.Printf("status:    %s\n", user.Status)
	if user.Status == models.StatusOffline {
		fmt.Printf("last seen: %s\n", models.FormatLastSeen(user.LastSeen))
	}

	rooms, err := s.ListUserRooms(username)
	if err != nil {
		log.Fatalf("failed to list rooms for user %s: %v", username, err)
	}
	fmt.Printf("rooms:     ")
	for i, room := range rooms {
		if i > 0 {
			fmt.Print(", ")
		}
		fmt.Print(room.Name)
	}
	fmt.Println()
}

func showHistory(s *storage.Service, roomName string) {
	msgs, err := s.RecentHistory(roomName, config.HistoryLimit)
	if err != nil {
		log.Fatalf("failed to load history for room %s: %v", roomName, err)
	}
	for _, msg := range msgs {
		fmt.Printf("[%s] %s: %s\n", models.FormatMessageTime(msg.Timestamp), msg.Sender, msg.Text)
	}
}

package main

import (
	"log"

	"github.com/MrSnakeDoc/savelater/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatalf("❌ savelater-server failed to start: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("❌ savelater-server failed: %v", err)
	}
}

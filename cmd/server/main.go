package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/meghan128/sportx-sub001/internal/cache"
	"github.com/meghan128/sportx-sub001/internal/db"
	"github.com/meghan128/sportx-sub001/internal/handlers"
	"github.com/meghan128/sportx-sub001/internal/ocr"
	"github.com/meghan128/sportx-sub001/internal/router"
	"github.com/meghan128/sportx-sub001/internal/verification"
)

func main() {
	_ = godotenv.Load()

	db.Init()
	cache.Init()

	engine := buildEngine()
	handlers.Init(
		verification.NewService(engine),
		verification.NewEvaluator(verification.DefaultEvaluatorConfig()),
	)

	r := router.RegisterRouter()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Println("listening on :" + port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatal(err)
	}
}

// buildEngine assembles the extraction pipeline: PDF text layer for PDFs,
// the configured OCR engine for images, everything under one timeout.
func buildEngine() verification.Engine {
	var image ocr.Engine
	switch os.Getenv("OCR_ENGINE") {
	case "tesseract":
		image = ocr.NewTesseractEngine(os.Getenv("OCR_LANGUAGES"))
	default:
		image = ocr.NewVisionEngine()
	}

	timeout := 30 * time.Second
	if raw := os.Getenv("OCR_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			timeout = d
		} else {
			log.Println("(WARN): invalid OCR_TIMEOUT, using default:", raw)
		}
	}

	return ocr.WithTimeout(ocr.NewAutoEngine(ocr.NewPDFEngine(), image), timeout)
}

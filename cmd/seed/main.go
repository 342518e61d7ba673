package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ikkim/shoplive-catalog/config"
	"github.com/ikkim/shoplive-catalog/internal/app/repository"
	"github.com/ikkim/shoplive-catalog/internal/app/service"
	"github.com/ikkim/shoplive-catalog/internal/db"
	"github.com/ikkim/shoplive-catalog/internal/importer"
	"github.com/ikkim/shoplive-catalog/pkg/logger"
)

func main() {
	// 명령줄 인자 확인
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path> [--yes]")
	}

	filePath := os.Args[1]
	assumeYes := len(os.Args) > 2 && (os.Args[2] == "--yes" || os.Args[2] == "-y")

	// 설정 로드
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	logger.Initialize(logger.Config{Level: "warn", Format: "console", EnableColor: true})

	// XLSX 파일 읽기
	fmt.Printf("Reading XLSX file: %s\n", filePath)
	rows, err := importer.ReadXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	result, err := importer.ParseRows(rows)
	if err != nil {
		log.Fatal("Failed to parse XLSX:", err)
	}

	fmt.Printf("\nSummary:\n")
	fmt.Printf("  Total rows: %d\n", len(rows)-1)
	fmt.Printf("  Products: %d\n", len(result.Products))
	fmt.Printf("  SKUs: %d\n", result.SKUCount())
	fmt.Printf("  Skipped rows: %d\n", len(result.Skipped))
	for _, skipped := range result.Skipped {
		fmt.Printf("    row %d: %s\n", skipped.Row, skipped.Reason)
	}

	// 사용자 확인
	if !assumeYes {
		fmt.Print("Do you want to proceed with the import? (yes/no): ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "yes" && confirm != "y" {
			fmt.Println("Import cancelled.")
			return
		}
	}

	// DB 연결
	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// the server's index cache expires on its own
	productService := service.NewProductService(repository.NewProductRepository(db.GetDB()), nil)

	imported, failed := 0, 0
	for _, product := range result.Products {
		if err := productService.CreateProduct(product); err != nil {
			failed++
			fmt.Printf("  failed %q: %v\n", product.Name, err)
			continue
		}
		imported++
		if imported%100 == 0 {
			fmt.Printf("Imported %d products...\n", imported)
		}
	}

	fmt.Println("Import completed!")
	fmt.Printf("Total products imported: %d (failed: %d)\n", imported, failed)
}

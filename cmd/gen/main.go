package main

import (
	"ziplink/internal/infra/persistence/model"

	"gorm.io/gen"
)

func main() {
	models := []any{
		model.LinkModel{},
	}

	gen := gen.NewGenerator(gen.Config{
		OutPath: "./internal/infra/persistence/postgres/query",
	})

	gen.ApplyBasic(models...)

	gen.Execute()
}

package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/mealwise/backend/internal/database"
	"github.com/mealwise/backend/internal/models"
)

// Word-bounded so "eggplant" does not read as "egg".
var nonVegRe = regexp.MustCompile(`(?i)\b(chicken|mutton|lamb|beef|pork|bacon|ham|fish|salmon|tuna|prawn|prawns|shrimp|crab|squid|egg|eggs|anchovy|anchovies|sausage|turkey|duck)\b`)

type cuisineHint struct {
	keyword string
	cuisine models.CuisineType
}

// Checked in order, first hit wins.
var cuisineHints = []cuisineHint{
	{"curry", models.CuisineIndian},
	{"masala", models.CuisineIndian},
	{"dal", models.CuisineIndian},
	{"paneer", models.CuisineIndian},
	{"biryani", models.CuisineIndian},
	{"pasta", models.CuisineItalian},
	{"risotto", models.CuisineItalian},
	{"pizza", models.CuisineItalian},
	{"taco", models.CuisineMexican},
	{"burrito", models.CuisineMexican},
	{"quesadilla", models.CuisineMexican},
	{"stir-fry", models.CuisineChinese},
	{"noodle", models.CuisineChinese},
	{"sushi", models.CuisineJapanese},
	{"ramen", models.CuisineJapanese},
	{"pad thai", models.CuisineThai},
	{"hummus", models.CuisineMediterranean},
	{"falafel", models.CuisineMediterranean},
	{"burger", models.CuisineAmerican},
}

func main() {
	_ = godotenv.Load()

	path := flag.String("csv", "data/recipes.csv", "path to the recipe CSV file")
	seedAllergies := flag.Bool("allergies", true, "seed the default allergy catalog")
	flag.Parse()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	db, err := gorm.Open(postgres.Open(dbURL), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	file, err := os.Open(*path)
	if err != nil {
		log.Fatalf("failed to open csv: %v", err)
	}
	defer func() { _ = file.Close() }()

	created, err := seedFromCSV(db, file, logger)
	if err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	logger.Info("recipes seeded", zap.Int("created", created))

	if *seedAllergies {
		if err := database.SeedDefaultAllergies(db, logger); err != nil {
			log.Fatalf("failed to seed allergies: %v", err)
		}
	}
}

// CSV columns: name, description, instructions, prep_time, cook_time,
// servings, calories, protein_g, carbs_g, fat_g, ingredients
// (ingredients are semicolon separated).
func seedFromCSV(db *gorm.DB, r io.Reader, logger *zap.Logger) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 11

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("failed to read header: %w", err)
	}
	if strings.ToLower(header[0]) != "name" {
		return 0, errors.New("unexpected csv header, first column must be name")
	}

	created := 0
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return created, fmt.Errorf("failed to read line %d: %w", line, err)
		}

		name := strings.TrimSpace(record[0])
		if name == "" {
			continue
		}

		var existing models.Recipe
		if err := db.Where("LOWER(name) = ?", strings.ToLower(name)).First(&existing).Error; err == nil {
			logger.Debug("recipe exists, skipping", zap.String("name", name))
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, err
		}

		recipe := models.Recipe{
			Name:         name,
			Description:  strings.TrimSpace(record[1]),
			Instructions: strings.TrimSpace(record[2]),
			PrepTime:     parseIntPtr(record[3]),
			CookTime:     parseIntPtr(record[4]),
			Servings:     parseIntDefault(record[5], 1),
			CuisineType:  classifyCuisine(name, record[1]),
		}

		text := name + " " + record[1] + " " + record[10]
		isVeg := !nonVegRe.MatchString(text)
		recipe.IsVegetarian = &isVeg

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&recipe).Error; err != nil {
				return err
			}

			if cal := parseFloat(record[6]); cal > 0 {
				info := models.RecipeNutritionalInfo{
					RecipeID: recipe.ID,
					Calories: cal,
					ProteinG: parseFloat(record[7]),
					CarbsG:   parseFloat(record[8]),
					FatG:     parseFloat(record[9]),
				}
				if err := tx.Create(&info).Error; err != nil {
					return err
				}
			}

			for _, raw := range strings.Split(record[10], ";") {
				ingName := strings.ToLower(strings.TrimSpace(raw))
				if ingName == "" {
					continue
				}
				ingredient, err := findOrCreateIngredient(tx, ingName)
				if err != nil {
					return err
				}
				ri := models.RecipeIngredient{
					RecipeID:     recipe.ID,
					IngredientID: ingredient.ID,
					Quantity:     1,
				}
				if err := tx.Create(&ri).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return created, fmt.Errorf("failed to seed recipe %q: %w", name, err)
		}
		created++
	}
	return created, nil
}

func findOrCreateIngredient(tx *gorm.DB, name string) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	err := tx.Where("LOWER(name) = ?", name).First(&ingredient).Error
	if err == nil {
		return &ingredient, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	ingredient = models.Ingredient{Name: name, Unit: "g"}
	if err := tx.Create(&ingredient).Error; err != nil {
		return nil, err
	}
	return &ingredient, nil
}

func classifyCuisine(name, description string) models.CuisineType {
	text := strings.ToLower(name + " " + description)
	for _, hint := range cuisineHints {
		if strings.Contains(text, hint.keyword) {
			return hint.cuisine
		}
	}
	return models.CuisineOther
}

func parseIntPtr(s string) *int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v <= 0 {
		return nil
	}
	return &v
}

func parseIntDefault(s string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
